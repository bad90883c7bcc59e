package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mirbuild/internal/driver"
	"mirbuild/internal/mir"
)

var lowerCmd = &cobra.Command{
	Use:   "lower <file.json>",
	Short: "Lower a HIR module and print its MIR",
	Args:  cobra.ExactArgs(1),
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().String("emit", "text", "output format (text|json|msgpack)")
	lowerCmd.Flags().Bool("scopes", false, "annotate instructions with their scope and list the scope tree")
	lowerCmd.Flags().Bool("simplify", false, "merge trivial goto chains and drop unreachable blocks")
	lowerCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	lowerCmd.Flags().Int("jobs", 0, "functions lowered in parallel (0 = GOMAXPROCS)")
	lowerCmd.Flags().StringP("out", "o", "", "write output to this file instead of stdout")
	lowerCmd.Flags().Bool("no-cache", false, "ignore [cache] in mirbuild.toml")
}

func runLower(cmd *cobra.Command, args []string) (err error) {
	defer dumpTraceOnPanic(cmd)
	path := args[0]

	emit, _ := cmd.Flags().GetString("emit")
	emit = strings.ToLower(emit)
	switch emit {
	case "text", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported --emit %q (must be text, json or msgpack)", emit)
	}
	scopes, _ := cmd.Flags().GetBool("scopes")
	outPath, _ := cmd.Flags().GetString("out")
	uiValue, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	rc, err := loadRunConfig(cmd, path)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, rc.cfg.Trace)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProf()

	opts := rc.driverOptions(cmd)
	var res *driver.Result
	if shouldUseTUI(mode, outPath == "") {
		res, err = runLowerWithUI(cmd.Context(), "lower "+filepath.Base(path), path, opts)
	} else {
		res, err = driver.LowerFile(cmd.Context(), path, opts)
	}
	if err != nil {
		return err
	}

	if err := printDiagnostics(cmd.ErrOrStderr(), res, "pretty", rc.cfg.Diag.Max); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, createErr := os.Create(outPath)
		if createErr != nil {
			return fmt.Errorf("failed to create output: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}
	if err := emitModule(out, res, emit, scopes); err != nil {
		return err
	}

	if rc.timings {
		if err := printTimings(cmd.ErrOrStderr(), path, res, "pretty"); err != nil {
			return err
		}
	}
	if res.Bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

func emitModule(w io.Writer, res *driver.Result, emit string, scopes bool) error {
	switch emit {
	case "json":
		return driver.EmitJSON(w, res.MIR)
	case "msgpack":
		return driver.EmitMsgpack(w, res.MIR)
	default:
		return mir.DumpModule(w, res.MIR, res.Types, mir.DumpOptions{Scopes: scopes})
	}
}
