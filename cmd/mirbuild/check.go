package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mirbuild/internal/diagfmt"
	"mirbuild/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.json>",
	Short: "Lower and validate a HIR module, reporting diagnostics only",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "functions lowered in parallel (0 = GOMAXPROCS)")
	checkCmd.Flags().Bool("no-cache", false, "ignore [cache] in mirbuild.toml")
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)
	path := args[0]

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported --format %q (must be pretty or json)", format)
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
	opts.Validate = true
	res, err := driver.LowerFile(cmd.Context(), path, opts)
	if err != nil {
		return err
	}

	if err := printDiagnostics(cmd.OutOrStdout(), res, format, rc.cfg.Diag.Max); err != nil {
		return err
	}
	if format == "pretty" && res.Bag.Len() == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d functions ok\n", path, len(res.MIR.Funcs))
	}
	if rc.timings {
		if err := printTimings(cmd.ErrOrStderr(), path, res, format); err != nil {
			return err
		}
	}
	if res.Bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

// printDiagnostics sorts the bag and renders it. Pretty output of an empty
// bag prints nothing; JSON always prints the envelope.
func printDiagnostics(w io.Writer, res *driver.Result, format string, maxDiags int) error {
	res.Bag.Sort()
	if format == "json" {
		return diagfmt.JSON(w, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			Max:              maxDiags,
			IncludeNotes:     true,
		})
	}
	if res.Bag.Len() == 0 && res.Bag.Dropped() == 0 {
		return nil
	}
	return diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{
		Color:     useColor(),
		Context:   0,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
	})
}
