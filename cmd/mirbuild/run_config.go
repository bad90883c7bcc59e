package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mirbuild/internal/driver"
	"mirbuild/internal/project"
)

// runConfig is mirbuild.toml with the command-line flags applied on top.
type runConfig struct {
	cfg      project.Config
	manifest string // empty when no mirbuild.toml was used
	timings  bool
}

// loadRunConfig reads --config, or the mirbuild.toml above input, and lets
// explicitly set flags override it.
func loadRunConfig(cmd *cobra.Command, input string) (*runConfig, error) {
	rc := &runConfig{cfg: project.Default()}
	pf := cmd.Root().PersistentFlags()

	path, err := pf.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		cfg, err := project.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		rc.cfg, rc.manifest = cfg, path
	} else {
		m, ok, err := project.LoadManifest(filepath.Dir(input))
		if err != nil {
			return nil, err
		}
		if ok {
			rc.cfg, rc.manifest = m.Config, m.Path
		}
	}

	if rc.timings, err = pf.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if pf.Changed("max-diagnostics") {
		if rc.cfg.Diag.Max, err = pf.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	for flag, dst := range map[string]*string{
		"trace":       &rc.cfg.Trace.Output,
		"trace-level": &rc.cfg.Trace.Level,
		"trace-mode":  &rc.cfg.Trace.Mode,
	} {
		if !pf.Changed(flag) {
			continue
		}
		if *dst, err = pf.GetString(flag); err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
	}

	// Local flags exist only on some commands.
	fs := cmd.Flags()
	if fs.Lookup("jobs") != nil && fs.Changed("jobs") {
		if rc.cfg.Lower.Jobs, err = fs.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if fs.Lookup("simplify") != nil && fs.Changed("simplify") {
		if rc.cfg.Lower.Simplify, err = fs.GetBool("simplify"); err != nil {
			return nil, fmt.Errorf("failed to get simplify flag: %w", err)
		}
	}
	if fs.Lookup("no-cache") != nil {
		noCache, err := fs.GetBool("no-cache")
		if err != nil {
			return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
		}
		if noCache {
			rc.cfg.Cache.Enabled = false
		}
	}
	return rc, nil
}

// driverOptions opens the cache when enabled. A cache that cannot be opened
// only costs speed, so it is reported and skipped.
func (rc *runConfig) driverOptions(cmd *cobra.Command) driver.Options {
	opts := driver.Options{
		Jobs:           rc.cfg.Lower.Jobs,
		Validate:       rc.cfg.Lower.Validate,
		Simplify:       rc.cfg.Lower.Simplify,
		MaxDiagnostics: rc.cfg.Diag.Max,
	}
	if !rc.cfg.Cache.Enabled {
		return opts
	}
	dir, err := rc.cfg.Cache.CacheDir()
	if err == nil {
		opts.Cache, err = driver.OpenDiskCache(dir)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
	}
	return opts
}
