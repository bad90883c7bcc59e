package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"mirbuild/internal/trace"
)

// Config is the contents of mirbuild.toml. Every key is optional; Default
// supplies the values of missing ones.
type Config struct {
	Lower LowerConfig `toml:"lower"`
	Trace TraceConfig `toml:"trace"`
	Cache CacheConfig `toml:"cache"`
	Diag  DiagConfig  `toml:"diag"`
}

type LowerConfig struct {
	Jobs     int  `toml:"jobs"` // 0 means GOMAXPROCS
	Simplify bool `toml:"simplify"`
	Validate bool `toml:"validate"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DiagConfig struct {
	Max int `toml:"max"`
}

// Default returns the configuration used when no mirbuild.toml exists.
func Default() Config {
	return Config{
		Lower: LowerConfig{Validate: true},
		Trace: TraceConfig{Level: "off", Mode: "stream", Output: "-"},
		Diag:  DiagConfig{Max: 100},
	}
}

// Manifest is a loaded mirbuild.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// LoadManifest finds mirbuild.toml above startDir and loads it. ok is false
// when there is none.
func LoadManifest(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes path over Default and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("lower", "jobs") && cfg.Lower.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [lower].jobs must not be negative", path)
	}
	if meta.IsDefined("diag", "max") && cfg.Diag.Max < 0 {
		return Config{}, fmt.Errorf("%s: [diag].max must not be negative", path)
	}
	if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
		return Config{}, fmt.Errorf("%s: [trace].level: %w", path, err)
	}
	if _, err := trace.ParseMode(cfg.Trace.Mode); err != nil {
		return Config{}, fmt.Errorf("%s: [trace].mode: %w", path, err)
	}
	if meta.IsDefined("cache", "dir") && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// CacheDir returns the configured cache directory or the per-user default.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no cache directory: %w", err)
	}
	return filepath.Join(base, "mirbuild"), nil
}
