// Package config locates and decodes the optional ccflags config file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	shlex "github.com/carapace-sh/carapace-shlex"
	"gopkg.in/yaml.v3"

	"github.com/hokupod/ccflags/internal/flags"
	"github.com/hokupod/ccflags/internal/source"
)

// EnvConfigPath names a config file and takes precedence over the search.
const EnvConfigPath = "CCFLAGS_CONFIG"

// FileNames are searched for in every directory from the target upward.
var FileNames = []string{".ccflags.toml", ".ccflags.yaml", ".ccflags.yml"}

// Config is the decoded config file.
type Config struct {
	Flags            []string `toml:"flags" yaml:"flags"`
	ExtraFlags       string   `toml:"extra_flags" yaml:"extra_flags"`
	SourceExtensions []string `toml:"source_extensions" yaml:"source_extensions"`
	HeaderExtensions []string `toml:"header_extensions" yaml:"header_extensions"`
	ProbeCompiler    string   `toml:"probe_compiler" yaml:"probe_compiler"`
	IgnorePrefixes   []string `toml:"ignore_prefixes" yaml:"ignore_prefixes"`
	LogLevel         string   `toml:"log_level" yaml:"log_level"`
	LogFile          string   `toml:"log_file" yaml:"log_file"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Flags:            append([]string(nil), flags.Default...),
		SourceExtensions: append([]string(nil), source.DefaultSourceExtensions...),
		HeaderExtensions: append([]string(nil), source.DefaultHeaderExtensions...),
		LogLevel:         "warn",
	}
}

// WorkingDirectory is the directory relative include paths resolve against:
// the config file's directory, or fallback when no file was loaded.
func (c Config) WorkingDirectory(fallback string) string {
	if c.Path == "" {
		return fallback
	}
	return filepath.Dir(c.Path)
}

// ExtraFlagTokens splits ExtraFlags with shell quoting rules.
func (c Config) ExtraFlagTokens() ([]string, error) {
	if strings.TrimSpace(c.ExtraFlags) == "" {
		return nil, nil
	}
	tokens, err := shlex.Split(c.ExtraFlags)
	if err != nil {
		return nil, fmt.Errorf("extra_flags: %w", err)
	}
	return tokens.Strings(), nil
}

// Load decodes the file at path. YAML is chosen by extension, TOML otherwise.
// Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".yaml", ".yml":
		f, err := os.Open(abs)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode config(%s): %w", abs, err)
		}
	default:
		md, err := toml.DecodeFile(abs, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("decode config(%s): %w", abs, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("decode config(%s): unknown keys %v", abs, undecoded)
		}
	}
	cfg.Path = abs
	return cfg, nil
}

// Locator finds the config file for a target.
type Locator struct {
	// Explicit is a path given on the command line; it must exist.
	Explicit string
	// StartDir is where the upward search begins.
	StartDir string
	Getenv   func(string) string
	Exists   func(string) bool
}

// Locate returns the config path to load, or "" when none applies.
func (l Locator) Locate() (string, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	exists := l.Exists
	if exists == nil {
		exists = fileExists
	}

	if l.Explicit != "" {
		if !exists(l.Explicit) {
			return "", fmt.Errorf("config file %s: %w", l.Explicit, os.ErrNotExist)
		}
		return l.Explicit, nil
	}
	if env := getenv(EnvConfigPath); env != "" {
		if !exists(env) {
			return "", fmt.Errorf("config file %s (from $%s): %w", env, EnvConfigPath, os.ErrNotExist)
		}
		return env, nil
	}

	if l.StartDir != "" {
		dir, err := filepath.Abs(l.StartDir)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", l.StartDir, err)
		}
		for {
			for _, name := range FileNames {
				candidate := filepath.Join(dir, name)
				if exists(candidate) {
					return candidate, nil
				}
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate := filepath.Join(xdg, "ccflags", "config.toml")
		if exists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// Resolve locates and loads the config, falling back to Default.
func Resolve(l Locator) (Config, error) {
	path, err := l.Locate()
	if err != nil {
		return Config{}, err
	}
	return LoadOrDefault(path)
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
