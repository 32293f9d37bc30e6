// Package config loads optional CLI defaults from an HCL file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/agentic-research/tree2tabular/internal/ingest"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileName is the config file looked up under DefaultDir.
const FileName = "config.hcl"

// Config holds the settings shared by every command.
type Config struct {
	Selector  string
	Overwrite bool
	Delimiter rune
	LogLevel  string
	LogFormat string
	RootName  string
	UseNames  bool
}

// hclFile mirrors the accepted attributes. Pointers tell an absent
// attribute apart from an explicit zero value.
type hclFile struct {
	Selector  *string `hcl:"selector,optional"`
	Overwrite *bool   `hcl:"overwrite,optional"`
	Delimiter *string `hcl:"delimiter,optional"`
	LogLevel  *string `hcl:"log_level,optional"`
	LogFormat *string `hcl:"log_format,optional"`
	RootName  *string `hcl:"root_name,optional"`
	UseNames  *bool   `hcl:"use_names,optional"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Selector:  ingest.DefaultSelector,
		Delimiter: ',',
		LogLevel:  "info",
		LogFormat: "text",
		RootName:  graph.RootName,
	}
}

// DefaultPath returns ~/.tree2tabular/config.hcl.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".tree2tabular", FileName), nil
}

// Load reads path on top of Default. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, graph.Configuration(graph.ErrInvalidSetting, fmt.Sprintf("failed to parse %s: %s", path, diags.Error()))
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return cfg, graph.Configuration(graph.ErrInvalidSetting, fmt.Sprintf("failed to decode %s: %s", path, diags.Error()))
	}
	if err := raw.apply(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (f *hclFile) apply(cfg *Config) error {
	if f.Selector != nil {
		cfg.Selector = *f.Selector
	}
	if f.Overwrite != nil {
		cfg.Overwrite = *f.Overwrite
	}
	if f.Delimiter != nil {
		r, err := ParseDelimiter(*f.Delimiter)
		if err != nil {
			return err
		}
		cfg.Delimiter = r
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		cfg.LogFormat = *f.LogFormat
	}
	if f.RootName != nil {
		cfg.RootName = *f.RootName
	}
	if f.UseNames != nil {
		cfg.UseNames = *f.UseNames
	}
	return nil
}

// ParseDelimiter accepts a single character, or "\t" for tab.
func ParseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, graph.Configuration(graph.ErrInvalidSetting, fmt.Sprintf("invalid delimiter %q", s))
	}
	return r, nil
}
