package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig is read from the working directory when -config is not given.
const DefaultConfig = "autotype.yaml"

type Config struct {
	// Format of the binding table: text or yaml.
	Format string `yaml:"format"`
	// Trace writes the parser and checker traces to stderr.
	Trace bool `yaml:"trace"`
	// Fresh includes anonymous type variables in the binding table.
	Fresh bool `yaml:"fresh"`
	// AST prints the syntax tree before checking.
	AST bool `yaml:"ast"`
	// Dump prints the full node structure, tokens and trivia included.
	Dump bool `yaml:"dump"`
}

func defaultConfig() Config {
	return Config{Format: "text"}
}

// loadConfig reads path into a copy of the defaults. A missing file is only an
// error if it was asked for explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.Format {
	case "text", "yaml":
	default:
		errs = append(errs, fmt.Errorf("config: unknown format %q, want text or yaml", c.Format))
	}
	if c.AST && c.Format == "yaml" {
		errs = append(errs, errors.New("config: ast cannot be combined with yaml output"))
	}
	if c.Dump && c.Format == "yaml" {
		errs = append(errs, errors.New("config: dump cannot be combined with yaml output"))
	}
	return errors.Join(errs...)
}
