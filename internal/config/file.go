package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigNames are the file names [FindConfigFile] looks for in the
// working directory when --config is not given.
var DefaultConfigNames = []string{"multiencode.yaml", "multiencode.yml"}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values; a "profiles" key replaces the whole
// profile table (an explicit empty list is allowed). Unknown keys are an
// error so typos do not silently fall back to defaults.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.ConfigFile = path
	cfg.InputDir = NormalizeDirArg(cfg.InputDir)
	cfg.OutputDir = NormalizeDirArg(cfg.OutputDir)
	return nil
}

// FindConfigFile returns the first of [DefaultConfigNames] present in dir,
// or "" when none exists (non-fatal).
func FindConfigFile(dir string) string {
	for _, name := range DefaultConfigNames {
		path := filepath.Join(dir, name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path
		}
	}
	return ""
}

// SaveFile writes cfg as YAML. Used by --dump-config to produce a starting
// point for a custom profile table.
func SaveFile(cfg *Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
