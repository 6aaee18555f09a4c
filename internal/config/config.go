// Package config holds runtime configuration: defaults, the optional YAML
// config file, CLI flag parsing, and validation. Defaults give three output
// profiles, .mp4/.mov inputs, and all jobs dispatched at once.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Policy selects how encode jobs are scheduled.
type Policy string

const (
	PolicyFullyParallel   Policy = "fully-parallel"    // Every job of every file at once (default).
	PolicyParallelPerFile Policy = "parallel-per-file" // Files in order, a file's jobs together.
	PolicySequential      Policy = "sequential"        // One job at a time.
	PolicyBounded         Policy = "bounded"           // Fixed worker pool across all jobs.
)

// Policies lists every recognized scheduling policy, in help-text order.
var Policies = []Policy{PolicyFullyParallel, PolicyParallelPerFile, PolicySequential, PolicyBounded}

// CollisionMode decides what happens when two jobs resolve to one output path.
type CollisionMode string

const (
	CollisionFail   CollisionMode = "fail"   // Abort before any job runs (default).
	CollisionRename CollisionMode = "rename" // Later claimant gets a " - dupN" suffix.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it. Nothing here is a
// package-level variable; main owns the single instance.
type Config struct {
	// Paths (set from positional args or the config file).
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	// Encoder and output table.
	Encoder    string    `yaml:"encoder"`    // Default: "ffmpeg".
	Extensions []string  `yaml:"extensions"` // Case-sensitive allow-list. Default: .mp4, .mov.
	Profiles   []Profile `yaml:"profiles"`   // Default: [DefaultProfiles].

	// Scheduling.
	Policy     Policy        `yaml:"policy"`      // Default: "fully-parallel".
	Workers    int           `yaml:"workers"`     // Bounded policy only; 0 = physical cores.
	JobTimeout time.Duration `yaml:"job_timeout"` // 0 = no deadline.
	Collision  CollisionMode `yaml:"on_collision"`

	// Behavior flags.
	Clean  bool `yaml:"clean"` // Remove the output directory before the run.
	DryRun bool `yaml:"dry_run"`

	// Output verification with ffprobe after each successful job.
	Verify bool   `yaml:"verify"`
	Prober string `yaml:"prober"` // Default: "ffprobe".

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`
	LogFile   string    `yaml:"log_file"`
	CheckOnly bool      `yaml:"-"` // Run --check diagnostics and exit.
	DumpOnly  bool      `yaml:"-"` // Print the effective config as YAML and exit.

	// ConfigFile is the YAML file the settings were loaded from, if any.
	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns a Config with the built-in profile table and the
// fully-parallel policy.
func DefaultConfig() Config {
	return Config{
		Encoder:    "ffmpeg",
		Prober:     "ffprobe",
		Extensions: []string{".mp4", ".mov"},
		Profiles:   DefaultProfiles(),
		Policy:     PolicyFullyParallel,
		Workers:    0,
		JobTimeout: 0,
		Collision:  CollisionFail,
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields, the profile table, and numeric limits. Outside
// CheckOnly and DumpOnly mode it also requires both directory paths.
func (c *Config) Validate() error {
	if !validPolicy(c.Policy) {
		return fmt.Errorf("invalid policy %q (use %s)", c.Policy, policyList())
	}

	switch c.Collision {
	case CollisionFail, CollisionRename:
		// valid
	default:
		return errors.New("invalid collision mode (use 'fail' or 'rename')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if strings.TrimSpace(c.Encoder) == "" {
		return errors.New("encoder path must not be empty")
	}
	if c.Verify && strings.TrimSpace(c.Prober) == "" {
		return errors.New("prober path must not be empty when verify is enabled")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative (use 0 for auto-detect)")
	}
	if c.JobTimeout < 0 {
		return errors.New("job timeout cannot be negative (use 0 for none)")
	}

	exts, err := normalizeExtensions(c.Extensions)
	if err != nil {
		return err
	}
	c.Extensions = exts

	if err := ValidateProfiles(c.Profiles); err != nil {
		return err
	}

	if c.CheckOnly || c.DumpOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// normalizeExtensions trims entries and adds a missing leading dot. Case is
// preserved: matching against file names is case-sensitive.
func normalizeExtensions(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.TrimSpace(e)
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, errors.New("extension allow-list must not be empty")
	}
	return out, nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so a later run never discovers its own
// output. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}

func validPolicy(p Policy) bool {
	for _, known := range Policies {
		if p == known {
			return true
		}
	}
	return false
}

func policyList() string {
	names := make([]string, len(Policies))
	for i, p := range Policies {
		names[i] = "'" + string(p) + "'"
	}
	return strings.Join(names, ", ")
}
