package config

// This file implements CLI flag parsing and help text.
// The config file (if any) is applied before flags are defined so that flag
// defaults are the file's values and anything given on the command line wins.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrVersion is returned by [ParseFlags] after --version has been printed.
// Callers treat it, like [flag.ErrHelp], as a successful early exit.
var ErrVersion = errors.New("version requested")

// ParseFlags applies the config file and CLI flags in args to cfg.
// Precedence: flags > config file > defaults. On --help it prints usage and
// returns flag.ErrHelp; on --version it returns ErrVersion.
func ParseFlags(cfg *Config, version string, args []string) error {
	path := scanConfigPath(args)
	if path == "" {
		path = FindConfigFile(".")
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet("multiencode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Override flags captured separately and applied after Parse, so defaults
	// hold unless the user passes the flag.
	var o overrideFlags

	defineEncodingFlags(fs, cfg, &o)
	defineSchedulingFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &o)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stderr, version)
		}
		return err
	}

	if o.showHelp {
		printUsage(os.Stderr, version)
		return flag.ErrHelp
	}
	if o.showVersion {
		fmt.Fprintln(os.Stdout, "multiencode v"+version)
		return ErrVersion
	}

	applyOverrideFlags(cfg, &o)
	return parsePositionalArgs(fs, cfg)
}

// overrideFlags holds values applied to cfg after Parse.
type overrideFlags struct {
	extensions  string
	forceColor  bool
	noColor     bool
	configPath  string
	showVersion bool
	showHelp    bool
}

// scanConfigPath finds --config/-C ahead of the real parse, since the file
// must be loaded before flag defaults are bound.
func scanConfigPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || (name != "config" && name != "C") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// defineEncodingFlags registers --encoder, --ext, -C/--config.
func defineEncodingFlags(fs *flag.FlagSet, cfg *Config, o *overrideFlags) {
	fs.StringVar(&cfg.Encoder, "encoder", cfg.Encoder, "Encoder executable")
	fs.StringVar(&cfg.Encoder, "e", cfg.Encoder, "Same as --encoder")
	fs.StringVar(&o.extensions, "ext", "", "Comma-separated input extension allow-list")
	fs.StringVar(&o.configPath, "config", "", "YAML config file (profiles and settings)")
	fs.StringVar(&o.configPath, "C", "", "Same as --config")
}

// defineSchedulingFlags registers -P/--policy, -w/--workers, -t/--timeout, --on-collision.
func defineSchedulingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&policyValue{&cfg.Policy}, "policy", "Scheduling policy")
	fs.Var(&policyValue{&cfg.Policy}, "P", "Same as --policy")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Worker pool size for --policy bounded (0 = cores)")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "Same as --workers")
	fs.DurationVar(&cfg.JobTimeout, "timeout", cfg.JobTimeout, "Per-job deadline (0 = none)")
	fs.DurationVar(&cfg.JobTimeout, "t", cfg.JobTimeout, "Same as --timeout")
	fs.Var(&collisionValue{&cfg.Collision}, "on-collision", "Output path collision handling: fail | rename")
}

// defineBehaviorFlags registers --clean, -d/--dry-run, --dump-config, --verify, --prober.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Clean, "clean", cfg.Clean, "Remove the output directory before encoding")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print encoder commands; run nothing")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
	fs.BoolVar(&cfg.DumpOnly, "dump-config", false, "Print the effective config as YAML and exit")
	fs.BoolVar(&cfg.Verify, "verify", cfg.Verify, "Probe each output and check codec and scale")
	fs.StringVar(&cfg.Prober, "prober", cfg.Prober, "ffprobe executable used by --verify")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log, --version, --help.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, o *overrideFlags) {
	fs.BoolVar(&o.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&o.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append structured logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&o.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&o.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&o.showHelp, "h", false, "Same as --help")
}

// applyOverrideFlags copies captured override values into cfg.
func applyOverrideFlags(cfg *Config, o *overrideFlags) {
	if o.extensions != "" {
		cfg.Extensions = strings.Split(o.extensions, ",")
	}
	if o.noColor {
		cfg.ColorMode = ColorNever
	} else if o.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDir and OutputDir from the two positional
// args. Zero positional args are accepted when the config file supplied the
// directories or in CheckOnly/DumpOnly mode; Validate reports what is missing.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch len(args) {
	case 0:
		return nil
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
		return nil
	default:
		if cfg.CheckOnly || cfg.DumpOnly {
			return nil
		}
		return fmt.Errorf("need exactly input_dir and output_dir")
	}
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "multiencode v" + version + " - batch multi-profile media encoder"},
		{"", ""},
		{"  multiencode [OPTIONS] <input_dir> <output_dir>", ""},
		{"", ""},
		{"Encoding", ""},
		{"  -e, --encoder <path>", "Encoder executable (default: ffmpeg)"},
		{"  --ext <list>", "Input extensions, case-sensitive (default: .mp4,.mov)"},
		{"  -C, --config <file>", "YAML config with profile table (default: ./multiencode.yaml)"},
		{"", ""},
		{"Scheduling", ""},
		{"  -P, --policy <name>", "fully-parallel | parallel-per-file | sequential | bounded"},
		{"  -w, --workers <n>", "Pool size for bounded policy (default: physical cores)"},
		{"  -t, --timeout <dur>", "Per-job deadline, e.g. 30m (default: none)"},
		{"  --on-collision <mode>", "fail | rename when two jobs share an output (default: fail)"},
		{"", ""},
		{"Output & behavior", ""},
		{"  --clean", "Remove the output directory first"},
		{"  -d, --dry-run", "Print encoder commands; run nothing"},
		{"  --dump-config", "Print the effective config as YAML and exit"},
		{"  --verify", "Probe each output; fail jobs whose codec or scale is wrong"},
		{"  --prober <path>", "ffprobe executable for --verify (default: ffprobe)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Per-job progress lines"},
		{"  -l, --log <path>", "Append structured (JSON) logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "System diagnostics (encoder, codecs, host)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so enum types (Policy, CollisionMode) work with flag.Var.

type policyValue struct{ p *Policy }

func (v *policyValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *policyValue) Set(s string) error {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	if !validPolicy(p) {
		return fmt.Errorf("invalid policy %q (use %s)", s, policyList())
	}
	*v.p = p
	return nil
}

type collisionValue struct{ p *CollisionMode }

func (v *collisionValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *collisionValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "fail":
		*v.p = CollisionFail
	case "rename":
		*v.p = CollisionRename
	default:
		return fmt.Errorf("invalid collision mode %q (use 'fail' or 'rename')", s)
	}
	return nil
}

// durationString renders d for help and summaries; zero reads as "none".
func durationString(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}

// TimeoutLabel is the human form of JobTimeout.
func (c *Config) TimeoutLabel() string { return durationString(c.JobTimeout) }
