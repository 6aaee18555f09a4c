// Command multiencode is the entrypoint for the batch transcoding CLI.
// It parses flags and the optional config file, validates them, and either
// runs the system check (--check), prints the effective config
// (--dump-config), or encodes every input file with every profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/multiencode/internal/check"
	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/display"
	"github.com/backmassage/multiencode/internal/ffmpeg"
	"github.com/backmassage/multiencode/internal/logging"
	"github.com/backmassage/multiencode/internal/pipeline"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// Exit statuses.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// 1. Load config from defaults, the config file, and CLI flags; exit on parse or validation error.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version, args); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, config.ErrVersion) {
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "multiencode: %v\n", err)
		return exitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "multiencode: %v\n", err)
		return exitFailure
	}

	if cfg.DumpOnly {
		if err := config.SaveFile(&cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "multiencode: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "multiencode: %v\n", err)
		return exitFailure
	}
	defer log.Close()

	// SIGINT/SIGTERM stop dispatch; running encoder processes finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})
	defer close(done) // runs before stop, so the watcher exits quietly
	go awaitSignal(ctx, done, func() {
		// Restore default handling so a second signal terminates immediately.
		stop()
		log.Warn("Interrupted: no new jobs will start; waiting for running encoders (signal again to abort)")
	})

	display.PrintBanner(os.Stdout)

	// 2. If user asked for system check, run it and exit.
	if cfg.CheckOnly {
		if !check.RunCheck(ctx, &cfg, log) {
			return exitFailure
		}
		return exitOK
	}

	// 3. Resolve and validate paths: input must exist, output must not be inside input.
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return exitFailure
	}
	outputAbs, err := absPathAllowMissing(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return exitFailure
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return exitFailure
	}

	log.Info("=== multiencode v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.ConfigFile != "" {
		log.Info("Config: %s", cfg.ConfigFile)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN")
	}
	log.Blank()

	// 4. A missing encoder is not fatal here: every job then settles as a
	// launch failure and the batch reports it.
	var runner pipeline.Runner = ffmpeg.NewExecutor(&cfg)
	if cfg.DryRun {
		runner = &ffmpeg.DryRun{Encoder: cfg.Encoder, Out: log}
	} else {
		if err := check.CheckDeps(&cfg); err != nil {
			log.Warn("%v; affected jobs will fail (run --check for details)", err)
		}
		if cfg.Verify {
			runner = pipeline.NewVerifyingRunner(runner, cfg.Prober)
		}
	}
	check.ResolveWorkers(ctx, &cfg)

	// 5. Run the batch.
	res, err := pipeline.Run(ctx, &cfg, log, runner)
	if err != nil {
		log.Error("%v", err)
		return exitFailure
	}
	switch {
	case res.Interrupted:
		return exitInterrupted
	case !res.OK():
		return exitFailure
	}
	return exitOK
}

// absPath returns the absolute path with symlinks resolved, for comparing input vs output hierarchy.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// absPathAllowMissing is absPath for a directory that may not exist yet:
// the deepest existing ancestor is resolved and the rest appended.
func absPathAllowMissing(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rest := ""
	for dir := abs; ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(dir), rest)
	}
}

// awaitSignal calls onSignal once when ctx is cancelled by a signal. It
// returns without calling it once done is closed, including when done
// closes first and ctx is cancelled afterwards by the deferred stop.
func awaitSignal(ctx context.Context, done <-chan struct{}, onSignal func()) {
	select {
	case <-done:
		return
	case <-ctx.Done():
		select {
		case <-done:
			return
		default:
		}
		onSignal()
	}
}
