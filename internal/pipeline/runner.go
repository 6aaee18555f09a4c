package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/display"
	"github.com/backmassage/multiencode/internal/logging"
	"github.com/backmassage/multiencode/internal/planner"
)

// Run is the top-level batch entry point: discover input files, plan one
// job per (file, profile), prepare the output directory, dispatch under
// cfg.Policy, and log the summary.
//
// The returned error covers only fatal pre-dispatch problems (discovery,
// output path collision, output directory). Job failures are reported in
// the BatchResult; BatchResult.OK decides the exit status.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, runner Runner) (BatchResult, error) {
	runID := uuid.New()
	log = log.With("run_id", runID.String())

	files, err := Discover(cfg.InputDir, cfg.Extensions)
	if err != nil {
		return BatchResult{RunID: runID, Policy: cfg.Policy}, err
	}

	batch, err := planner.Plan(files, cfg.Profiles, cfg.OutputDir, cfg.Collision)
	if err != nil {
		return BatchResult{RunID: runID, Policy: cfg.Policy}, err
	}

	report := NewReporter(log, nil, cfg.Verbose)
	report.Header(runID, cfg, cfg.Workers, batch)

	if len(files) == 0 {
		log.Warn("No input files matching %v in %s", cfg.Extensions, cfg.InputDir)
	}

	if err := prepareOutput(cfg, log); err != nil {
		return BatchResult{RunID: runID, Policy: cfg.Policy}, err
	}
	if !cfg.Clean {
		warnExisting(batch, cfg, log)
	}

	if cfg.DryRun || cfg.Verbose {
		report.Plan(batch)
	}

	sched := &Scheduler{Policy: cfg.Policy, Workers: cfg.Workers, Runner: runner, Report: report}
	res := sched.Run(ctx, batch)
	res.RunID = runID
	res.InputBytes, res.OutputBytes = sizes(res.Files)

	report.Summary(res)
	return res, nil
}

// prepareOutput removes the output directory when cfg.Clean is set, then
// creates it. Dry runs only log what would happen.
func prepareOutput(cfg *config.Config, log *logging.Logger) error {
	if cfg.DryRun {
		if cfg.Clean {
			log.Info("[DRY RUN] Would remove %s", cfg.OutputDir)
		}
		return nil
	}
	if cfg.Clean {
		log.Debug(cfg.Verbose, "Removing %s", cfg.OutputDir)
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// warnExisting logs the planned outputs that are already on disk. The
// encoder does not overwrite, so each of those jobs will fail.
func warnExisting(batch []planner.FileJobs, cfg *config.Config, log *logging.Logger) {
	var existing []string
	for _, fj := range batch {
		for _, j := range fj.Jobs {
			if _, err := os.Lstat(j.OutputPath); err == nil {
				existing = append(existing, filepath.Base(j.OutputPath))
			}
		}
	}
	if len(existing) == 0 {
		return
	}
	log.Warn("%s of %d already exist in %s and will not be overwritten (use --clean or remove them)",
		display.Plural(len(existing), "output"), planner.Count(batch), cfg.OutputDir)
	for _, name := range existing {
		log.Debug(cfg.Verbose, "  exists: %s", name)
	}
}

// sizes totals input file sizes and the sizes of outputs that succeeded.
// Files that cannot be stat'ed count as zero.
func sizes(files []FileResult) (in, out int64) {
	for _, f := range files {
		if fi, err := os.Stat(f.Input.Path); err == nil {
			in += fi.Size()
		}
		for _, o := range f.Outcomes {
			if !o.OK() {
				continue
			}
			if fi, err := os.Stat(o.Job.OutputPath); err == nil {
				out += fi.Size()
			}
		}
	}
	return in, out
}
