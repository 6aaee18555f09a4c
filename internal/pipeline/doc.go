// Package pipeline runs a batch: discover input files, expand them into
// encode jobs, dispatch the jobs under a concurrency policy, and report
// per-job, per-file, and whole-batch results.
//
// Types:
//   - Runner: executes one job (ffmpeg.Executor, ffmpeg.DryRun, or a test fake)
//   - Scheduler: dispatches planned jobs under a config.Policy
//   - Reporter: console output for a run
//   - FileResult, BatchResult: aggregated outcomes
//
// Functions:
//   - Run(ctx, cfg, log, runner) → (BatchResult, error)
//     discover → plan (collision check) → prepare output dir → dispatch → summary
//   - Discover(inputDir, extensions) → []planner.InputFile
//     Flat listing, case-sensitive extension filter, sorted by name.
//
// A job failure never stops its siblings. Cancelling the context stops new
// dispatch only; running jobs finish and undispatched jobs settle as failed
// with ErrInterrupted.
package pipeline
