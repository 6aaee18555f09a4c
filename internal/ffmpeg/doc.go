// Package ffmpeg builds encoder command lines and runs them, one external
// process per encode job.
//
// Types:
//   - Outcome: the settled result of a job (state, error, captured output,
//     exit code, timing).
//   - Executor: runs a job's argv with a closed stdin and captured
//     stdout/stderr, under an optional per-job timeout.
//   - DryRun: prints the command line instead of spawning anything.
//
// Functions:
//   - Build(encoder, job) → argv: <encoder> -i <input> <options...> <output>
//   - Diagnose(stderr) → one-line hint for common encoder failures.
//
// Execute never panics past its boundary and never returns an error: every
// failure mode (launch error, non-zero exit, signal, timeout) settles as a
// failed Outcome. A dispatched job always runs to completion or timeout,
// even if the caller's context is cancelled.
package ffmpeg
