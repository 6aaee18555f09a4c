package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/planner"
)

// State is the terminal state of a job.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Outcome holds the settled result of a single encode job.
type Outcome struct {
	Job      planner.Job
	State    State
	Err      error // nil iff State == StateSucceeded
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process never exited normally
	TimedOut bool
	Started  time.Time
	Finished time.Time
}

// OK reports whether the job succeeded.
func (o Outcome) OK() bool { return o.State == StateSucceeded }

// Elapsed is the wall time between dispatch and settle.
func (o Outcome) Elapsed() time.Duration {
	if o.Started.IsZero() || o.Finished.IsZero() {
		return 0
	}
	return o.Finished.Sub(o.Started)
}

// Diagnosis returns a one-line hint for a failed outcome, or "".
func (o Outcome) Diagnosis() string {
	switch {
	case o.OK():
		return ""
	case o.TimedOut:
		return "encoder exceeded the per-job timeout"
	case errors.Is(o.Err, exec.ErrNotFound):
		return "encoder executable not found"
	}
	return Diagnose(o.Stderr)
}

// Failed returns a failed outcome for a job that never ran (or whose run
// could not be attempted).
func Failed(job planner.Job, err error) Outcome {
	now := time.Now()
	return Outcome{
		Job:      job,
		State:    StateFailed,
		Err:      err,
		ExitCode: -1,
		Started:  now,
		Finished: now,
	}
}

// defaultWaitDelay bounds how long Execute waits for a killed encoder's
// output pipes to close.
const defaultWaitDelay = 5 * time.Second

// Executor runs encode jobs as external processes.
type Executor struct {
	Encoder   string        // Executable name or path.
	Timeout   time.Duration // Per-job deadline; 0 = none.
	WaitDelay time.Duration // Pipe drain after kill; 0 = defaultWaitDelay.
}

// NewExecutor returns an Executor for cfg's encoder and job timeout.
func NewExecutor(cfg *config.Config) *Executor {
	return &Executor{Encoder: cfg.Encoder, Timeout: cfg.JobTimeout}
}

// Execute runs job and blocks until the process exits. Stdin is closed and
// stdout/stderr are captured. Cancelling ctx does not stop a job that has
// already started; only the per-job timeout does.
func (e *Executor) Execute(ctx context.Context, job planner.Job) (out Outcome) {
	out = Outcome{Job: job, State: StateFailed, ExitCode: -1, Started: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			out.State = StateFailed
			out.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		out.Finished = time.Now()
	}()

	args := Build(e.Encoder, job)

	runCtx := context.WithoutCancel(ctx)
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = nil
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error { return cmd.Process.Kill() }
	cmd.WaitDelay = e.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	err := cmd.Run()
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.State = StateSucceeded
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		out.TimedOut = true
		out.Err = fmt.Errorf("%w after %s", ErrTimeout, e.Timeout)
	case errors.Is(err, exec.ErrWaitDelay) && out.ExitCode == 0:
		// Exited cleanly; a leftover child held the output pipes open.
		out.State = StateSucceeded
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		out.Err = fmt.Errorf("%s exited with status %d", filepath.Base(args[0]), exitErr.ExitCode())
	case errors.As(err, &exitErr):
		out.Err = fmt.Errorf("%s %s", filepath.Base(args[0]), exitErr.String())
	default:
		out.Err = fmt.Errorf("launch %s: %w", args[0], err)
	}
	return out
}

// Printer receives dry-run command lines. *logging.Logger satisfies it.
type Printer interface {
	Info(format string, args ...interface{})
}

// DryRun prints each job's command line and reports success without
// spawning a process.
type DryRun struct {
	Encoder string
	Out     Printer

	mu sync.Mutex
}

// Execute prints the command for job and returns a succeeded outcome.
func (d *DryRun) Execute(_ context.Context, job planner.Job) Outcome {
	started := time.Now()
	line := CommandLine(Build(d.Encoder, job))
	d.mu.Lock()
	d.Out.Info("[DRY RUN] %s", line)
	d.mu.Unlock()
	return Outcome{
		Job:      job,
		State:    StateSucceeded,
		Started:  started,
		Finished: time.Now(),
	}
}
