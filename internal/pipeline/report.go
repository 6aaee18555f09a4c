package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/display"
	"github.com/backmassage/multiencode/internal/ffmpeg"
	"github.com/backmassage/multiencode/internal/logging"
	"github.com/backmassage/multiencode/internal/planner"
)

// stderrTail is how many trailing encoder stderr lines a failed job reports.
const stderrTail = 10

// Reporter writes the console view of a run: a header, optional per-job
// lines, one block per completed file, and a summary line. Methods are safe
// to call from job goroutines. A nil *Reporter discards everything.
type Reporter struct {
	log     *logging.Logger
	out     io.Writer // plan table
	verbose bool

	mu    sync.Mutex // keeps a file's multi-line block together
	total int
	done  atomic.Int32
}

// NewReporter returns a Reporter logging through log. The plan table goes to
// out (os.Stdout when nil).
func NewReporter(log *logging.Logger, out io.Writer, verbose bool) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{log: log, out: out, verbose: verbose}
}

// Header logs the run id, policy, profile table, and job count, and resets
// the job progress counter.
func (r *Reporter) Header(runID uuid.UUID, cfg *config.Config, workers int, batch []planner.FileJobs) {
	if r == nil {
		return
	}
	r.total = planner.Count(batch)
	r.done.Store(0)

	r.log.Info("Run %s", runID)
	r.log.Info("Found %s in %s", display.Plural(len(batch), "file"), cfg.InputDir)
	policy := string(cfg.Policy)
	if cfg.Policy == config.PolicyBounded {
		policy = fmt.Sprintf("%s (%d workers)", policy, workers)
	}
	r.log.Info("Policy: %s", policy)

	labels := make([]string, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		labels[i] = p.Label()
	}
	if len(labels) == 0 {
		r.log.Warn("Profiles: none configured, every file yields zero jobs")
	} else {
		r.log.Info("Profiles: %s", strings.Join(labels, ", "))
	}
	r.log.Info("Jobs: %d, timeout: %s", r.total, cfg.TimeoutLabel())
	r.log.Info("Output: %s", cfg.OutputDir)
	r.log.Blank()
}

// Plan prints a table of every planned job: sequence, input, profile, and
// output file.
func (r *Reporter) Plan(batch []planner.FileJobs) {
	if r == nil || planner.Count(batch) == 0 {
		return
	}
	seqW, inW, profW := len("#"), len("Input"), len("Profile")
	for _, fj := range batch {
		for _, j := range fj.Jobs {
			seqW = max(seqW, len(fmt.Sprint(j.Seq)))
			inW = max(inW, len(j.Input.Name))
			profW = max(profW, len(j.Profile.Name))
		}
	}
	inW = min(inW, 50)

	header := fmt.Sprintf("  %*s  %-*s  %-*s  %s", seqW, "#", inW, "Input", profW, "Profile", "Output")
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, header)
	fmt.Fprintln(r.out, "  "+strings.Repeat("─", len(header)+10))
	for _, fj := range batch {
		for _, j := range fj.Jobs {
			name := j.Input.Name
			if len(name) > inW {
				name = name[:inW-1] + "…"
			}
			fmt.Fprintf(r.out, "  %*d  %-*s  %-*s  %s\n",
				seqW, j.Seq, inW, name, profW, j.Profile.Name, filepath.Base(j.OutputPath))
		}
	}
	fmt.Fprintln(r.out)
}

// JobStarted logs a job's dispatch in verbose mode. File-sink entries for a
// job carry its id as job_id.
func (r *Reporter) JobStarted(job planner.Job) {
	if r == nil {
		return
	}
	r.log.With("job_id", job.ID.String()).Debug(r.verbose, "start  #%d %s -> %s", job.Seq, job.Label(), filepath.Base(job.OutputPath))
}

// JobFinished advances the progress counter and logs the outcome in verbose
// mode.
func (r *Reporter) JobFinished(out ffmpeg.Outcome) {
	if r == nil {
		return
	}
	n := r.done.Add(1)
	log := r.log.With("job_id", out.Job.ID.String())
	if out.OK() {
		log.Debug(r.verbose, "[%d/%d] done   #%d %s in %s",
			n, r.total, out.Job.Seq, out.Job.Label(), display.FormatElapsed(out.Elapsed()))
		return
	}
	log.Debug(r.verbose, "[%d/%d] failed #%d %s: %v", n, r.total, out.Job.Seq, out.Job.Label(), out.Err)
}

// FileDone reports a file once every one of its jobs has settled: one
// success line, or an error block naming each failed profile with its
// error, a diagnosis when one is known, and the last encoder stderr lines.
func (r *Reporter) FileDone(fr FileResult) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(fr.Outcomes)
	if fr.OK() {
		if n == 0 {
			r.log.Info("%s: no profiles to encode", fr.Input.Name)
			return
		}
		r.log.Success("%s: %s encoded", fr.Input.Name, display.Plural(n, "profile"))
		return
	}

	failed := fr.Failed()
	r.log.Error("%s: %d of %d profiles failed", fr.Input.Name, len(failed), n)
	for _, o := range failed {
		log := r.log.With("job_id", o.Job.ID.String())
		log.Error("  %s: %v", o.Job.Profile.Label(), o.Err)
		if hint := o.Diagnosis(); hint != "" {
			log.Error("    hint: %s", hint)
		}
		for _, line := range ffmpeg.TailLines(o.Stderr, stderrTail) {
			log.Error("    | %s", line)
		}
	}
}

// Summary logs the final one-line result of the batch.
func (r *Reporter) Summary(b BatchResult) {
	if r == nil {
		return
	}
	r.log.Blank()
	line := fmt.Sprintf("%s, %s: %d succeeded, %d failed in %s",
		display.Plural(len(b.Files), "file"), display.Plural(b.Jobs, "job"),
		b.Succeeded, b.Failed, display.FormatElapsed(b.Elapsed()))
	if b.OutputBytes > 0 {
		line += fmt.Sprintf(" (%s in, %s out)", display.FormatBytes(b.InputBytes), display.FormatBytes(b.OutputBytes))
	}

	switch {
	case b.Interrupted:
		r.log.Warn("Interrupted: %s", line)
	case b.OK():
		r.log.Success("Done: %s", line)
	default:
		r.log.Error("Done with failures: %s", line)
	}
}
