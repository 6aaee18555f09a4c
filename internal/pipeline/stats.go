package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/ffmpeg"
	"github.com/backmassage/multiencode/internal/planner"
)

// FileResult is one input file and the outcomes of its jobs, in profile
// order.
type FileResult struct {
	Input    planner.InputFile
	Outcomes []ffmpeg.Outcome
}

// OK reports whether every job of the file succeeded. A file with no jobs
// (empty profile table) is OK.
func (r FileResult) OK() bool {
	for _, o := range r.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that did not succeed.
func (r FileResult) Failed() []ffmpeg.Outcome {
	var failed []ffmpeg.Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// BatchResult aggregates a whole run.
type BatchResult struct {
	RunID  uuid.UUID
	Policy config.Policy
	Files  []FileResult

	Jobs        int
	Succeeded   int
	Failed      int
	Interrupted bool // The context was cancelled before every job was dispatched.

	InputBytes  int64 // Total size of discovered inputs.
	OutputBytes int64 // Total size of outputs written by succeeded jobs.

	Started  time.Time
	Finished time.Time
}

// OK reports whether every job of every file succeeded. An empty batch is OK.
func (b BatchResult) OK() bool {
	for _, f := range b.Files {
		if !f.OK() {
			return false
		}
	}
	return true
}

// FailedFiles counts files with at least one failed job.
func (b BatchResult) FailedFiles() int {
	n := 0
	for _, f := range b.Files {
		if !f.OK() {
			n++
		}
	}
	return n
}

// Elapsed is the wall time of the dispatch phase.
func (b BatchResult) Elapsed() time.Duration {
	return b.Finished.Sub(b.Started)
}

func (b *BatchResult) tally() {
	b.Jobs, b.Succeeded, b.Failed = 0, 0, 0
	for _, f := range b.Files {
		for _, o := range f.Outcomes {
			b.Jobs++
			if o.OK() {
				b.Succeeded++
			} else {
				b.Failed++
			}
		}
	}
}
