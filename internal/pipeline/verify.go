package pipeline

import (
	"context"
	"fmt"

	"github.com/backmassage/multiencode/internal/ffmpeg"
	"github.com/backmassage/multiencode/internal/planner"
	"github.com/backmassage/multiencode/internal/probe"
)

// ProbeFunc inspects an output file. probe.Probe bound to an ffprobe path
// satisfies it.
type ProbeFunc func(ctx context.Context, path string) (*probe.Result, error)

// VerifyingRunner wraps a Runner and probes every successful output. An
// output that cannot be probed or does not match its profile turns the
// outcome into a failure wrapping probe.ErrVerify; the file is left in
// place for inspection.
type VerifyingRunner struct {
	Next  Runner
	Probe ProbeFunc
}

// NewVerifyingRunner wraps next with ffprobe verification using prober.
func NewVerifyingRunner(next Runner, prober string) *VerifyingRunner {
	return &VerifyingRunner{
		Next: next,
		Probe: func(ctx context.Context, path string) (*probe.Result, error) {
			return probe.Probe(ctx, prober, path)
		},
	}
}

// Execute runs the wrapped job, then verifies its output.
func (v *VerifyingRunner) Execute(ctx context.Context, job planner.Job) ffmpeg.Outcome {
	out := v.Next.Execute(ctx, job)
	if !out.OK() {
		return out
	}

	res, err := v.Probe(context.WithoutCancel(ctx), job.OutputPath)
	if err == nil {
		err = probe.Verify(res, job.Profile)
	} else {
		err = fmt.Errorf("%w: %v", probe.ErrVerify, err)
	}
	if err != nil {
		out.State = ffmpeg.StateFailed
		out.Err = err
	}
	return out
}
