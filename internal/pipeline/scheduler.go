package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/ffmpeg"
	"github.com/backmassage/multiencode/internal/planner"
)

// ErrInterrupted marks jobs that were never dispatched because the run was
// cancelled.
var ErrInterrupted = errors.New("interrupted before dispatch")

// Runner executes one encode job and always returns a settled outcome.
type Runner interface {
	Execute(ctx context.Context, job planner.Job) ffmpeg.Outcome
}

// Scheduler dispatches planned jobs to a Runner under a concurrency policy.
//
//	fully-parallel     every job of every file at once
//	parallel-per-file  files in order; a file's jobs at once
//	sequential         one job at a time, in batch order
//	bounded            every job through a pool of Workers
type Scheduler struct {
	Policy  config.Policy
	Workers int // Bounded pool size; <= 0 falls back to runtime.NumCPU.
	Runner  Runner
	Report  *Reporter
}

// Run dispatches every job in batch and blocks until all of them settle.
// Outcomes are stored per file in profile order regardless of completion
// order. Cancelling ctx stops further dispatch; jobs that never started
// settle as failed with ErrInterrupted.
func (s *Scheduler) Run(ctx context.Context, batch []planner.FileJobs) BatchResult {
	res := BatchResult{Policy: s.Policy, Started: time.Now()}
	res.Files = make([]FileResult, len(batch))
	for i, fj := range batch {
		res.Files[i] = FileResult{Input: fj.Input, Outcomes: make([]ffmpeg.Outcome, len(fj.Jobs))}
	}

	switch s.Policy {
	case config.PolicySequential, config.PolicyParallelPerFile:
		limit := -1
		if s.Policy == config.PolicySequential {
			limit = 1
		}
		for i := range batch {
			s.dispatch(ctx, batch[i:i+1], res.Files[i:i+1], limit)
		}
	case config.PolicyBounded:
		s.dispatch(ctx, batch, res.Files, s.poolSize())
	default:
		s.dispatch(ctx, batch, res.Files, -1)
	}

	res.Finished = time.Now()
	res.Interrupted = ctx.Err() != nil && hasInterrupted(res.Files)
	res.tally()
	return res
}

// dispatch runs every job of batch with at most limit in flight (-1 means
// unlimited) and waits for all of them. results[i] receives batch[i]'s
// outcomes at fixed indices, so no lock is held while processes run.
func (s *Scheduler) dispatch(ctx context.Context, batch []planner.FileJobs, results []FileResult, limit int) {
	var g errgroup.Group
	g.SetLimit(limit)

	for fi := range batch {
		fr := &results[fi]
		remaining := new(atomic.Int32)
		remaining.Store(int32(len(batch[fi].Jobs)))
		if len(batch[fi].Jobs) == 0 {
			s.Report.FileDone(*fr)
			continue
		}
		settle := func(ji int, out ffmpeg.Outcome) {
			fr.Outcomes[ji] = out
			s.Report.JobFinished(out)
			if remaining.Add(-1) == 0 {
				s.Report.FileDone(*fr)
			}
		}

		for ji, job := range batch[fi].Jobs {
			if ctx.Err() != nil {
				settle(ji, ffmpeg.Failed(job, ErrInterrupted))
				continue
			}
			g.Go(func() error {
				// A slot may free up after cancellation; don't start new work then.
				if ctx.Err() != nil {
					settle(ji, ffmpeg.Failed(job, ErrInterrupted))
					return nil
				}
				s.Report.JobStarted(job)
				settle(ji, s.Runner.Execute(ctx, job))
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (s *Scheduler) poolSize() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

func hasInterrupted(files []FileResult) bool {
	for _, f := range files {
		for _, o := range f.Outcomes {
			if errors.Is(o.Err, ErrInterrupted) {
				return true
			}
		}
	}
	return false
}
