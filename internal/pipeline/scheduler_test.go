package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/ffmpeg"
	"github.com/backmassage/multiencode/internal/logging"
	"github.com/backmassage/multiencode/internal/planner"
	"github.com/backmassage/multiencode/internal/term"
)

// fakeRunner records dispatch order and concurrency. Jobs whose output base
// name is in fail settle as failed.
type fakeRunner struct {
	delay   time.Duration
	fail    map[string]bool
	onStart func(planner.Job)

	mu      sync.Mutex
	started []string
	events  []string // "start:<out>" / "end:<out>"

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeRunner) Execute(_ context.Context, job planner.Job) ffmpeg.Outcome {
	name := filepath.Base(job.OutputPath)
	n := f.active.Add(1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	f.mu.Lock()
	f.started = append(f.started, name)
	f.events = append(f.events, "start:"+name)
	f.mu.Unlock()

	if f.onStart != nil {
		f.onStart(job)
	}
	started := time.Now()
	time.Sleep(f.delay)

	f.mu.Lock()
	f.events = append(f.events, "end:"+name)
	f.mu.Unlock()
	f.active.Add(-1)

	if f.fail[name] {
		out := ffmpeg.Failed(job, errors.New("ffmpeg exited with status 1"))
		out.Stderr = "Unknown encoder 'libvpx-vp9'\n"
		out.ExitCode = 1
		return out
	}
	return ffmpeg.Outcome{Job: job, State: ffmpeg.StateSucceeded, Started: started, Finished: time.Now()}
}

func (f *fakeRunner) startOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...)
}

func testProfiles() []config.Profile {
	return []config.Profile{
		{Name: "h264", Extension: ".mp4", Suffix: "-h264", Options: []string{"-c:v", "libx264"}},
		{Name: "vp9", Extension: ".webm", Suffix: "-vp9", Options: []string{"-c:v", "libvpx-vp9"}},
	}
}

func testBatch(t *testing.T, profiles []config.Profile, inputs ...string) []planner.FileJobs {
	t.Helper()
	files := make([]planner.InputFile, len(inputs))
	for i, in := range inputs {
		files[i] = planner.NewInputFile(filepath.Join("/in", in))
	}
	batch, err := planner.Plan(files, profiles, "/out", config.CollisionFail)
	require.NoError(t, err)
	return batch
}

func testReporter(buf *bytes.Buffer) *Reporter {
	term.Configure(config.ColorNever)
	return NewReporter(logging.New(buf, buf), buf, true)
}

func TestScheduler_TwoProfilesOneFile(t *testing.T) {
	for _, policy := range config.Policies {
		t.Run(string(policy), func(t *testing.T) {
			r := &fakeRunner{delay: 20 * time.Millisecond}
			var buf bytes.Buffer
			s := &Scheduler{Policy: policy, Workers: 2, Runner: r, Report: testReporter(&buf)}

			res := s.Run(context.Background(), testBatch(t, testProfiles(), "clip.mp4"))

			require.Len(t, res.Files, 1)
			fr := res.Files[0]
			require.Len(t, fr.Outcomes, 2)
			assert.Equal(t, filepath.Join("/out", "clip-h264.mp4"), fr.Outcomes[0].Job.OutputPath)
			assert.Equal(t, filepath.Join("/out", "clip-vp9.webm"), fr.Outcomes[1].Job.OutputPath)
			assert.True(t, fr.OK())
			assert.True(t, res.OK())
			assert.Equal(t, 2, res.Jobs)
			assert.Equal(t, 2, res.Succeeded)
			assert.Equal(t, 0, res.Failed)
			assert.False(t, res.Interrupted)
			assert.Contains(t, buf.String(), "clip.mp4: 2 profiles encoded")
		})
	}
}

func TestScheduler_EmptyBatch(t *testing.T) {
	r := &fakeRunner{}
	s := &Scheduler{Policy: config.PolicyFullyParallel, Runner: r}
	res := s.Run(context.Background(), nil)

	assert.True(t, res.OK())
	assert.Empty(t, res.Files)
	assert.Equal(t, 0, res.Jobs)
	assert.Empty(t, r.startOrder())
}

func TestScheduler_EmptyProfileTable(t *testing.T) {
	r := &fakeRunner{}
	var buf bytes.Buffer
	s := &Scheduler{Policy: config.PolicySequential, Runner: r, Report: testReporter(&buf)}
	res := s.Run(context.Background(), testBatch(t, nil, "a.mp4", "b.mp4"))

	require.Len(t, res.Files, 2)
	assert.True(t, res.OK())
	assert.Equal(t, 0, res.Jobs)
	assert.Empty(t, r.startOrder())
	assert.Contains(t, buf.String(), "a.mp4: no profiles to encode")
}

func TestScheduler_FailureIsIsolated(t *testing.T) {
	for _, policy := range config.Policies {
		t.Run(string(policy), func(t *testing.T) {
			r := &fakeRunner{fail: map[string]bool{"b-vp9.webm": true}}
			var buf bytes.Buffer
			s := &Scheduler{Policy: policy, Workers: 3, Runner: r, Report: testReporter(&buf)}

			res := s.Run(context.Background(), testBatch(t, testProfiles(), "a.mp4", "b.mp4", "c.mov"))

			assert.Len(t, r.startOrder(), 6, "every job runs despite the failure")
			assert.False(t, res.OK())
			assert.Equal(t, 5, res.Succeeded)
			assert.Equal(t, 1, res.Failed)
			assert.Equal(t, 1, res.FailedFiles())

			assert.True(t, res.Files[0].OK())
			assert.False(t, res.Files[1].OK())
			assert.True(t, res.Files[1].Outcomes[0].OK(), "sibling profile of the same file succeeds")
			assert.True(t, res.Files[2].OK())

			out := buf.String()
			assert.Contains(t, out, "b.mp4: 1 of 2 profiles failed")
			assert.Contains(t, out, "vp9 (.webm): ffmpeg exited with status 1")
			assert.Contains(t, out, "hint: encoder does not support codec libvpx-vp9")
			assert.Contains(t, out, "| Unknown encoder 'libvpx-vp9'")
		})
	}
}

func TestScheduler_SequentialOrder(t *testing.T) {
	r := &fakeRunner{delay: 5 * time.Millisecond}
	s := &Scheduler{Policy: config.PolicySequential, Runner: r}

	s.Run(context.Background(), testBatch(t, testProfiles(), "a.mp4", "b.mp4"))

	assert.Equal(t, []string{"a-h264.mp4", "a-vp9.webm", "b-h264.mp4", "b-vp9.webm"}, r.startOrder())
	assert.Equal(t, int32(1), r.maxActive.Load())
}

func TestScheduler_ParallelPerFileBarrier(t *testing.T) {
	r := &fakeRunner{delay: 30 * time.Millisecond}
	s := &Scheduler{Policy: config.PolicyParallelPerFile, Runner: r}

	s.Run(context.Background(), testBatch(t, testProfiles(), "a.mp4", "b.mp4"))

	assert.Equal(t, int32(2), r.maxActive.Load(), "a file's jobs run together")

	// Every event of a.mp4 precedes every event of b.mp4.
	r.mu.Lock()
	events := append([]string(nil), r.events...)
	r.mu.Unlock()
	require.Len(t, events, 8)
	for _, e := range events[:4] {
		assert.Contains(t, e, ":a-")
	}
	for _, e := range events[4:] {
		assert.Contains(t, e, ":b-")
	}
}

func TestScheduler_FullyParallel(t *testing.T) {
	r := &fakeRunner{delay: 50 * time.Millisecond}
	s := &Scheduler{Policy: config.PolicyFullyParallel, Runner: r}

	s.Run(context.Background(), testBatch(t, testProfiles(), "a.mp4", "b.mp4", "c.mp4"))

	assert.Equal(t, int32(6), r.maxActive.Load())
}

func TestScheduler_BoundedCap(t *testing.T) {
	r := &fakeRunner{delay: 20 * time.Millisecond}
	s := &Scheduler{Policy: config.PolicyBounded, Workers: 2, Runner: r}

	res := s.Run(context.Background(), testBatch(t, config.DefaultProfiles(), "a.mp4", "b.mp4", "c.mp4"))

	assert.Equal(t, 9, res.Succeeded)
	assert.Equal(t, int32(2), r.maxActive.Load())
}

func TestScheduler_InterruptStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	r := &fakeRunner{delay: 10 * time.Millisecond, onStart: func(planner.Job) { once.Do(cancel) }}
	var buf bytes.Buffer
	s := &Scheduler{Policy: config.PolicySequential, Runner: r, Report: testReporter(&buf)}

	res := s.Run(ctx, testBatch(t, testProfiles(), "a.mp4", "b.mp4"))

	assert.Equal(t, []string{"a-h264.mp4"}, r.startOrder())
	assert.True(t, res.Interrupted)
	assert.False(t, res.OK())
	assert.Equal(t, 4, res.Jobs, "every job settles")
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 3, res.Failed)
	assert.True(t, res.Files[0].Outcomes[0].OK(), "the running job finishes")
	assert.ErrorIs(t, res.Files[0].Outcomes[1].Err, ErrInterrupted)
	assert.ErrorIs(t, res.Files[1].Outcomes[0].Err, ErrInterrupted)
}

func TestScheduler_MissingEncoder(t *testing.T) {
	exec := &ffmpeg.Executor{Encoder: "multiencode-no-such-encoder"}
	var buf bytes.Buffer
	s := &Scheduler{Policy: config.PolicyFullyParallel, Runner: exec, Report: testReporter(&buf)}

	res := s.Run(context.Background(), testBatch(t, testProfiles(), "clip.mp4"))

	assert.False(t, res.OK())
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, buf.String(), "hint: encoder executable not found")
}

func TestScheduler_ProgressLines(t *testing.T) {
	r := &fakeRunner{}
	var buf bytes.Buffer
	rep := testReporter(&buf)
	batch := testBatch(t, testProfiles(), "clip.mp4")
	rep.total = planner.Count(batch)
	s := &Scheduler{Policy: config.PolicySequential, Runner: r, Report: rep}

	s.Run(context.Background(), batch)

	out := buf.String()
	assert.Contains(t, out, "start  #1 clip.mp4 → h264 (.mp4)")
	assert.Contains(t, out, "[2/2] done   #2 clip.mp4 → vp9 (.webm)")
}
