package planner

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/naming"
)

// NewInputFile builds an InputFile from a path.
func NewInputFile(path string) InputFile {
	name := filepath.Base(path)
	return InputFile{Path: path, Name: name, Stem: naming.Stem(name)}
}

// Expand returns one job per profile for in, in profile order. An empty
// profile table yields an empty (non-nil) slice.
func Expand(in InputFile, profiles []config.Profile, outputDir string) []Job {
	jobs := make([]Job, 0, len(profiles))
	for _, p := range profiles {
		jobs = append(jobs, Job{
			ID:         uuid.New(),
			Input:      in,
			Profile:    p,
			OutputPath: naming.OutputPath(outputDir, in.Path, p),
		})
	}
	return jobs
}

// ExpandAll expands every file in order and numbers the resulting jobs
// 1..N across the whole batch (file-major, then profile order).
func ExpandAll(files []InputFile, profiles []config.Profile, outputDir string) []FileJobs {
	out := make([]FileJobs, 0, len(files))
	seq := 0
	for _, f := range files {
		jobs := Expand(f, profiles, outputDir)
		for i := range jobs {
			seq++
			jobs[i].Seq = seq
		}
		out = append(out, FileJobs{Input: f, Jobs: jobs})
	}
	return out
}

// Resolve runs every job's output path through cr, rewriting OutputPath in
// place when rename mode picks a " - dupN" variant. The first collision in
// fail mode is returned unchanged (it wraps [naming.ErrCollision]).
func Resolve(batch []FileJobs, cr *naming.CollisionResolver) error {
	for fi := range batch {
		for ji := range batch[fi].Jobs {
			j := &batch[fi].Jobs[ji]
			out, err := cr.Claim(j.Input.Path, j.OutputPath)
			if err != nil {
				return err
			}
			j.OutputPath = out
		}
	}
	return nil
}

// Plan expands files against profiles and resolves every output path under
// the given collision mode. In fail mode a shared output path aborts the
// whole plan before anything is dispatched.
func Plan(files []InputFile, profiles []config.Profile, outputDir string, mode config.CollisionMode) ([]FileJobs, error) {
	batch := ExpandAll(files, profiles, outputDir)
	if err := Resolve(batch, naming.NewCollisionResolver(mode)); err != nil {
		return nil, err
	}
	return batch, nil
}

// Count returns the total number of jobs in batch.
func Count(batch []FileJobs) int {
	n := 0
	for _, fj := range batch {
		n += len(fj.Jobs)
	}
	return n
}
