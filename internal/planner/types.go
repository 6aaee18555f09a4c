package planner

import (
	"github.com/google/uuid"

	"github.com/backmassage/multiencode/internal/config"
)

// InputFile is one discovered source file. Immutable once created.
type InputFile struct {
	Path string // Path as found in the input directory.
	Name string // Base name, e.g. "clip.mp4".
	Stem string // Base name without its final extension, e.g. "clip".
}

// Job is one (input file, profile) pair scheduled as a single encoder
// invocation. A Job is created by [Expand] and never modified afterwards
// except for OutputPath, which collision renaming may rewrite before
// dispatch.
type Job struct {
	ID         uuid.UUID
	Seq        int // 1-based position in the batch; 0 until ExpandAll numbers it.
	Input      InputFile
	Profile    config.Profile
	OutputPath string
}

// Label is the short form used in log lines, e.g. "clip.mp4 → vp9 (.webm)".
func (j Job) Label() string {
	return j.Input.Name + " → " + j.Profile.Label()
}

// FileJobs groups a file with the jobs derived from it, in profile order.
type FileJobs struct {
	Input InputFile
	Jobs  []Job
}
