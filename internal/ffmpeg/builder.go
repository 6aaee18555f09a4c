package ffmpeg

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/multiencode/internal/planner"
)

// Build constructs the encoder argument vector for job:
//
//	<encoder> -i <input> <profile options...> <output>
//
// Paths are passed through filepath.ToSlash so the encoder sees forward
// slashes on every platform. Profile options are opaque and appended
// verbatim. The result is an argv, never a shell string.
func Build(encoder string, job planner.Job) []string {
	args := make([]string, 0, 4+len(job.Profile.Options))
	args = append(args, encoder, "-i", filepath.ToSlash(job.Input.Path))
	args = append(args, job.Profile.Options...)
	args = append(args, filepath.ToSlash(job.OutputPath))
	return args
}

// CommandLine renders args for display, quoting tokens that contain spaces
// or quotes. It is never executed.
func CommandLine(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\") {
			parts[i] = strconv.Quote(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
