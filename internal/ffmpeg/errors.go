package ffmpeg

import (
	"errors"
	"regexp"
	"strings"
)

// Sentinel errors carried by failed outcomes. Match with errors.Is.
var (
	ErrTimeout = errors.New("job timed out")
	ErrPanic   = errors.New("executor panic")
)

// Pre-compiled regexes for classifying encoder stderr. Checked in order by
// [Diagnose]; the first match wins.
var (
	reOutputExists = regexp.MustCompile(
		`already exists\. Exiting|Not overwriting - exiting`)

	reUnknownEncoder = regexp.MustCompile(
		`Unknown encoder '([^']+)'|Encoder '?([^' ]+)'? not found|Requested output format '[^']+' is not a suitable output format`)

	reInvalidOption = regexp.MustCompile(
		`Unrecognized option '([^']+)'|Option ([^ ]+) not found|Error splitting the argument list|Invalid argument`)

	reMissingInput = regexp.MustCompile(
		`(?i)No such file or directory`)

	rePermission = regexp.MustCompile(
		`(?i)Permission denied|Read-only file system`)

	reInvalidData = regexp.MustCompile(
		`Invalid data found when processing input|moov atom not found`)

	reNoSpace = regexp.MustCompile(
		`(?i)No space left on device`)
)

// Diagnose returns a one-line hint for a recognized encoder failure, or ""
// when stderr matches nothing known.
func Diagnose(stderr string) string {
	switch {
	case stderr == "":
		return ""
	case reOutputExists.MatchString(stderr):
		return "output file already exists (use --clean or remove it)"
	case reUnknownEncoder.MatchString(stderr):
		if name := firstGroup(reUnknownEncoder, stderr); name != "" {
			return "encoder does not support codec " + name
		}
		return "encoder does not support the requested codec or format"
	case reInvalidOption.MatchString(stderr):
		if name := firstGroup(reInvalidOption, stderr); name != "" {
			return "profile option rejected by encoder: " + name
		}
		return "profile options rejected by encoder"
	case reNoSpace.MatchString(stderr):
		return "output device is full"
	case rePermission.MatchString(stderr):
		return "permission denied reading input or writing output"
	case reMissingInput.MatchString(stderr):
		return "input file or output directory missing"
	case reInvalidData.MatchString(stderr):
		return "input is not a readable media file"
	}
	return ""
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// TailLines returns at most the last n non-empty lines of s.
func TailLines(s string, n int) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return kept
}
