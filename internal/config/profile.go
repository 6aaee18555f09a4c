package config

import (
	"fmt"
	"strings"
)

// Profile is one named output encoding: codec family, container extension,
// target scale, and the encoder option tokens passed through verbatim.
// Profiles are defined once at startup and shared read-only by every job.
type Profile struct {
	Name      string   `yaml:"name"`
	Codec     string   `yaml:"codec"`     // ffprobe codec name, e.g. "h264"; --verify fallback.
	Extension string   `yaml:"extension"` // Container extension with leading dot.
	Scale     string   `yaml:"scale"`     // Informational, e.g. "1920:1080".
	Suffix    string   `yaml:"suffix"`    // Output stem suffix; defaults to "-<Name>".
	Options   []string `yaml:"options"`
}

// VideoEncoder returns the encoder named by the first -c:v, -codec:v or
// -vcodec token in Options, or "" when there is none.
func (p Profile) VideoEncoder() string {
	for i := 0; i+1 < len(p.Options); i++ {
		switch p.Options[i] {
		case "-c:v", "-codec:v", "-vcodec":
			return p.Options[i+1]
		}
	}
	return ""
}

// Label is the short human form used in log lines (e.g. "vp9 (.webm)").
func (p Profile) Label() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Extension)
}

// Option token groups shared by the default table.
var (
	h264Options = []string{"-c:v", "libx264", "-c:a", "aac", "-b:a", "192k"}
	vp9Options  = []string{
		"-c:v", "libvpx-vp9",
		"-crf", "20",
		"-b:v", "0",
		"-b:a", "192k",
		"-vf", "scale=1920:1080",
	}
)

// DefaultProfiles returns the built-in output table: H.264 desktop (16:9),
// H.264 mobile (4:3 at 1920x1440), and VP9 WebM. A fresh slice is returned
// on every call so callers may modify it.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:      "h264-desktop",
			Codec:     "h264",
			Extension: ".mp4",
			Suffix:    "-h264-desktop",
			Options:   append([]string(nil), h264Options...),
		},
		{
			Name:      "h264-mobile",
			Codec:     "h264",
			Extension: ".mp4",
			Scale:     "1920:1440",
			Suffix:    "-h264-mobile",
			Options:   append(append([]string(nil), h264Options...), "-vf", "scale=1920:1440"),
		},
		{
			Name:      "vp9",
			Codec:     "vp9",
			Extension: ".webm",
			Scale:     "1920:1080",
			Suffix:    "-vp9",
			Options:   append([]string(nil), vp9Options...),
		},
	}
}

// ValidateProfiles normalizes and checks the profile table in place: every
// profile needs a unique name and an extension, suffixes default to
// "-<name>", and no two profiles may share a suffix+extension pair (they
// would write the same file for every input). An empty table is valid and
// yields zero jobs per file.
func ValidateProfiles(profiles []Profile) error {
	names := make(map[string]bool, len(profiles))
	targets := make(map[string]string, len(profiles))

	for i := range profiles {
		p := &profiles[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return fmt.Errorf("profile %d: name is required", i+1)
		}
		if names[p.Name] {
			return fmt.Errorf("profile %q: duplicate name", p.Name)
		}
		names[p.Name] = true

		p.Extension = strings.TrimSpace(p.Extension)
		if p.Extension == "" || p.Extension == "." {
			return fmt.Errorf("profile %q: extension is required", p.Name)
		}
		if !strings.HasPrefix(p.Extension, ".") {
			p.Extension = "." + p.Extension
		}
		if p.Suffix == "" {
			p.Suffix = "-" + p.Name
		}
		if !safeNamePart(p.Suffix) || !safeNamePart(p.Extension) {
			return fmt.Errorf("profile %q: suffix and extension must not contain path separators or \"..\"", p.Name)
		}

		key := p.Suffix + p.Extension
		if other, ok := targets[key]; ok {
			return fmt.Errorf("profiles %q and %q both produce %q outputs", other, p.Name, key)
		}
		targets[key] = p.Name
	}
	return nil
}

// safeNamePart reports whether s can be appended to a file stem without
// leaving the output directory.
func safeNamePart(s string) bool {
	return !strings.ContainsAny(s, `/\`) && !strings.Contains(s, "..")
}
