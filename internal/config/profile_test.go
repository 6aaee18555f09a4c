package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfiles_BuiltinTable(t *testing.T) {
	ps := DefaultProfiles()
	require.Len(t, ps, 3)

	assert.Equal(t, "-h264-desktop", ps[0].Suffix)
	assert.Equal(t, ".mp4", ps[0].Extension)
	assert.Equal(t, []string{"-c:v", "libx264", "-c:a", "aac", "-b:a", "192k"}, ps[0].Options)

	assert.Equal(t, "-h264-mobile", ps[1].Suffix)
	assert.Equal(t, []string{"-c:v", "libx264", "-c:a", "aac", "-b:a", "192k", "-vf", "scale=1920:1440"}, ps[1].Options)

	assert.Equal(t, "-vp9", ps[2].Suffix)
	assert.Equal(t, ".webm", ps[2].Extension)
	assert.Contains(t, ps[2].Options, "libvpx-vp9")
}

func TestDefaultProfiles_ReturnsFreshSlices(t *testing.T) {
	a := DefaultProfiles()
	a[0].Options[1] = "changed"
	b := DefaultProfiles()
	assert.Equal(t, "libx264", b[0].Options[1])
	assert.Equal(t, "libx264", b[1].Options[1], "mobile options must not alias desktop options")
}

func TestValidateProfiles(t *testing.T) {
	tests := []struct {
		name     string
		profiles []Profile
		wantErr  string
	}{
		{"empty table", nil, ""},
		{"defaults", DefaultProfiles(), ""},
		{"missing name", []Profile{{Extension: ".mp4"}}, "name is required"},
		{"duplicate name", []Profile{{Name: "a", Extension: ".mp4"}, {Name: "a", Extension: ".webm"}}, "duplicate name"},
		{"missing extension", []Profile{{Name: "a"}}, "extension is required"},
		{
			"same target",
			[]Profile{{Name: "a", Suffix: "-x", Extension: ".mp4"}, {Name: "b", Suffix: "-x", Extension: ".mp4"}},
			"both produce",
		},
		{"suffix escapes output dir", []Profile{{Name: "a", Suffix: "/../x", Extension: ".mp4"}}, "path separators"},
		{"backslash suffix", []Profile{{Name: "a", Suffix: `-a\b`, Extension: ".mp4"}}, "path separators"},
		{"dotdot suffix", []Profile{{Name: "a", Suffix: "..", Extension: ".mp4"}}, "path separators"},
		{"extension with separator", []Profile{{Name: "a", Extension: ".mp4/x"}}, "path separators"},
		{"name with separator", []Profile{{Name: "a/b", Extension: ".mp4"}}, "path separators"},
		{
			"same suffix different container",
			[]Profile{{Name: "a", Suffix: "-x", Extension: ".mp4"}, {Name: "b", Suffix: "-x", Extension: ".webm"}},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfiles(tt.profiles)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProfiles_FillsDefaults(t *testing.T) {
	ps := []Profile{{Name: " h264 ", Extension: "mp4"}}
	require.NoError(t, ValidateProfiles(ps))
	assert.Equal(t, "h264", ps[0].Name)
	assert.Equal(t, ".mp4", ps[0].Extension)
	assert.Equal(t, "-h264", ps[0].Suffix)
	assert.Equal(t, "h264 (.mp4)", ps[0].Label())
}

func TestProfile_VideoEncoder(t *testing.T) {
	ps := DefaultProfiles()
	assert.Equal(t, "libx264", ps[0].VideoEncoder())
	assert.Equal(t, "libvpx-vp9", ps[2].VideoEncoder())
	assert.Equal(t, "libx265", Profile{Options: []string{"-crf", "20", "-codec:v", "libx265"}}.VideoEncoder())
	assert.Equal(t, "", Profile{Options: []string{"-c:a", "aac"}}.VideoEncoder())
	assert.Equal(t, "", Profile{Options: []string{"-c:v"}}.VideoEncoder())
}
