package naming

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/backmassage/multiencode/internal/config"
)

func TestStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"clip.mp4", "clip"},
		{"my.holiday.clip.mov", "my.holiday.clip"},
		{"clip", "clip"},
		{"clip.", "clip."},
		{".hidden", ".hidden"},
		{"spaces and (parens).mp4", "spaces and (parens)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Stem(tt.in); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	h264 := config.Profile{Name: "h264", Suffix: "-h264", Extension: ".mp4"}
	vp9 := config.Profile{Name: "vp9", Suffix: "-vp9", Extension: ".webm"}

	tests := []struct {
		name    string
		input   string
		profile config.Profile
		want    string
	}{
		{"h264", "/in/clip.mp4", h264, filepath.Join("/out", "clip-h264.mp4")},
		{"vp9", "/in/clip.mp4", vp9, filepath.Join("/out", "clip-vp9.webm")},
		{"no extension", "/in/clip", vp9, filepath.Join("/out", "clip-vp9.webm")},
		{"relative input", "videos/a.b.mov", h264, filepath.Join("/out", "a.b-h264.mp4")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath("/out", tt.input, tt.profile)
			if got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := OutputPath("/out", tt.input, tt.profile); again != got {
				t.Errorf("OutputPath not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestOutputPath_DistinctAcrossProfilesAndStems(t *testing.T) {
	profiles := config.DefaultProfiles()
	inputs := []string{"/in/a.mp4", "/in/b.mp4", "/in/a.b.mov"}
	seen := map[string]bool{}
	for _, in := range inputs {
		for _, p := range profiles {
			out := OutputPath("/out", in, p)
			if seen[out] {
				t.Fatalf("duplicate output %q", out)
			}
			seen[out] = true
		}
	}
}

func TestCollisionResolver_Fail(t *testing.T) {
	cr := NewCollisionResolver(config.CollisionFail)
	out := "/out/clip-vp9.webm"

	got, err := cr.Claim("/in/clip.mp4", out)
	if err != nil || got != out {
		t.Fatalf("first claim = %q, %v", got, err)
	}
	if got, err := cr.Claim("/in/clip.mp4", out); err != nil || got != out {
		t.Errorf("re-claim by owner = %q, %v", got, err)
	}
	_, err = cr.Claim("/in/clip.mov", out)
	if !errors.Is(err, ErrCollision) {
		t.Errorf("second claimant err = %v, want ErrCollision", err)
	}
}

func TestCollisionResolver_Rename(t *testing.T) {
	cr := NewCollisionResolver(config.CollisionRename)
	out := filepath.Join("/out", "clip-vp9.webm")

	first, _ := cr.Claim("/in/clip.mp4", out)
	second, err := cr.Claim("/in/clip.mov", out)
	if err != nil {
		t.Fatal(err)
	}
	third, _ := cr.Claim("/in/clip.mkv", out)

	if first != out {
		t.Errorf("first = %q", first)
	}
	if want := filepath.Join("/out", "clip-vp9 - dup1.webm"); second != want {
		t.Errorf("second = %q, want %q", second, want)
	}
	if want := filepath.Join("/out", "clip-vp9 - dup2.webm"); third != want {
		t.Errorf("third = %q, want %q", third, want)
	}
}
