package probe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/multiencode/internal/config"
)

// ErrVerify marks an output that exists but does not match its profile.
var ErrVerify = errors.New("output verification failed")

// encoderCodecs maps software encoder names to the codec name ffprobe
// reports for their output.
var encoderCodecs = map[string]string{
	"libx264":     "h264",
	"libopenh264": "h264",
	"libx265":     "hevc",
	"libvpx":      "vp8",
	"libvpx-vp9":  "vp9",
	"libaom-av1":  "av1",
	"libsvtav1":   "av1",
	"librav1e":    "av1",
	"libxvid":     "mpeg4",
	"mpeg4":       "mpeg4",
}

// hwFamilies maps the prefix of hardware encoder names ("hevc_nvenc",
// "h264_vaapi") to the codec name ffprobe reports.
var hwFamilies = map[string]string{
	"h264":  "h264",
	"hevc":  "hevc",
	"vp8":   "vp8",
	"vp9":   "vp9",
	"av1":   "av1",
	"mjpeg": "mjpeg",
	"mpeg2": "mpeg2video",
}

// ExpectedCodec returns the video codec name ffprobe should report for a
// profile's output. The -c:v encoder decides when it is known; otherwise the
// profile's Codec field is used. "" means no codec is expected.
func ExpectedCodec(p config.Profile) string {
	enc := p.VideoEncoder()
	if codec, ok := encoderCodecs[enc]; ok {
		return codec
	}
	if family, _, found := strings.Cut(enc, "_"); found {
		if codec, ok := hwFamilies[family]; ok {
			return codec
		}
	}
	return p.Codec
}

// Verify checks a probed output against the profile that produced it: the
// file must contain at least one stream; when [ExpectedCodec] names a codec
// the primary video stream must use it; when p.Scale is a fixed "W:H" the
// video must have exactly those dimensions. Scales with a negative or
// non-numeric side (e.g. "1280:-2", "iw/2:ih/2") are not checked.
func Verify(r *Result, p config.Profile) error {
	if r == nil || r.StreamCount == 0 {
		return fmt.Errorf("%w: no streams", ErrVerify)
	}
	if want := ExpectedCodec(p); want != "" {
		if r.PrimaryVideo == nil {
			return fmt.Errorf("%w: no video stream (want %s)", ErrVerify, want)
		}
		if r.PrimaryVideo.Codec != want {
			return fmt.Errorf("%w: video codec %s, want %s", ErrVerify, r.PrimaryVideo.Codec, want)
		}
	}
	if w, h, ok := fixedScale(p.Scale); ok && r.PrimaryVideo != nil {
		if r.PrimaryVideo.Width != w || r.PrimaryVideo.Height != h {
			return fmt.Errorf("%w: resolution %s, want %dx%d", ErrVerify, r.Resolution(), w, h)
		}
	}
	return nil
}

func fixedScale(scale string) (w, h int, ok bool) {
	ws, hs, found := strings.Cut(scale, ":")
	if !found {
		ws, hs, found = strings.Cut(scale, "x")
	}
	if !found {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(strings.TrimSpace(ws))
	h, errH := strconv.Atoi(strings.TrimSpace(hs))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
