// Package check provides system diagnostics (--check mode) and the
// pre-batch dependency check (CheckDeps) for the configured encoder and the
// codecs each profile asks for.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/backmassage/multiencode/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrEncoderNotFound = errors.New("encoder not found")
	ErrProberNotFound  = errors.New("prober not found (needed by --verify)")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// probeTimeout bounds each encoder query made by the check.
const probeTimeout = 10 * time.Second

// RunCheck runs the --check flow: encoder location and version, per-profile
// codec availability, host resources, and the worker count the bounded
// policy would use. Informational only; it does not stop on failure.
// It returns false when anything a batch needs is missing.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkEncoder(ctx, cfg.Encoder, log)
	if ok {
		ok = checkProfiles(ctx, cfg, log) && ok
	}
	if cfg.Verify {
		if path, err := exec.LookPath(cfg.Prober); err != nil {
			log.Error("%s not found (needed by --verify)", cfg.Prober)
			ok = false
		} else {
			log.Success("%s: %s", cfg.Prober, path)
		}
	}
	checkHost(ctx, cfg, log)
	return ok
}

// CheckDeps verifies that the encoder executable, and the prober when
// verification is enabled, can be found. It does not run either.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.Encoder); err != nil {
		return fmt.Errorf("%w: %s", ErrEncoderNotFound, cfg.Encoder)
	}
	if cfg.Verify {
		if _, err := exec.LookPath(cfg.Prober); err != nil {
			return fmt.Errorf("%w: %s", ErrProberNotFound, cfg.Prober)
		}
	}
	return nil
}

// checkEncoder verifies the encoder is on PATH and logs its version line.
func checkEncoder(ctx context.Context, encoder string, log Logger) bool {
	path, err := exec.LookPath(encoder)
	if err != nil {
		log.Error("%s not found", encoder)
		return false
	}
	out, err := output(ctx, path, "-hide_banner", "-version")
	if err != nil {
		// Older builds reject -hide_banner with -version.
		out, err = output(ctx, path, "-version")
	}
	if err != nil {
		log.Warn("%s found at %s but -version failed: %v", encoder, path, err)
		return true
	}
	log.Success("%s: %s", encoder, firstLine(out))
	log.Info("  path: %s", path)
	return true
}

// checkProfiles lists the encoders the binary supports and reports, per
// profile, whether every codec it names is among them.
func checkProfiles(ctx context.Context, cfg *config.Config, log Logger) bool {
	if len(cfg.Profiles) == 0 {
		log.Warn("No profiles configured")
		return true
	}
	out, err := output(ctx, cfg.Encoder, "-hide_banner", "-encoders")
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return true
	}
	available := ParseEncoders(out)

	ok := true
	log.Info("Profiles:")
	for _, p := range cfg.Profiles {
		required := RequiredEncoders(p)
		var missing []string
		for _, name := range required {
			if !available[name] {
				missing = append(missing, name)
			}
		}
		switch {
		case len(missing) > 0:
			ok = false
			log.Error("  %s: encoder lacks %s", p.Label(), strings.Join(missing, ", "))
		case len(required) == 0:
			log.Info("  %s: no codec options (encoder defaults)", p.Label())
		default:
			log.Success("  %s: %s", p.Label(), strings.Join(required, ", "))
		}
	}
	return ok
}

// codecFlags are the option names whose following token names an encoder.
var codecFlags = map[string]bool{
	"-c": true, "-codec": true,
	"-c:v": true, "-codec:v": true, "-vcodec": true,
	"-c:a": true, "-codec:a": true, "-acodec": true,
	"-c:s": true, "-codec:s": true, "-scodec": true,
}

// RequiredEncoders returns the encoder names a profile's options select,
// sorted and de-duplicated. "copy" is not an encoder and is skipped.
func RequiredEncoders(p config.Profile) []string {
	seen := map[string]bool{}
	for i := 0; i+1 < len(p.Options); i++ {
		if !codecFlags[p.Options[i]] {
			continue
		}
		name := p.Options[i+1]
		if name != "copy" && name != "" {
			seen[name] = true
		}
		i++
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output. Lines
// before the "------" separator are legend and are ignored.
func ParseEncoders(out string) map[string]bool {
	names := map[string]bool{}
	inList := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !inList {
			inList = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names
}

// --- internal helpers ---

// output runs a command with a bounded lifetime and returns its stdout.
func output(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}
