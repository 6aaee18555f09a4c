package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/backmassage/multiencode/internal/config"
)

// ErrCollision is returned by [CollisionResolver.Claim] in fail mode when an
// output path is already owned by another input.
var ErrCollision = errors.New("output path collision")

// CollisionResolver tracks output paths claimed by input files within one
// run. In fail mode a second claimant is an error; in rename mode it gets a
// " - dupN" variant. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	mode     config.CollisionMode
	owners   map[string]string // output path → input path that owns it
	counters map[string]int    // requested output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver for mode.
func NewCollisionResolver(mode config.CollisionMode) *CollisionResolver {
	return &CollisionResolver{
		mode:     mode,
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Claim returns the final output path for input. If requested is unclaimed
// (or already owned by input) it is returned as-is. Otherwise fail mode
// returns an error wrapping ErrCollision and rename mode returns the first
// free " - dupN" variant.
func (cr *CollisionResolver) Claim(input, requested string) (string, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requested]
	if !exists || owner == input {
		cr.owners[requested] = input
		return requested, nil
	}

	if cr.mode != config.CollisionRename {
		return "", fmt.Errorf("%w: %s and %s both write %s",
			ErrCollision, filepath.Base(owner), filepath.Base(input), requested)
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requested]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == input {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = input
			return candidate, nil
		}
		counter++
	}
}
