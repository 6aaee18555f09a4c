package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/multiencode/internal/planner"
)

// Discover lists inputDir once (non-recursively) and returns the entries
// whose extension is in extensions, sorted by name. Matching is
// case-sensitive: ".MP4" does not match ".mp4". Directories are ignored,
// as are symlinks that resolve to directories.
func Discover(inputDir string, extensions []string) ([]planner.InputFile, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[ext] = true
	}

	var files []planner.InputFile
	for _, e := range entries {
		if e.IsDir() || !allowed[filepath.Ext(e.Name())] {
			continue
		}
		path := filepath.Join(inputDir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			if fi, err := os.Stat(path); err != nil || fi.IsDir() {
				continue
			}
		}
		files = append(files, planner.NewInputFile(path))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
