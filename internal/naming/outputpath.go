package naming

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/multiencode/internal/config"
)

// Stem returns name without its final extension. Names with no usable
// extension ("clip", "clip.", ".hidden") are returned whole rather than
// rejected.
func Stem(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." {
		return name
	}
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		return name
	}
	return stem
}

// OutputPath builds the output file path for encoding inputPath with p:
// <outputDir>/<stem><p.Suffix><p.Extension>.
func OutputPath(outputDir, inputPath string, p config.Profile) string {
	return filepath.Join(outputDir, Stem(filepath.Base(inputPath))+p.Suffix+p.Extension)
}
