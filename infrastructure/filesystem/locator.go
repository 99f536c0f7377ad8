package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt2mp3/domain/conversion"
)

// Locator implements conversion.ArtifactLocator by scanning a directory
type Locator struct{}

// NewLocator creates a new Locator
func NewLocator() *Locator {
	return &Locator{}
}

// Locate returns the newest regular file in dir whose extension matches ext.
// Extensions compare case-insensitively; equal modification times resolve by name.
func (l *Locator) Locate(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read workspace: %w", err)
	}

	ext = normalizeExt(ext)

	var (
		best     string
		bestInfo os.FileInfo
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if bestInfo == nil || newer(info, bestInfo) {
			best, bestInfo = entry.Name(), info
		}
	}

	if bestInfo == nil {
		return "", &conversion.NoOutputError{Extension: ext, Dir: dir}
	}
	return filepath.Join(dir, best), nil
}

func newer(a, b os.FileInfo) bool {
	if !a.ModTime().Equal(b.ModTime()) {
		return a.ModTime().After(b.ModTime())
	}
	return a.Name() > b.Name()
}

func normalizeExt(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

var _ conversion.ArtifactLocator = (*Locator)(nil)
