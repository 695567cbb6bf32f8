// Package readme locates a profile README and rewrites the activity section
// between its sentinel markers.
package readme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Markers delimiting the generated section.
const (
	StartMarker = "<!-- ANILIST-ACTIVITY:START -->"
	EndMarker   = "<!-- ANILIST-ACTIVITY:END -->"
)

var (
	// ErrReadmeNotFound is returned when no README exists in the searched directories.
	ErrReadmeNotFound = errors.New("readme not found")
	// ErrMarkersNotFound is returned when a document lacks an ordered marker pair.
	ErrMarkersNotFound = errors.New("activity markers not found")
)

// searchDirs are checked in the order GitHub uses to pick a README.
var searchDirs = []string{".", ".github", "docs"}

// Find returns the path of README.md under root, matching the name
// case-insensitively.
func Find(root string) (string, error) {
	for _, dir := range searchDirs {
		entries, err := os.ReadDir(filepath.Join(root, dir))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name(), "README.md") {
				return filepath.Join(root, dir, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("%w in %s", ErrReadmeNotFound, root)
}

// Splice replaces the text between the first start marker and the following
// end marker with block. Everything outside the markers is kept as is.
func Splice(doc, block string) (string, error) {
	start := strings.Index(doc, StartMarker)
	if start < 0 {
		return "", fmt.Errorf("%w: missing %s", ErrMarkersNotFound, StartMarker)
	}
	contentStart := start + len(StartMarker)

	end := strings.Index(doc[contentStart:], EndMarker)
	if end < 0 {
		return "", fmt.Errorf("%w: missing %s after %s", ErrMarkersNotFound, EndMarker, StartMarker)
	}
	end += contentStart

	var b strings.Builder
	b.Grow(len(doc) + len(block))
	b.WriteString(doc[:contentStart])
	b.WriteString("\n")
	if block != "" {
		b.WriteString(block)
		b.WriteString("\n")
	}
	b.WriteString(doc[end:])
	return b.String(), nil
}

// Update splices block into the file at path. It reports whether the file
// changed and leaves it untouched otherwise.
func Update(path, block string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	updated, err := Splice(string(data), block)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if updated == string(data) {
		return false, nil
	}

	if err := writeAtomic(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// No-op once the rename has succeeded.
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
