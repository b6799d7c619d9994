package media

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Census counts the files under a source tree by category. It is shown to
// the user before anything is moved.
type Census struct {
	Images   int
	Videos   int
	Sidecars int
	Other    int
}

// Total returns the number of files that will be organized.
func (c Census) Total() int {
	return c.Images + c.Videos
}

// Walk visits every regular media file under root in lexical order, skipping
// the directories listed in exclude (typically the archive root when it lives
// inside the source tree).
func Walk(root string, exclude []string, fn func(path string, kind Kind) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && excluded(path, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(path, Lookup(path))
	})
}

// Count walks root and tallies files by category.
func Count(root string, exclude []string) (Census, error) {
	var c Census
	err := Walk(root, exclude, func(path string, kind Kind) error {
		switch {
		case kind == Image:
			c.Images++
		case kind == Video:
			c.Videos++
		case IsSidecar(path):
			c.Sidecars++
		default:
			c.Other++
		}
		return nil
	})
	return c, err
}

func excluded(dir string, exclude []string) bool {
	for _, e := range exclude {
		if e != "" && filepath.Clean(dir) == filepath.Clean(e) {
			return true
		}
	}
	return false
}

// Within reports whether path is dir or lies below it.
func Within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
