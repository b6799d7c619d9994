// Package archive places files into the date-bucketed tree
// root/YYYY-MM/DD/YYYYMMDD_HHMMSS[_n].ext without losing or duplicating content.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lavelinevgeny/mediasort/internal/timestamp"
)

// ErrNoTimestamp is returned by Locate for the zero Timestamp.
var ErrNoTimestamp = errors.New("no timestamp to build a destination from")

// Location is where a file with a given capture time belongs.
type Location struct {
	Dir  string // root/YYYY-MM/DD
	Base string // YYYYMMDD_HHMMSS, no extension
}

// Path returns the file name inside Dir for base, collision index n and ext.
// n == 0 means no suffix.
func (l Location) Path(n int, ext string) string {
	name := l.Base
	if n > 0 {
		name = fmt.Sprintf("%s_%d", l.Base, n)
	}
	return filepath.Join(l.Dir, name+ext)
}

// Plan computes the location without touching the file system.
func Plan(root string, ts timestamp.Timestamp) (Location, error) {
	if ts.IsZero() {
		return Location{}, ErrNoTimestamp
	}
	return Location{
		Dir:  filepath.Join(root, ts.Format("2006-01"), ts.Format("02")),
		Base: ts.Format("20060102_150405"),
	}, nil
}

// Locate computes the location and makes sure its directory exists.
// Concurrent callers creating the same directory all succeed.
func Locate(root string, ts timestamp.Timestamp) (Location, error) {
	loc, err := Plan(root, ts)
	if err != nil {
		return Location{}, err
	}
	if err := os.MkdirAll(loc.Dir, 0o755); err != nil {
		return Location{}, fmt.Errorf("create %s: %w", loc.Dir, err)
	}
	return loc, nil
}
