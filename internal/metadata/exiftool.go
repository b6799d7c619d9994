package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"
)

// Exiftool answers tag queries with a single long-running exiftool process.
// The process is started on first use; calls are serialized.
type Exiftool struct {
	binary string

	mu      sync.Mutex
	et      *exiftool.Exiftool
	initErr error
}

// NewExiftool returns a lazily started exiftool backend. An empty binary
// means "exiftool" from PATH.
func NewExiftool(binary string) *Exiftool {
	return &Exiftool{binary: strings.TrimSpace(binary)}
}

// ensure starts the process once. A failed start is remembered so a missing
// binary is not retried for every file. Callers hold mu.
func (e *Exiftool) ensure() (*exiftool.Exiftool, error) {
	if e.et != nil {
		return e.et, nil
	}
	if e.initErr != nil {
		return nil, e.initErr
	}
	// Keys come back as "Family0:Family1:Tag", e.g. "QuickTime:Keys:CreationDate".
	opts := []func(*exiftool.Exiftool) error{exiftool.PrintGroupNames("0:1")}
	if e.binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(e.binary))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		e.initErr = fmt.Errorf("%w: exiftool: %v", ErrBackendUnavailable, err)
		return nil, e.initErr
	}
	e.et = et
	return et, nil
}

// ReadTags extracts path's metadata and returns the requested fields.
// Fields are named "Group:Tag" where Group is a family 0 or family 1 group.
// A field carried by several groups of that name maps to a []any.
func (e *Exiftool) ReadTags(ctx context.Context, path string, fields []string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	et, err := e.ensure()
	if err != nil {
		return nil, err
	}

	infos := et.ExtractMetadata(path)
	if len(infos) == 0 {
		return nil, fmt.Errorf("exiftool %s: no result", path)
	}
	info := infos[0]
	if info.Err != nil {
		return nil, fmt.Errorf("exiftool %s: %w", path, info.Err)
	}
	return pickFields(info.Fields, fields), nil
}

// Close stops the exiftool process if it was started.
func (e *Exiftool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.et == nil {
		return nil
	}
	err := e.et.Close()
	e.et = nil
	return err
}

// pickFields matches the grouped keys of one exiftool result against the
// requested "Group:Tag" fields.
func pickFields(all map[string]interface{}, fields []string) map[string]any {
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(fields))
	for _, field := range fields {
		group, tag, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		var matched []any
		for _, k := range keys {
			if keyMatches(k, group, tag) {
				matched = append(matched, all[k])
			}
		}
		switch len(matched) {
		case 0:
		case 1:
			out[field] = matched[0]
		default:
			out[field] = matched
		}
	}
	return out
}

// keyMatches reports whether an exiftool key such as "EXIF:ExifIFD:CreateDate"
// names tag within group. Ungrouped keys never match.
func keyMatches(key, group, tag string) bool {
	parts := strings.Split(key, ":")
	if len(parts) < 2 || parts[len(parts)-1] != tag {
		return false
	}
	for _, g := range parts[:len(parts)-1] {
		if g == group {
			return true
		}
	}
	return false
}

var _ TagReader = (*Exiftool)(nil)
