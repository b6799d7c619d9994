// Package metadata gathers candidate capture timestamps for one media file
// from embedded tags, container probes and file-system times.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lavelinevgeny/mediasort/internal/media"
	"github.com/lavelinevgeny/mediasort/internal/timestamp"
)

var (
	// ErrSourceMissing means the file vanished before it could be read.
	ErrSourceMissing = errors.New("source file missing")
	// ErrBackendUnavailable means a backend binary could not be started.
	ErrBackendUnavailable = errors.New("metadata backend unavailable")
	// ErrUnsupported means the extension maps to no media kind.
	ErrUnsupported = errors.New("unsupported media type")
)

// RawValue is one metadata field as returned by a backend: a string, a raw
// byte blob, or a typed time.
type RawValue struct {
	Backend string
	Field   string
	Value   any
}

// ImageReader reads embedded date fields from an image.
type ImageReader interface {
	ReadDates(path string) ([]RawValue, error)
}

// TagReader is the external tag extraction backend. Requested fields that
// the file does not carry are simply absent from the result.
type TagReader interface {
	ReadTags(ctx context.Context, path string, fields []string) (map[string]any, error)
}

// ContainerProber reads container and per-stream creation times of a video.
type ContainerProber interface {
	Name() string
	Supports(path string) bool
	ProbeCreationTimes(ctx context.Context, path string) ([]RawValue, error)
}

// FileTimesReader reads file-system timestamps without exiftool.
type FileTimesReader interface {
	FileTimes(path string) ([]RawValue, error)
}

// Result is the outcome of collecting one file.
type Result struct {
	Candidates timestamp.CandidateSet
	// FromMetadata is false when the candidates are file-system times.
	FromMetadata bool
}

// Resolved returns the oldest candidate, the file's capture timestamp.
func (r *Result) Resolved() (timestamp.Candidate, bool) {
	return r.Candidates.Oldest()
}

// Collector queries every backend applicable to a file.
type Collector struct {
	norm   *timestamp.Normalizer
	images ImageReader
	tags   TagReader
	probes []ContainerProber
	files  FileTimesReader
	log    *slog.Logger
}

// Backends bundles the collector's dependencies. Nil members are skipped.
type Backends struct {
	Images ImageReader
	Tags   TagReader
	Probes []ContainerProber
	Files  FileTimesReader
}

// NewCollector wires a collector around a normalizer.
func NewCollector(norm *timestamp.Normalizer, b Backends, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Collector{
		norm:   norm,
		images: b.Images,
		tags:   b.Tags,
		probes: b.Probes,
		files:  b.Files,
		log:    log,
	}
}

// Collect builds the candidate set for path. A missing file is the only
// error; every backend failure just contributes nothing.
func (c *Collector) Collect(ctx context.Context, path string) (*Result, error) {
	kind := media.Lookup(path)
	if kind == media.Unknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	res := &Result{FromMetadata: true}
	switch kind {
	case media.Image:
		c.collectImage(ctx, path, &res.Candidates)
	case media.Video:
		c.collectVideo(ctx, path, &res.Candidates)
	}
	if res.Candidates.Len() > 0 {
		return res, nil
	}

	c.log.Info("no metadata timestamp, falling back to file times", "path", path)
	res.FromMetadata = false
	c.collectFileTimes(ctx, path, &res.Candidates)
	if res.Candidates.Len() == 0 {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
	}
	return res, nil
}

func (c *Collector) collectImage(ctx context.Context, path string, set *timestamp.CandidateSet) {
	if c.images != nil {
		raws, err := c.images.ReadDates(path)
		if err != nil {
			c.log.Debug("embedded exif unreadable", "path", path, "error", err)
		}
		c.addAll(path, raws, set)
	}
	if set.Len() == 0 {
		c.addTags(ctx, path, captureTags[media.Image], set)
	}
}

func (c *Collector) collectVideo(ctx context.Context, path string, set *timestamp.CandidateSet) {
	for _, p := range c.probes {
		if !p.Supports(path) {
			continue
		}
		raws, err := p.ProbeCreationTimes(ctx, path)
		if err != nil {
			c.log.Warn("container probe failed", "path", path, "backend", p.Name(), "error", err)
		}
		c.addAll(path, raws, set)
		if set.Len() > 0 {
			break
		}
	}
	if set.Len() == 0 {
		c.addTags(ctx, path, captureTags[media.Video], set)
	}
}

func (c *Collector) collectFileTimes(ctx context.Context, path string, set *timestamp.CandidateSet) {
	c.addTags(ctx, path, fileTags, set)
	if set.Len() > 0 || c.files == nil {
		return
	}
	raws, err := c.files.FileTimes(path)
	if err != nil {
		c.log.Warn("file times unavailable", "path", path, "error", err)
		return
	}
	c.addAll(path, raws, set)
}

func (c *Collector) addTags(ctx context.Context, path string, fields []string, set *timestamp.CandidateSet) {
	if c.tags == nil {
		return
	}
	values, err := c.tags.ReadTags(ctx, path, fields)
	if err != nil {
		c.log.Warn("tag extraction failed", "path", path, "backend", "exiftool", "error", err)
		return
	}
	raws := make([]RawValue, 0, len(values))
	for _, field := range fields {
		v, ok := values[field]
		if !ok {
			continue
		}
		if list, ok := v.([]any); ok {
			for _, item := range list {
				raws = append(raws, RawValue{Backend: "exiftool", Field: field, Value: item})
			}
			continue
		}
		raws = append(raws, RawValue{Backend: "exiftool", Field: field, Value: v})
	}
	c.addAll(path, raws, set)
}

func (c *Collector) addAll(path string, raws []RawValue, set *timestamp.CandidateSet) {
	for _, raw := range raws {
		ts, err := c.norm.Normalize(raw.Value)
		if err != nil {
			c.log.Debug("candidate rejected", "path", path, "backend", raw.Backend, "field", raw.Field, "error", err)
			continue
		}
		if set.Add(timestamp.Candidate{Time: ts, Backend: raw.Backend, Field: raw.Field}) {
			c.log.Debug("candidate", "path", path, "backend", raw.Backend, "field", raw.Field, "value", ts.String())
		}
	}
}
