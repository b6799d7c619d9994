// Package organizer drives a whole run: it walks the source tree, resolves
// and relocates every media file on a bounded worker pool and folds the
// per-file outcomes into a Summary.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lavelinevgeny/mediasort/internal/archive"
	"github.com/lavelinevgeny/mediasort/internal/media"
	"github.com/lavelinevgeny/mediasort/internal/metadata"
)

// Resolver produces the candidate timestamps of one file.
type Resolver interface {
	Collect(ctx context.Context, path string) (*metadata.Result, error)
}

// Summary is the aggregate of one run. Processed always equals
// Moved + Duplicates + Skipped + Failed.
type Summary struct {
	Processed  int
	Moved      int
	Duplicates int
	Skipped    int
	Failed     int
}

// Balanced reports whether the accounting identity holds.
func (s Summary) Balanced() bool {
	return s.Processed == s.Moved+s.Duplicates+s.Skipped+s.Failed
}

func (s *Summary) add(o fileOutcome) {
	s.Processed++
	switch o {
	case outcomeMoved:
		s.Moved++
	case outcomeDuplicate:
		s.Duplicates++
	case outcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

type fileOutcome int

const (
	outcomeFailed fileOutcome = iota
	outcomeMoved
	outcomeDuplicate
	outcomeSkipped
)

// ProgressFunc is called from the aggregating goroutine after every
// Options.ProgressEvery completions and after the last one.
type ProgressFunc func(done, total int)

// Options tune a run. Zero values pick defaults.
type Options struct {
	Workers       int
	ProgressEvery int
	OnStart       func(total int)
	OnProgress    ProgressFunc
}

// Organizer relocates media from a source tree into the archive at Dest.
type Organizer struct {
	resolver Resolver
	dest     string
	opts     Options
	locks    *archive.DirLocks
	log      *slog.Logger

	move func(src string, loc archive.Location) (archive.Result, error)
}

func New(resolver Resolver, dest string, opts Options, log *slog.Logger) *Organizer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Organizer{
		resolver: resolver,
		dest:     dest,
		opts:     opts,
		locks:    archive.NewDirLocks(),
		move:     archive.Move,
		log:      log,
	}
}

// Run processes every image and video under src. Cancelling ctx stops
// dispatching new files; files already handed to a worker run to
// completion. The returned error only reports a failed walk.
func (o *Organizer) Run(ctx context.Context, src string) (Summary, error) {
	files, err := o.discover(src)
	if err != nil {
		return Summary{}, err
	}
	total := len(files)
	o.log.Info("discovered media files", "count", total, "workers", o.opts.Workers)
	if o.opts.OnStart != nil {
		o.opts.OnStart(total)
	}

	jobs := make(chan string)
	results := make(chan fileOutcome)

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- f:
			}
		}
	}()

	// Dispatched files run detached from cancellation.
	work := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for range o.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- o.processFile(work, path)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var sum Summary
	for res := range results {
		sum.add(res)
		if o.opts.OnProgress != nil && (sum.Processed%o.opts.ProgressEvery == 0 || sum.Processed == total) {
			o.opts.OnProgress(sum.Processed, total)
		}
	}
	if sum.Processed < total {
		o.log.Warn("run interrupted", "processed", sum.Processed, "total", total)
	}
	return sum, nil
}

// discover lists media files under src, leaving out the archive itself when
// it lives inside src.
func (o *Organizer) discover(src string) ([]string, error) {
	var exclude []string
	if media.Within(o.dest, src) {
		exclude = append(exclude, o.dest)
	}
	var files []string
	err := media.Walk(src, exclude, func(path string, kind media.Kind) error {
		if kind != media.Unknown {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", src, err)
	}
	return files, nil
}

func (o *Organizer) processFile(ctx context.Context, path string) fileOutcome {
	res, err := o.resolver.Collect(ctx, path)
	if err != nil {
		if errors.Is(err, metadata.ErrUnsupported) {
			return outcomeSkipped
		}
		o.log.Warn("metadata collection failed", "path", path, "error", err)
		return outcomeFailed
	}
	cand, ok := res.Resolved()
	if !ok {
		o.log.Info("no date found, skipping", "path", path)
		return outcomeSkipped
	}
	loc, err := archive.Locate(o.dest, cand.Time)
	if err != nil {
		o.log.Warn("cannot build destination, skipping", "path", path, "error", err)
		return outcomeSkipped
	}

	lock := o.locks.For(loc.Dir)
	lock.Lock()
	defer lock.Unlock()

	mv, err := o.move(path, loc)
	if err != nil {
		o.log.Warn("move failed", "path", path, "dest", loc.Dir, "error", err)
		return outcomeFailed
	}
	o.log.Info(mv.Outcome.String(), "path", path, "dest", mv.Dest, "backend", cand.Backend, "field", cand.Field)

	if media.Lookup(path) == media.Video {
		o.moveSidecars(path, loc)
	}
	if mv.Outcome == archive.Duplicate {
		return outcomeDuplicate
	}
	return outcomeMoved
}

// moveSidecars relocates the companions of a video next to it. Their
// outcomes are logged, never counted.
func (o *Organizer) moveSidecars(video string, loc archive.Location) {
	for _, sc := range archive.Sidecars(video) {
		mv, err := o.move(sc, loc)
		if err != nil {
			o.log.Warn("sidecar move failed", "path", sc, "dest", loc.Dir, "error", err)
			continue
		}
		o.log.Info("sidecar "+mv.Outcome.String(), "path", sc, "dest", mv.Dest)
	}
}
