// Package logging writes syslog-style leveled records to the console and,
// optionally, to mediasort.log.
//
// Console routing: NOTICE goes to stdout, ERR to stderr, everything else only
// to the log file. File lines are tab separated:
//
//	<timestamp>\t<level>\t<runID>\t<message>\t<key=value ...>
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// LevelNotice sits between INFO and WARN: normal but significant.
const LevelNotice = slog.Level(2)

// FileName is the log file created inside the log directory.
const FileName = "mediasort.log"

// LevelName returns the syslog name of level.
func LevelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= LevelNotice:
		return "NOTICE"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ParseLevel accepts debug, info, notice, warn/warning and error/err.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Notice logs at LevelNotice.
func Notice(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelNotice, msg, args...)
}

// NewRunID returns a short random id that tags every line of one run.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Options configures a Handler. Nil writers are skipped.
type Options struct {
	Stdout    io.Writer
	Stderr    io.Writer
	File      io.Writer
	FileLevel slog.Leveler
	RunID     string
}

// Handler is a slog.Handler with the routing described in the package doc.
type Handler struct {
	opts  Options
	mu    *sync.Mutex
	attrs []slog.Attr
}

func NewHandler(opts Options) *Handler {
	if opts.FileLevel == nil {
		opts.FileLevel = slog.LevelInfo
	}
	return &Handler{opts: opts, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.File != nil && level >= h.opts.FileLevel.Level() {
		return true
	}
	if level >= slog.LevelError {
		return h.opts.Stderr != nil
	}
	return level >= LevelNotice && level < slog.LevelWarn && h.opts.Stdout != nil
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var kv bytes.Buffer
	for _, a := range h.attrs {
		writeAttr(&kv, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&kv, a)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.File != nil && r.Level >= h.opts.FileLevel.Level() {
		ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
		line := fmt.Sprintf("%s\t%s\t%s\t%s%s\n", ts, LevelName(r.Level), h.opts.RunID, r.Message, kv.String())
		if _, err := io.WriteString(h.opts.File, line); err != nil {
			return err
		}
	}

	var console io.Writer
	switch {
	case r.Level >= slog.LevelError:
		console = h.opts.Stderr
	case r.Level >= LevelNotice && r.Level < slog.LevelWarn:
		console = h.opts.Stdout
	}
	if console == nil {
		return nil
	}
	line := fmt.Sprintf("[%s] %s%s\n", LevelName(r.Level), capitalize(r.Message), strings.ReplaceAll(kv.String(), "\t", " "))
	_, err := io.WriteString(console, line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		opts:  h.opts,
		mu:    h.mu,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *Handler) WithGroup(string) slog.Handler { return h }

func writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(buf, "\t%s=%v", a.Key, a.Value)
}

// capitalize upper-cases the first rune for console output.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, sz := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[sz:]
}

// Open builds the run logger. With toFile set, records at level and above
// are appended to logDir/mediasort.log; the returned closer closes it.
func Open(logDir, runID string, level slog.Level, toFile bool) (*slog.Logger, io.Closer, error) {
	opts := Options{Stdout: os.Stdout, Stderr: os.Stderr, FileLevel: level, RunID: runID}
	if !toFile {
		return slog.New(NewHandler(opts)), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	opts.File = f
	return slog.New(NewHandler(opts)), f, nil
}
