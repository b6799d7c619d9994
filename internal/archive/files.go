package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/lavelinevgeny/mediasort/internal/media"
)

// ErrSourceMissing means the file to move is gone, typically already
// consumed as another file's sidecar.
var ErrSourceMissing = errors.New("source file missing")

// Outcome of one relocation attempt.
type Outcome int

const (
	Failed Outcome = iota
	Moved
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Result describes what Move did. Dest is the final path for Moved and the
// existing identical file for Duplicate.
type Result struct {
	Outcome Outcome
	Dest    string
	Renamed bool // a _n suffix was needed
}

// Move relocates src into loc. Names already taken by different content get
// a _1, _2... suffix; a name holding identical bytes makes src a duplicate
// and src is deleted. On Failed src is left where it was.
//
// Callers serialize Move per loc.Dir.
func Move(src string, loc Location) (Result, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return Result{}, fmt.Errorf("stat source: %w", err)
	}

	dst, dup, renamed, err := resolveDestination(src, srcInfo, loc)
	if err != nil {
		return Result{}, err
	}
	if dup {
		if err := os.Remove(src); err != nil {
			return Result{}, fmt.Errorf("remove duplicate source: %w", err)
		}
		return Result{Outcome: Duplicate, Dest: dst, Renamed: renamed}, nil
	}
	if dst == "" {
		// src already sits at its own destination.
		return Result{Outcome: Moved, Dest: src}, nil
	}
	if err := moveFile(src, dst); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Moved, Dest: dst, Renamed: renamed}, nil
}

// resolveDestination walks base, base_1, base_2... until it finds a free
// name (dup false) or one holding the same bytes as src (dup true). An empty
// dst with no error means src is itself one of the candidates.
func resolveDestination(src string, srcInfo os.FileInfo, loc Location) (dst string, dup, renamed bool, err error) {
	ext := media.Ext(src)
	for n := 0; ; n++ {
		candidate := loc.Path(n, ext)
		info, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, false, n > 0, nil
		}
		if err != nil {
			return "", false, false, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if os.SameFile(srcInfo, info) {
			return "", false, false, nil
		}
		if info.Size() != srcInfo.Size() {
			continue
		}
		equal, err := filesAreEqual(src, candidate)
		if err != nil {
			return "", false, false, err
		}
		if equal {
			return candidate, true, n > 0, nil
		}
	}
}

// filesAreEqual compares two files byte by byte.
func filesAreEqual(path1, path2 string) (bool, error) {
	f1, err := os.Open(path1)
	if err != nil {
		return false, err
	}
	defer f1.Close()

	f2, err := os.Open(path2)
	if err != nil {
		return false, err
	}
	defer f2.Close()

	const chunk = 64 << 10
	b1 := make([]byte, chunk)
	b2 := make([]byte, chunk)
	for {
		n1, err1 := io.ReadFull(f1, b1)
		n2, err2 := io.ReadFull(f2, b2)
		if n1 != n2 || !bytes.Equal(b1[:n1], b2[:n2]) {
			return false, nil
		}
		end1 := err1 == io.EOF || err1 == io.ErrUnexpectedEOF
		end2 := err2 == io.EOF || err2 == io.ErrUnexpectedEOF
		if err1 != nil && !end1 {
			return false, fmt.Errorf("read %s: %w", path1, err1)
		}
		if err2 != nil && !end2 {
			return false, fmt.Errorf("read %s: %w", path2, err2)
		}
		if end1 || end2 {
			return end1 && end2, nil
		}
	}
}

// moveFile renames src to dst, copying across file systems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("rename: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// copyFile copies src to a temporary file next to dst and renames it into
// place once the copy is complete, so dst never holds a partial file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mediasort-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	written, err := io.Copy(tmp, in)
	if err != nil {
		cleanup()
		return fmt.Errorf("copy failed: %w", err)
	}
	if written != info.Size() {
		cleanup()
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	_ = os.Chtimes(tmpName, info.ModTime(), info.ModTime())
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
