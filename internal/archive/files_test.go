package archive

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lavelinevgeny/mediasort/internal/timestamp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestLocate(t *testing.T) {
	root := t.TempDir()
	loc, err := Locate(root, timestamp.Civil(2019, 8, 26, 9, 54, 50, 0))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if want := filepath.Join(root, "2019-08", "26"); loc.Dir != want {
		t.Errorf("Dir = %q, want %q", loc.Dir, want)
	}
	if loc.Base != "20190826_095450" {
		t.Errorf("Base = %q, want 20190826_095450", loc.Base)
	}
	if info, err := os.Stat(loc.Dir); err != nil || !info.IsDir() {
		t.Errorf("bucket dir not created: %v", err)
	}
	if _, err := Locate(root, timestamp.Timestamp{}); !errors.Is(err, ErrNoTimestamp) {
		t.Errorf("Locate(zero) error = %v, want ErrNoTimestamp", err)
	}
}

func TestLocate_Concurrent(t *testing.T) {
	root := t.TempDir()
	ts := timestamp.Civil(2020, 2, 29, 12, 0, 0, 0)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Locate(root, ts); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Locate: %v", err)
	}
}

func TestLocationPath(t *testing.T) {
	loc := Location{Dir: "d", Base: "20190826_095450"}
	tests := []struct {
		n    int
		want string
	}{
		{0, filepath.Join("d", "20190826_095450.jpg")},
		{1, filepath.Join("d", "20190826_095450_1.jpg")},
		{12, filepath.Join("d", "20190826_095450_12.jpg")},
	}
	for _, tt := range tests {
		if got := loc.Path(tt.n, ".jpg"); got != tt.want {
			t.Errorf("Path(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMove_Collisions(t *testing.T) {
	src := t.TempDir()
	loc := Location{Dir: filepath.Join(t.TempDir(), "2019-08", "26"), Base: "20190826_095450"}
	if err := os.MkdirAll(loc.Dir, 0o755); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		name    string
		content string
		want    Outcome
		dest    string
	}{
		{"a.JPG", "first", Moved, "20190826_095450.jpg"},
		{"b.jpg", "second", Moved, "20190826_095450_1.jpg"},
		{"c.jpg", "third!", Moved, "20190826_095450_2.jpg"},
		{"d.jpg", "second", Duplicate, "20190826_095450_1.jpg"},
		{"e.jpg", "first", Duplicate, "20190826_095450.jpg"},
	}
	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			p := filepath.Join(src, st.name)
			writeFile(t, p, st.content)

			res, err := Move(p, loc)
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			if res.Outcome != st.want {
				t.Errorf("Outcome = %s, want %s", res.Outcome, st.want)
			}
			if want := filepath.Join(loc.Dir, st.dest); res.Dest != want {
				t.Errorf("Dest = %q, want %q", res.Dest, want)
			}
			if exists(p) {
				t.Errorf("source %s still present", p)
			}
			if got := readFile(t, res.Dest); got != st.content {
				t.Errorf("dest content = %q, want %q", got, st.content)
			}
		})
	}

	entries, err := os.ReadDir(loc.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("bucket holds %d files, want 3", len(entries))
	}
}

func TestMove_Idempotent(t *testing.T) {
	loc := Location{Dir: t.TempDir(), Base: "20200101_000000"}
	content := "same bytes"

	for run := 0; run < 2; run++ {
		p := filepath.Join(t.TempDir(), "IMG_0001.jpg")
		writeFile(t, p, content)
		res, err := Move(p, loc)
		if err != nil {
			t.Fatalf("run %d: Move: %v", run, err)
		}
		want := Moved
		if run == 1 {
			want = Duplicate
		}
		if res.Outcome != want {
			t.Errorf("run %d: Outcome = %s, want %s", run, res.Outcome, want)
		}
	}
	entries, _ := os.ReadDir(loc.Dir)
	if len(entries) != 1 {
		t.Errorf("bucket holds %d files, want 1", len(entries))
	}
}

func TestMove_SourceAlreadyInPlace(t *testing.T) {
	loc := Location{Dir: t.TempDir(), Base: "20200101_000000"}
	p := loc.Path(0, ".jpg")
	writeFile(t, p, "x")

	res, err := Move(p, loc)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.Outcome != Moved || res.Dest != p {
		t.Errorf("Move() = %+v, want Moved at %s", res, p)
	}
	if !exists(p) {
		t.Error("file deleted by self-move")
	}
}

func TestMove_MissingSource(t *testing.T) {
	loc := Location{Dir: t.TempDir(), Base: "20200101_000000"}
	_, err := Move(filepath.Join(t.TempDir(), "gone.jpg"), loc)
	if !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Move() error = %v, want ErrSourceMissing", err)
	}
}

func TestMove_FailureLeavesSource(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.jpg")
	writeFile(t, p, "keep me")
	loc := Location{Dir: filepath.Join(t.TempDir(), "missing", "dir"), Base: "20200101_000000"}

	if _, err := Move(p, loc); err == nil {
		t.Fatal("Move() into missing dir error = nil")
	}
	if got := readFile(t, p); got != "keep me" {
		t.Errorf("source content = %q after failed move", got)
	}
}

func TestFilesAreEqual(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 200<<10)
	for i := range big {
		big[i] = byte(i)
	}
	other := append([]byte(nil), big...)
	other[len(other)-1] ^= 0xff

	files := map[string][]byte{
		"a": big, "b": append([]byte(nil), big...), "c": other, "d": big[:1000], "e": {},
		"f": {},
	}
	for name, b := range files {
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		a, b string
		want bool
	}{
		{"a", "b", true},
		{"a", "c", false},
		{"a", "d", false},
		{"d", "a", false},
		{"e", "f", true},
		{"e", "d", false},
	}
	for _, tt := range tests {
		got, err := filesAreEqual(filepath.Join(dir, tt.a), filepath.Join(dir, tt.b))
		if err != nil {
			t.Fatalf("filesAreEqual(%s, %s): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("filesAreEqual(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mov")
	dst := filepath.Join(dir, "out", "dst.mov")
	writeFile(t, src, "payload")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	if got := readFile(t, dst); got != "payload" {
		t.Errorf("dst = %q, want payload", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(dst))
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

func TestDirLocks(t *testing.T) {
	d := NewDirLocks()
	if d.For("a") != d.For("a") {
		t.Error("For(a) returned different mutexes")
	}
	if d.For("a") == d.For("b") {
		t.Error("For(a) == For(b)")
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}
