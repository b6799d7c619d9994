package archive

import "sync"

// DirLocks hands out one mutex per destination directory. Entries are
// created on first use and never removed during a run.
type DirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDirLocks() *DirLocks {
	return &DirLocks{locks: make(map[string]*sync.Mutex)}
}

// For returns the mutex guarding dir.
func (d *DirLocks) For(dir string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[dir]
	if !ok {
		l = &sync.Mutex{}
		d.locks[dir] = l
	}
	return l
}

// Len reports how many directories have been locked so far.
func (d *DirLocks) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.locks)
}
