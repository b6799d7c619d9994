package organizer

import "runtime"

const (
	minWorkers = 4
	maxWorkers = 16
)

// DefaultWorkers sizes the pool for the running machine.
func DefaultWorkers() int {
	return workerCount(runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
}

// workerCount is half the cores on Apple Silicon, twice the cores elsewhere,
// clamped to [minWorkers, maxWorkers].
func workerCount(goos, goarch string, cpus int) int {
	n := cpus * 2
	if goos == "darwin" && goarch == "arm64" {
		n = cpus / 2
	}
	return max(minWorkers, min(n, maxWorkers))
}
