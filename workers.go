package slidecast

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one slide renders at a time.
	MinWorkers = 1

	// MaxWorkers caps concurrent pages per job to bound browser memory.
	MaxWorkers = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolveWorkers returns the rasterization fan-out for one job.
// An explicit positive value wins, clamped to MaxWorkers; otherwise
// GOMAXPROCS/2 clamped to [MinWorkers, MaxWorkers].
func ResolveWorkers(explicit int) int {
	n := explicit
	if n <= 0 {
		n = runtime.GOMAXPROCS(0) / cpuDivisor
	}
	return min(max(n, MinWorkers), MaxWorkers)
}
