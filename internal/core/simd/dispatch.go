// Package simd implements the vectorized bulk-update primitives from
// spec.md §4.8: velocity/position advancement and force-total accumulation
// over the dense SoA field arrays, processed in CPU-width-sized lanes with
// a scalar tail for the remainder. Pure Go has no portable SIMD intrinsics,
// so "vectorized" here means loop-unrolled by detected lane width rather
// than emitting actual vector instructions — the dispatch boundary is kept
// narrow (primitives.go) so a real assembly backend could replace it later
// without touching callers. Grounded on the domain stack's
// golang.org/x/sys/cpu usage for feature detection.
package simd

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// LaneWidth is the number of float64 lanes a backend processes per
// unrolled iteration.
type LaneWidth int

const (
	Lane1 LaneWidth = 1
	Lane4 LaneWidth = 4
	Lane8 LaneWidth = 8
)

var (
	detectOnce  sync.Once
	detectedLane LaneWidth
)

// Detect returns the process-wide lane width chosen from the CPU's
// detected feature set, computed once and cached for the process's
// lifetime — CPU features don't change at runtime, so repeated detection
// would only add per-call overhead.
func Detect() LaneWidth {
	detectOnce.Do(func() {
		switch {
		case cpu.X86.HasAVX512F:
			detectedLane = Lane8
		case cpu.X86.HasAVX2, cpu.X86.HasAVX:
			detectedLane = Lane4
		case cpu.ARM64.HasASIMD:
			detectedLane = Lane4
		default:
			detectedLane = Lane1
		}
	})
	return detectedLane
}
