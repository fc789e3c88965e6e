package hls

import (
	"sync"
	"time"

	"github.com/scrubline/scrubline/media"
)

// Estimator tracks download bandwidth in bits per second.
type Estimator struct {
	mu       sync.Mutex
	estimate float64
	sampled  bool
	minBytes int
}

// NewEstimator starts from fallback until the first usable sample arrives.
func NewEstimator(fallback float64, minBytes int) *Estimator {
	return &Estimator{estimate: fallback, minBytes: minBytes}
}

// Sample records a download of n bytes that took d.
// Downloads smaller than the configured minimum say more about latency than bandwidth and are ignored.
func (e *Estimator) Sample(n int, d time.Duration) {
	if n < e.minBytes || d <= 0 {
		return
	}

	bps := float64(n) * 8 / d.Seconds()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.sampled {
		e.estimate = bps
		e.sampled = true
		return
	}

	e.estimate = 0.5*bps + 0.5*e.estimate
}

// Measured returns the estimate and whether it comes from an actual download.
func (e *Estimator) Measured() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimate, e.sampled
}

// Estimate returns the current bandwidth estimate.
func (e *Estimator) Estimate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimate
}

// ChooseLevel returns the highest level whose bitrate fits in estimate*factor,
// or the lowest level when none does. levels must be sorted by bitrate.
func ChooseLevel(levels []media.Level, estimate, factor float64) int {
	if len(levels) == 0 {
		return media.AutoLevel
	}

	budget := estimate * factor
	chosen := 0
	for i, level := range levels {
		if float64(level.Bitrate) <= budget {
			chosen = i
		}
	}

	return chosen
}
