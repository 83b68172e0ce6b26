// internal/poll/interval.go
package poll

import (
	"time"
)

// IntervalPolicy controls the adaptive delay between poll cycles. An active
// conversation (growing event count) is polled at the initial cadence; an
// idle one backs off gently; fetch errors back off more steeply.
type IntervalPolicy struct {
	Initial      time.Duration
	Max          time.Duration
	GrowthFactor float64
	ErrorFactor  float64
}

// DefaultIntervalPolicy returns the standard cadence: 1s initial, 3s cap,
// 1.2x idle growth, 1.5x error growth.
func DefaultIntervalPolicy() *IntervalPolicy {
	return &IntervalPolicy{
		Initial:      1 * time.Second,
		Max:          3 * time.Second,
		GrowthFactor: 1.2,
		ErrorFactor:  1.5,
	}
}

// Next returns the delay before the next cycle. A growing event count resets
// to the initial interval; otherwise the current interval grows toward the
// cap.
func (p *IntervalPolicy) Next(current time.Duration, grew bool) time.Duration {
	if grew {
		return p.Initial
	}
	return p.clamp(time.Duration(float64(current) * p.GrowthFactor))
}

// NextAfterError returns the delay after a failed fetch, steeper than idle
// growth.
func (p *IntervalPolicy) NextAfterError(current time.Duration) time.Duration {
	return p.clamp(time.Duration(float64(current) * p.ErrorFactor))
}

func (p *IntervalPolicy) clamp(d time.Duration) time.Duration {
	if d > p.Max {
		return p.Max
	}
	if d < p.Initial {
		return p.Initial
	}
	return d
}
