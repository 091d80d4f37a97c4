package sim

import "time"

// Stepper is a fixed-timestep accumulator. Callers feed it wall-clock
// times and run exactly the number of ticks it returns, which keeps the
// simulation rate independent of timer jitter. The server room and the
// client predictor share this implementation so both sides tick at the
// same cadence.
type Stepper struct {
	interval time.Duration
	max      int
	last     time.Time
	acc      time.Duration
	started  bool
}

// NewStepper returns an accumulator producing one tick per interval,
// running at most maxCatchup ticks per advance (0 means unbounded).
func NewStepper(interval time.Duration, maxCatchup int) *Stepper {
	if interval <= 0 {
		interval = DefaultConfig().TickInterval
	}
	return &Stepper{interval: interval, max: maxCatchup}
}

// Interval returns the fixed tick duration.
func (s *Stepper) Interval() time.Duration {
	return s.interval
}

// Advance accounts for the wall time since the previous call and returns
// how many fixed ticks are due. When the backlog exceeds the catch-up
// bound the excess is shed rather than replayed.
func (s *Stepper) Advance(now time.Time) int {
	if !s.started {
		s.started = true
		s.last = now
		return 0
	}
	elapsed := now.Sub(s.last)
	s.last = now
	if elapsed < 0 {
		elapsed = 0
	}
	s.acc += elapsed

	ticks := 0
	for s.acc >= s.interval {
		s.acc -= s.interval
		ticks++
	}
	if s.max > 0 && ticks > s.max {
		ticks = s.max
		s.acc = 0
	}
	return ticks
}
