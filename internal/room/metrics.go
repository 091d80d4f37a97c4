package room

import "sync/atomic"

// Metrics tracks per-room counters for the monitoring endpoint. All
// fields are updated atomically so HTTP readers never touch room state.
type Metrics struct {
	TickCount      atomic.Int64
	TotalTickNs    atomic.Int64
	InputsAccepted atomic.Int64
	InputsDropped  atomic.Int64
	Broadcasts     atomic.Int64
	Joins          atomic.Int64
	Reconnects     atomic.Int64
	Takeovers      atomic.Int64
	Evictions      atomic.Int64
}

// AddTick records one completed tick and its duration.
func (m *Metrics) AddTick(ns int64) {
	m.TickCount.Add(1)
	m.TotalTickNs.Add(ns)
}

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	ticks := m.TickCount.Load()
	total := m.TotalTickNs.Load()
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]any{
		"tick_count":      ticks,
		"avg_tick_ms":     avgMs,
		"inputs_accepted": m.InputsAccepted.Load(),
		"inputs_dropped":  m.InputsDropped.Load(),
		"broadcasts":      m.Broadcasts.Load(),
		"joins":           m.Joins.Load(),
		"reconnects":      m.Reconnects.Load(),
		"takeovers":       m.Takeovers.Load(),
		"evictions":       m.Evictions.Load(),
	}
}
