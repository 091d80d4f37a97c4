// Package client holds the prediction and reconciliation logic a game
// client runs against the authoritative server. It reuses the sim
// package's movement resolver and fixed-timestep accumulator so the
// predicted positions are bit-identical to the server's.
package client

import (
	"time"

	"slimepit/server/internal/sim"
)

// Intent is the directional/attack state read from the local controls
// each predicted tick.
type Intent struct {
	Left   bool
	Right  bool
	Up     bool
	Down   bool
	Attack bool
}

// Predictor speculatively applies the player's own inputs ahead of
// server confirmation and replays the unacknowledged tail whenever an
// authoritative update arrives.
type Predictor struct {
	cfg     sim.Config
	stepper *sim.Stepper

	seq       uint64
	pending   []sim.Input
	predicted sim.Vec2
	lastAck   uint64
}

// NewPredictor starts predicting from the authoritative spawn position
// delivered in the join keyframe.
func NewPredictor(cfg sim.Config, start sim.Vec2) *Predictor {
	cfg = cfg.Normalized()
	return &Predictor{
		cfg:       cfg,
		stepper:   sim.NewStepper(cfg.TickInterval, cfg.CatchupMaxTicks),
		predicted: start,
	}
}

// Position returns the current predicted position for rendering.
func (p *Predictor) Position() sim.Vec2 {
	return p.predicted
}

// Pending reports the number of unacknowledged inputs.
func (p *Predictor) Pending() int {
	return len(p.pending)
}

// Advance runs the local fixed-timestep loop. For every due tick it
// stamps the next sequence number, records the input as pending, and
// immediately applies the movement resolver to the predicted position.
// The returned inputs must be sent to the server in order.
func (p *Predictor) Advance(now time.Time, intent Intent) []sim.Input {
	ticks := p.stepper.Advance(now)
	if ticks == 0 {
		return nil
	}
	out := make([]sim.Input, 0, ticks)
	for i := 0; i < ticks; i++ {
		p.seq++
		in := sim.Input{
			Seq:    p.seq,
			Left:   intent.Left,
			Right:  intent.Right,
			Up:     intent.Up,
			Down:   intent.Down,
			Attack: intent.Attack,
		}
		p.pending = append(p.pending, in)
		p.predicted = sim.Move(p.predicted, in, p.cfg)
		out = append(out, in)
	}
	return out
}

// Reconcile processes an authoritative update for the local player.
// Acks older than one already handled are ignored (updates may arrive
// out of order). Every pending input at or below the ack is dropped, the
// remainder is replayed from the server position, and the predicted
// position snaps to the result. No smoothing: prediction error should be
// rare and brief, not masked.
func (p *Predictor) Reconcile(serverPos sim.Vec2, ack uint64) {
	if ack < p.lastAck {
		return
	}
	p.lastAck = ack

	kept := p.pending[:0]
	for _, in := range p.pending {
		if in.Seq > ack {
			kept = append(kept, in)
		}
	}
	p.pending = kept

	pos := serverPos
	for _, in := range p.pending {
		pos = sim.Move(pos, in, p.cfg)
	}
	p.predicted = pos
}

// RemoteInterpolator smooths other players' positions toward each
// received server value. Remote players are never predicted.
type RemoteInterpolator struct {
	current sim.Vec2
	target  sim.Vec2
	factor  float64
}

// NewRemoteInterpolator starts at the first known position. Factor is
// the fraction of the remaining distance covered per render step, in
// (0, 1].
func NewRemoteInterpolator(start sim.Vec2, factor float64) *RemoteInterpolator {
	if factor <= 0 || factor > 1 {
		factor = 0.35
	}
	return &RemoteInterpolator{current: start, target: start, factor: factor}
}

// SetTarget records the latest authoritative position.
func (ri *RemoteInterpolator) SetTarget(target sim.Vec2) {
	ri.target = target
}

// Step moves the rendered position a fraction closer to the target and
// returns it.
func (ri *RemoteInterpolator) Step() sim.Vec2 {
	ri.current.X += (ri.target.X - ri.current.X) * ri.factor
	ri.current.Y += (ri.target.Y - ri.current.Y) * ri.factor
	return ri.current
}
