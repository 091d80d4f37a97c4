package client

import (
	"math"
	"testing"
	"time"

	"slimepit/server/internal/sim"
)

func testConfig() sim.Config {
	return sim.DefaultConfig()
}

func TestPredictorAdvanceStampsSequentialInputs(t *testing.T) {
	cfg := testConfig()
	start := time.Now()
	p := NewPredictor(cfg, sim.Vec2{X: 100, Y: 100})
	p.Advance(start, Intent{}) // prime the local clock

	sent := p.Advance(start.Add(3*cfg.TickInterval), Intent{Right: true})
	if len(sent) != 3 {
		t.Fatalf("expected three inputs for three due ticks, got %d", len(sent))
	}
	for i, in := range sent {
		if in.Seq != uint64(i+1) || !in.Right {
			t.Fatalf("expected sequential right inputs, got %+v at %d", in, i)
		}
	}
	want := sim.Vec2{X: 100 + 3*cfg.MoveSpeed, Y: 100}
	if p.Position() != want {
		t.Fatalf("expected predicted position %+v, got %+v", want, p.Position())
	}
	if p.Pending() != 3 {
		t.Fatalf("expected three pending inputs, got %d", p.Pending())
	}
}

func TestPredictorReconcileReplaysUnackedTail(t *testing.T) {
	cfg := testConfig()
	start := time.Now()
	p := NewPredictor(cfg, sim.Vec2{X: 100, Y: 100})
	p.Advance(start, Intent{})

	// Predict three ticks: seq 5..7 after four earlier acknowledged ones.
	p.Advance(start.Add(4*cfg.TickInterval), Intent{Right: true})
	p.Reconcile(sim.Vec2{X: 100 + 4*cfg.MoveSpeed, Y: 100}, 4)
	p.Advance(start.Add(7*cfg.TickInterval), Intent{Right: true})

	// Server confirms through seq 6; inputs 7 remain pending and replay
	// from the authoritative position.
	serverPos := sim.Vec2{X: 100 + 6*cfg.MoveSpeed, Y: 100}
	p.Reconcile(serverPos, 6)

	if p.Pending() != 1 {
		t.Fatalf("expected one unacked input after reconcile, got %d", p.Pending())
	}
	want := sim.Vec2{X: 100 + 7*cfg.MoveSpeed, Y: 100}
	if p.Position() != want {
		t.Fatalf("expected replayed position %+v, got %+v", want, p.Position())
	}
}

func TestPredictorReconcileSnapsOnDivergence(t *testing.T) {
	cfg := testConfig()
	start := time.Now()
	p := NewPredictor(cfg, sim.Vec2{X: 100, Y: 100})
	p.Advance(start, Intent{})
	p.Advance(start.Add(2*cfg.TickInterval), Intent{Right: true})

	// The server disagrees (e.g. it clamped the move). All inputs acked.
	p.Reconcile(sim.Vec2{X: 50, Y: 60}, 2)

	if p.Pending() != 0 {
		t.Fatalf("expected no pending inputs, got %d", p.Pending())
	}
	if p.Position() != (sim.Vec2{X: 50, Y: 60}) {
		t.Fatalf("expected hard snap to server position, got %+v", p.Position())
	}
}

func TestPredictorIgnoresOutOfOrderAcks(t *testing.T) {
	cfg := testConfig()
	start := time.Now()
	p := NewPredictor(cfg, sim.Vec2{X: 100, Y: 100})
	p.Advance(start, Intent{})
	p.Advance(start.Add(3*cfg.TickInterval), Intent{Right: true})

	p.Reconcile(sim.Vec2{X: 100 + 3*cfg.MoveSpeed, Y: 100}, 3)
	pos := p.Position()

	// A stale update for seq 1 arrives late and must not rewind.
	p.Reconcile(sim.Vec2{X: 100 + cfg.MoveSpeed, Y: 100}, 1)
	if p.Position() != pos {
		t.Fatalf("expected stale ack ignored, position moved to %+v", p.Position())
	}
}

func TestRemoteInterpolatorConverges(t *testing.T) {
	ri := NewRemoteInterpolator(sim.Vec2{X: 0, Y: 0}, 0.5)
	ri.SetTarget(sim.Vec2{X: 100, Y: 0})

	got := ri.Step()
	if got.X != 50 {
		t.Fatalf("expected halfway after one step, got %+v", got)
	}
	for i := 0; i < 50; i++ {
		got = ri.Step()
	}
	if math.Abs(got.X-100) > 0.001 {
		t.Fatalf("expected convergence to the target, got %+v", got)
	}
}

func TestRemoteInterpolatorDefaultsBadFactor(t *testing.T) {
	ri := NewRemoteInterpolator(sim.Vec2{}, -1)
	ri.SetTarget(sim.Vec2{X: 100})
	got := ri.Step()
	if got.X <= 0 || got.X >= 100 {
		t.Fatalf("expected a sane default factor, got %+v", got)
	}
}
