package sim

import (
	"math/rand"
	"testing"
	"time"

	"slimepit/server/internal/journal"
)

func newTestWorld(cfg Config) *World {
	return NewWorld(cfg, journal.New(), rand.New(rand.NewSource(1)))
}

func TestWorldAppliesInputsInOrder(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")
	p.Pos = Vec2{X: 100, Y: 100}

	for seq := uint64(1); seq <= 3; seq++ {
		if !w.QueueInput("s1", Input{Seq: seq, Right: true}) {
			t.Fatalf("expected input %d to queue", seq)
		}
	}
	w.Step(time.Now())

	want := Vec2{X: 100 + 3*cfg.MoveSpeed, Y: 100}
	if p.Pos != want {
		t.Fatalf("expected position %+v after drain, got %+v", want, p.Pos)
	}
	if p.LastProcessedSeq != 3 {
		t.Fatalf("expected ack 3, got %d", p.LastProcessedSeq)
	}
	if p.Queue.Len() != 0 {
		t.Fatalf("expected queue drained, got %d pending", p.Queue.Len())
	}
}

func TestWorldIgnoresStaleSequenceNumbers(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")
	p.Pos = Vec2{X: 100, Y: 100}

	w.QueueInput("s1", Input{Seq: 3, Right: true})
	w.Step(time.Now())
	w.QueueInput("s1", Input{Seq: 2, Right: true})
	w.Step(time.Now())

	want := Vec2{X: 100 + cfg.MoveSpeed, Y: 100}
	if p.Pos != want {
		t.Fatalf("expected stale input ignored, position %+v, got %+v", want, p.Pos)
	}
	if p.LastProcessedSeq != 3 {
		t.Fatalf("expected ack to stay at 3, got %d", p.LastProcessedSeq)
	}
}

func TestWorldAttackCooldownLimitsAttacks(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")

	now := time.Now()
	w.QueueInput("s1", Input{Seq: 1, Attack: true})
	w.QueueInput("s1", Input{Seq: 2, Attack: true})

	w.Step(now)
	w.Step(now.Add(10 * time.Millisecond))

	if p.AttackCount != 1 {
		t.Fatalf("expected exactly one attack inside the cooldown, got %d", p.AttackCount)
	}
	if p.Queue.Len() != 1 {
		t.Fatalf("expected second attack still queued, got %d pending", p.Queue.Len())
	}

	w.Step(now.Add(cfg.AttackCooldown))
	if p.AttackCount != 2 {
		t.Fatalf("expected second attack after cooldown, got %d", p.AttackCount)
	}
}

func TestWorldMidAttackBlocksRestOfBatch(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")
	p.Pos = Vec2{X: 100, Y: 100}

	w.QueueInput("s1", Input{Seq: 1, Right: true})
	w.QueueInput("s1", Input{Seq: 2, Attack: true})
	w.QueueInput("s1", Input{Seq: 3, Right: true})

	w.Step(time.Now())

	// The move before the attack applies; the move after it waits out
	// the attack cooldown.
	want := Vec2{X: 100 + cfg.MoveSpeed, Y: 100}
	if p.Pos != want {
		t.Fatalf("expected position %+v, got %+v", want, p.Pos)
	}
	if p.Queue.Len() != 1 {
		t.Fatalf("expected trailing input left queued, got %d pending", p.Queue.Len())
	}
	if p.LastProcessedSeq != 2 {
		t.Fatalf("expected ack 2, got %d", p.LastProcessedSeq)
	}
}

func TestWorldDamageWindowKillsOverlappingEnemies(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")
	p.Pos = Vec2{X: 500, Y: 400}
	p.FacingRight = true

	now := time.Now()
	p.LastAttackTime = now.Add(-cfg.AttackDamageDelay)

	hit1 := &Enemy{ID: "e1", Pos: Vec2{X: 500 + cfg.AttackReach, Y: 400}}
	hit2 := &Enemy{ID: "e2", Pos: Vec2{X: 500 + cfg.AttackReach + cfg.AttackHalf.X, Y: 400}}
	miss := &Enemy{ID: "e3", Pos: Vec2{X: 100, Y: 100}}
	w.enemies = []*Enemy{hit1, hit2, miss}

	w.resolveDamageWindow(p, now)

	if w.EnemyCount() != 1 {
		t.Fatalf("expected one surviving enemy, got %d", w.EnemyCount())
	}
	if p.KillCount != 2 {
		t.Fatalf("expected one kill per overlapping enemy, got %d", p.KillCount)
	}
	if p.HitboxCenter == nil {
		t.Fatalf("expected debug hitbox center inside the damage window")
	}

	// A later pass inside the same attack cannot double-credit removed
	// enemies.
	w.resolveDamageWindow(p, now.Add(cfg.AttackFrameTime/2))
	if p.KillCount != 2 {
		t.Fatalf("expected kill count unchanged, got %d", p.KillCount)
	}
}

func TestWorldHitboxClearedOutsideWindow(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")

	now := time.Now()
	p.LastAttackTime = now.Add(-cfg.AttackDamageDelay)
	w.resolveDamageWindow(p, now)
	if p.HitboxCenter == nil {
		t.Fatalf("expected hitbox center inside the window")
	}

	w.resolveDamageWindow(p, now.Add(cfg.AttackFrameTime))
	if p.HitboxCenter != nil {
		t.Fatalf("expected hitbox cleared after the window")
	}
}

func TestWorldFacingSelectsHitboxSide(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("s1", "u1", "alice")
	p.Pos = Vec2{X: 500, Y: 400}
	p.FacingRight = false

	now := time.Now()
	p.LastAttackTime = now.Add(-cfg.AttackDamageDelay)

	behind := &Enemy{ID: "e1", Pos: Vec2{X: 500 + cfg.AttackReach, Y: 400}}
	ahead := &Enemy{ID: "e2", Pos: Vec2{X: 500 - cfg.AttackReach, Y: 400}}
	w.enemies = []*Enemy{behind, ahead}

	w.resolveDamageWindow(p, now)

	if w.EnemyCount() != 1 {
		t.Fatalf("expected one kill, got %d survivors", 2-w.EnemyCount())
	}
	if w.enemies[0].ID != "e1" {
		t.Fatalf("expected the enemy behind the player to survive, got %s", w.enemies[0].ID)
	}
}

func TestWorldAdoptPlayerKeepsStatsAndClearsQueue(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	p := w.AddPlayer("old", "u1", "alice")
	p.AttackCount = 5
	p.KillCount = 3
	w.QueueInput("old", Input{Seq: 1, Right: true})

	adopted, ok := w.AdoptPlayer("old", "new")
	if !ok {
		t.Fatalf("expected adoption to succeed")
	}
	if adopted.AttackCount != 5 || adopted.KillCount != 3 {
		t.Fatalf("expected stats preserved, got attacks=%d kills=%d", adopted.AttackCount, adopted.KillCount)
	}
	if adopted.Queue.Len() != 0 {
		t.Fatalf("expected queue cleared on adoption, got %d pending", adopted.Queue.Len())
	}
	if adopted.SessionID != "new" {
		t.Fatalf("expected session id rekeyed, got %s", adopted.SessionID)
	}
	if _, found := w.Player("old"); found {
		t.Fatalf("expected old session id removed")
	}
	if _, found := w.Player("new"); !found {
		t.Fatalf("expected player under new session id")
	}
}

func TestWorldStepIsolatesPlayerFaults(t *testing.T) {
	cfg := testConfig()
	w := newTestWorld(cfg)
	broken := w.AddPlayer("s1", "u1", "alice")
	healthy := w.AddPlayer("s2", "u2", "bob")
	healthy.Pos = Vec2{X: 100, Y: 100}
	broken.Queue = nil // force a panic inside this player's drain

	w.QueueInput("s2", Input{Seq: 1, Right: true})
	faults := w.Step(time.Now())

	if len(faults) != 1 || faults[0].SessionID != "s1" {
		t.Fatalf("expected a single fault for s1, got %+v", faults)
	}
	want := Vec2{X: 100 + cfg.MoveSpeed, Y: 100}
	if healthy.Pos != want {
		t.Fatalf("expected healthy player unaffected, got %+v", healthy.Pos)
	}
}
