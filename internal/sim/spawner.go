package sim

import (
	"time"

	"github.com/google/uuid"

	"slimepit/server/internal/journal"
)

// stepEnemies runs the spawner and then one random wander step per enemy.
// Enemies route through the same movement resolver as players so they
// obey identical clamping.
func (w *World) stepEnemies(now time.Time) {
	if len(w.enemies) < w.cfg.MaxEnemies && now.Sub(w.lastSpawn) >= w.cfg.SpawnRate {
		e := &Enemy{ID: uuid.NewString(), Pos: w.randomPos()}
		w.enemies = append(w.enemies, e)
		w.lastSpawn = now
		w.journal.Append(journal.Patch{
			Kind:     journal.PatchEnemySpawned,
			EntityID: e.ID,
			Payload:  journal.EnemySpawnedPayload{X: e.Pos.X, Y: e.Pos.Y},
		})
	}

	for _, e := range w.enemies {
		e.Pos = Move(e.Pos, w.wanderIntent(), w.cfg)
		w.journal.Append(journal.Patch{
			Kind:     journal.PatchEnemyPos,
			EntityID: e.ID,
			Payload:  journal.EnemyPosPayload{X: e.Pos.X, Y: e.Pos.Y},
		})
	}
}

// wanderIntent picks mutually exclusive per-axis flags at random. A third
// of the time an axis stays idle.
func (w *World) wanderIntent() Input {
	var in Input
	switch w.rng.Intn(3) {
	case 0:
		in.Left = true
	case 1:
		in.Right = true
	}
	switch w.rng.Intn(3) {
	case 0:
		in.Up = true
	case 1:
		in.Down = true
	}
	return in
}
