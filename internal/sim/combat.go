package sim

import (
	"time"

	"slimepit/server/internal/journal"
)

// canAttack reports whether the player's previous attack animation has
// fully cooled down.
func (w *World) canAttack(p *PlayerState, now time.Time) bool {
	return now.Sub(p.LastAttackTime) >= w.cfg.AttackCooldown
}

// resolveDamageWindow runs the AABB hit test while the attack's damage
// window is open. Every overlapping enemy is removed and credited as one
// kill. Outside the window the debug hitbox is cleared.
func (w *World) resolveDamageWindow(p *PlayerState, now time.Time) {
	since := now.Sub(p.LastAttackTime)
	open := p.LastAttackTime != (time.Time{}) &&
		since >= w.cfg.AttackDamageDelay &&
		since < w.cfg.AttackDamageDelay+w.cfg.AttackFrameTime
	if !open {
		p.HitboxCenter = nil
		return
	}

	center := p.Pos
	if p.FacingRight {
		center.X += w.cfg.AttackReach
	} else {
		center.X -= w.cfg.AttackReach
	}
	p.HitboxCenter = &center

	kills := 0
	remaining := w.enemies[:0]
	for _, e := range w.enemies {
		if aabbOverlap(center, w.cfg.AttackHalf, e.Pos, w.cfg.EnemyHalf) {
			kills++
			w.journal.Append(journal.Patch{Kind: journal.PatchEnemyRemoved, EntityID: e.ID})
			continue
		}
		remaining = append(remaining, e)
	}
	w.enemies = remaining

	if kills > 0 {
		p.KillCount += kills
		w.appendCombat(p)
	}
}
