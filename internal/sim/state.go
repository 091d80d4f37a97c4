package sim

import "time"

// PlayerState is the authoritative per-player simulation record. It is
// owned by the world and mutated only inside a tick or a session
// transition running on the room goroutine.
type PlayerState struct {
	SessionID string
	UserID    string
	Username  string

	Pos         Vec2
	FacingRight bool

	Attacking      bool
	LastAttackTime time.Time
	AttackCount    int
	KillCount      int

	// LastProcessedSeq is the highest input sequence applied so far. It is
	// replicated to clients as the prediction ack.
	LastProcessedSeq uint64

	Queue *InputQueue

	// HitboxCenter is set only while the attack damage window is open.
	// Debug aid for clients; never persisted.
	HitboxCenter *Vec2
}

// Enemy is a spawned random walker. It has no AI beyond one random step
// per tick and exists to be hit.
type Enemy struct {
	ID  string
	Pos Vec2
}

// PlayerSnapshot is the wire form of a player.
type PlayerSnapshot struct {
	SessionID   string  `json:"sessionId"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FacingRight bool    `json:"facingRight"`
	Attacking   bool    `json:"attacking"`
	AttackCount int     `json:"attackCount"`
	KillCount   int     `json:"killCount"`
	Ack         uint64  `json:"ack"`
}

// EnemySnapshot is the wire form of an enemy.
type EnemySnapshot struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Snapshot is a full keyframe of the world, sent on join and reconnect.
type Snapshot struct {
	Tick    uint64           `json:"t"`
	Players []PlayerSnapshot `json:"players"`
	Enemies []EnemySnapshot  `json:"enemies"`
}

func (p *PlayerState) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		SessionID:   p.SessionID,
		UserID:      p.UserID,
		Username:    p.Username,
		X:           p.Pos.X,
		Y:           p.Pos.Y,
		FacingRight: p.FacingRight,
		Attacking:   p.Attacking,
		AttackCount: p.AttackCount,
		KillCount:   p.KillCount,
		Ack:         p.LastProcessedSeq,
	}
}
