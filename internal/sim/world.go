package sim

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"slimepit/server/internal/journal"
)

// World owns the authoritative simulation state for one room: every
// player and every enemy. It is not safe for concurrent use; the room
// goroutine is the single writer.
type World struct {
	cfg     Config
	rng     *rand.Rand
	journal *journal.Journal

	players map[string]*PlayerState
	enemies []*Enemy

	lastSpawn time.Time
	tick      uint64
}

// Fault reports that processing one player's tick failed. The player is
// disconnected by the caller; the room keeps running.
type Fault struct {
	SessionID string
	Err       error
}

// NewWorld creates an empty world writing diffs into j. A nil rng falls
// back to a time-seeded source; tests pass a fixed seed.
func NewWorld(cfg Config, j *journal.Journal, rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &World{
		cfg:     cfg,
		rng:     rng,
		journal: j,
		players: make(map[string]*PlayerState),
	}
}

// Config returns the tuning the world was built with.
func (w *World) Config() Config {
	return w.cfg
}

// Tick returns the number of steps advanced so far.
func (w *World) Tick() uint64 {
	return w.tick
}

// PlayerCount reports the number of player records, orphaned ones
// included.
func (w *World) PlayerCount() int {
	return len(w.players)
}

// EnemyCount reports the number of live enemies.
func (w *World) EnemyCount() int {
	return len(w.enemies)
}

// Player looks up a player record by session id.
func (w *World) Player(sessionID string) (*PlayerState, bool) {
	p, ok := w.players[sessionID]
	return p, ok
}

// AddPlayer creates a fresh player at a random in-bounds position.
func (w *World) AddPlayer(sessionID, userID, username string) *PlayerState {
	p := &PlayerState{
		SessionID: sessionID,
		UserID:    userID,
		Username:  username,
		Pos:       w.randomPos(),
		Queue:     NewInputQueue(w.cfg.InputQueueCap),
	}
	w.players[sessionID] = p
	w.appendJoined(p)
	return p
}

// AdoptPlayer rekeys an existing player record to a new session id,
// clearing its input queue. Accumulated stats and position survive; this
// backs both reconnection resume and same-identity takeover.
func (w *World) AdoptPlayer(oldSessionID, newSessionID string) (*PlayerState, bool) {
	p, ok := w.players[oldSessionID]
	if !ok {
		return nil, false
	}
	if oldSessionID != newSessionID {
		delete(w.players, oldSessionID)
		w.journal.Append(journal.Patch{Kind: journal.PatchPlayerRemoved, EntityID: oldSessionID})
		p.SessionID = newSessionID
		w.players[newSessionID] = p
		w.appendJoined(p)
	}
	p.Queue.Clear()
	return p, true
}

// RemovePlayer deletes a player record and reports whether it existed.
func (w *World) RemovePlayer(sessionID string) bool {
	if _, ok := w.players[sessionID]; !ok {
		return false
	}
	delete(w.players, sessionID)
	w.journal.Append(journal.Patch{Kind: journal.PatchPlayerRemoved, EntityID: sessionID})
	return true
}

// QueueInput appends an input to a player's pending queue. It reports
// false when the player is unknown or the backlog is full.
func (w *World) QueueInput(sessionID string, in Input) bool {
	p, ok := w.players[sessionID]
	if !ok {
		return false
	}
	return p.Queue.Push(in)
}

// Step advances the simulation one tick: drain each player's queue in a
// stable order, resolve open damage windows, then run the spawner and
// enemy wander. Returned faults identify players whose processing
// panicked; the world itself stays consistent.
func (w *World) Step(now time.Time) []Fault {
	w.tick++
	var faults []Fault
	for _, id := range w.sessionIDs() {
		p, ok := w.players[id]
		if !ok {
			continue
		}
		if err := w.stepPlayer(p, now); err != nil {
			faults = append(faults, Fault{SessionID: id, Err: err})
		}
	}
	w.stepEnemies(now)
	return faults
}

func (w *World) stepPlayer(p *PlayerState, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("player tick: %v", r)
		}
	}()
	w.drainInputs(p, now)
	w.resolveDamageWindow(p, now)
	return nil
}

// drainInputs applies pending inputs head-first until the queue is empty.
// A player inside an attack cooldown keeps the rest of the batch queued
// for later ticks: a queued attack cannot be chased by further inputs
// applied out of order.
func (w *World) drainInputs(p *PlayerState, now time.Time) {
	for {
		if !w.canAttack(p, now) {
			return
		}
		in, ok := p.Queue.Pop()
		if !ok {
			return
		}
		w.applyInput(p, in, now)
	}
}

func (w *World) applyInput(p *PlayerState, in Input, now time.Time) {
	if in.Seq != 0 && in.Seq <= p.LastProcessedSeq {
		// Duplicate or stale; already acknowledged.
		return
	}

	p.Pos = Move(p.Pos, in, w.cfg)
	if in.Left != in.Right {
		p.FacingRight = in.Right
	}

	wasAttacking := p.Attacking
	if in.Attack {
		p.Attacking = true
		p.AttackCount++
		p.LastAttackTime = now
	} else {
		p.Attacking = false
	}

	if in.Seq > p.LastProcessedSeq {
		p.LastProcessedSeq = in.Seq
	}

	w.appendPos(p)
	if p.Attacking || wasAttacking != p.Attacking {
		w.appendCombat(p)
	}
}

func (w *World) sessionIDs() []string {
	ids := make([]string, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (w *World) randomPos() Vec2 {
	return Vec2{
		X: w.rng.Float64() * w.cfg.MapWidth,
		Y: w.rng.Float64() * w.cfg.MapHeight,
	}
}

// Snapshot produces a full keyframe in a stable order.
func (w *World) Snapshot() Snapshot {
	players := make([]PlayerSnapshot, 0, len(w.players))
	for _, id := range w.sessionIDs() {
		players = append(players, w.players[id].snapshot())
	}
	enemies := make([]EnemySnapshot, 0, len(w.enemies))
	for _, e := range w.enemies {
		enemies = append(enemies, EnemySnapshot{ID: e.ID, X: e.Pos.X, Y: e.Pos.Y})
	}
	return Snapshot{Tick: w.tick, Players: players, Enemies: enemies}
}

func (w *World) appendJoined(p *PlayerState) {
	w.journal.Append(journal.Patch{
		Kind:     journal.PatchPlayerJoined,
		EntityID: p.SessionID,
		Payload: journal.PlayerJoinedPayload{
			UserID:      p.UserID,
			Username:    p.Username,
			X:           p.Pos.X,
			Y:           p.Pos.Y,
			FacingRight: p.FacingRight,
			AttackCount: p.AttackCount,
			KillCount:   p.KillCount,
		},
	})
}

func (w *World) appendPos(p *PlayerState) {
	w.journal.Append(journal.Patch{
		Kind:     journal.PatchPlayerPos,
		EntityID: p.SessionID,
		Payload: journal.PlayerPosPayload{
			X:           p.Pos.X,
			Y:           p.Pos.Y,
			FacingRight: p.FacingRight,
			Ack:         p.LastProcessedSeq,
		},
	})
}

func (w *World) appendCombat(p *PlayerState) {
	w.journal.Append(journal.Patch{
		Kind:     journal.PatchPlayerCombat,
		EntityID: p.SessionID,
		Payload: journal.PlayerCombatPayload{
			Attacking:   p.Attacking,
			AttackCount: p.AttackCount,
			KillCount:   p.KillCount,
		},
	})
}
