// Package room hosts the per-room actor: one goroutine owns the world,
// the session table, and the result ledger, and serializes every tick,
// message handler, and health sweep against them.
package room

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"slimepit/server/internal/auth"
	"slimepit/server/internal/journal"
	"slimepit/server/internal/net/proto"
	"slimepit/server/internal/sim"
)

// ErrRoomClosed is returned for operations against a disposed room.
var ErrRoomClosed = errors.New("room closed")

// Conn is the outbound half of a client connection. Enqueue must never
// block; implementations drop on backpressure.
type Conn interface {
	Enqueue(data []byte) bool
	CloseWith(code int, reason string)
}

// session tracks one connection's lifecycle state. The player's
// simulation state lives in the world under the same session id.
type session struct {
	id       string
	userID   string
	username string

	conn Conn

	tokenExpiresAt    time.Time
	lastActivity      time.Time
	awaitingReconnect bool
	reconnectDeadline time.Time
}

// Deps bundles the collaborators a room needs.
type Deps struct {
	Logger    *zap.SugaredLogger
	Validator auth.TokenValidator
	Directory auth.UserDirectory
	Ledger    *ResultLedger
	Rand      *rand.Rand
	// OnEmpty is invoked (on its own goroutine) when the last session
	// leaves, so the owner can dispose the room.
	OnEmpty func(roomID string)
}

// Room is the authoritative simulation and session host for one arena.
type Room struct {
	ID string

	cfg     sim.Config
	log     *zap.SugaredLogger
	journal *journal.Journal
	world   *sim.World
	stepper *sim.Stepper
	ledger  *ResultLedger
	metrics *Metrics

	validator auth.TokenValidator
	directory auth.UserDirectory
	onEmpty   func(string)

	sessions map[string]*session

	commands  chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New constructs a room. Call Run to start its goroutine.
func New(id string, cfg sim.Config, deps Deps) *Room {
	cfg = cfg.Normalized()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ledger := deps.Ledger
	if ledger == nil {
		ledger = NewResultLedger()
	}
	j := journal.New()
	return &Room{
		ID:        id,
		cfg:       cfg,
		log:       logger,
		journal:   j,
		world:     sim.NewWorld(cfg, j, deps.Rand),
		stepper:   sim.NewStepper(cfg.TickInterval, cfg.CatchupMaxTicks),
		ledger:    ledger,
		metrics:   &Metrics{},
		validator: deps.Validator,
		directory: deps.Directory,
		onEmpty:   deps.OnEmpty,
		sessions:  make(map[string]*session),
		commands:  make(chan func(), 256),
		done:      make(chan struct{}),
	}
}

// Metrics exposes the room's counters.
func (r *Room) Metrics() *Metrics {
	return r.metrics
}

// Ledger exposes the room's result ledger.
func (r *Room) Ledger() *ResultLedger {
	return r.ledger
}

// Run drives the room until Close. Tick, broadcast, sweep, and posted
// commands all execute here; nothing else touches room state.
func (r *Room) Run() {
	tick := time.NewTicker(r.cfg.TickInterval)
	patch := time.NewTicker(r.cfg.PatchInterval)
	sweep := time.NewTicker(r.cfg.SweepInterval)
	defer tick.Stop()
	defer patch.Stop()
	defer sweep.Stop()

	for {
		select {
		case <-r.done:
			r.shutdownSessions()
			return
		case fn := <-r.commands:
			fn()
		case now := <-tick.C:
			for i, n := 0, r.stepper.Advance(now); i < n; i++ {
				r.step(now)
			}
		case <-patch.C:
			r.broadcast()
		case now := <-sweep.C:
			r.sweep(now)
		}
	}
}

// Close stops the room goroutine. Idempotent.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// do posts fn to the room goroutine.
func (r *Room) do(fn func()) bool {
	select {
	case r.commands <- fn:
		return true
	case <-r.done:
		return false
	}
}

// doWait posts fn and blocks until it has run.
func (r *Room) doWait(fn func()) bool {
	ran := make(chan struct{})
	if !r.do(func() {
		fn()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-r.done:
		return false
	}
}

// step advances the simulation one tick and disconnects any player whose
// processing faulted. Faults never take the room down.
func (r *Room) step(now time.Time) {
	start := time.Now()
	for _, fault := range r.world.Step(now) {
		sess, ok := r.sessions[fault.SessionID]
		if !ok {
			continue
		}
		r.log.Errorw("player tick failed",
			"room", r.ID, "session", fault.SessionID, "user", sess.userID, "err", fault.Err)
		r.evict(sess, ReasonInternalError, now)
	}
	r.syncLedger()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// syncLedger mirrors the monotonic score counters into the ledger so the
// results endpoint and post-room summary see the latest values.
func (r *Room) syncLedger() {
	for _, sess := range r.sessions {
		if p, ok := r.world.Player(sess.id); ok {
			r.ledger.Record(sess.userID, p.AttackCount, p.KillCount)
		}
	}
}

// broadcast drains the journal and fans the patch batch out to every
// connected session. Runs at the patch rate, slower than the tick rate.
func (r *Room) broadcast() {
	patches := r.journal.Drain()
	if len(patches) == 0 {
		return
	}
	msg := proto.StateMessage{
		Ver:        proto.Version,
		Type:       proto.TypeState,
		Tick:       r.world.Tick(),
		ServerTime: time.Now().UnixMilli(),
		Patches:    patches,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.Errorw("failed to marshal state message", "room", r.ID, "err", err)
		return
	}
	for _, sess := range r.sessions {
		if sess.conn == nil || sess.awaitingReconnect {
			continue
		}
		sess.conn.Enqueue(data)
	}
	r.metrics.Broadcasts.Add(1)
}

// sweep enforces the session timeouts: elapsed reconnection windows,
// expired tokens, dead connections, and inactivity. Sessions awaiting
// reconnection are exempt from the liveness checks but not from token
// expiry.
func (r *Room) sweep(now time.Time) {
	for _, id := range r.sessionIDs() {
		sess, ok := r.sessions[id]
		if !ok {
			continue
		}
		if sess.awaitingReconnect {
			if now.After(sess.reconnectDeadline) {
				r.log.Infow("reconnection window elapsed",
					"room", r.ID, "session", sess.id, "user", sess.userID)
				r.removeSession(sess)
			} else if !sess.tokenExpiresAt.IsZero() && now.After(sess.tokenExpiresAt) {
				r.removeSession(sess)
				r.metrics.Evictions.Add(1)
			}
			continue
		}
		if !sess.tokenExpiresAt.IsZero() && now.After(sess.tokenExpiresAt) {
			r.evict(sess, ReasonTokenExpired, now)
			continue
		}
		if sess.conn == nil {
			// Connection gone without an open window; nothing to wait for.
			r.removeSession(sess)
			continue
		}
		if r.cfg.InactivityTimeout > 0 && now.Sub(sess.lastActivity) > r.cfg.InactivityTimeout {
			r.log.Infow("evicting inactive player",
				"room", r.ID, "session", sess.id, "user", sess.userID)
			r.evict(sess, ReasonPlayerInactivity, now)
		}
	}
}

// evict disconnects a session with the given reason. Reconnectable
// reasons keep the player record orphaned for the reconnection window;
// the rest delete it immediately.
func (r *Room) evict(sess *session, reason DisconnectReason, now time.Time) {
	r.metrics.Evictions.Add(1)
	if sess.conn != nil {
		sess.conn.CloseWith(reason.Code, reason.Reason)
		sess.conn = nil
	}
	if reason.Reconnect {
		sess.awaitingReconnect = true
		sess.reconnectDeadline = now.Add(r.cfg.ReconnectWindow)
		if p, ok := r.world.Player(sess.id); ok {
			p.Queue.Clear()
		}
		return
	}
	r.removeSession(sess)
}

// removeSession deletes the session and its player record for good.
func (r *Room) removeSession(sess *session) {
	if p, ok := r.world.Player(sess.id); ok {
		r.ledger.Record(sess.userID, p.AttackCount, p.KillCount)
	}
	r.world.RemovePlayer(sess.id)
	delete(r.sessions, sess.id)
	if len(r.sessions) == 0 && r.onEmpty != nil {
		go r.onEmpty(r.ID)
	}
}

func (r *Room) sessionIDs() []string {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Room) shutdownSessions() {
	for _, sess := range r.sessions {
		if sess.conn != nil {
			sess.conn.CloseWith(websocket.CloseGoingAway, "server shutdown")
		}
	}
	r.sessions = make(map[string]*session)
}

// DiagnosticsEntry is the per-session view for the diagnostics endpoint.
type DiagnosticsEntry struct {
	SessionID         string `json:"sessionId"`
	UserID            string `json:"userId"`
	Username          string `json:"username"`
	AwaitingReconnect bool   `json:"awaitingReconnect"`
	LastActivity      int64  `json:"lastActivity"`
	Ack               uint64 `json:"ack"`
}

// Diagnostics snapshots session health for monitoring.
func (r *Room) Diagnostics() []DiagnosticsEntry {
	var entries []DiagnosticsEntry
	r.doWait(func() {
		entries = make([]DiagnosticsEntry, 0, len(r.sessions))
		for _, id := range r.sessionIDs() {
			sess := r.sessions[id]
			entry := DiagnosticsEntry{
				SessionID:         sess.id,
				UserID:            sess.userID,
				Username:          sess.username,
				AwaitingReconnect: sess.awaitingReconnect,
				LastActivity:      sess.lastActivity.UnixMilli(),
			}
			if p, ok := r.world.Player(sess.id); ok {
				entry.Ack = p.LastProcessedSeq
			}
			entries = append(entries, entry)
		}
	})
	return entries
}
