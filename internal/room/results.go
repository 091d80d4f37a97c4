package room

import (
	"sync"
	"time"
)

// ResultEntry is the per-user score line exposed after a room ends.
type ResultEntry struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	AttackCount int    `json:"attackCount"`
	KillCount   int    `json:"killCount"`
}

// ResultLedger is a room-owned score ledger keyed by user id. It survives
// reconnects and takeovers (scores are keyed by identity, not session)
// and outlives the room by a fixed delay so results stay queryable.
// Guarded by a mutex because HTTP readers poll it from outside the room
// goroutine.
type ResultLedger struct {
	mu      sync.Mutex
	entries map[string]*ResultEntry
	order   []string
}

// NewResultLedger returns an empty ledger.
func NewResultLedger() *ResultLedger {
	return &ResultLedger{entries: make(map[string]*ResultEntry)}
}

// Touch ensures an entry exists for the user, creating it at zero.
func (l *ResultLedger) Touch(userID, username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.entries[userID]; ok {
		entry.Username = username
		return
	}
	l.entries[userID] = &ResultEntry{UserID: userID, Username: username}
	l.order = append(l.order, userID)
}

// Record overwrites the user's counters. Counters are monotonic on the
// player record, so last write wins.
func (l *ResultLedger) Record(userID string, attackCount, killCount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[userID]
	if !ok {
		return
	}
	entry.AttackCount = attackCount
	entry.KillCount = killCount
}

// Summary returns the entries in join order.
func (l *ResultLedger) Summary() []ResultEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ResultEntry, 0, len(l.order))
	for _, userID := range l.order {
		out = append(out, *l.entries[userID])
	}
	return out
}

// ResultStore holds the ledgers of all rooms, keyed by room id. Ledgers
// are removed a fixed delay after their room is disposed; the delay is a
// documented stop-gap for result retrieval, not a durability guarantee.
type ResultStore struct {
	mu      sync.Mutex
	ledgers map[string]*ResultLedger
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{ledgers: make(map[string]*ResultLedger)}
}

// Create registers a fresh ledger for a room, replacing any stale one.
func (s *ResultStore) Create(roomID string) *ResultLedger {
	ledger := NewResultLedger()
	s.mu.Lock()
	s.ledgers[roomID] = ledger
	s.mu.Unlock()
	return ledger
}

// Summary returns the ledger entries for a room, if it still exists.
func (s *ResultStore) Summary(roomID string) ([]ResultEntry, bool) {
	s.mu.Lock()
	ledger, ok := s.ledgers[roomID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return ledger.Summary(), true
}

// Dispose schedules removal of a room's ledger after the given delay.
func (s *ResultStore) Dispose(roomID string, after time.Duration) {
	if after <= 0 {
		s.remove(roomID)
		return
	}
	time.AfterFunc(after, func() { s.remove(roomID) })
}

func (s *ResultStore) remove(roomID string) {
	s.mu.Lock()
	delete(s.ledgers, roomID)
	s.mu.Unlock()
}
