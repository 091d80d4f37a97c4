package room

import (
	"sync"

	"go.uber.org/zap"

	"slimepit/server/internal/auth"
	"slimepit/server/internal/sim"
)

// Manager owns the live rooms of the process. Rooms run independently
// and in parallel; the only cross-room state is the result store, which
// is keyed by room id.
type Manager struct {
	cfg       sim.Config
	log       *zap.SugaredLogger
	validator auth.TokenValidator
	directory auth.UserDirectory
	results   *ResultStore

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewManager wires a manager with shared collaborators.
func NewManager(cfg sim.Config, log *zap.SugaredLogger, validator auth.TokenValidator, directory auth.UserDirectory, results *ResultStore) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if results == nil {
		results = NewResultStore()
	}
	return &Manager{
		cfg:       cfg.Normalized(),
		log:       log,
		validator: validator,
		directory: directory,
		results:   results,
		rooms:     make(map[string]*Room),
	}
}

// Results exposes the cross-room result store.
func (m *Manager) Results() *ResultStore {
	return m.results
}

// GetOrCreate returns the room with the given id, starting it if needed.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r
	}
	r := New(id, m.cfg, Deps{
		Logger:    m.log,
		Validator: m.validator,
		Directory: m.directory,
		Ledger:    m.results.Create(id),
		OnEmpty:   m.dispose,
	})
	m.rooms[id] = r
	go r.Run()
	m.log.Infow("room created", "room", id)
	return r
}

// Get returns an existing room.
func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	return r, ok
}

// dispose tears a room down once it empties. The result ledger stays
// queryable for the configured TTL afterwards.
func (m *Manager) dispose(id string) {
	m.mu.Lock()
	r, ok := m.rooms[id]
	if ok {
		delete(m.rooms, id)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	r.Close()
	m.results.Dispose(id, m.cfg.ResultTTL)
	m.log.Infow("room disposed", "room", id, "resultTTL", m.cfg.ResultTTL)
}

// Shutdown closes every room; ledgers are disposed immediately.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for id, r := range rooms {
		r.Close()
		m.results.Dispose(id, 0)
	}
}
