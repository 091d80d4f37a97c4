// Package journal buffers the diffs a tick produces so the broadcast
// layer can drain them at the patch rate. The simulation only mutates
// state and appends patches; it never knows about replication mechanics.
package journal

// PatchKind identifies the type of diff entry.
type PatchKind string

const (
	// PatchPlayerJoined announces a new player with its full wire state.
	PatchPlayerJoined PatchKind = "player_joined"
	// PatchPlayerPos updates a player's position, facing, and input ack.
	PatchPlayerPos PatchKind = "player_pos"
	// PatchPlayerCombat updates a player's attack flag and score counters.
	PatchPlayerCombat PatchKind = "player_combat"
	// PatchPlayerRemoved signals that a player left the world.
	PatchPlayerRemoved PatchKind = "player_removed"

	// PatchEnemySpawned announces a new enemy.
	PatchEnemySpawned PatchKind = "enemy_spawned"
	// PatchEnemyPos updates an enemy's position.
	PatchEnemyPos PatchKind = "enemy_pos"
	// PatchEnemyRemoved signals that an enemy was killed.
	PatchEnemyRemoved PatchKind = "enemy_removed"
)

// Patch is one diff entry applied by clients in order.
type Patch struct {
	Kind     PatchKind `json:"kind"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload,omitempty"`
}

// PlayerJoinedPayload carries the initial state for a new player.
type PlayerJoinedPayload struct {
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FacingRight bool    `json:"facingRight"`
	AttackCount int     `json:"attackCount"`
	KillCount   int     `json:"killCount"`
}

// PlayerPosPayload carries position, facing, and the input ack.
type PlayerPosPayload struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FacingRight bool    `json:"facingRight"`
	Ack         uint64  `json:"ack"`
}

// PlayerCombatPayload carries the attack flag and score counters.
type PlayerCombatPayload struct {
	Attacking   bool `json:"attacking"`
	AttackCount int  `json:"attackCount"`
	KillCount   int  `json:"killCount"`
}

// EnemyPosPayload carries an enemy position.
type EnemyPosPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EnemySpawnedPayload carries a newly spawned enemy position.
type EnemySpawnedPayload = EnemyPosPayload

// Journal accumulates patches between broadcasts. Positional kinds are
// coalesced per entity: only the latest value survives until the next
// drain, which keeps patch batches bounded by entity count rather than
// tick count. Lifecycle kinds are never coalesced.
type Journal struct {
	patches []Patch
	index   map[indexKey]int
}

type indexKey struct {
	kind PatchKind
	id   string
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{index: make(map[indexKey]int)}
}

func coalescable(kind PatchKind) bool {
	switch kind {
	case PatchPlayerPos, PatchPlayerCombat, PatchEnemyPos:
		return true
	}
	return false
}

// Append records a patch, replacing a pending patch of the same kind for
// the same entity when the kind is coalescable.
func (j *Journal) Append(patch Patch) {
	if coalescable(patch.Kind) {
		key := indexKey{kind: patch.Kind, id: patch.EntityID}
		if at, ok := j.index[key]; ok {
			j.patches[at] = patch
			return
		}
		j.index[key] = len(j.patches)
	}
	j.patches = append(j.patches, patch)
}

// Len reports the number of pending patches.
func (j *Journal) Len() int {
	return len(j.patches)
}

// Drain returns the pending patches in append order and resets the
// journal. The returned slice is owned by the caller.
func (j *Journal) Drain() []Patch {
	if len(j.patches) == 0 {
		return nil
	}
	drained := j.patches
	j.patches = nil
	j.index = make(map[indexKey]int)
	return drained
}
