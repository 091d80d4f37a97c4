package sim

import "time"

// Config captures every tunable the simulation and session layer recognize.
// Values are fixed at room construction; there are no runtime flags.
type Config struct {
	TickInterval  time.Duration `json:"tickInterval"`
	PatchInterval time.Duration `json:"patchInterval"`
	SweepInterval time.Duration `json:"sweepInterval"`

	MapWidth  float64 `json:"mapWidth"`
	MapHeight float64 `json:"mapHeight"`

	// MoveSpeed is applied per tick, per active axis.
	MoveSpeed float64 `json:"moveSpeed"`

	PlayerHalf Vec2 `json:"playerHalf"`
	EnemyHalf  Vec2 `json:"enemyHalf"`
	AttackHalf Vec2 `json:"attackHalf"`

	// AttackReach offsets the hitbox center from the attacker along the
	// facing axis.
	AttackReach float64 `json:"attackReach"`

	AttackCooldown    time.Duration `json:"attackCooldown"`
	AttackDamageDelay time.Duration `json:"attackDamageDelay"`
	AttackFrameTime   time.Duration `json:"attackFrameTime"`

	SpawnRate  time.Duration `json:"spawnRate"`
	MaxEnemies int           `json:"maxEnemies"`

	MaxPlayers        int           `json:"maxPlayers"`
	InactivityTimeout time.Duration `json:"inactivityTimeout"`
	ReconnectWindow   time.Duration `json:"reconnectWindow"`

	// ResultTTL is how long a room's result ledger outlives the room.
	ResultTTL time.Duration `json:"resultTTL"`

	// CatchupMaxTicks bounds how many simulation steps a single wall-clock
	// advance may run when the loop falls behind.
	CatchupMaxTicks int `json:"catchupMaxTicks"`

	// InputQueueCap bounds a single player's pending input backlog.
	InputQueueCap int `json:"inputQueueCap"`
}

// DefaultConfig returns the stock tuning for a room.
func DefaultConfig() Config {
	return Config{
		TickInterval:      50 * time.Millisecond,
		PatchInterval:     100 * time.Millisecond,
		SweepInterval:     time.Second,
		MapWidth:          1024,
		MapHeight:         768,
		MoveSpeed:         6,
		PlayerHalf:        Vec2{X: 16, Y: 16},
		EnemyHalf:         Vec2{X: 12, Y: 12},
		AttackHalf:        Vec2{X: 24, Y: 18},
		AttackReach:       28,
		AttackCooldown:    600 * time.Millisecond,
		AttackDamageDelay: 200 * time.Millisecond,
		AttackFrameTime:   100 * time.Millisecond,
		SpawnRate:         2 * time.Second,
		MaxEnemies:        10,
		MaxPlayers:        8,
		InactivityTimeout: 60 * time.Second,
		ReconnectWindow:   15 * time.Second,
		ResultTTL:         60 * time.Second,
		CatchupMaxTicks:   5,
		InputQueueCap:     256,
	}
}

// Normalized returns a config with unusable zero values replaced by
// defaults so a partially filled config cannot stall a room.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.PatchInterval <= 0 {
		c.PatchInterval = def.PatchInterval
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.MapWidth <= 0 {
		c.MapWidth = def.MapWidth
	}
	if c.MapHeight <= 0 {
		c.MapHeight = def.MapHeight
	}
	if c.MoveSpeed <= 0 {
		c.MoveSpeed = def.MoveSpeed
	}
	if c.MaxEnemies <= 0 {
		c.MaxEnemies = def.MaxEnemies
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = def.MaxPlayers
	}
	if c.CatchupMaxTicks <= 0 {
		c.CatchupMaxTicks = def.CatchupMaxTicks
	}
	if c.InputQueueCap <= 0 {
		c.InputQueueCap = def.InputQueueCap
	}
	return c
}
