// Package proto defines the versioned websocket wire messages exchanged
// with game clients.
package proto

import (
	"slimepit/server/internal/journal"
	"slimepit/server/internal/sim"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypePlayerInput  = "player_input"
	TypeRefreshToken = "refresh_token"
	TypeLeaveRoom    = "leave_room"
	TypePing         = "ping"
)

// Server message type identifiers.
const (
	TypeJoined = "joined"
	TypeState  = "state"
	TypePong   = "pong"
)

// ClientMessage captures an inbound websocket message. Fields are a
// union across message types; Type selects which ones matter.
type ClientMessage struct {
	Ver    int    `json:"ver,omitempty"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq,omitempty"`
	Left   bool   `json:"left,omitempty"`
	Right  bool   `json:"right,omitempty"`
	Up     bool   `json:"up,omitempty"`
	Down   bool   `json:"down,omitempty"`
	Attack bool   `json:"attack,omitempty"`
	Token  string `json:"token,omitempty"`
	T      int64  `json:"t,omitempty"`
}

// Input converts a player_input message to a simulation input.
func (m ClientMessage) Input() sim.Input {
	return sim.Input{
		Seq:    m.Seq,
		Left:   m.Left,
		Right:  m.Right,
		Up:     m.Up,
		Down:   m.Down,
		Attack: m.Attack,
	}
}

// JoinedMessage is the full keyframe sent once per join or reconnect.
type JoinedMessage struct {
	Ver       int          `json:"ver"`
	Type      string       `json:"type"`
	RoomID    string       `json:"roomId"`
	SessionID string       `json:"sessionId"`
	Snapshot  sim.Snapshot `json:"snapshot"`
	Config    sim.Config   `json:"config"`
	Resumed   bool         `json:"resumed,omitempty"`
}

// StateMessage carries one patch batch at the room's patch rate.
type StateMessage struct {
	Ver        int             `json:"ver"`
	Type       string          `json:"type"`
	Tick       uint64          `json:"t"`
	ServerTime int64           `json:"serverTime"`
	Patches    []journal.Patch `json:"patches"`
}

// PongMessage echoes a client ping for latency measurement.
type PongMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	T          int64  `json:"t"`
	ServerTime int64  `json:"serverTime"`
}
