package room

import "github.com/gorilla/websocket"

// Close codes in the 4000 range are application-defined per RFC 6455.
// Each disconnect reason below maps to exactly one code so clients can
// machine-check why they were dropped.
const (
	CloseInvalidToken       = 4001
	CloseTokenExpired       = 4002
	CloseUserIDChanged      = 4003
	CloseProfileNotFound    = 4004
	CloseConnectionNotFound = 4005
	CloseNewConnectionFound = 4006
	CloseRoomFull           = 4007
	ClosePlayerInactivity   = 4008
	CloseInternalError      = 4011
)

// DisconnectReason pairs a close code with a stable message and records
// whether the session is allowed to reconnect afterwards.
type DisconnectReason struct {
	Code      int    `json:"code"`
	Reason    string `json:"reason"`
	Reconnect bool   `json:"reconnect"`
}

var (
	// ReasonInvalidToken rejects an unauthenticated or tampered token.
	ReasonInvalidToken = DisconnectReason{Code: CloseInvalidToken, Reason: "invalid token"}
	// ReasonTokenExpired evicts a session whose token lapsed.
	ReasonTokenExpired = DisconnectReason{Code: CloseTokenExpired, Reason: "token expired"}
	// ReasonUserIDChanged rejects a refresh token for a different identity.
	ReasonUserIDChanged = DisconnectReason{Code: CloseUserIDChanged, Reason: "user id changed"}
	// ReasonProfileNotFound rejects a token whose user has no profile.
	ReasonProfileNotFound = DisconnectReason{Code: CloseProfileNotFound, Reason: "profile not found"}
	// ReasonConnectionNotFound answers a message sent for a dead session.
	ReasonConnectionNotFound = DisconnectReason{Code: CloseConnectionNotFound, Reason: "connection not found"}
	// ReasonNewConnectionFound evicts the old session on identity takeover.
	ReasonNewConnectionFound = DisconnectReason{Code: CloseNewConnectionFound, Reason: "new connection found"}
	// ReasonRoomFull rejects a join past the room's player cap.
	ReasonRoomFull = DisconnectReason{Code: CloseRoomFull, Reason: "room full"}
	// ReasonPlayerInactivity evicts an idle player; reconnection allowed.
	ReasonPlayerInactivity = DisconnectReason{Code: ClosePlayerInactivity, Reason: "player inactivity", Reconnect: true}
	// ReasonInternalError evicts a player whose tick processing failed;
	// reconnection allowed with a cleared input queue.
	ReasonInternalError = DisconnectReason{Code: CloseInternalError, Reason: "internal error", Reconnect: true}
	// ReasonIntentionalLeave acknowledges a graceful leave.
	ReasonIntentionalLeave = DisconnectReason{Code: websocket.CloseNormalClosure, Reason: "leave room"}
)

// DisconnectError carries a disconnect reason across a handler boundary.
// Handlers return it; the caller performs the actual close.
type DisconnectError struct {
	Reason DisconnectReason
}

func (e *DisconnectError) Error() string {
	return e.Reason.Reason
}
