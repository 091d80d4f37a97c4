package room

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"slimepit/server/internal/auth"
	"slimepit/server/internal/net/proto"
	"slimepit/server/internal/sim"
)

// JoinResult reports the outcome of a join attempt. A non-nil Rejection
// means no session was created and the caller should close the
// connection with that reason.
type JoinResult struct {
	SessionID string
	Snapshot  sim.Snapshot
	Config    sim.Config
	Resumed   bool
	Rejection *DisconnectReason
}

// Join authenticates a connection and admits it to the room. Token
// validation and the profile lookup run on the caller's goroutine, so an
// in-flight authentication that fails never touches room state. When
// resumeSessionID names a session awaiting reconnection for the same
// identity, the player is resumed in place with a cleared input queue.
func (r *Room) Join(ctx context.Context, token, resumeSessionID string, conn Conn) (JoinResult, error) {
	claims, err := r.validator.Validate(ctx, token)
	if err != nil {
		return JoinResult{Rejection: &ReasonInvalidToken}, nil
	}
	if !claims.ExpiresAt.After(time.Now()) {
		return JoinResult{Rejection: &ReasonInvalidToken}, nil
	}
	profile, err := r.directory.FindByUserID(ctx, claims.UserID)
	if err != nil {
		return JoinResult{Rejection: &ReasonProfileNotFound}, nil
	}

	var result JoinResult
	ok := r.doWait(func() {
		result = r.admit(claims, profile, resumeSessionID, conn, time.Now())
	})
	if !ok {
		return JoinResult{}, ErrRoomClosed
	}
	return result, nil
}

// HandleInput queues a player input. A nil return means accepted; a
// non-nil reason instructs the caller to close the connection.
func (r *Room) HandleInput(sessionID string, in sim.Input) *DisconnectReason {
	var rejection *DisconnectReason
	if !r.doWait(func() { rejection = r.queueInput(sessionID, in, time.Now()) }) {
		return &ReasonConnectionNotFound
	}
	return rejection
}

// HandleRefreshToken revalidates a session's bearer token.
func (r *Room) HandleRefreshToken(ctx context.Context, sessionID, token string) *DisconnectReason {
	claims, err := r.validator.Validate(ctx, token)
	var rejection *DisconnectReason
	if !r.doWait(func() { rejection = r.refresh(sessionID, claims, err, time.Now()) }) {
		return &ReasonConnectionNotFound
	}
	return rejection
}

// HandleLeave processes a graceful leave.
func (r *Room) HandleLeave(sessionID string) *DisconnectReason {
	if !r.doWait(func() { r.leave(sessionID) }) {
		return &ReasonConnectionNotFound
	}
	reason := ReasonIntentionalLeave
	return &reason
}

// HandlePing answers a latency probe.
func (r *Room) HandlePing(sessionID string, clientTime int64) *DisconnectReason {
	var rejection *DisconnectReason
	if !r.doWait(func() { rejection = r.ping(sessionID, clientTime, time.Now()) }) {
		return &ReasonConnectionNotFound
	}
	return rejection
}

// HandleDisconnect reacts to an ungraceful connection loss.
func (r *Room) HandleDisconnect(sessionID string) {
	r.do(func() { r.disconnect(sessionID, time.Now()) })
}

// admit runs on the room goroutine.
func (r *Room) admit(claims auth.Claims, profile auth.Profile, resumeSessionID string, conn Conn, now time.Time) JoinResult {
	userID := claims.UserID

	// Resume: same session id, open reconnection window, same identity.
	if resumeSessionID != "" {
		if sess, ok := r.sessions[resumeSessionID]; ok && sess.awaitingReconnect && sess.userID == userID {
			r.world.AdoptPlayer(resumeSessionID, resumeSessionID)
			sess.conn = conn
			sess.awaitingReconnect = false
			sess.reconnectDeadline = time.Time{}
			sess.lastActivity = now
			sess.tokenExpiresAt = claims.ExpiresAt
			r.metrics.Reconnects.Add(1)
			r.log.Infow("session resumed", "room", r.ID, "session", sess.id, "user", userID)
			return JoinResult{SessionID: sess.id, Snapshot: r.world.Snapshot(), Config: r.cfg, Resumed: true}
		}
	}

	newID := uuid.NewString()

	// At most one player record exists per user id, active or orphaned.
	// A second join for the same identity inherits it either way: score
	// state survives reconnects and takeovers.
	for id, sess := range r.sessions {
		if sess.userID != userID {
			continue
		}
		if sess.awaitingReconnect {
			r.metrics.Reconnects.Add(1)
			r.log.Infow("orphaned player adopted", "room", r.ID, "old", id, "new", newID, "user", userID)
		} else {
			// Takeover: the old connection is evicted for good.
			if sess.conn != nil {
				sess.conn.CloseWith(ReasonNewConnectionFound.Code, ReasonNewConnectionFound.Reason)
			}
			r.metrics.Takeovers.Add(1)
			r.log.Infow("session taken over", "room", r.ID, "old", id, "new", newID, "user", userID)
		}
		r.world.AdoptPlayer(id, newID)
		delete(r.sessions, id)
		r.sessions[newID] = &session{
			id:             newID,
			userID:         userID,
			username:       profile.Username,
			conn:           conn,
			tokenExpiresAt: claims.ExpiresAt,
			lastActivity:   now,
		}
		r.ledger.Touch(userID, profile.Username)
		return JoinResult{SessionID: newID, Snapshot: r.world.Snapshot(), Config: r.cfg}
	}

	if len(r.sessions) >= r.cfg.MaxPlayers {
		rejection := ReasonRoomFull
		return JoinResult{Rejection: &rejection}
	}

	r.world.AddPlayer(newID, userID, profile.Username)
	r.sessions[newID] = &session{
		id:             newID,
		userID:         userID,
		username:       profile.Username,
		conn:           conn,
		tokenExpiresAt: claims.ExpiresAt,
		lastActivity:   now,
	}
	r.ledger.Touch(userID, profile.Username)
	r.metrics.Joins.Add(1)
	r.log.Infow("player joined", "room", r.ID, "session", newID, "user", userID)
	return JoinResult{SessionID: newID, Snapshot: r.world.Snapshot(), Config: r.cfg}
}

func (r *Room) queueInput(sessionID string, in sim.Input, now time.Time) *DisconnectReason {
	sess, found := r.sessions[sessionID]
	if !found || sess.awaitingReconnect {
		return &ReasonConnectionNotFound
	}
	sess.lastActivity = now
	if r.world.QueueInput(sessionID, in) {
		r.metrics.InputsAccepted.Add(1)
	} else {
		r.metrics.InputsDropped.Add(1)
	}
	return nil
}

func (r *Room) refresh(sessionID string, claims auth.Claims, validateErr error, now time.Time) *DisconnectReason {
	sess, found := r.sessions[sessionID]
	if !found || sess.awaitingReconnect {
		return &ReasonConnectionNotFound
	}
	if validateErr != nil || !claims.ExpiresAt.After(now) {
		r.kick(sess)
		return &ReasonTokenExpired
	}
	if claims.UserID != sess.userID {
		r.kick(sess)
		return &ReasonUserIDChanged
	}
	sess.tokenExpiresAt = claims.ExpiresAt
	sess.lastActivity = now
	return nil
}

func (r *Room) leave(sessionID string) {
	sess, found := r.sessions[sessionID]
	if !found {
		return
	}
	sess.conn = nil
	r.removeSession(sess)
	r.log.Infow("player left", "room", r.ID, "session", sessionID, "user", sess.userID)
}

func (r *Room) ping(sessionID string, clientTime int64, now time.Time) *DisconnectReason {
	sess, found := r.sessions[sessionID]
	if !found || sess.awaitingReconnect || sess.conn == nil {
		return &ReasonConnectionNotFound
	}
	sess.lastActivity = now
	data, err := json.Marshal(proto.PongMessage{
		Ver:        proto.Version,
		Type:       proto.TypePong,
		T:          clientTime,
		ServerTime: now.UnixMilli(),
	})
	if err == nil {
		sess.conn.Enqueue(data)
	}
	return nil
}

// disconnect opens the reconnection window after an ungraceful loss. The
// player record is retained, flagged, and its queue cleared so a resumed
// session starts clean.
func (r *Room) disconnect(sessionID string, now time.Time) {
	sess, found := r.sessions[sessionID]
	if !found || sess.awaitingReconnect {
		return
	}
	sess.conn = nil
	sess.awaitingReconnect = true
	sess.reconnectDeadline = now.Add(r.cfg.ReconnectWindow)
	if p, ok := r.world.Player(sessionID); ok {
		p.Queue.Clear()
	}
	r.log.Infow("reconnection window opened",
		"room", r.ID, "session", sessionID, "user", sess.userID,
		"deadline", sess.reconnectDeadline)
}

// kick removes a session after its connection was told to close by the
// caller.
func (r *Room) kick(sess *session) {
	sess.conn = nil
	r.removeSession(sess)
	r.metrics.Evictions.Add(1)
}
