package websocket

import (
	"encoding/json"

	"github.com/oxalis-games/tictactoe/internal/entity"
)

const (
	ActionJoin  = "session:join"
	ActionMove  = "session:move"
	ActionMode  = "session:mode"
	ActionMark  = "session:mark"
	ActionReset = "session:reset"
	ActionSwap  = "session:swap"

	// ActionState is pushed by the server after every state change,
	// including deferred computer moves. It is never sent by clients.
	ActionState = "session:state"
)

// Message is the envelope for everything crossing the socket.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload carries the cell of a session:move request.
type MovePayload struct {
	Cell *int `json:"cell" validate:"required,min=0,max=8"`
}

// ModePayload carries the requested game mode.
type ModePayload struct {
	Mode string `json:"mode" validate:"required,oneof=pvp pvc"`
}

// MarkPayload carries the mark the computer should play.
type MarkPayload struct {
	Mark string `json:"mark" validate:"required,oneof=X O"`
}

// AckPayload answers the request that triggered it. A rejected request is
// normal traffic (a stale click, an occupied cell), so Accepted false comes
// without an error; Error is only set for requests that could not be read
// at all.
type AckPayload struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// StatePayload is the body of an ActionState push. Event names the
// transition that produced it and is empty for the initial snapshot sent
// on connect.
type StatePayload struct {
	Event string              `json:"event,omitempty"`
	State entity.SessionState `json:"state"`
}
