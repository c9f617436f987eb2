package session

import "github.com/oxalis-games/tictactoe/internal/entity"

// EventKind names the transition that produced an event.
type EventKind string

const (
	EventMove         EventKind = "move"
	EventComputerMove EventKind = "computer_move"
	EventReset        EventKind = "reset"
	EventMode         EventKind = "mode"
	EventMark         EventKind = "mark"
	EventSwap         EventKind = "swap"
)

// Event is delivered to subscribers after every state change. State is the
// full snapshot taken after the transition, so a consumer that misses
// intermediate events still ends up with the current state.
type Event struct {
	Kind  EventKind           `json:"kind"`
	State entity.SessionState `json:"state"`
}
