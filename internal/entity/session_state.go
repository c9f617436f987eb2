package entity

import (
	"errors"
	"fmt"
)

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusDraw       = "draw"
)

const (
	ModePlayerVsPlayer   = "pvp"
	ModePlayerVsComputer = "pvc"
)

var (
	ErrInvalidBoard        = errors.New("board contains an invalid mark")
	ErrInvalidMark         = errors.New("invalid player mark")
	ErrInvalidMode         = errors.New("unknown game mode")
	ErrInvalidComputerMark = errors.New("invalid computer mark")
)

// GameMode selects who controls the O-side of the table: a second human or
// the computer opponent.
type GameMode = string

// IsValidMode reports whether mode is one of the two supported game modes.
func IsValidMode(mode GameMode) bool {
	return mode == ModePlayerVsPlayer || mode == ModePlayerVsComputer
}

// SessionState is the wire and storage snapshot of a game session. It is a
// plain value: transports serialize it as-is and the repository stores it as
// JSON. Status, Winner and WinLine are derived fields, filled in by the
// session at snapshot time.
type SessionState struct {
	ID           string   `json:"id"`
	Board        Board    `json:"board"`
	NextToMove   Mark     `json:"next_to_move"`
	Mode         GameMode `json:"mode"`
	ComputerMark Mark     `json:"computer_mark"`
	Status       string   `json:"status"`
	Winner       Mark     `json:"winner,omitempty"`
	WinLine      *Line    `json:"win_line,omitempty"`
}

// Validate checks a snapshot coming from outside the process (storage, a
// client). Malformed external data is an error, not a panic: only in-process
// contract violations fail loudly.
func (that *SessionState) Validate() error {
	for i, cell := range that.Board {
		if cell != EmptyCell && !IsPlayerMark(cell) {
			return fmt.Errorf("%w: cell %d holds %q", ErrInvalidBoard, i, cell)
		}
	}

	if !IsPlayerMark(that.NextToMove) {
		return fmt.Errorf("%w: next to move is %q", ErrInvalidMark, that.NextToMove)
	}

	if !IsValidMode(that.Mode) {
		return fmt.Errorf("%w: %q", ErrInvalidMode, that.Mode)
	}

	if !IsPlayerMark(that.ComputerMark) {
		return fmt.Errorf("%w: %q", ErrInvalidComputerMark, that.ComputerMark)
	}

	return nil
}
