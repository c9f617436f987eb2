// Package session implements the mutable game aggregate: the board, whose
// turn it is, the game mode and the mark the computer plays. All transitions
// are serialized by a mutex because the deferred computer move fires from a
// timer goroutine. Invalid requests are rejected with a false return, never
// an error: a stale click from the presentation layer is normal traffic,
// not a fault.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/oxalis-games/tictactoe/internal/bot"
	"github.com/oxalis-games/tictactoe/internal/entity"
	"github.com/oxalis-games/tictactoe/internal/rules"
)

// Config carries the knobs a fresh session starts with. Zero values fall
// back to player-vs-computer with the computer playing O and no move delay.
type Config struct {
	Mode         entity.GameMode
	ComputerMark entity.Mark
	MoveDelay    time.Duration
}

// Session owns the game state. Status and winner are derived from the board
// on every call, never stored, so they cannot drift out of sync.
type Session struct {
	mu sync.Mutex

	id           string
	board        entity.Board
	nextToMove   entity.Mark
	mode         entity.GameMode
	computerMark entity.Mark

	policy    *bot.Policy
	scheduler Scheduler
	moveDelay time.Duration

	// generation counts state mutations; a deferred computer turn only
	// lands when the generation it was armed under is still current.
	generation  uint64
	cancelTimer func() bool

	subscribers map[chan Event]struct{}
}

// New creates a session with an empty board and X to move. A nil policy or
// scheduler falls back to the production implementation. When the starting
// state is already the computer's turn, the move timer is armed immediately.
func New(id string, policy *bot.Policy, scheduler Scheduler, cfg Config) *Session {
	if policy == nil {
		policy = bot.New(nil)
	}

	if scheduler == nil {
		scheduler = NewTimerScheduler()
	}

	if !entity.IsValidMode(cfg.Mode) {
		cfg.Mode = entity.ModePlayerVsComputer
	}

	if !entity.IsPlayerMark(cfg.ComputerMark) {
		cfg.ComputerMark = entity.MarkO
	}

	that := &Session{
		id:           id,
		nextToMove:   entity.MarkX,
		mode:         cfg.Mode,
		computerMark: cfg.ComputerMark,
		policy:       policy,
		scheduler:    scheduler,
		moveDelay:    cfg.MoveDelay,
		subscribers:  make(map[chan Event]struct{}),
	}

	that.mu.Lock()
	that.armComputerLocked()
	that.mu.Unlock()

	return that
}

// ID returns the session identifier.
func (that *Session) ID() string {
	return that.id
}

// Board returns a copy of the current board.
func (that *Session) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

// Status derives the current game status from the board.
func (that *Session) Status() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.statusLocked()
}

// Winner derives the current win result from the board. The zero result
// means nobody has won.
func (that *Session) Winner() entity.WinResult {
	that.mu.Lock()
	defer that.mu.Unlock()

	return rules.Evaluate(that.board)
}

// Snapshot returns the full serializable state of the session.
func (that *Session) Snapshot() entity.SessionState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

// RequestMove applies a human move to the given cell. It reports whether the
// move was accepted: the game must be in progress, the cell vacant, and in
// player-vs-computer mode it must not be the computer's turn. A rejected
// move leaves the session untouched.
func (that *Session) RequestMove(cell int) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.statusLocked() != entity.StatusInProgress {
		return false
	}

	if !that.board.IsEmptyCell(cell) {
		return false
	}

	if that.mode == entity.ModePlayerVsComputer && that.nextToMove == that.computerMark {
		return false
	}

	that.applyLocked(cell, EventMove)

	return true
}

// Reset clears the board and gives the first move to X. Mode and computer
// mark are kept.
func (that *Session) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.resetLocked(entity.MarkX, EventReset)
}

// RestartAndSwap clears the board and gives the first move to the opposite
// of whoever was next before the reset, so the starting player alternates
// across rounds.
func (that *Session) RestartAndSwap() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.resetLocked(entity.ToggleMark(that.nextToMove), EventSwap)
}

// SetMode switches the game mode and resets the board, even when the mode
// is unchanged. An unknown mode is rejected.
func (that *Session) SetMode(mode entity.GameMode) bool {
	if !entity.IsValidMode(mode) {
		return false
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.mode = mode
	that.resetLocked(entity.MarkX, EventMode)

	return true
}

// SetComputerMark assigns the mark the computer plays and resets the board.
// Setting the mark it already has is accepted but changes nothing, so an
// ongoing game is not thrown away for a no-op toggle.
func (that *Session) SetComputerMark(mark entity.Mark) bool {
	if !entity.IsPlayerMark(mark) {
		return false
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.computerMark == mark {
		return true
	}

	that.computerMark = mark
	that.resetLocked(entity.MarkX, EventMark)

	return true
}

// Subscribe registers a listener for state changes. Each subscriber has a
// mailbox of one event: when the consumer lags, the unread event is replaced
// by the newer one, so the last event received always carries the current
// state. The returned cancel is idempotent and closes the channel.
func (that *Session) Subscribe() (<-chan Event, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	mailbox := make(chan Event, 1)
	that.subscribers[mailbox] = struct{}{}

	cancel := func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if _, ok := that.subscribers[mailbox]; ok {
			delete(that.subscribers, mailbox)
			close(mailbox)
		}
	}

	return mailbox, cancel
}

// Restore replaces the session state with a stored snapshot. The snapshot is
// validated first, so corrupt storage data cannot become live state. When the
// restored position is the computer's turn, the move timer is re-armed.
func (that *Session) Restore(state entity.SessionState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("failed to restore session state: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.disarmLocked()

	that.board = state.Board
	that.nextToMove = state.NextToMove
	that.mode = state.Mode
	that.computerMark = state.ComputerMark
	that.generation++

	that.armComputerLocked()

	return nil
}

func (that *Session) applyLocked(cell int, kind EventKind) {
	that.board[cell] = that.nextToMove
	that.nextToMove = entity.ToggleMark(that.nextToMove)
	that.generation++

	that.notifyLocked(kind)
	that.armComputerLocked()
}

func (that *Session) resetLocked(next entity.Mark, kind EventKind) {
	that.disarmLocked()

	that.board = entity.Board{}
	that.nextToMove = next
	that.generation++

	that.notifyLocked(kind)
	that.armComputerLocked()
}

// armComputerLocked schedules the deferred computer turn when the current
// state calls for one. Any previously armed timer is cancelled first.
func (that *Session) armComputerLocked() {
	that.disarmLocked()

	if that.mode != entity.ModePlayerVsComputer || that.nextToMove != that.computerMark {
		return
	}

	if that.statusLocked() != entity.StatusInProgress {
		return
	}

	expected := that.generation
	that.cancelTimer = that.scheduler.Schedule(that.moveDelay, func() {
		that.computerTurn(expected)
	})
}

func (that *Session) disarmLocked() {
	if that.cancelTimer != nil {
		that.cancelTimer()
		that.cancelTimer = nil
	}
}

// computerTurn is the deferred transition armed by armComputerLocked. A
// timer that was already firing when the session changed slips past cancel
// and blocks on the mutex; a matching generation means the state is exactly
// as it was at arming time, so the stale ones are rejected here.
func (that *Session) computerTurn(expected uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.generation != expected {
		return
	}

	cell, ok := that.policy.SelectMove(that.board, that.computerMark)
	if !ok {
		return
	}

	that.applyLocked(cell, EventComputerMove)
}

func (that *Session) statusLocked() string {
	if rules.Evaluate(that.board).HasWinner() {
		return entity.StatusWon
	}

	if rules.IsDraw(that.board) {
		return entity.StatusDraw
	}

	return entity.StatusInProgress
}

func (that *Session) snapshotLocked() entity.SessionState {
	state := entity.SessionState{
		ID:           that.id,
		Board:        that.board,
		NextToMove:   that.nextToMove,
		Mode:         that.mode,
		ComputerMark: that.computerMark,
		Status:       entity.StatusInProgress,
	}

	if result := rules.Evaluate(that.board); result.HasWinner() {
		state.Status = entity.StatusWon
		state.Winner = result.Winner

		line := result.Line
		state.WinLine = &line
	} else if rules.IsDraw(that.board) {
		state.Status = entity.StatusDraw
	}

	return state
}

func (that *Session) notifyLocked(kind EventKind) {
	event := Event{Kind: kind, State: that.snapshotLocked()}

	for mailbox := range that.subscribers {
		select {
		case mailbox <- event:
		default:
			// Drop the unread event. Sends are serialized by the session
			// lock, so after the drain the mailbox has room again.
			select {
			case <-mailbox:
			default:
			}
			mailbox <- event
		}
	}
}
