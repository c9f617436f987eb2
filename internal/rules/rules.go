// Package rules evaluates board snapshots. Every function is pure: callers
// pass the board by value and get derived results back, nothing is cached.
package rules

import "github.com/oxalis-games/tictactoe/internal/entity"

// Evaluate scans the 8 winning lines in their fixed order and returns the
// first completed one. A reachable board holds at most one completed line,
// the fixed order only pins the result for reproducibility.
func Evaluate(board entity.Board) entity.WinResult {
	for _, line := range entity.Lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.WinResult{Winner: a, Line: line}
		}
	}

	return entity.WinResult{}
}

// IsDraw reports whether the board is full with no completed line.
func IsDraw(board entity.Board) bool {
	if Evaluate(board).HasWinner() {
		return false
	}

	return board.IsFull()
}

// AvailableMoves returns the vacant cell indexes in ascending order. The
// result is empty for a full board, never nil.
func AvailableMoves(board entity.Board) []int {
	moves := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}
