// Package bot implements the computer opponent. The policy is a fixed
// priority ladder, not a solver: it takes an immediate win, blocks an
// immediate loss, and otherwise prefers center, corners, sides. It can be
// beaten, which is the intended difficulty.
package bot

import (
	"math/rand"
	"time"

	"github.com/oxalis-games/tictactoe/internal/entity"
	"github.com/oxalis-games/tictactoe/internal/rules"
)

var (
	corners = []int{0, 2, 6, 8}
	sides   = []int{1, 3, 5, 7}
)

// Policy selects moves for the computer mark. The random source breaks
// corner/side ties; injecting a seeded one makes games replayable.
type Policy struct {
	rng *rand.Rand
}

// New returns a policy using the given random source. A nil rng gets a
// time-seeded source.
func New(rng *rand.Rand) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Policy{rng: rng}
}

// SelectMove picks a cell for computerMark. The second return is false only
// when the board has no vacant cell; otherwise the chosen cell is always one
// of the available moves. The input board is never mutated: hypothetical
// placements act on copies of the board value.
func (that *Policy) SelectMove(board entity.Board, computerMark entity.Mark) (int, bool) {
	availableCells := rules.AvailableMoves(board)
	if len(availableCells) == 0 {
		return 0, false
	}

	// 1. Win: complete an own line right now.
	if cell, ok := winningMove(board, availableCells, computerMark); ok {
		return cell, true
	}

	// 2. Block: occupy the cell the opponent would win with.
	if cell, ok := winningMove(board, availableCells, entity.ToggleMark(computerMark)); ok {
		return cell, true
	}

	// 3. Center.
	if board.IsEmptyCell(4) {
		return 4, true
	}

	// 4. Random vacant corner.
	if cell, ok := that.randomVacant(board, corners); ok {
		return cell, true
	}

	// 5. Random vacant side.
	if cell, ok := that.randomVacant(board, sides); ok {
		return cell, true
	}

	// 6. Unreachable on a 3x3 board, kept as a catch-all.
	return availableCells[0], true
}

// winningMove returns the lowest vacant cell that completes a line for mark.
func winningMove(board entity.Board, availableCells []int, mark entity.Mark) (int, bool) {
	for _, cell := range availableCells {
		hypothetical := board
		hypothetical[cell] = mark

		if result := rules.Evaluate(hypothetical); result.Winner == mark {
			return cell, true
		}
	}

	return 0, false
}

func (that *Policy) randomVacant(board entity.Board, candidates []int) (int, bool) {
	vacant := make([]int, 0, len(candidates))
	for _, cell := range candidates {
		if board.IsEmptyCell(cell) {
			vacant = append(vacant, cell)
		}
	}

	if len(vacant) == 0 {
		return 0, false
	}

	return vacant[that.rng.Intn(len(vacant))], true
}
