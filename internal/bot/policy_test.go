package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxalis-games/tictactoe/internal/entity"
	"github.com/oxalis-games/tictactoe/internal/rules"
)

func newTestPolicy() *Policy {
	return New(rand.New(rand.NewSource(1)))
}

func TestSelectMove_TakesImmediateWin(t *testing.T) {
	policy := newTestPolicy()

	// Given: X can complete the top row at 2, while O threatens the middle row at 5.
	board := entity.Board{
		entity.MarkX, entity.MarkX, entity.EmptyCell,
		entity.MarkO, entity.MarkO, entity.EmptyCell,
		entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
	}

	// When: the policy moves for X.
	cell, ok := policy.SelectMove(board, entity.MarkX)

	// Then: winning beats blocking.
	require.True(t, ok)
	assert.Equal(t, 2, cell)
}

func TestSelectMove_BlocksOpponentWin(t *testing.T) {
	policy := newTestPolicy()

	// Given: X threatens the top row and O has no win of its own.
	board := entity.Board{
		entity.MarkX, entity.MarkX, entity.EmptyCell,
		entity.EmptyCell, entity.MarkO, entity.EmptyCell,
		entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
	}

	// When: the policy moves for O.
	cell, ok := policy.SelectMove(board, entity.MarkO)

	// Then: it occupies the cell X would win with.
	require.True(t, ok)
	assert.Equal(t, 2, cell)
}

func TestSelectMove_PrefersCenter(t *testing.T) {
	policy := newTestPolicy()

	// Given: a single opening move in a corner, no threats on the board.
	board := entity.Board{}
	board[0] = entity.MarkX

	// When: the policy moves for O.
	cell, ok := policy.SelectMove(board, entity.MarkO)

	// Then: center.
	require.True(t, ok)
	assert.Equal(t, 4, cell)
}

func TestSelectMove_FallsBackToCorner(t *testing.T) {
	policy := newTestPolicy()

	// Given: center is taken and neither side threatens a line.
	board := entity.Board{}
	board[4] = entity.MarkX

	// When: the policy moves for O.
	cell, ok := policy.SelectMove(board, entity.MarkO)

	// Then: one of the vacant corners.
	require.True(t, ok)
	assert.Contains(t, []int{0, 2, 6, 8}, cell)
}

func TestSelectMove_FallsBackToSide(t *testing.T) {
	policy := newTestPolicy()

	// Given: center and all corners occupied, no winning or blocking move
	// for either mark, sides 3 and 5 vacant.
	board := entity.Board{
		entity.MarkX, entity.MarkO, entity.MarkX,
		entity.EmptyCell, entity.MarkX, entity.EmptyCell,
		entity.MarkO, entity.MarkX, entity.MarkO,
	}

	// When: the policy moves for O.
	cell, ok := policy.SelectMove(board, entity.MarkO)

	// Then: one of the vacant sides.
	require.True(t, ok)
	assert.Contains(t, []int{3, 5}, cell)
}

func TestSelectMove_FullBoard(t *testing.T) {
	policy := newTestPolicy()

	// Given: no vacant cells.
	board := entity.Board{
		entity.MarkX, entity.MarkO, entity.MarkX,
		entity.MarkX, entity.MarkO, entity.MarkO,
		entity.MarkO, entity.MarkX, entity.MarkX,
	}

	// When: the policy is asked to move anyway.
	_, ok := policy.SelectMove(board, entity.MarkX)

	// Then: it reports that no move exists.
	assert.False(t, ok)
}

func TestSelectMove_DeterministicWithSeed(t *testing.T) {
	// Given: a corner-choice position, where the random source decides.
	board := entity.Board{}
	board[4] = entity.MarkX

	// When: two policies share a seed and a third uses another one.
	first, ok := New(rand.New(rand.NewSource(42))).SelectMove(board, entity.MarkO)
	require.True(t, ok)

	second, ok := New(rand.New(rand.NewSource(42))).SelectMove(board, entity.MarkO)
	require.True(t, ok)

	// Then: same seed, same pick.
	assert.Equal(t, first, second)
}

func TestSelectMove_ReturnsOnlyAvailableCells(t *testing.T) {
	policy := newTestPolicy()

	boards := []entity.Board{
		{},
		{entity.MarkX, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell, entity.MarkO, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell},
		{entity.MarkX, entity.MarkO, entity.MarkX, entity.EmptyCell, entity.MarkO, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell},
		{entity.MarkO, entity.MarkX, entity.MarkO, entity.MarkX, entity.MarkX, entity.MarkO, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell},
	}

	for _, board := range boards {
		original := board

		cell, ok := policy.SelectMove(board, entity.MarkX)

		require.True(t, ok)
		assert.Contains(t, rules.AvailableMoves(board), cell)
		assert.Equal(t, original, board, "the input board must not be mutated")
	}
}
