package entity

const (
	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""
)

// Mark is a player symbol. MarkX and MarkO are the only valid player marks;
// EmptyCell doubles as the vacant-cell value on the board.
type Mark = string

// Board is the 3x3 grid stored row-major: index = row*3 + col.
type Board [9]Mark

// Line is a winning combination, a triple of board indexes.
type Line [3]int

// Lines are the 8 winning combinations, checked in this fixed order:
// rows, then columns, then diagonals.
var Lines = []Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// WinResult is derived from a board on demand and never stored. The zero
// value means no winner.
type WinResult struct {
	Winner Mark `json:"winner"`
	Line   Line `json:"line"`
}

func (that WinResult) HasWinner() bool {
	return that.Winner != EmptyCell
}

// ToggleMark returns the opposing mark. Non-player values are returned
// unchanged so a corrupt input can never silently become a legal move.
func ToggleMark(currentMark Mark) Mark {
	switch currentMark {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return currentMark
	}
}

// IsPlayerMark reports whether m is one of the two player marks.
func IsPlayerMark(m Mark) bool {
	return m == MarkX || m == MarkO
}

// InBounds reports whether cell is a legal board index.
func (that Board) InBounds(cell int) bool {
	return cell >= 0 && cell < len(that)
}

// IsEmptyCell reports whether the cell is vacant. Out-of-range indexes
// count as occupied so callers reject them the same way.
func (that Board) IsEmptyCell(cell int) bool {
	return that.InBounds(cell) && that[cell] == EmptyCell
}

// IsFull reports whether no vacant cell remains.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// CountMarks returns the number of occupied cells.
func (that Board) CountMarks() int {
	count := 0
	for _, cell := range that {
		if cell != EmptyCell {
			count++
		}
	}
	return count
}
