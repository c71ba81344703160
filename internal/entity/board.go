package entity

const (
	Columns = 7
	Rows    = 6

	// WinLength is the number of aligned discs that ends a game.
	WinLength = 4
)

// Cell is the content of a single board slot.
type Cell uint8

const (
	Empty Cell = iota
	OwnedByA
	OwnedByB
)

// CellOf returns the mark placed by the given player.
func CellOf(turn Turn) Cell {
	if turn == TurnA {
		return OwnedByA
	}
	return OwnedByB
}

func (that Cell) String() string {
	switch that {
	case OwnedByA:
		return "A"
	case OwnedByB:
		return "B"
	default:
		return "."
	}
}

// Board is a 7x6 connect-four grid stored column by column.
// Row 0 is the top of a column, so discs fall towards row Rows-1.
type Board struct {
	cells [Columns * Rows]Cell
}

func NewBoard() Board {
	return Board{}
}

func index(column, row int) int {
	return column*Rows + row
}

// At returns the cell at the given position.
func (that *Board) At(column, row int) Cell {
	return that.cells[index(column, row)]
}

// top returns the row of the highest disc in column, or Rows if the column is empty.
func (that *Board) top(column int) int {
	row := 0
	for row < Rows && that.cells[index(column, row)] == Empty {
		row++
	}
	return row
}

// Insert drops a disc for turn into column. The caller must validate the column range.
// It returns false and leaves the board untouched when the column is full.
func (that *Board) Insert(column int, turn Turn) bool {
	row := that.top(column)
	if row == 0 {
		return false
	}

	that.cells[index(column, row-1)] = CellOf(turn)

	return true
}

// IsWin reports whether the last disc dropped into column by turn completed a line of
// WinLength. Only the neighbourhood reachable from the landing cell is scanned.
func (that *Board) IsWin(column int, turn Turn) bool {
	row := that.top(column)
	if row == Rows {
		return false
	}

	mark := CellOf(turn)
	reach := WinLength - 1

	minC, maxC := max(column-reach, 0), min(column+reach, Columns-1)
	minR, maxR := max(row-reach, 0), min(row+reach, Rows-1)

	inside := func(c, r int) bool {
		return c >= minC && c <= maxC && r >= minR && r <= maxR
	}

	// horizontal and vertical runs start on the window edge,
	// diagonals may start on any cell of the window
	directions := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

	for _, d := range directions {
		for startR := minR; startR <= maxR; startR++ {
			for startC := minC; startC <= maxC; startC++ {
				if inside(startC-d[0], startR-d[1]) {
					continue
				}

				count := 0
				for c, r := startC, startR; inside(c, r); c, r = c+d[0], r+d[1] {
					if that.cells[index(c, r)] != mark {
						count = 0
						continue
					}

					count++
					if count == WinLength {
						return true
					}
				}
			}
		}
	}

	return false
}

// IsFull reports whether every cell of the board holds a disc.
func (that *Board) IsFull() bool {
	for _, cell := range that.cells {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that *Board) String() string {
	out := make([]byte, 0, (Columns+1)*Rows)
	for row := 0; row < Rows; row++ {
		for column := 0; column < Columns; column++ {
			out = append(out, that.At(column, row).String()...)
		}
		out = append(out, '\n')
	}

	return string(out)
}
