package engine

import "errors"

var ErrCellOutOfRange = errors.New("cell out of range")

const (
	GridColumns = 6
	GridSize    = GridColumns * GridColumns
)

type CellState int

const (
	CellEmpty CellState = iota
	CellWave
	CellTorpedo
	CellBomb

	numCellStates = 4
)

var cellColors = [numCellStates]string{"white", "#3572B5", "#F60002", "#908B88"}

// Empty has no icon.
var cellIcons = [numCellStates]string{"", "wave.svg", "torpedo.svg", "bomba.svg"}

var cellNames = [numCellStates]string{"empty", "wave", "torpedo", "bomb"}

func (c CellState) Next() CellState {
	return (c + 1) % numCellStates
}

func (c CellState) Color() string { return cellColors[c.index()] }
func (c CellState) Icon() string { return cellIcons[c.index()] }
func (c CellState) String() string { return cellNames[c.index()] }

func (c CellState) index() int {
	return int(((c % numCellStates) + numCellStates) % numCellStates)
}

// Cell is one square of a team grid. It remembers the last reset epoch it
// has seen so a changed epoch clears it.
type Cell struct {
	State CellState
	seen  int
}

func (c *Cell) Activate() {
	c.State = c.State.Next()
}

func (c *Cell) Sync(epoch int) {
	if epoch == c.seen {
		return
	}
	c.seen = epoch
	c.State = CellEmpty
}

// Grid is a fixed board of GridSize cells addressed by index, row-major with
// GridColumns per row. It is a marking board only.
type Grid struct {
	Cells [GridSize]Cell
}

func (g *Grid) Activate(i int) error {
	if i < 0 || i >= GridSize {
		return ErrCellOutOfRange
	}
	g.Cells[i].Activate()
	return nil
}

func (g *Grid) Sync(epoch int) {
	for i := range g.Cells {
		g.Cells[i].Sync(epoch)
	}
}
