package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellState_Rendering(t *testing.T) {
	cases := []struct {
		state CellState
		color string
		icon  string
		name  string
	}{
		{CellEmpty, "white", "", "empty"},
		{CellWave, "#3572B5", "wave.svg", "wave"},
		{CellTorpedo, "#F60002", "torpedo.svg", "torpedo"},
		{CellBomb, "#908B88", "bomba.svg", "bomb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.color, tc.state.Color())
			assert.Equal(t, tc.icon, tc.state.Icon())
			assert.Equal(t, tc.name, tc.state.String())
		})
	}
}

func TestCellState_NextWraps(t *testing.T) {
	assert.Equal(t, CellWave, CellEmpty.Next())
	assert.Equal(t, CellTorpedo, CellWave.Next())
	assert.Equal(t, CellBomb, CellTorpedo.Next())
	assert.Equal(t, CellEmpty, CellBomb.Next())
}

func TestCell_SyncResetsOnlyOnEpochChange(t *testing.T) {
	var c Cell
	c.Activate()
	c.Activate()

	c.Sync(0)
	assert.Equal(t, CellTorpedo, c.State, "same epoch must not reset")

	c.Sync(1)
	assert.Equal(t, CellEmpty, c.State)

	c.Activate()
	c.Sync(1)
	assert.Equal(t, CellWave, c.State)

	// Already empty cells take the new epoch too.
	var empty Cell
	empty.Sync(3)
	empty.Activate()
	empty.Sync(4)
	assert.Equal(t, CellEmpty, empty.State)
}

func TestGrid_SyncForwardsToEveryCell(t *testing.T) {
	var g Grid
	for i := 0; i < GridSize; i++ {
		assert.NoError(t, g.Activate(i))
	}
	g.Sync(1)
	for i, c := range g.Cells {
		assert.Equal(t, CellEmpty, c.State, "cell %d", i)
	}
}

func TestGrid_ActivateBounds(t *testing.T) {
	var g Grid
	assert.ErrorIs(t, g.Activate(GridSize), ErrCellOutOfRange)
	assert.ErrorIs(t, g.Activate(-1), ErrCellOutOfRange)

	assert.NoError(t, g.Activate(GridSize-1))
	assert.Equal(t, CellWave, g.Cells[GridSize-1].State)
}
