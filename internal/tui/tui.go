// Package tui plays the scoreboard in a terminal. State lives in the
// process; every event is applied synchronously before the next draw.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
)

// The layout fits an 80x24 terminal: the last grid row is row 23.
const (
	marginX     = 2
	scoreTop    = 2
	scoreColW   = 16
	resetRow    = 6
	gridTop     = 8
	cellW       = 3
	cellStride  = cellW + 1
	gridStrideX = engine.GridColumns*cellStride + 2
	gridStrideY = engine.GridSize/engine.GridColumns + 3

	resetLabel = "[ Reiniciar Todo ]"
	helpLine   = "clic: marcar · r: reiniciar · q: salir"
)

var glyphs = map[engine.CellState]rune{
	engine.CellEmpty:   ' ',
	engine.CellWave:    '~',
	engine.CellTorpedo: '>',
	engine.CellBomb:    '*',
}

type targetKind int

const (
	targetCell targetKind = iota
	targetIncrement
	targetDecrement
	targetReset
)

type target struct {
	kind targetKind
	team engine.Team
	cell int
}

type hitbox struct {
	x, y, w int
	t       target
}

type Board struct {
	screen  tcell.Screen
	state   engine.State
	confirm engine.Confirmer
	boxes   []hitbox
	pressed bool
	log     *zap.Logger
}

// New wires a board to an initialized screen. Reset confirmation uses the
// board's own modal prompt unless SetConfirmer overrides it.
func New(screen tcell.Screen, roster []engine.Team, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Board{
		screen: screen,
		state:  engine.NewEmptyState(roster),
		log:    log,
	}
	b.confirm = b
	return b
}

func (b *Board) SetConfirmer(c engine.Confirmer) { b.confirm = c }

func (b *Board) State() engine.State { return b.state }

// Run draws and handles events until the user quits or the screen closes.
func (b *Board) Run() error {
	b.screen.EnableMouse()
	b.Draw()
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if b.HandleEvent(ev) {
			return nil
		}
		b.Draw()
	}
}

// HandleEvent applies one input event and reports whether the user asked to
// quit.
func (b *Board) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
			b.requestReset()
		}

	case *tcell.EventMouse:
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !b.pressed {
			x, y := ev.Position()
			if t, ok := b.hit(x, y); ok {
				b.activate(t)
			}
		}
		b.pressed = down

	case *tcell.EventResize:
		b.screen.Sync()
	}
	return false
}

func (b *Board) hit(x, y int) (target, bool) {
	for _, box := range b.boxes {
		if y == box.y && x >= box.x && x < box.x+box.w {
			return box.t, true
		}
	}
	return target{}, false
}

func (b *Board) activate(t target) {
	switch t.kind {
	case targetCell:
		b.apply(engine.Command{Type: engine.CmdActivateCell, Team: t.team, Cell: t.cell})
	case targetIncrement:
		b.apply(engine.Command{Type: engine.CmdIncrement, Team: t.team})
	case targetDecrement:
		b.apply(engine.Command{Type: engine.CmdDecrement, Team: t.team})
	case targetReset:
		b.requestReset()
	}
}

func (b *Board) apply(cmd engine.Command) {
	_, next, err := engine.Apply(b.state, cmd)
	if err != nil {
		b.log.Warn("command rejected", zap.String("type", string(cmd.Type)), zap.Error(err))
		return
	}
	b.state = next
}

func (b *Board) requestReset() {
	events, next, err := engine.RequestReset(b.state, b.confirm)
	if err != nil {
		b.log.Warn("reset failed", zap.Error(err))
		return
	}
	if len(events) > 0 {
		b.log.Info("board reset", zap.Int("epoch", next.Epoch))
	}
	b.state = next
	b.pressed = false
}

// Confirm shows a modal yes/no prompt and blocks until it is answered.
// Esc or a closed screen count as no.
func (b *Board) Confirm(prompt string) bool {
	for {
		b.drawModal(prompt)
		ev := b.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return false
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				return false
			}
			if ev.Key() == tcell.KeyRune {
				switch ev.Rune() {
				case 's', 'S', 'y', 'Y':
					return true
				case 'n', 'N':
					return false
				}
			}
		case *tcell.EventResize:
			b.screen.Sync()
			b.Draw()
		}
	}
}

var (
	styleBase   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleTitle  = styleBase.Bold(true)
	styleScore  = styleBase.Foreground(tcell.ColorYellow).Bold(true)
	styleInc    = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorWhite).Bold(true)
	styleDec    = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite).Bold(true)
	styleReset  = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack).Bold(true)
	styleModal  = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleDimmed = styleBase.Foreground(tcell.ColorSilver)
)

func cellStyle(s engine.CellState) tcell.Style {
	fg := tcell.ColorWhite
	if s == engine.CellEmpty {
		fg = tcell.ColorBlack
	}
	return tcell.StyleDefault.Background(tcell.GetColor(s.Color())).Foreground(fg).Bold(true)
}

func (b *Board) Draw() {
	b.screen.SetStyle(styleBase)
	b.screen.Clear()
	b.boxes = b.boxes[:0]

	b.text(marginX, 0, styleTitle, "BATALLA NAVAL")

	for i, team := range b.state.Roster {
		x := marginX + i*scoreColW
		b.text(x, scoreTop, styleTitle, string(team))
		b.text(x, scoreTop+1, styleScore, fmt.Sprintf("%d", b.state.Scores[team]))
		b.button(x, scoreTop+2, styleInc, "[+]", target{kind: targetIncrement, team: team})
		b.button(x+4, scoreTop+2, styleDec, "[-]", target{kind: targetDecrement, team: team})
	}

	n := b.button(marginX, resetRow, styleReset, resetLabel, target{kind: targetReset})
	b.text(marginX+n+2, resetRow, styleDimmed, helpLine)

	for i, team := range b.state.Roster {
		gx := marginX + (i%2)*gridStrideX
		gy := gridTop + (i/2)*gridStrideY
		b.text(gx, gy, styleTitle, string(team))

		grid := b.state.Grids[team]
		for j, cell := range grid.Cells {
			cx, cy := cellOrigin(gx, gy, j)
			label := []rune{' ', glyphs[cell.State], ' '}
			b.button(cx, cy, cellStyle(cell.State), string(label), target{kind: targetCell, team: team, cell: j})
		}
	}

	b.screen.Show()
}

func cellOrigin(gx, gy, i int) (int, int) {
	return gx + (i%engine.GridColumns)*cellStride, gy + 1 + i/engine.GridColumns
}

func (b *Board) drawModal(prompt string) {
	b.Draw()
	w, h := b.screen.Size()
	lines := []string{prompt, "", "(s/n)"}
	width := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	width += 4
	x0 := (w - width) / 2
	y0 := (h - len(lines) - 2) / 2
	for y := y0; y < y0+len(lines)+2; y++ {
		for x := x0; x < x0+width; x++ {
			b.screen.SetContent(x, y, ' ', nil, styleModal)
		}
	}
	for i, l := range lines {
		b.text(x0+2, y0+1+i, styleModal, l)
	}
	b.screen.Show()
}

func (b *Board) button(x, y int, style tcell.Style, label string, t target) int {
	n := b.text(x, y, style, label)
	b.boxes = append(b.boxes, hitbox{x: x, y: y, w: n, t: t})
	return n
}

func (b *Board) text(x, y int, style tcell.Style, s string) int {
	n := 0
	for _, r := range s {
		b.screen.SetContent(x+n, y, r, nil, style)
		n++
	}
	return n
}
