package types

import (
	"errors"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/lobby"
	pub "github.com/DoyleJ11/batalla-naval/pkg/types"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMissingCell    = errors.New("missing cell")
)

type ClientMessage struct {
	Type      string `json:"type"`
	Team      string `json:"team,omitempty"`
	Cell      *int   `json:"cell,omitempty"` // required for ActivateCell
	Confirmed bool   `json:"confirmed,omitempty"`
}

// CellRef is a convenience for building ActivateCell messages.
func CellRef(i int) *int { return &i }

type ServerMessage struct {
	Type    string     `json:"type"` // "StateSnapshot" | "Error"
	Version int        `json:"version,omitempty"`
	State   *pub.Board `json:"state,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ToCommand maps a client message onto an engine command. Team and cell are
// validated by the engine.
func ToCommand(m ClientMessage) (engine.Command, error) {
	team := engine.Team(m.Team)
	switch engine.CommandType(m.Type) {
	case engine.CmdIncrement:
		return engine.Command{Type: engine.CmdIncrement, Team: team}, nil
	case engine.CmdDecrement:
		return engine.Command{Type: engine.CmdDecrement, Team: team}, nil
	case engine.CmdActivateCell:
		if m.Cell == nil {
			return engine.Command{}, ErrMissingCell
		}
		return engine.Command{Type: engine.CmdActivateCell, Team: team, Cell: *m.Cell}, nil
	case engine.CmdReset:
		return engine.Command{Type: engine.CmdReset, Confirmed: m.Confirmed}, nil
	default:
		return engine.Command{}, ErrUnknownMessage
	}
}

func BoardView(snap lobby.Snapshot) pub.Board {
	s := snap.State
	b := pub.Board{
		Version: snap.Version,
		Epoch:   s.Epoch,
		Columns: engine.GridColumns,
		Teams:   make([]pub.Team, 0, len(s.Roster)),
	}
	for _, team := range s.Roster {
		grid := s.Grids[team]
		cells := make([]pub.Cell, len(grid.Cells))
		for i, c := range grid.Cells {
			cells[i] = pub.Cell{
				Index: i,
				State: c.State.String(),
				Color: c.State.Color(),
				Icon:  c.State.Icon(),
			}
		}
		b.Teams = append(b.Teams, pub.Team{Name: string(team), Score: s.Scores[team], Cells: cells})
	}
	return b
}

func SnapshotMessage(snap lobby.Snapshot) ServerMessage {
	board := BoardView(snap)
	return ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &board}
}

func ErrorMessage(err error) ServerMessage {
	return ServerMessage{Type: "Error", Error: err.Error()}
}
