package engine

import (
	"errors"
	"slices"
)

var ErrUnknownTeam = errors.New("unknown team")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Team string

type State struct {
	Roster []Team
	Scores map[Team]int
	Grids  map[Team]Grid
	Epoch  int
}

type CommandType string

const (
	CmdIncrement    CommandType = "Increment"
	CmdDecrement    CommandType = "Decrement"
	CmdActivateCell CommandType = "ActivateCell"
	CmdReset        CommandType = "Reset"
)

/*
	CmdIncrement    -> EvtScoreChanged(+1)
	CmdDecrement    -> EvtScoreChanged(-1)
	CmdActivateCell -> EvtCellAdvanced
	CmdReset        -> EvtBoardReset when confirmed, nothing when declined
*/

type Command struct {
	Type      CommandType
	Team      Team
	Cell      int
	Confirmed bool
}

type EventType string

const (
	EvtScoreChanged EventType = "ScoreChanged"
	EvtCellAdvanced EventType = "CellAdvanced"
	EvtBoardReset   EventType = "BoardReset"
)

type Event struct {
	Type  EventType
	Team  Team
	Delta int
	Cell  int
	Epoch int
}

// Apply validates cmd against s and returns the resulting events and state.
// s itself is never modified.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdIncrement, CmdDecrement:
		if !s.HasTeam(cmd.Team) {
			return nil, s, ErrUnknownTeam
		}
		delta := 1
		if cmd.Type == CmdDecrement {
			delta = -1
		}

		newState := s.Clone()
		newState.Scores[cmd.Team] += delta
		return []Event{{Type: EvtScoreChanged, Team: cmd.Team, Delta: delta}}, newState, nil

	case CmdActivateCell:
		if !s.HasTeam(cmd.Team) {
			return nil, s, ErrUnknownTeam
		}

		newState := s.Clone()
		grid := newState.Grids[cmd.Team]
		if err := grid.Activate(cmd.Cell); err != nil {
			return nil, s, err
		}
		newState.Grids[cmd.Team] = grid
		return []Event{{Type: EvtCellAdvanced, Team: cmd.Team, Cell: cmd.Cell}}, newState, nil

	case CmdReset:
		// Declining is a silent no-op.
		if !cmd.Confirmed {
			return nil, s, nil
		}

		newState := s.Clone()
		newState.Epoch++
		for _, team := range newState.Roster {
			newState.Scores[team] = 0
			grid := newState.Grids[team]
			grid.Sync(newState.Epoch)
			newState.Grids[team] = grid
		}
		return []Event{{Type: EvtBoardReset, Epoch: newState.Epoch}}, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Reduce rebuilds a board by replaying events from an empty state.
func Reduce(roster []Team, events []Event) State {
	s := NewEmptyState(roster)
	for _, event := range events {
		switch event.Type {
		case EvtScoreChanged:
			s.Scores[event.Team] += event.Delta
		case EvtCellAdvanced:
			grid := s.Grids[event.Team]
			if grid.Activate(event.Cell) == nil {
				s.Grids[event.Team] = grid
			}
		case EvtBoardReset:
			s.Epoch = event.Epoch
			for _, team := range s.Roster {
				s.Scores[team] = 0
				grid := s.Grids[team]
				grid.Sync(s.Epoch)
				s.Grids[team] = grid
			}
		}
	}
	return s
}

func (s State) HasTeam(team Team) bool {
	return slices.Contains(s.Roster, team)
}

// Clone returns a copy that shares no maps with s.
func (s State) Clone() State {
	c := State{
		Roster: slices.Clone(s.Roster),
		Scores: make(map[Team]int, len(s.Scores)),
		Grids:  make(map[Team]Grid, len(s.Grids)),
		Epoch:  s.Epoch,
	}
	for team, score := range s.Scores {
		c.Scores[team] = score
	}
	for team, grid := range s.Grids {
		c.Grids[team] = grid
	}
	return c
}
