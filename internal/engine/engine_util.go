package engine

func NewEmptyState(roster []Team) State {
	s := State{
		Roster: append([]Team(nil), roster...),
		Scores: make(map[Team]int, len(roster)),
		Grids:  make(map[Team]Grid, len(roster)),
		Epoch:  0,
	}
	for _, team := range roster {
		s.Scores[team] = 0
		s.Grids[team] = Grid{}
	}
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// ResetPrompt is the question asked before a reset is applied.
const ResetPrompt = "¿Estás seguro que querés reiniciar todo?"

// Confirmer answers a blocking yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// RequestReset asks c once and applies a Reset carrying the answer.
func RequestReset(s State, c Confirmer) ([]Event, State, error) {
	return Apply(s, Command{Type: CmdReset, Confirmed: c.Confirm(ResetPrompt)})
}
