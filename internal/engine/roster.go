package engine

// DefaultRoster is the team order used when no roster file is configured.
var DefaultRoster = []Team{
	"PAC-MAN",
	"TETRIS",
	"PINBALL",
	"DAYTONA",
}

const RosterSize = 4
