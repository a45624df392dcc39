package types

// Board is the public JSON view of one scoreboard.
type Board struct {
	Version int    `json:"version"`
	Epoch   int    `json:"epoch"`
	Columns int    `json:"columns"`
	Teams   []Team `json:"teams"`
}

type Team struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Cells []Cell `json:"cells"`
}

type Cell struct {
	Index int    `json:"index"`
	State string `json:"state"` // "empty" | "wave" | "torpedo" | "bomb"
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

// Round is one archived game, scores listed in roster order.
type Round struct {
	Epoch     int         `json:"epoch"`
	Scores    []TeamScore `json:"scores"`
	CreatedAt string      `json:"created_at"`
}

type TeamScore struct {
	Team  string `json:"team"`
	Score int    `json:"score"`
}
