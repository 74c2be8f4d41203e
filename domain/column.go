package domain

// Column is one lane of a user's board.
type Column struct {
	Status   Status `json:"status"`
	Title    string `json:"title"`
	IsLock   bool   `json:"is_lock"`
	Position int    `json:"position"`
}

// DefaultColumns returns the lanes every new board starts with.
func DefaultColumns() []Column {
	return []Column{
		{Status: StatusTodo, Title: "To Do", IsLock: true, Position: 0},
		{Status: StatusInProgress, Title: "In Progress", Position: 1},
		{Status: StatusDone, Title: "Done", Position: 2},
	}
}
