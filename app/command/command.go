package command

// Command is the typed result of matching the bot grammar against a
// comment body. Every field is optional; zero values mean "absent".
// A Command is created once per comment body and never mutated after
// parsing.
type Command struct {
	Help        bool     `json:"help,omitempty"`
	Status      string   `json:"status,omitempty"`
	Bounty      []string `json:"bounty,omitempty"`
	Description string   `json:"description,omitempty"`
	Note        string   `json:"note,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Discord     string   `json:"discord,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

// Status values as normalized by the parser.
const (
	StatusOpen       = "open"
	StatusInProgress = "in progress"
	StatusClosed     = "closed"
)

// IsEmpty reports whether the command carries nothing beyond the Help
// flag and Status. An empty command without a status is not actionable.
func (c *Command) IsEmpty() bool {
	return len(c.Bounty) == 0 &&
		c.Description == "" &&
		c.Note == "" &&
		len(c.Skills) == 0 &&
		c.Discord == "" &&
		c.Deadline == "" &&
		len(c.Assignees) == 0
}

// Merge overlays the non-absent fields of other onto a copy of c. Used
// when updating the standing task summary: fields from the latest
// invocation win, previously recorded fields survive.
func (c Command) Merge(other *Command) Command {
	if other == nil {
		return c
	}
	if other.Status != "" {
		c.Status = other.Status
	}
	if len(other.Bounty) > 0 {
		c.Bounty = other.Bounty
	}
	if other.Description != "" {
		c.Description = other.Description
	}
	if other.Note != "" {
		c.Note = other.Note
	}
	if len(other.Skills) > 0 {
		c.Skills = other.Skills
	}
	if other.Discord != "" {
		c.Discord = other.Discord
	}
	if other.Deadline != "" {
		c.Deadline = other.Deadline
	}
	if len(other.Assignees) > 0 {
		c.Assignees = other.Assignees
	}
	return c
}
