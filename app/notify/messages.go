package notify

import (
	"fmt"
	"strings"

	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/steem"
)

// exampleFields drives both help examples; order matters for display.
var exampleFields = []struct {
	name  string
	value string
}{
	{"status", "open"},
	{"bounty", "10 SBD"},
	{"description", `"Short description of the task"`},
	{"skills", `"Python, Flask, Steem"`},
	{"deadline", "2018-01-01"},
	{"discord", "<@351997733646761985>"},
}

// Messages renders the user-facing reply bodies posted back on the
// source platform.
type Messages struct {
	callToken string
	botName   string
	repoURL   string
	uiBaseURL string
}

func NewMessages(callToken, botName, repoURL, uiBaseURL string) *Messages {
	return &Messages{
		callToken: callToken,
		botName:   botName,
		repoURL:   repoURL,
		uiBaseURL: uiBaseURL,
	}
}

// Help returns the reply sent when a user invokes the help command.
func (m *Messages) Help() string {
	oneLine := m.callToken
	var multiLine strings.Builder
	multiLine.WriteString(m.callToken)
	for _, f := range exampleFields {
		oneLine += fmt.Sprintf(" --%s %s", f.name, f.value)
		multiLine.WriteString(fmt.Sprintf("\n%s: %s", f.name, f.value))
	}

	return fmt.Sprintf(
		"Hi, you called for help. Brief examples of the bot calls are included below. "+
			"You can read about the parameters in the bot [description](%s)."+
			"\n\n<hr/>"+
			"\n\n```\n%s\n```"+
			"\n\n<hr/>"+
			"\n\n```\n%s\n```",
		m.repoURL, oneLine, multiLine.String())
}

// StatusMissing returns the notice sent when a command carries arguments
// but no status.
func (m *Messages) StatusMissing() string {
	return fmt.Sprintf(
		"Hello, we detected that you called %s without defining the current "+
			"status of the task. Please read the bot's [description](%s).",
		m.botName, m.repoURL)
}

// TaskSummary renders the standing summary reply body for a task. The
// field rules mirror the chat embed: a closed task shows only its
// status, assignees appear only while in progress.
func (m *Messages) TaskSummary(cmd command.Command) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Task status:** %s", upper.String(cmd.Status)))

	if cmd.Status != command.StatusClosed {
		if cmd.Description != "" {
			b.WriteString(fmt.Sprintf("\n**Description:** %s", cmd.Description))
		}
		if len(cmd.Skills) > 0 {
			b.WriteString(fmt.Sprintf("\n**Required skills:** %s", strings.Join(cmd.Skills, ", ")))
		}
		if cmd.Discord != "" {
			b.WriteString(fmt.Sprintf("\n**Discord:** %s", cmd.Discord))
		}
		bounty := "See the task details"
		if len(cmd.Bounty) > 0 {
			bounty = strings.Join(cmd.Bounty, ", ")
		}
		b.WriteString(fmt.Sprintf("\n**Bounty:** %s", bounty))
		deadline := "Not specified"
		if cmd.Deadline != "" {
			deadline = cmd.Deadline
		}
		b.WriteString(fmt.Sprintf("\n**Due date:** %s", deadline))
		if cmd.Status == command.StatusInProgress && len(cmd.Assignees) > 0 {
			b.WriteString(fmt.Sprintf("\n**Assignees:** %s", steem.AccountLinks(m.uiBaseURL, cmd.Assignees)))
		}
		if cmd.Note != "" {
			b.WriteString(fmt.Sprintf("\n**Misc:** %s", cmd.Note))
		}
	}

	b.WriteString(fmt.Sprintf("\n\n<hr/>\n\n*This summary is maintained by [%s](%s).*", m.botName, m.repoURL))
	return b.String()
}
