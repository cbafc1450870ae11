package command

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// field declares one named argument of the grammar: its clause pattern
// (with a single named capture group matching the field name) and the
// post-processing applied to the raw capture. The table is compiled once
// into a single composed matcher, so adding a field never touches the
// dispatcher.
type field struct {
	name    string
	pattern string
	apply   func(*Command, string)
}

var fields = []field{
	{
		name:    "status",
		pattern: `status:?\s+?(?P<status>open|in progress|closed)`,
		apply: func(c *Command, v string) {
			c.Status = strings.ToLower(v)
		},
	},
	{
		name:    "bounty",
		pattern: `bounty:?\s+?(?P<bounty>(?:\s*?\d+(?:\.\d+)?[ ]\w+(?:\s*?,\s*?)?)+)`,
		apply: func(c *Command, v string) {
			c.Bounty = normalizeBounty(v)
		},
	},
	{
		name:    "description",
		pattern: `description:?\s+?"(?P<description>.+?)"`,
		apply: func(c *Command, v string) {
			c.Description = strings.TrimSpace(v)
		},
	},
	{
		name:    "note",
		pattern: `note:?\s+?"(?P<note>.+?)"`,
		apply: func(c *Command, v string) {
			c.Note = strings.TrimSpace(v)
		},
	},
	{
		name:    "skills",
		pattern: `skills:?\s+?"(?P<skills>(?:[-_\w ]+(?:\s*?,?\s*?))+)"`,
		apply: func(c *Command, v string) {
			c.Skills = splitList(v)
		},
	},
	{
		name:    "discord",
		pattern: `discord:?\s+?(?P<discord><@!?\d+>|.+?#\d{4})`,
		apply: func(c *Command, v string) {
			c.Discord = strings.TrimSpace(v)
		},
	},
	{
		name:    "deadline",
		pattern: `deadline:?\s+?(?P<deadline>\d{4}-\d{2}-\d{2})(?:T\d{2}:\d{2}:\d{2}(?:Z|[+-]\d{4})?)?`,
		apply: func(c *Command, v string) {
			// Only the calendar date is retained; reject impossible dates.
			if _, err := time.Parse("2006-01-02", v); err == nil {
				c.Deadline = v
			}
		},
	},
	{
		name:    "assignees",
		pattern: `assignees:?\s+?"(?P<assignees>@[\w.-]+(?:\s*?,\s*?@[\w.-]+)*)"`,
		apply: func(c *Command, v string) {
			c.Assignees = splitAccounts(v)
		},
	},
}

// Parser recognizes one invocation of the bot's call token followed
// optionally by "help" or by zero-or-more clauses in any order. Parsing
// is pure: no queue, network, or clock access.
type Parser struct {
	re    *regexp.Regexp
	apply map[string]func(*Command, string)
}

// NewParser compiles the grammar for the given call token (prefix+name,
// e.g. "!utopian").
func NewParser(callToken string) *Parser {
	alts := make([]string, 0, len(fields))
	apply := make(map[string]func(*Command, string), len(fields))
	for _, f := range fields {
		alts = append(alts, "(?:"+f.pattern+")")
		apply[f.name] = f.apply
	}

	expr := fmt.Sprintf(`(?i)%s(?:[ \t]+(?P<help>help)|(?:\s+(?:--)?(?:%s);?)*)`,
		regexp.QuoteMeta(callToken), strings.Join(alts, "|"))

	return &Parser{
		re:    regexp.MustCompile(expr),
		apply: apply,
	}
}

// Parse returns the typed command found in body, or nil when the call
// token is absent. When a clause is repeated the last occurrence wins:
// the repeated-alternation matcher overwrites a group's capture on each
// pass, and that behavior is kept deliberately.
func (p *Parser) Parse(body string) *Command {
	m := p.re.FindStringSubmatch(body)
	if m == nil {
		return nil
	}

	cmd := &Command{}
	for i, name := range p.re.SubexpNames() {
		if i == 0 || name == "" || m[i] == "" {
			continue
		}
		if name == "help" {
			cmd.Help = true
			continue
		}
		if apply, ok := p.apply[name]; ok {
			apply(cmd, m[i])
		}
	}

	return cmd
}

// splitList splits a comma-separated value into trimmed, non-empty,
// order-preserving unique entries. Whitespace-only input yields nil.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitAccounts splits a comma-separated account list, stripping the "@"
// sigil and surrounding whitespace from each name.
func splitAccounts(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		name := strings.Trim(part, "@ \t\r\n")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeBounty splits a comma-separated "<amount> <unit>" list into
// canonical entries: the amount re-rendered from its decimal value, the
// unit upper-cased. Entries that do not carry a parseable amount are
// dropped.
func normalizeBounty(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		tokens := strings.Fields(part)
		if len(tokens) != 2 {
			continue
		}
		amount, err := decimal.NewFromString(tokens[0])
		if err != nil {
			continue
		}
		entry := amount.String() + " " + strings.ToUpper(tokens[1])
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
