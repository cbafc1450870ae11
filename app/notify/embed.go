package notify

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/contrib"
	"github.com/utopian-io/utbot/app/steem"
)

var upper = cases.Upper(language.English)

// EmbedBuilder renders typed records into chat embeds. Construction is
// pure; transmission is the caller's job.
type EmbedBuilder struct {
	spec      *categories.Spec
	uiBaseURL string

	// now is swappable for tests; task embeds carry a timestamp.
	now func() time.Time
}

func NewEmbedBuilder(spec *categories.Spec, uiBaseURL string) *EmbedBuilder {
	return &EmbedBuilder{
		spec:      spec,
		uiBaseURL: uiBaseURL,
		now:       time.Now,
	}
}

func authorBlock(uiBaseURL, author string) *discordgo.MessageEmbedAuthor {
	return &discordgo.MessageEmbedAuthor{
		Name:    author,
		URL:     steem.AccountURL(uiBaseURL, author),
		IconURL: steem.AvatarURL(author),
	}
}

// BuildTask renders a task-request notification from the root post and
// the parsed command. A closed task shows only identity, category and
// status; assignees appear only while the task is in progress.
func (b *EmbedBuilder) BuildTask(root *steem.Comment, cmd *command.Command) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       root.Title,
		Description: cmd.Description,
		Author:      authorBlock(b.uiBaseURL, root.Author),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Verified by Utopian.io team"},
		Timestamp:   b.now().UTC().Format(time.RFC3339),
	}

	props, resolved := b.spec.ResolveTask(root.Tags())
	if resolved {
		embed.Color = props.ColorInt()
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: props.ImageURL}
		addField(embed, "Task Type", upper.String(props.Category), true)
	}

	if cmd.Status != "" {
		addField(embed, "Status", upper.String(cmd.Status), true)
	}
	if cmd.Status == command.StatusClosed {
		return embed
	}

	if len(cmd.Skills) > 0 {
		addField(embed, "Required skills", strings.Join(cmd.Skills, ", "), true)
	}
	if cmd.Discord != "" {
		addField(embed, "Discord", cmd.Discord, true)
	}

	bounty := "See the task details"
	if len(cmd.Bounty) > 0 {
		bounty = strings.Join(cmd.Bounty, ", ")
	}
	addField(embed, "Bounty", bounty, true)

	deadline := "Not specified"
	if cmd.Deadline != "" {
		deadline = cmd.Deadline
	}
	addField(embed, "Due date", deadline, true)

	if cmd.Status == command.StatusInProgress && len(cmd.Assignees) > 0 {
		addField(embed, "Assignees", steem.AccountLinks(b.uiBaseURL, cmd.Assignees), false)
	}

	if cmd.Note != "" {
		addField(embed, "Misc", cmd.Note, false)
	}

	return embed
}

// BuildContribution renders a reviewed-contribution notification.
func (b *EmbedBuilder) BuildContribution(c *contrib.Contribution) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: c.Title,
	}

	if c.Author != "" {
		embed.Author = authorBlock(b.uiBaseURL, c.Author)
	}

	categoryText := "Unknown"
	if props, ok := b.spec.Resolve([]string{c.Category}); ok {
		embed.Color = props.ColorInt()
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: props.ImageURL}
	}
	if c.Category != "" {
		categoryText = c.Category
	}
	addField(embed, "Category", upper.String(categoryText), true)

	addField(embed, "Reviewer", orUnknown(c.Moderator), true)
	addField(embed, "Score", strconv.Itoa(c.Score), true)

	staffPicked := "No"
	if c.StaffPicked {
		staffPicked = "Yes"
	}
	addField(embed, "Picked by staff", staffPicked, true)

	addField(embed, "Created at", orUnknown(c.Created), true)
	addField(embed, "Reviewed at", orUnknown(c.ReviewDate), true)

	return embed
}

func addField(embed *discordgo.MessageEmbed, name, value string, inline bool) {
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
