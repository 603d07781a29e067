// Package autopurge deletes old messages from configured channels on a
// schedule.
package autopurge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/caretakerbot/caretaker"
)

const cogName = "autopurge"

// Discord's bulk-delete endpoint rejects messages older than 14 days
// and batches larger than 100.
const (
	bulkDeleteMaxAge = 14 * 24 * time.Hour
	bulkDeleteMax    = 100
)

// Pages of message history fetched per channel per sweep. Keeps a
// single sweep from hammering the API on very busy channels.
const maxPagesPerSweep = 10

// setting is the per-channel brain record.
type setting struct {
	MaxAgeSeconds int64 `json:"maxAgeSeconds"`
}

type Cog struct {
	bot *caretaker.Bot
	now func() time.Time
}

func New() *Cog {
	return &Cog{now: time.Now}
}

func (c *Cog) Name() string { return cogName }

func (c *Cog) Register(b *caretaker.Bot) error {
	c.bot = b
	b.AddCommand("autopurge",
		"Deletes old messages on a schedule. `autopurge set #channel 7d`, `autopurge off #channel`, `autopurge status`",
		c.run)
	b.AddTimedJob("autopurge sweep", "@every 30m", c.sweepAll)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "set":
		return c.set(ctx)
	case "off":
		return c.off(ctx)
	case "status":
		return c.status(ctx)
	default:
		return "Usage: `autopurge set #channel <age>`, `autopurge off #channel`, `autopurge status`"
	}
}

func (c *Cog) set(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageMessages) {
		return "You need the Manage Messages permission to configure autopurge."
	}

	channelID := parseChannelMention(ctx.Arg(1))
	if channelID == "" {
		return "Mention the channel to purge, like `autopurge set #general 7d`."
	}
	maxAge, err := parseAge(ctx.Arg(2))
	if err != nil {
		return fmt.Sprintf("Bad age %q - use something like 12h or 7d.", ctx.Arg(2))
	}
	if maxAge < time.Minute {
		return "Age must be at least one minute."
	}

	s := setting{MaxAgeSeconds: int64(maxAge.Seconds())}
	if err := c.bot.Brain.Put(cogName, ctx.GuildID, channelID, s); err != nil {
		return fmt.Sprintf("Error saving setting - %v", err)
	}
	return fmt.Sprintf("Messages in <#%s> older than %s will be purged.", channelID, maxAge)
}

func (c *Cog) off(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageMessages) {
		return "You need the Manage Messages permission to configure autopurge."
	}

	channelID := parseChannelMention(ctx.Arg(1))
	if channelID == "" {
		return "Mention the channel to stop purging, like `autopurge off #general`."
	}
	if err := c.bot.Brain.Delete(cogName, ctx.GuildID, channelID); err != nil {
		return fmt.Sprintf("Error removing setting - %v", err)
	}
	return fmt.Sprintf("Autopurge disabled for <#%s>.", channelID)
}

func (c *Cog) status(ctx *caretaker.Context) interface{} {
	channels, err := c.bot.Brain.Keys(cogName, ctx.GuildID)
	if err != nil {
		return fmt.Sprintf("Error reading settings - %v", err)
	}
	if len(channels) == 0 {
		return "Autopurge is not enabled on any channel here."
	}

	e := caretaker.NewEmbed().SetTitle("Autopurge status")
	for _, channelID := range channels {
		var s setting
		if err := c.bot.Brain.Get(cogName, ctx.GuildID, channelID, &s); err != nil {
			continue
		}
		age := time.Duration(s.MaxAgeSeconds) * time.Second
		e.AddField("#"+channelName(ctx.Session, channelID), "older than "+age.String())
	}
	return e
}

// sweepAll runs from the cron and purges every configured channel in
// every guild the bot is in.
func (c *Cog) sweepAll() {
	for _, guild := range c.bot.Session.State.Guilds {
		channels, err := c.bot.Brain.Keys(cogName, guild.ID)
		if err != nil {
			c.bot.LogError("Error listing autopurge channels -", err)
			continue
		}
		for _, channelID := range channels {
			var s setting
			if err := c.bot.Brain.Get(cogName, guild.ID, channelID, &s); err != nil {
				continue
			}
			cutoff := c.now().Add(-time.Duration(s.MaxAgeSeconds) * time.Second)
			if err := c.sweepChannel(channelID, cutoff); err != nil {
				c.bot.LogError("Error purging channel "+channelID+" -", err)
			}
		}
	}
}

// sweepChannel deletes unpinned messages older than cutoff, walking
// the history backwards from the newest message.
func (c *Cog) sweepChannel(channelID string, cutoff time.Time) error {
	beforeID := ""
	for page := 0; page < maxPagesPerSweep; page++ {
		msgs, err := c.bot.Session.ChannelMessages(channelID, 100, beforeID, "", "")
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}
		beforeID = msgs[len(msgs)-1].ID

		bulk, single := splitExpired(msgs, cutoff, c.now().Add(-bulkDeleteMaxAge))

		// The bulk endpoint wants at least two IDs.
		if len(bulk) == 1 {
			single = append(single, bulk[0])
			bulk = nil
		}
		for len(bulk) > 0 {
			n := len(bulk)
			if n > bulkDeleteMax {
				n = bulkDeleteMax
			}
			if err := c.bot.Session.ChannelMessagesBulkDelete(channelID, bulk[:n]); err != nil {
				return err
			}
			bulk = bulk[n:]
		}
		for _, id := range single {
			if err := c.bot.Session.ChannelMessageDelete(channelID, id); err != nil {
				return err
			}
		}

		if len(msgs) < 100 {
			return nil
		}
	}
	return nil
}

// splitExpired picks the messages older than cutoff, skipping pinned
// ones, and splits them into those young enough for the bulk-delete
// endpoint and those that must be deleted one at a time.
func splitExpired(msgs []*discordgo.Message, cutoff, bulkCutoff time.Time) (bulk, single []string) {
	for _, m := range msgs {
		if m.Pinned {
			continue
		}
		if !m.Timestamp.Before(cutoff) {
			continue
		}
		if m.Timestamp.After(bulkCutoff) {
			bulk = append(bulk, m.ID)
		} else {
			single = append(single, m.ID)
		}
	}
	return bulk, single
}

var channelMentionRe = regexp.MustCompile(`^<#(\d+)>$`)

// parseChannelMention extracts the channel ID from a <#123> mention or
// a bare numeric ID.
func parseChannelMention(s string) string {
	if m := channelMentionRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil && s != "" {
		return s
	}
	return ""
}

// parseAge parses durations like 90m, 12h and 7d.
func parseAge(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func channelName(ss *caretaker.Session, channelID string) string {
	if ch, err := ss.State.Channel(channelID); err == nil {
		return ch.Name
	}
	return channelID
}
