// Package msgformat enforces a per-channel message format. Messages
// that don't match the channel's rule are deleted and the author is
// told why over DM.
package msgformat

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/caretakerbot/caretaker"
)

const cogName = "msgformat"

// rule is the per-channel brain record.
type rule struct {
	Pattern     string `json:"pattern"`
	Explanation string `json:"explanation"`
}

type Cog struct {
	bot *caretaker.Bot

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp // pattern -> compiled
}

func New() *Cog {
	return &Cog{compiled: make(map[string]*regexp.Regexp)}
}

func (c *Cog) Name() string { return cogName }

func (c *Cog) Register(b *caretaker.Bot) error {
	c.bot = b
	b.AddCommand("msgformat",
		"Enforces a message format in a channel. `msgformat set #channel <pattern> [explanation]`, `msgformat clear #channel`, `msgformat show #channel`",
		c.run)
	b.AddMessageFilter("msgformat", c.enforce)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "set":
		return c.set(ctx)
	case "clear":
		return c.clear(ctx)
	case "show":
		return c.show(ctx)
	default:
		return "Usage: `msgformat set #channel <pattern> [explanation]`, `msgformat clear #channel`, `msgformat show #channel`"
	}
}

func (c *Cog) set(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageMessages) {
		return "You need the Manage Messages permission to set format rules."
	}

	channelID := parseChannelMention(ctx.Arg(1))
	if channelID == "" {
		return "Mention the channel, like `msgformat set #showcase ^https?:// your post must start with a link`."
	}
	pattern := ctx.Arg(2)
	if pattern == "" {
		return "Give a regular expression for messages to match."
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Sprintf("Bad pattern - %v", err)
	}

	r := rule{Pattern: pattern, Explanation: ctx.Rest(3)}
	if err := c.bot.Brain.Put(cogName, ctx.GuildID, channelID, r); err != nil {
		return fmt.Sprintf("Error saving rule - %v", err)
	}
	return fmt.Sprintf("Messages in <#%s> must now match `%s`.", channelID, pattern)
}

func (c *Cog) clear(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageMessages) {
		return "You need the Manage Messages permission to clear format rules."
	}

	channelID := parseChannelMention(ctx.Arg(1))
	if channelID == "" {
		return "Mention the channel, like `msgformat clear #showcase`."
	}
	if err := c.bot.Brain.Delete(cogName, ctx.GuildID, channelID); err != nil {
		return fmt.Sprintf("Error clearing rule - %v", err)
	}
	return fmt.Sprintf("Format rule cleared for <#%s>.", channelID)
}

func (c *Cog) show(ctx *caretaker.Context) interface{} {
	channelID := parseChannelMention(ctx.Arg(1))
	if channelID == "" {
		channelID = ctx.Message.ChannelID
	}

	var r rule
	err := c.bot.Brain.Get(cogName, ctx.GuildID, channelID, &r)
	if err != nil {
		return fmt.Sprintf("No format rule set for <#%s>.", channelID)
	}

	e := caretaker.NewEmbed().SetTitle("Message format rule")
	e.AddField("Pattern", "`"+r.Pattern+"`")
	if r.Explanation != "" {
		e.AddField("Explanation", r.Explanation)
	}
	return e
}

// enforce runs on every non-command message.
func (c *Cog) enforce(ctx *caretaker.Context) {
	m := ctx.Message

	var r rule
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, m.ChannelID, &r); err != nil {
		return
	}

	re, err := c.compile(r.Pattern)
	if err != nil {
		c.bot.LogError("Bad stored pattern for channel "+m.ChannelID+" -", err)
		return
	}
	if re.MatchString(m.Content) {
		return
	}

	// Moderators are exempt.
	if ctx.Session.HasPermission(m, discordgo.PermissionManageMessages) {
		return
	}

	if err := ctx.Session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		c.bot.LogError("Error deleting off-format message -", err)
		return
	}
	ctx.Session.SendPrivateMessage(m.Author.ID, rejectionNotice(r, m.Content))
}

// rejectionNotice builds the DM sent to the author of a deleted
// message, including their original content so nothing is lost.
func rejectionNotice(r rule, content string) string {
	why := r.Explanation
	if why == "" {
		why = "it must match `" + r.Pattern + "`"
	}
	return fmt.Sprintf("Your message was removed because %s.\nYour original message:\n%s", why, content)
}

// compile caches compiled patterns; rules rarely change.
func (c *Cog) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.compiled[pattern] = re
	return re, nil
}

var channelMentionRe = regexp.MustCompile(`^<#(\d+)>$`)

func parseChannelMention(s string) string {
	if m := channelMentionRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
