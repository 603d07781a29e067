// Package streaks tracks how long a configured word or mention has
// gone unsaid in a guild, and the record dry spell.
package streaks

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caretakerbot/caretaker"
)

const cogName = "streaks"

// state is the per-guild brain record.
type state struct {
	Target        string    `json:"target"`
	LastSeen      time.Time `json:"lastSeen"`
	RecordSeconds int64     `json:"recordSeconds"`
	Sightings     int       `json:"sightings"`
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
	b.AddCommand("streak",
		"Tracks how long a word has gone unmentioned. `streak target <word>`, `streak`, `streak off`",
		c.run)
	b.AddMessageFilter("streaks", c.watch)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "target":
		target := strings.ToLower(ctx.Arg(1))
		if target == "" {
			return "Give a word to track, like `streak target bikeshed`."
		}
		st := state{Target: target, LastSeen: c.now()}
		if err := c.bot.Brain.Put(cogName, ctx.GuildID, "state", st); err != nil {
			return fmt.Sprintf("Error saving streak target - %v", err)
		}
		return fmt.Sprintf("Now tracking how long %q goes unmentioned. The clock starts now.", target)
	case "off":
		if err := c.bot.Brain.Delete(cogName, ctx.GuildID, "state"); err != nil {
			return fmt.Sprintf("Error clearing streak target - %v", err)
		}
		return "Streak tracking disabled."
	case "":
		return c.report(ctx)
	default:
		return "Usage: `streak`, `streak target <word>`, `streak off`"
	}
}

func (c *Cog) report(ctx *caretaker.Context) interface{} {
	var st state
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "state", &st); err != nil {
		return "No streak target set. Use `streak target <word>` first."
	}

	current := c.now().Sub(st.LastSeen)
	e := caretaker.NewEmbed().SetTitle(fmt.Sprintf("Time since %q was last mentioned", st.Target))
	e.AddField("Current", fmtDuration(current))
	if st.RecordSeconds > 0 {
		e.AddField("Record", fmtDuration(time.Duration(st.RecordSeconds)*time.Second))
	}
	e.AddField("Mentions so far", fmt.Sprintf("%d", st.Sightings))
	return e
}

// watch runs on every non-command message and resets the clock when
// the target shows up.
func (c *Cog) watch(ctx *caretaker.Context) {
	var st state
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "state", &st); err != nil {
		return
	}
	if !mentions(ctx.Message.Content, st.Target) {
		return
	}

	st, broke := advance(st, c.now())
	if err := c.bot.Brain.Put(cogName, ctx.GuildID, "state", st); err != nil {
		c.bot.LogError("Error saving streak state -", err)
		return
	}
	if broke {
		ctx.Session.SendMessage(ctx.Message.ChannelID,
			fmt.Sprintf("New record: %q went unmentioned for %s.",
				st.Target, fmtDuration(time.Duration(st.RecordSeconds)*time.Second)))
	}
}

// advance records a sighting at now. It returns the updated state and
// whether the gap since the previous sighting set a new record.
func advance(st state, now time.Time) (state, bool) {
	gap := now.Sub(st.LastSeen)
	broke := false
	if gap > time.Duration(st.RecordSeconds)*time.Second {
		st.RecordSeconds = int64(gap.Seconds())
		// The very first sighting only starts the record, it doesn't
		// announce one.
		broke = st.Sightings > 0
	}
	st.LastSeen = now
	st.Sightings++
	return st, broke
}

// mentions reports whether content contains target as a whole word,
// case-insensitively.
func mentions(content, target string) bool {
	if target == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(target) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(content)
}

// fmtDuration renders d like "3d 4h 27m".
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	return strings.Join(parts, " ")
}
