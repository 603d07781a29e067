// Package signup keeps one signup roster per guild, with an optional
// cap and a waitlist.
package signup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/caretakerbot/caretaker"
)

const cogName = "signup"

type entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// event is the per-guild brain record.
type event struct {
	Name     string  `json:"name"`
	Limit    int     `json:"limit"` // 0 means unlimited
	Open     bool    `json:"open"`
	Roster   []entry `json:"roster"`
	Waitlist []entry `json:"waitlist"`
}

type joinResult int

const (
	joined joinResult = iota
	waitlisted
	alreadySigned
	eventClosed
)

type Cog struct {
	bot *caretaker.Bot
}

func New() *Cog {
	return &Cog{}
}

func (c *Cog) Name() string { return cogName }

func (c *Cog) Register(b *caretaker.Bot) error {
	c.bot = b
	b.AddCommand("signup",
		"Event signups. `signup open <name> [limit]`, `signup join`, `signup leave`, `signup list`, `signup close`",
		c.run)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "open":
		return c.open(ctx)
	case "join":
		return c.join(ctx)
	case "leave":
		return c.leave(ctx)
	case "list":
		return c.list(ctx)
	case "close":
		return c.close(ctx)
	default:
		return "Usage: `signup open <name> [limit]`, `signup join`, `signup leave`, `signup list`, `signup close`"
	}
}

func (c *Cog) open(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageServer) {
		return "You need the Manage Server permission to open signups."
	}
	if ctx.Arg(1) == "" {
		return "Give the event a name, like `signup open raid-night 20`."
	}

	name, limit := parseOpenArgs(ctx.Args[1:])
	if limit < 0 {
		return "The limit can't be negative."
	}

	ev := event{Name: name, Limit: limit, Open: true}
	if err := c.bot.Brain.Put(cogName, ctx.GuildID, "event", ev); err != nil {
		return fmt.Sprintf("Error opening signups - %v", err)
	}
	if limit > 0 {
		return fmt.Sprintf("Signups open for %q, limited to %d. Use `signup join`.", name, limit)
	}
	return fmt.Sprintf("Signups open for %q. Use `signup join`.", name)
}

func (c *Cog) join(ctx *caretaker.Context) interface{} {
	var ev event
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "event", &ev); err != nil {
		return "There is no event to sign up for."
	}

	who := entry{ID: ctx.Message.Author.ID, Name: ctx.Message.Author.Username}
	ev, result := joinEvent(ev, who)

	switch result {
	case eventClosed:
		return fmt.Sprintf("Signups for %q are closed.", ev.Name)
	case alreadySigned:
		return "You're already signed up."
	}

	if err := c.bot.Brain.Put(cogName, ctx.GuildID, "event", ev); err != nil {
		return fmt.Sprintf("Error saving signup - %v", err)
	}
	if result == waitlisted {
		return fmt.Sprintf("%q is full, you're #%d on the waitlist.", ev.Name, len(ev.Waitlist))
	}
	return fmt.Sprintf("You're in! %d signed up for %q.", len(ev.Roster), ev.Name)
}

func (c *Cog) leave(ctx *caretaker.Context) interface{} {
	var ev event
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "event", &ev); err != nil {
		return "There is no event to leave."
	}

	ev, removed, promoted := leaveEvent(ev, ctx.Message.Author.ID)
	if !removed {
		return "You weren't signed up."
	}
	if err := c.bot.Brain.Put(cogName, ctx.GuildID, "event", ev); err != nil {
		return fmt.Sprintf("Error saving signup - %v", err)
	}
	if promoted != nil {
		ctx.Session.SendPrivateMessage(promoted.ID,
			fmt.Sprintf("A spot opened up: you're now signed up for %q.", ev.Name))
	}
	return fmt.Sprintf("You've been taken off %q.", ev.Name)
}

func (c *Cog) list(ctx *caretaker.Context) interface{} {
	var ev event
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "event", &ev); err != nil {
		return "There is no event right now."
	}

	e := caretaker.NewEmbed().SetTitle("Signups: " + ev.Name)
	if !ev.Open {
		e.SetFooter("Signups are closed")
	}

	if len(ev.Roster) == 0 {
		e.SetDescription("Nobody has signed up yet.")
		return e
	}

	var sb strings.Builder
	for i, en := range ev.Roster {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, en.Name)
	}
	e.AddField(rosterHeading(ev), sb.String())

	if len(ev.Waitlist) > 0 {
		sb.Reset()
		for i, en := range ev.Waitlist {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, en.Name)
		}
		e.AddField("Waitlist", sb.String())
	}
	return e
}

func (c *Cog) close(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageServer) {
		return "You need the Manage Server permission to close signups."
	}

	var ev event
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "event", &ev); err != nil {
		return "There is no event to close."
	}
	if !ev.Open {
		return fmt.Sprintf("Signups for %q are already closed.", ev.Name)
	}
	ev.Open = false
	if err := c.bot.Brain.Put(cogName, ctx.GuildID, "event", ev); err != nil {
		return fmt.Sprintf("Error closing signups - %v", err)
	}
	return fmt.Sprintf("Signups for %q are closed with %d signed up.", ev.Name, len(ev.Roster))
}

// parseOpenArgs splits "raid night 20" into a name and a limit. A
// trailing number is only a limit when something precedes it, so
// `signup open 2024` still names an event.
func parseOpenArgs(args []string) (string, int) {
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			return strings.Join(args[:len(args)-1], " "), n
		}
	}
	return strings.Join(args, " "), 0
}

func rosterHeading(ev event) string {
	if ev.Limit > 0 {
		return fmt.Sprintf("Roster (%d/%d)", len(ev.Roster), ev.Limit)
	}
	return fmt.Sprintf("Roster (%d)", len(ev.Roster))
}

// joinEvent adds who to the roster, or the waitlist when the roster is
// full.
func joinEvent(ev event, who entry) (event, joinResult) {
	if !ev.Open {
		return ev, eventClosed
	}
	for _, en := range append(append([]entry{}, ev.Roster...), ev.Waitlist...) {
		if en.ID == who.ID {
			return ev, alreadySigned
		}
	}
	if ev.Limit > 0 && len(ev.Roster) >= ev.Limit {
		ev.Waitlist = append(ev.Waitlist, who)
		return ev, waitlisted
	}
	ev.Roster = append(ev.Roster, who)
	return ev, joined
}

// leaveEvent removes userID from the roster or waitlist. When a roster
// spot opens and someone is waiting, the first waitlisted entry is
// promoted and returned.
func leaveEvent(ev event, userID string) (event, bool, *entry) {
	for i, en := range ev.Roster {
		if en.ID == userID {
			ev.Roster = append(ev.Roster[:i], ev.Roster[i+1:]...)
			if len(ev.Waitlist) > 0 {
				promoted := ev.Waitlist[0]
				ev.Waitlist = ev.Waitlist[1:]
				ev.Roster = append(ev.Roster, promoted)
				return ev, true, &promoted
			}
			return ev, true, nil
		}
	}
	for i, en := range ev.Waitlist {
		if en.ID == userID {
			ev.Waitlist = append(ev.Waitlist[:i], ev.Waitlist[i+1:]...)
			return ev, true, nil
		}
	}
	return ev, false, nil
}
