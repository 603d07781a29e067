package caretaker

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Cog is an independent feature bundle. Register is called once at
// startup and is where the cog attaches its commands, timed jobs and
// message filters to the bot.
type Cog interface {
	Name() string
	Register(b *Bot) error
}

// Context carries everything a command or filter needs about the
// message that triggered it.
type Context struct {
	Session *Session
	Message *discordgo.MessageCreate
	GuildID string
	Args    []string
}

// Arg returns the i'th argument, or "" when there are fewer.
func (ctx *Context) Arg(i int) string {
	if i >= len(ctx.Args) {
		return ""
	}
	return ctx.Args[i]
}

// Rest joins the arguments from i onward with single spaces.
func (ctx *Context) Rest(i int) string {
	if i >= len(ctx.Args) {
		return ""
	}
	return strings.Join(ctx.Args[i:], " ")
}

// CommandFunc is executed when a command is used. The response may be
// a string, an *Embed, or nil for no reply.
type CommandFunc func(ctx *Context) interface{}

// FilterFunc is executed for every non-bot, non-command message.
type FilterFunc func(ctx *Context)

type command struct {
	Name            string      // Name of command
	Exec            CommandFunc // Function that will be executed when command is used
	Description     string      // Description of command for the help command to use
	PrivateResponse bool        // Indicates whether or not the command will yield a private message response
}

type timedJob struct {
	Name     string // Name of the timed job
	CronSpec string // Cron-style string to determine when the Job function is executed
	Job      func() // Function that will be executed based on the CronSpec
}

type messageFilter struct {
	Name string     // Name of the filter
	Exec FilterFunc // Function that will be executed for each message
}

// AddCog registers a cog and everything it brings with it.
func (b *Bot) AddCog(cog Cog) error {
	if err := cog.Register(b); err != nil {
		return err
	}
	b.logger.info("Cog registered: ", cog.Name())
	return nil
}

// AddCommand will add a command that will trigger exec.
func (b *Bot) AddCommand(name, description string, exec CommandFunc) {
	b.commands[strings.ToLower(name)] = &command{
		Name:        name,
		Description: description,
		Exec:        exec,
	}
	b.logger.info("Command added: ", name)
}

// AddPrivateCommand will add a command whose response is sent to the
// user in a direct message instead of the channel.
func (b *Bot) AddPrivateCommand(name, description string, exec CommandFunc) {
	b.commands[strings.ToLower(name)] = &command{
		Name:            name,
		Description:     description,
		Exec:            exec,
		PrivateResponse: true,
	}
	b.logger.info("Private command added: ", name)
}

// AddTimedJob will trigger job at the times described by cronSpec
// (UTC).
func (b *Bot) AddTimedJob(name, cronSpec string, job func()) {
	b.timedJobs = append(b.timedJobs, &timedJob{
		Name:     name,
		CronSpec: cronSpec,
		Job:      job,
	})
	b.logger.info("Timed job added: ", name)
}

// AddMessageFilter will run fn against every message that is not a
// command and not from a bot.
func (b *Bot) AddMessageFilter(name string, fn FilterFunc) {
	b.filters = append(b.filters, &messageFilter{Name: name, Exec: fn})
	b.logger.info("Message filter added: ", name)
}
