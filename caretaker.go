package caretaker

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"

	"github.com/caretakerbot/caretaker/brain"
)

// Config contains all options for the config file
type Config struct {
	Token                 string
	CommandPrefix         string
	DefaultChannelID      string
	CooldownTimer         int
	WelcomeBackMessage    string
	CooldownMessage       string
	UnknownCommandMessage string
	BrainPath             string
}

// Bot hosts the registered cogs and the session they share.
type Bot struct {
	Session *Session
	Config  Config
	Brain   *brain.Brain

	logger        *caretakerLogger
	commands      map[string]*command
	timedJobs     []*timedJob
	filters       []*messageFilter
	cron          *cron.Cron
	timersStarted bool

	// discordgo dispatches events on separate goroutines, so the
	// cooldown map needs its own lock.
	cooldownMu   sync.Mutex
	cooldownList map[string]time.Time
}

// Returns the default config settings for the bot
func getDefaultConfig() Config {
	return Config{
		CommandPrefix:         "!",
		CooldownTimer:         10,
		CooldownMessage:       "Too many commands at once!",
		WelcomeBackMessage:    "I'm back!",
		UnknownCommandMessage: "Invalid command!",
		BrainPath:             "caretaker.ldb",
	}
}

func (b *Bot) loadConfig(configPath string) error {
	// Set default config
	b.Config = getDefaultConfig()

	if _, err := toml.DecodeFile(configPath, &b.Config); err != nil {
		return fmt.Errorf("Error reading config - %v", err)
	}

	// The token may live in the environment instead of the config
	// file.
	if t := os.Getenv("CARETAKER_TOKEN"); t != "" {
		b.Config.Token = t
	}

	if b.Config.Token == "" {
		return fmt.Errorf("Error: No Token set in config")
	}

	if b.Config.DefaultChannelID == "" {
		b.logger.info("WARNING: No DefaultChannelID set in config")
		b.logger.info("Welcome back message will not be sent")
	}

	return nil
}

// New creates a Bot from the config at configPath, opens the brain and
// prepares the Discord session. The websocket is not opened until
// Start.
func New(configPath string) (*Bot, error) {
	b := &Bot{
		logger:       newLogger(),
		commands:     make(map[string]*command),
		cooldownList: make(map[string]time.Time),
	}

	if err := b.loadConfig(configPath); err != nil {
		return nil, err
	}

	var err error
	b.Session, err = newSession(b.Config.Token, b.logger)
	if err != nil {
		return nil, fmt.Errorf("Error creating Discord session - %v", err)
	}

	b.Brain, err = brain.Open(b.Config.BrainPath)
	if err != nil {
		return nil, fmt.Errorf("Error opening brain - %v", err)
	}

	b.addHelpCommand()

	return b, nil
}

// LogInfo writes to the bot's info log. Cogs use it for events that
// have no channel to reply to.
func (b *Bot) LogInfo(msg string, extra ...interface{}) {
	b.logger.info(msg, extra...)
}

// LogError writes to the bot's error log.
func (b *Bot) LogError(msg string, extra ...interface{}) {
	b.logger.error(msg, extra...)
}

// Start opens the websocket connection and blocks until SIGINT or
// SIGTERM, then shuts everything down.
func (b *Bot) Start() {
	b.Session.AddHandler(b.onReady)
	b.Session.AddHandler(b.onMessageCreate)

	if err := b.Session.Open(); err != nil {
		b.logger.fatal("Error opening websocket connection - " + err.Error())
	}

	b.logger.info("Bot is now running. Press CTRL-C to exit.")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-c

	b.logger.info("Bot is now shutting down.")

	if b.cron != nil {
		b.cron.Stop()
	}
	if err := b.Session.Close(); err != nil {
		b.logger.error("Error closing discord session -", err)
	}
	if err := b.Brain.Close(); err != nil {
		b.logger.error("Error closing brain -", err)
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if b.Config.WelcomeBackMessage != "" && b.Config.DefaultChannelID != "" {
		b.Session.SendMessage(b.Config.DefaultChannelID, b.Config.WelcomeBackMessage)
	}
	if !b.timersStarted {
		b.startTimedJobs()
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Always ignore bot users (including itself)
	if m.Author == nil || m.Author.Bot {
		return
	}

	if strings.HasPrefix(m.Content, b.Config.CommandPrefix) {
		b.handleCommand(m)
		return
	}
	b.handleFilters(m)
}

// attemptCommand will check if comStr is in the commands map. If it
// is, it will return the command response as resp and whether or not
// the message should be sent privately as private.
func (b *Bot) attemptCommand(comStr string, ctx *Context) (resp interface{}, private bool) {
	if com, isValid := b.commands[comStr]; isValid {
		resp = com.Exec(ctx)
		private = com.PrivateResponse
		return
	}
	return
}

func (b *Bot) handleCommand(m *discordgo.MessageCreate) {
	if !b.canPost(m.Author.ID) {
		b.Session.RespondToUser(m, b.Config.CooldownMessage)
		return
	}

	com, args := splitCommand(strings.TrimPrefix(m.Content, b.Config.CommandPrefix))
	if com == "" {
		return
	}

	ctx := &Context{
		Session: b.Session,
		Message: m,
		GuildID: m.GuildID,
		Args:    args,
	}
	commandResp, isPrivate := b.attemptCommand(com, ctx)

	switch v := commandResp.(type) {
	case string:
		if isPrivate {
			b.Session.SendPrivateMessage(m.Author.ID, v)
		} else {
			b.Session.RespondToUser(m, v)
		}
		b.startCooldown(m.Author.ID)
	case *Embed:
		if isPrivate {
			b.Session.SendPrivateMessage(m.Author.ID, v.MessageEmbed)
		} else {
			b.Session.SendEmbed(m.ChannelID, v.MessageEmbed)
		}
		b.startCooldown(m.Author.ID)
	case nil:
		if _, known := b.commands[com]; !known {
			b.Session.RespondToUser(m, b.Config.UnknownCommandMessage)
		}
	}
}

// splitCommand breaks the text after the prefix into the lowercased
// command word and its arguments. Arguments keep their original case;
// cogs lowercase where it matters.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func (b *Bot) handleFilters(m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}
	ctx := &Context{
		Session: b.Session,
		Message: m,
		GuildID: m.GuildID,
	}
	for _, f := range b.filters {
		f.Exec(ctx)
	}
}

// Returns whether or not the user can issue a command based on a timer.
func (b *Bot) canPost(user string) bool {
	b.cooldownMu.Lock()
	defer b.cooldownMu.Unlock()
	if userTime, isValid := b.cooldownList[user]; isValid {
		return time.Since(userTime).Seconds() > float64(b.Config.CooldownTimer)
	}
	return true
}

// Adds user to cooldown list.
func (b *Bot) startCooldown(user string) {
	b.cooldownMu.Lock()
	defer b.cooldownMu.Unlock()
	b.cooldownList[user] = time.Now()
}

// Starts all timed jobs on a shared UTC cron.
func (b *Bot) startTimedJobs() {
	b.cron = cron.New(cron.WithLocation(time.UTC))
	for _, j := range b.timedJobs {
		if _, err := b.cron.AddFunc(j.CronSpec, j.Job); err != nil {
			b.logger.error("Error starting timed job - " + j.Name + ": " + err.Error())
			continue
		}
	}
	b.cron.Start()
	b.timersStarted = true
}

// addHelpCommand wires the built-in help command over the command
// registry.
func (b *Bot) addHelpCommand() {
	b.AddPrivateCommand("help", "Lists every command", func(ctx *Context) interface{} {
		names := make([]string, 0, len(b.commands))
		for name := range b.commands {
			names = append(names, name)
		}
		sort.Strings(names)

		e := NewEmbed().SetTitle("Commands")
		for _, name := range names {
			com := b.commands[name]
			desc := com.Description
			if desc == "" {
				desc = "(no description)"
			}
			e.AddField(b.Config.CommandPrefix+com.Name, desc)
		}
		return e
	})
}
