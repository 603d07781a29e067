package caretaker

import (
	"github.com/bwmarrin/discordgo"
)

// Session wraps *discordgo.Session with the helpers the cogs lean on.
// Errors from fire-and-forget sends are logged rather than returned;
// anything a cog needs the result of goes through the embedded session
// directly.
type Session struct {
	*discordgo.Session
	logger *caretakerLogger
}

func newSession(token string, logger *caretakerLogger) (*Session, error) {
	ss := &Session{}
	var err error
	ss.logger = logger
	ss.Session, err = discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	ss.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	return ss, nil
}

// SendMessage is a helper function around ChannelMessageSend from
// discordgo. It will send a message to a given channel.
func (ss *Session) SendMessage(channelID string, message string) {
	_, err := ss.ChannelMessageSend(channelID, message)
	if err != nil {
		ss.logger.error("Failed to send message response -", err)
	}
}

// SendEmbed is a helper function around ChannelMessageSendEmbed from
// discordgo. It will send an embed message to a given channel.
func (ss *Session) SendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	_, err := ss.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		ss.logger.error("Failed to send embed message response -", err)
	}
}

// SendPrivateMessage creates a UserChannel before attempting to send a
// message directly to a user rather than in the server channel.
func (ss *Session) SendPrivateMessage(userID string, message interface{}) {
	privChannel, err := ss.UserChannelCreate(userID)
	if err != nil {
		ss.logger.error("Error creating private channel -", err)
		return
	}
	switch v := message.(type) {
	case string:
		ss.SendMessage(privChannel.ID, v)
	case *discordgo.MessageEmbed:
		ss.SendEmbed(privChannel.ID, v)
	}
}

// RespondToUser is a helper method around SendMessage that will
// mention the user who created the message.
func (ss *Session) RespondToUser(m *discordgo.MessageCreate, response string) {
	ss.SendMessage(m.ChannelID, m.Author.Mention()+" "+response)
}

// AddReaction is a helper method around MessageReactionAdd from
// discordgo. It adds a reaction to a given message.
func (ss *Session) AddReaction(m *discordgo.MessageCreate, reactionID string) {
	if err := ss.MessageReactionAdd(m.ChannelID, m.ID, reactionID); err != nil {
		ss.logger.error("Error adding reaction -", err)
	}
}

// HasPermission reports whether the author of m holds perm in the
// channel the message was sent to.
func (ss *Session) HasPermission(m *discordgo.MessageCreate, perm int64) bool {
	perms, err := ss.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		ss.logger.error("Error resolving member permissions -", err)
		return false
	}
	return perms&perm != 0 || perms&discordgo.PermissionAdministrator != 0
}
