package caretaker

import (
	"github.com/bwmarrin/discordgo"
)

const (
	embedLimitTitle       = 256
	embedLimitDescription = 2048
	embedLimitFieldValue  = 1024
	embedLimitFieldName   = 256
	embedLimitField       = 25
	embedLimitFooter      = 2048
)

// Embed is a wrapper around *discordgo.MessageEmbed
type Embed struct {
	*discordgo.MessageEmbed
}

// NewEmbed returns a new Embed with no fields set
func NewEmbed() *Embed {
	return &Embed{&discordgo.MessageEmbed{}}
}

// SetTitle sets the Embed's Title to title. Will truncate title if it
// is too long. Returns the modified Embed.
func (e *Embed) SetTitle(title string) *Embed {
	if len(title) > embedLimitTitle {
		title = title[:embedLimitTitle]
	}

	e.Title = title
	return e
}

// SetDescription sets the Embed's Description to description. Will
// truncate description if it is too long. Returns the modified Embed.
func (e *Embed) SetDescription(description string) *Embed {
	if len(description) > embedLimitDescription {
		description = description[:embedLimitDescription]
	}

	e.Description = description
	return e
}

// AddField creates an EmbedField with name and value and adds it to
// the Embed's Fields slice. If the embed already has too many fields,
// it will simply return the Embed as is. The name and value will be
// truncated if they are too long. Returns the modified Embed.
func (e *Embed) AddField(name, value string) *Embed {
	if len(e.Fields) >= embedLimitField {
		return e
	}
	if len(name) > embedLimitFieldName {
		name = name[:embedLimitFieldName]
	}
	if len(value) > embedLimitFieldValue {
		value = value[:embedLimitFieldValue]
	}

	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:  name,
		Value: value,
	})
	return e
}

// SetFooter creates an EmbedFooter with text and applies it to the
// Embed's Footer. If text is too long, it will be truncated. Returns
// the modified Embed.
func (e *Embed) SetFooter(text string) *Embed {
	if len(text) > embedLimitFooter {
		text = text[:embedLimitFooter]
	}

	e.Footer = &discordgo.MessageEmbedFooter{Text: text}
	return e
}

// SetColor sets the border color of the Embed. Returns the modified
// Embed.
func (e *Embed) SetColor(color int) *Embed {
	e.Color = color
	return e
}

// SetAllFieldsInline sets all fields in the Embed to be
// inline. Returns the modified Embed
func (e *Embed) SetAllFieldsInline() *Embed {
	for _, v := range e.Fields {
		v.Inline = true
	}
	return e
}
