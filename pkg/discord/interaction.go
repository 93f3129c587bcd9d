package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrMalformedPayload = errors.New("malformed payload")

type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
)

type OptionType int

const (
	OptionString  OptionType = 3
	OptionInteger OptionType = 4
	OptionBoolean OptionType = 5
	OptionUser    OptionType = 6
	OptionChannel OptionType = 7
	OptionRole    OptionType = 8
	OptionNumber  OptionType = 10
)

// Partial wire structs of the interaction payload. Fields the bot does not
// use are left out on purpose; the platform adds new ones without notice.
type wireUser struct {
	ID string `json:"id"`
}

type wireMember struct {
	User wireUser `json:"user"`
}

type wireOption struct {
	Name  string     `json:"name"`
	Type  OptionType `json:"type"`
	Value any        `json:"value"`
}

type wireData struct {
	Name    string       `json:"name"`
	Options []wireOption `json:"options"`
}

type wireInteraction struct {
	ID            string          `json:"id"`
	Type          InteractionType `json:"type"`
	Token         string          `json:"token"`
	ApplicationID string          `json:"application_id"`
	GuildID       string          `json:"guild_id"`
	ChannelID     string          `json:"channel_id"`
	Member        *wireMember     `json:"member"`
	User          *wireUser       `json:"user"`
	Data          wireData        `json:"data"`
}

type CommandOption struct {
	Name  string
	Type  OptionType
	Value any
}

// Interaction is one decoded command event, owned by the dispatcher for the
// duration of a single request and never persisted.
type Interaction struct {
	ID            string
	Type          InteractionType
	Token         string
	ApplicationID string
	GuildID       string
	ChannelID     string
	UserID        string
	Command       string
	Options       []CommandOption
	ReceivedAt    time.Time
}

func (i *Interaction) StringOption(name string) string {
	for _, opt := range i.Options {
		if opt.Name == name {
			if s, ok := opt.Value.(string); ok {
				return s
			}
		}
	}

	return ""
}

func (i *Interaction) BoolOption(name string) bool {
	for _, opt := range i.Options {
		if opt.Name == name {
			if b, ok := opt.Value.(bool); ok {
				return b
			}
		}
	}

	return false
}

// DecodeInteraction parses a verified request body. Unknown fields are
// ignored for forward compatibility; missing required fields fail with
// ErrMalformedPayload.
func DecodeInteraction(body []byte, receivedAt time.Time) (*Interaction, error) {
	var wire wireInteraction
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	interaction := &Interaction{
		ID:            wire.ID,
		Type:          wire.Type,
		Token:         wire.Token,
		ApplicationID: wire.ApplicationID,
		GuildID:       wire.GuildID,
		ChannelID:     wire.ChannelID,
		ReceivedAt:    receivedAt,
	}

	switch wire.Type {
	case InteractionPing:
		return interaction, nil

	case InteractionApplicationCommand:
		if wire.Token == "" {
			return nil, fmt.Errorf("%w: no interaction token", ErrMalformedPayload)
		}

		if wire.Data.Name == "" {
			return nil, fmt.Errorf("%w: no command name", ErrMalformedPayload)
		}

		// The invoking user arrives as member.user inside a guild and as
		// a top-level user in direct messages.
		switch {
		case wire.Member != nil && wire.Member.User.ID != "":
			interaction.UserID = wire.Member.User.ID
		case wire.User != nil && wire.User.ID != "":
			interaction.UserID = wire.User.ID
		default:
			return nil, fmt.Errorf("%w: no invoking user", ErrMalformedPayload)
		}

		interaction.Command = wire.Data.Name
		for _, opt := range wire.Data.Options {
			interaction.Options = append(interaction.Options, CommandOption{
				Name:  opt.Name,
				Type:  opt.Type,
				Value: opt.Value,
			})
		}

		return interaction, nil
	}

	return nil, fmt.Errorf("%w: unsupported interaction type %d", ErrMalformedPayload, wire.Type)
}
