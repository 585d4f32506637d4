package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/catalog"
	"github.com/soundbyte/go-discord-soundboard/internal/locale"
	"github.com/soundbyte/go-discord-soundboard/internal/playback"
)

// maxAutocompleteChoices is Discord's cap on choices per autocomplete reply.
const maxAutocompleteChoices = 25

// stopButtonID is the fixed payload carried by the Stop button on a /play
// reply. The Replay button carries the clip's source URL instead.
const stopButtonID = "stop"

// PlayCommand plays a catalog sound into the requester's voice channel.
type PlayCommand struct {
	logger       *zap.Logger
	session      *session.Session
	orchestrator *playback.Orchestrator
	catalog      catalog.Client
	localizer    *locale.Localizer
}

// NewPlayCommand creates a new PlayCommand instance.
func NewPlayCommand(
	logger *zap.Logger,
	s *session.Session,
	orchestrator *playback.Orchestrator,
	cat catalog.Client,
	localizer *locale.Localizer,
) Command {
	return &PlayCommand{
		logger:       logger.Named("play_command"),
		session:      s,
		orchestrator: orchestrator,
		catalog:      cat,
		localizer:    localizer,
	}
}

func (c *PlayCommand) Name() string {
	return "play"
}

func (c *PlayCommand) Description() string {
	return "Plays a sound from myinstants.com"
}

func (c *PlayCommand) DescriptionLocalizations() discord.StringLocales {
	return discord.StringLocales{
		discord.Language("pt-BR"): "Toca um audio do myinstants.com",
	}
}

func (c *PlayCommand) Options() []discord.CommandOption {
	return []discord.CommandOption{
		&discord.StringOption{
			OptionName:   "sound",
			Description:  "Type to find the audio you want to play",
			Required:     true,
			Autocomplete: true,
		},
	}
}

// Execute runs the catalog-driven play path and, on success, attaches the
// Replay and Stop buttons to the reply.
func (c *PlayCommand) Execute(ctx context.Context, e *gateway.InteractionCreateEvent) error {
	data, ok := e.Data.(*discord.CommandInteraction)
	if !ok {
		return fmt.Errorf("play: unexpected interaction data %T", e.Data)
	}

	var slug string
	for _, opt := range data.Options {
		if opt.Name == "sound" {
			slug = opt.String()
		}
	}

	result, err := c.orchestrator.Play(ctx, playback.Request{
		GuildID: e.GuildID,
		UserID:  e.SenderID(),
		Slug:    slug,
	})
	if err != nil {
		return err
	}

	content := c.localizer.Get(e.Locale, locale.KeyPlaying) + " " + result.Name

	components := discord.ComponentsPtr(
		&discord.ActionRowComponent{
			&discord.ButtonComponent{
				CustomID: discord.ComponentID(result.SourceURL),
				Label:    "Replay",
				Emoji:    &discord.ComponentEmoji{Name: "🔄"},
				Style:    discord.SecondaryButtonStyle(),
			},
			&discord.ButtonComponent{
				CustomID: discord.ComponentID(stopButtonID),
				Label:    "Stop",
				Emoji:    &discord.ComponentEmoji{Name: "⏹️"},
				Style:    discord.SecondaryButtonStyle(),
			},
		},
	)

	return c.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Content:    option.NewNullableString(content),
			Components: components,
		},
	})
}

// Autocomplete answers keystrokes on the sound option with catalog matches.
// Catalog failures degrade to an empty choice list rather than an error
// reply; the user just keeps typing.
func (c *PlayCommand) Autocomplete(ctx context.Context, e *gateway.InteractionCreateEvent, data *discord.AutocompleteInteraction) error {
	var text string
	for _, opt := range data.Options {
		if opt.Focused {
			if err := json.Unmarshal(opt.Value, &text); err != nil {
				c.logger.Debug("Unreadable autocomplete value", zap.Error(err))
			}
		}
	}

	choices := api.AutocompleteStringChoices{}

	results, err := c.catalog.Search(ctx, text)
	if err != nil {
		c.logger.Warn("Catalog search failed", zap.String("query", text), zap.Error(err))
	}

	for _, sound := range results {
		if len(choices) == maxAutocompleteChoices {
			break
		}
		choices = append(choices, discord.StringChoice{
			Name:  sound.Name,
			Value: sound.Slug,
		})
	}

	return c.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.AutocompleteResult,
		Data: &api.InteractionResponseData{
			Choices: choices,
		},
	})
}
