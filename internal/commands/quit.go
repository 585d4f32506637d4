package commands

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/locale"
	"github.com/soundbyte/go-discord-soundboard/internal/playback"
)

// QuitCommand disconnects the bot from the requester's voice channel.
type QuitCommand struct {
	logger       *zap.Logger
	session      *session.Session
	orchestrator *playback.Orchestrator
	localizer    *locale.Localizer
}

// NewQuitCommand creates a new QuitCommand instance.
func NewQuitCommand(logger *zap.Logger, s *session.Session, orchestrator *playback.Orchestrator, localizer *locale.Localizer) Command {
	return &QuitCommand{
		logger:       logger.Named("quit_command"),
		session:      s,
		orchestrator: orchestrator,
		localizer:    localizer,
	}
}

func (c *QuitCommand) Name() string {
	return "quit"
}

func (c *QuitCommand) Description() string {
	return "Bot disconnect from channel"
}

func (c *QuitCommand) DescriptionLocalizations() discord.StringLocales {
	return nil
}

func (c *QuitCommand) Options() []discord.CommandOption {
	return nil
}

func (c *QuitCommand) Execute(ctx context.Context, e *gateway.InteractionCreateEvent) error {
	if err := c.orchestrator.Quit(ctx, e.GuildID, e.SenderID()); err != nil {
		return err
	}

	return c.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Content: option.NewNullableString(c.localizer.Get(e.Locale, locale.KeyQuit)),
		},
	})
}
