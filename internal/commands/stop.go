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

// StopCommand halts the current clip. Reachable both as /stop and through
// the ⏹️ button on a /play reply.
type StopCommand struct {
	logger       *zap.Logger
	session      *session.Session
	orchestrator *playback.Orchestrator
	localizer    *locale.Localizer
}

// NewStopCommand creates a new StopCommand instance.
func NewStopCommand(logger *zap.Logger, s *session.Session, orchestrator *playback.Orchestrator, localizer *locale.Localizer) Command {
	return &StopCommand{
		logger:       logger.Named("stop_command"),
		session:      s,
		orchestrator: orchestrator,
		localizer:    localizer,
	}
}

func (c *StopCommand) Name() string {
	return "stop"
}

func (c *StopCommand) Description() string {
	return "Stops current sound"
}

func (c *StopCommand) DescriptionLocalizations() discord.StringLocales {
	return discord.StringLocales{
		discord.Language("pt-BR"): "Para o áudio de tocar",
	}
}

func (c *StopCommand) Options() []discord.CommandOption {
	return nil
}

func (c *StopCommand) Execute(ctx context.Context, e *gateway.InteractionCreateEvent) error {
	if err := c.orchestrator.Stop(e.GuildID, e.SenderID()); err != nil {
		return err
	}

	// Button clicks get a silent acknowledgment; the slash command gets a
	// confirmation reply.
	if _, isButton := e.Data.(*discord.ButtonInteraction); isButton {
		return c.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
			Type: api.DeferredMessageUpdate,
		})
	}

	return c.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Content: option.NewNullableString(c.localizer.Get(e.Locale, locale.KeyStop)),
		},
	})
}
