package commands

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/playback"
)

// ReplayCommand replays the clip whose source URL rides on the 🔄 button of
// an earlier /play reply. It is never invoked as a slash command directly;
// the router reaches it through the button's label.
type ReplayCommand struct {
	logger       *zap.Logger
	session      *session.Session
	orchestrator *playback.Orchestrator
}

// NewReplayCommand creates a new ReplayCommand instance.
func NewReplayCommand(logger *zap.Logger, s *session.Session, orchestrator *playback.Orchestrator) Command {
	return &ReplayCommand{
		logger:       logger.Named("replay_command"),
		session:      s,
		orchestrator: orchestrator,
	}
}

func (c *ReplayCommand) Name() string {
	return "replay"
}

func (c *ReplayCommand) Description() string {
	return "This command only can be executed after call /play and clicking on 🔄"
}

func (c *ReplayCommand) DescriptionLocalizations() discord.StringLocales {
	return discord.StringLocales{
		discord.Language("pt-BR"): "Esse comando só pode ser executado após chamar /play e clicando em 🔄",
	}
}

func (c *ReplayCommand) Options() []discord.CommandOption {
	return nil
}

// Execute plays the button's payload URL. The clip is usually already
// cached, so no catalog or download round-trip happens.
func (c *ReplayCommand) Execute(ctx context.Context, e *gateway.InteractionCreateEvent) error {
	data, ok := e.Data.(*discord.ButtonInteraction)
	if !ok {
		return fmt.Errorf("replay: unexpected interaction data %T", e.Data)
	}

	_, err := c.orchestrator.Play(ctx, playback.Request{
		GuildID:   e.GuildID,
		UserID:    e.SenderID(),
		SourceURL: string(data.CustomID),
	})
	if err != nil {
		return err
	}

	// Acknowledge without touching the original /play message.
	return c.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.DeferredMessageUpdate,
	})
}
