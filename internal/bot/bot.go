package bot

import (
	"context"
	"errors"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/commands"
	"github.com/soundbyte/go-discord-soundboard/internal/config"
)

// Bot wires the gateway session, the interaction router and command
// registration together.
type Bot struct {
	session    *session.Session
	config     *config.Config
	cmdManager *commands.CommandManager
	logger     *zap.Logger
}

// NewBotParams holds dependencies for NewBot.
type NewBotParams struct {
	fx.In

	Session    *session.Session
	Cfg        *config.Config
	Logger     *zap.Logger
	CmdManager *commands.CommandManager
	Router     *Router
}

// NewBot creates and initializes a new Bot. The router is attached to the
// session here; commands are registered on Start.
func NewBot(params NewBotParams) (*Bot, error) {
	if params.Session == nil {
		return nil, errors.New("session provided to NewBot is nil")
	}
	if params.Cfg == nil {
		return nil, errors.New("config provided to NewBot is nil")
	}

	params.Session.AddHandler(func(e *gateway.InteractionCreateEvent) {
		params.Router.HandleInteraction(e)
	})

	return &Bot{
		session:    params.Session,
		config:     params.Cfg,
		cmdManager: params.CmdManager,
		logger:     params.Logger,
	}, nil
}

// Start registers the slash commands with every configured guild.
func (b *Bot) Start(ctx context.Context) error {
	b.cmdManager.RegisterCommands(b.guildIDs())

	return nil
}

// Stop unregisters the slash commands.
func (b *Bot) Stop(ctx context.Context) error {
	b.cmdManager.UnregisterAllCommands(b.guildIDs())

	return nil
}

func (b *Bot) guildIDs() []discord.GuildID {
	var guildIDs []discord.GuildID
	for _, idStr := range b.config.Discord.GuildIDs {
		sf, err := discord.ParseSnowflake(idStr)
		if err != nil {
			b.logger.Error("Failed to parse guild ID", zap.String("guildIDStr", idStr), zap.Error(err))

			continue
		}
		guildIDs = append(guildIDs, discord.GuildID(sf))
	}

	if len(guildIDs) == 0 {
		b.logger.Warn("No valid guild IDs in config; commands will not be registered")
	}

	return guildIDs
}
