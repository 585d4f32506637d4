package voice

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/session"
	arivoice "github.com/diamondburned/arikawa/v3/voice"
	"github.com/diamondburned/arikawa/v3/voice/voicegateway"
	"go.uber.org/zap"
)

// Connection is the transport side of a voice session. It is the only handle
// through which audio leaves the process; nothing outside this package holds
// one.
type Connection interface {
	ChannelID() discord.ChannelID
	Speaking(ctx context.Context, flag voicegateway.SpeakingFlag) error
	Write(b []byte) (int, error)
	Leave(ctx context.Context) error
}

// Dialer establishes voice connections. Tests substitute a fake.
type Dialer interface {
	Dial(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (Connection, error)
}

type gatewayDialer struct {
	logger  *zap.Logger
	session *session.Session
}

// NewGatewayDialer creates a Dialer backed by the bot's gateway session.
func NewGatewayDialer(logger *zap.Logger, s *session.Session) Dialer {
	return &gatewayDialer{
		logger:  logger.Named("voice_dialer"),
		session: s,
	}
}

func (d *gatewayDialer) Dial(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (Connection, error) {
	vs, err := arivoice.NewSession(d.session)
	if err != nil {
		return nil, fmt.Errorf("creating voice session: %w", err)
	}

	// Deafened: the bot only ever sends audio.
	if err := vs.JoinChannel(ctx, channelID, false, true); err != nil {
		return nil, fmt.Errorf("joining voice channel: %w", err)
	}

	d.logger.Info("Joined voice channel",
		zap.String("guild_id", guildID.String()),
		zap.String("channel_id", channelID.String()))

	return &gatewayConnection{channelID: channelID, session: vs}, nil
}

type gatewayConnection struct {
	channelID discord.ChannelID
	session   *arivoice.Session
}

func (c *gatewayConnection) ChannelID() discord.ChannelID {
	return c.channelID
}

func (c *gatewayConnection) Speaking(ctx context.Context, flag voicegateway.SpeakingFlag) error {
	return c.session.Speaking(ctx, flag)
}

func (c *gatewayConnection) Write(b []byte) (int, error) {
	return c.session.Write(b)
}

func (c *gatewayConnection) Leave(ctx context.Context) error {
	return c.session.Leave(ctx)
}
