package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/voice/voicegateway"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/config"
)

// Error definitions
var (
	ErrSessionAbsent   = NewVoiceError("no voice session for this guild")
	ErrChannelMismatch = NewVoiceError("voice session bound to a different channel")
)

// VoiceError represents errors specific to voice operations.
type VoiceError struct {
	message string
}

func NewVoiceError(message string) *VoiceError {
	return &VoiceError{message: message}
}

func (e *VoiceError) Error() string {
	return e.message
}

// Session is the live binding of a guild to a connection, player and expiry
// timer. At most one exists per guild, and only the Manager mutates it.
type Session struct {
	GuildID   discord.GuildID
	ChannelID discord.ChannelID

	conn   Connection
	player *Player
	expiry *time.Timer
}

// Manager owns every voice session in the process. All operations take the
// manager lock, so per-guild session state is never observed mid-replacement.
type Manager struct {
	logger *zap.Logger
	dialer Dialer
	opener SourceOpener
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[discord.GuildID]*Session
}

// NewManager creates the voice session manager.
func NewManager(logger *zap.Logger, cfg *config.Config, dialer Dialer, opener SourceOpener) *Manager {
	return &Manager{
		logger:   logger.Named("voice_manager"),
		dialer:   dialer,
		opener:   opener,
		ttl:      cfg.Sounds.PlaybackTTL(),
		sessions: make(map[discord.GuildID]*Session),
	}
}

// Join returns the guild's session, connecting if needed. A session already
// bound to channelID is reused as-is; one bound to a different channel is
// destroyed and replaced.
func (m *Manager) Join(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[guildID]; ok {
		if s.ChannelID == channelID {
			return s, nil
		}

		// The member moved; the old connection must go before a new one
		// is dialed so transport resources are not leaked.
		m.destroyLocked(ctx, s)
	}

	conn, err := m.dialer.Dial(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("dialing voice channel: %w", err)
	}

	s := &Session{
		GuildID:   guildID,
		ChannelID: channelID,
		conn:      conn,
	}
	m.sessions[guildID] = s

	m.logger.Info("Voice session created",
		zap.String("guild_id", guildID.String()),
		zap.String("channel_id", channelID.String()))

	return s, nil
}

// Play binds a fresh player to the guild's session and starts streaming the
// file, replacing any player already bound and re-arming the expiry timer.
// The returned error signals a connection that could not accept playback; the
// session itself stays valid for a later retry.
func (m *Manager) Play(ctx context.Context, guildID discord.GuildID, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[guildID]
	if !ok {
		return ErrSessionAbsent
	}

	source, err := m.opener.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening audio source: %w", err)
	}

	if err := s.conn.Speaking(ctx, voicegateway.Microphone); err != nil {
		source.Close()

		return fmt.Errorf("starting voice transmission: %w", err)
	}

	if s.player != nil {
		s.player.Stop()
	}

	player := newPlayer(m.logger, s.conn, source)
	s.player = player
	go player.run()

	// The deadline is bound to this player. A deadline armed for an earlier
	// playback may already have fired and be waiting on the lock; the
	// identity check in expirePlayer keeps it from touching this one.
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.expiry = time.AfterFunc(m.ttl, func() {
		m.expirePlayer(s, player)
	})

	m.logger.Info("Playback started",
		zap.String("guild_id", guildID.String()),
		zap.String("file", filePath))

	return nil
}

// Stop halts the guild's current playback. The connection stays joined.
func (m *Manager) Stop(guildID discord.GuildID, requesterChannel discord.ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionForLocked(guildID, requesterChannel)
	if err != nil {
		return err
	}

	if s.player != nil {
		s.player.Stop()
		s.player = nil
	}

	return nil
}

// Quit destroys the guild's session entirely: player, timer and connection.
func (m *Manager) Quit(ctx context.Context, guildID discord.GuildID, requesterChannel discord.ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionForLocked(guildID, requesterChannel)
	if err != nil {
		return err
	}

	m.destroyLocked(ctx, s)

	m.logger.Info("Voice session ended", zap.String("guild_id", guildID.String()))

	return nil
}

// CloseAll tears down every session; used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		m.destroyLocked(ctx, s)
	}
}

// sessionForLocked enforces the channel-membership policy: operating on a
// session from a different channel is indistinguishable from it not existing.
func (m *Manager) sessionForLocked(guildID discord.GuildID, requesterChannel discord.ChannelID) (*Session, error) {
	s, ok := m.sessions[guildID]
	if !ok {
		return nil, ErrSessionAbsent
	}
	if s.ChannelID != requesterChannel {
		return nil, ErrChannelMismatch
	}

	return s, nil
}

func (m *Manager) destroyLocked(ctx context.Context, s *Session) {
	if s.player != nil {
		s.player.Stop()
		s.player = nil
	}
	if s.expiry != nil {
		s.expiry.Stop()
	}

	if err := s.conn.Leave(ctx); err != nil {
		m.logger.Warn("Leaving voice channel failed",
			zap.String("guild_id", s.GuildID.String()),
			zap.Error(err))
	}

	delete(m.sessions, s.GuildID)
}

// expirePlayer releases p when its deadline fires. The connection is left
// joined so a later stop or play finds it without a rejoin. The firing is a
// no-op unless p is still the session's bound player: a deadline that lost
// the lock race to a newer Play, or fires after Stop or Quit, touches
// nothing.
func (m *Manager) expirePlayer(s *Session, p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.player != p {
		return
	}

	p.Stop()
	s.player = nil
	m.logger.Debug("Playback subscription expired",
		zap.String("guild_id", s.GuildID.String()))
}
