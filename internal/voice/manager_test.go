package voice

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/voice/voicegateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/config"
)

type fakeConn struct {
	channelID discord.ChannelID

	mu       sync.Mutex
	speaking int
	left     bool
	writes   int
}

func (c *fakeConn) ChannelID() discord.ChannelID { return c.channelID }

func (c *fakeConn) Speaking(ctx context.Context, flag voicegateway.SpeakingFlag) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speaking++

	return nil
}

func (c *fakeConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++

	return len(b), nil
}

func (c *fakeConn) Leave(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left = true

	return nil
}

func (c *fakeConn) isLeft() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.left
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writes
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	conn := &fakeConn{channelID: channelID}
	d.conns = append(d.conns, conn)

	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.conns)
}

// fakeSource yields silence frames forever until closed, then reports EOF.
type fakeSource struct {
	closed atomic.Bool
}

func (s *fakeSource) Next() ([]byte, error) {
	if s.closed.Load() {
		return nil, io.EOF
	}

	return []byte{0xf8}, nil
}

func (s *fakeSource) Close() error {
	s.closed.Store(true)

	return nil
}

type fakeOpener struct {
	mu      sync.Mutex
	sources []*fakeSource
}

func (o *fakeOpener) Open(path string) (FrameSource, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := &fakeSource{}
	o.sources = append(o.sources, s)

	return s, nil
}

func (o *fakeOpener) source(i int) *fakeSource {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.sources[i]
}

func newTestManager(ttl time.Duration) (*Manager, *fakeDialer, *fakeOpener) {
	dialer := &fakeDialer{}
	opener := &fakeOpener{}

	cfg := &config.Config{
		Sounds: config.SoundsConfig{PlaybackTTLSeconds: 120},
	}

	m := NewManager(zap.NewNop(), cfg, dialer, opener)
	m.ttl = ttl

	return m, dialer, opener
}

const (
	testGuild   = discord.GuildID(1)
	testChannel = discord.ChannelID(10)
	otherCh     = discord.ChannelID(11)
)

func TestJoin(t *testing.T) {
	t.Run("reuses session on same channel", func(t *testing.T) {
		m, dialer, _ := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		first, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		second, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, dialer.dialCount())
	})

	t.Run("replaces session on channel change", func(t *testing.T) {
		m, dialer, _ := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		first, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		second, err := m.Join(context.Background(), testGuild, otherCh)
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, otherCh, second.ChannelID)
		assert.Equal(t, 2, dialer.dialCount())
		assert.True(t, dialer.conns[0].isLeft(), "old connection should have left")
	})
}

func TestPlay(t *testing.T) {
	t.Run("without session", func(t *testing.T) {
		m, _, _ := newTestManager(time.Minute)

		err := m.Play(context.Background(), testGuild, "clip.mp3")
		assert.ErrorIs(t, err, ErrSessionAbsent)
	})

	t.Run("streams frames to the connection", func(t *testing.T) {
		m, dialer, _ := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		require.NoError(t, m.Play(context.Background(), testGuild, "clip.mp3"))

		conn := dialer.conns[0]
		assert.Eventually(t, func() bool {
			return conn.writeCount() > 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("new play stops the previous one", func(t *testing.T) {
		m, _, opener := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		require.NoError(t, m.Play(context.Background(), testGuild, "first.mp3"))
		require.NoError(t, m.Play(context.Background(), testGuild, "second.mp3"))

		assert.Eventually(t, func() bool {
			return opener.source(0).closed.Load()
		}, time.Second, 10*time.Millisecond, "first source should be closed")
		assert.False(t, opener.source(1).closed.Load(), "second source should still play")
	})
}

func TestStop(t *testing.T) {
	t.Run("without session", func(t *testing.T) {
		m, _, _ := newTestManager(time.Minute)

		assert.ErrorIs(t, m.Stop(testGuild, testChannel), ErrSessionAbsent)
	})

	t.Run("from another channel", func(t *testing.T) {
		m, _, _ := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		assert.ErrorIs(t, m.Stop(testGuild, otherCh), ErrChannelMismatch)
	})

	t.Run("halts playback but keeps the session", func(t *testing.T) {
		m, dialer, opener := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)
		require.NoError(t, m.Play(context.Background(), testGuild, "clip.mp3"))

		require.NoError(t, m.Stop(testGuild, testChannel))

		assert.Eventually(t, func() bool {
			return opener.source(0).closed.Load()
		}, time.Second, 10*time.Millisecond)
		assert.False(t, dialer.conns[0].isLeft(), "connection should stay joined")
		assert.Equal(t, 1, dialer.dialCount())
	})
}

func TestQuit(t *testing.T) {
	t.Run("from another channel", func(t *testing.T) {
		m, _, _ := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		assert.ErrorIs(t, m.Quit(context.Background(), testGuild, otherCh), ErrChannelMismatch)
	})

	t.Run("tears the session down", func(t *testing.T) {
		m, dialer, _ := newTestManager(time.Minute)

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		require.NoError(t, m.Quit(context.Background(), testGuild, testChannel))

		assert.True(t, dialer.conns[0].isLeft())
		assert.ErrorIs(t, m.Play(context.Background(), testGuild, "clip.mp3"), ErrSessionAbsent)
	})
}

func TestExpiry(t *testing.T) {
	t.Run("releases the player but stays joined", func(t *testing.T) {
		m, dialer, opener := newTestManager(60 * time.Millisecond)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)
		require.NoError(t, m.Play(context.Background(), testGuild, "clip.mp3"))

		assert.Eventually(t, func() bool {
			return opener.source(0).closed.Load()
		}, time.Second, 10*time.Millisecond, "expiry should stop the player")
		assert.False(t, dialer.conns[0].isLeft(), "connection should stay joined")
	})

	t.Run("stale deadline cannot stop a newer playback", func(t *testing.T) {
		m, _, opener := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		require.NoError(t, m.Play(context.Background(), testGuild, "first.mp3"))
		s := m.sessions[testGuild]
		first := s.player

		require.NoError(t, m.Play(context.Background(), testGuild, "second.mp3"))
		second := s.player

		// The first playback's deadline fires late, after the second play
		// has already bound its own player.
		m.expirePlayer(s, first)

		assert.False(t, opener.source(1).closed.Load(), "newer playback must survive a stale firing")
		assert.Same(t, second, s.player)

		// The deadline bound to the live player still releases it.
		m.expirePlayer(s, second)
		assert.Eventually(t, func() bool {
			return opener.source(1).closed.Load()
		}, time.Second, 10*time.Millisecond)
		assert.Nil(t, s.player)
	})

	t.Run("firing after stop is a no-op", func(t *testing.T) {
		m, dialer, _ := newTestManager(time.Minute)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)

		require.NoError(t, m.Play(context.Background(), testGuild, "clip.mp3"))
		s := m.sessions[testGuild]
		p := s.player

		require.NoError(t, m.Stop(testGuild, testChannel))

		m.expirePlayer(s, p)
		assert.Nil(t, s.player)
		assert.False(t, dialer.conns[0].isLeft(), "connection should stay joined")
	})

	t.Run("new play supersedes the pending timer", func(t *testing.T) {
		m, _, opener := newTestManager(80 * time.Millisecond)
		defer m.CloseAll(context.Background())

		_, err := m.Join(context.Background(), testGuild, testChannel)
		require.NoError(t, err)
		require.NoError(t, m.Play(context.Background(), testGuild, "first.mp3"))

		// Re-arm the timer just before it would fire.
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, m.Play(context.Background(), testGuild, "second.mp3"))

		// Past the first deadline; only the first playback should be gone.
		time.Sleep(50 * time.Millisecond)
		assert.True(t, opener.source(0).closed.Load())
		assert.False(t, opener.source(1).closed.Load())

		assert.Eventually(t, func() bool {
			return opener.source(1).closed.Load()
		}, time.Second, 10*time.Millisecond, "second playback expires on its own schedule")
	})
}
