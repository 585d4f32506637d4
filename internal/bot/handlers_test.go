package bot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/catalog"
	"github.com/soundbyte/go-discord-soundboard/internal/locale"
	"github.com/soundbyte/go-discord-soundboard/internal/playback"
	"github.com/soundbyte/go-discord-soundboard/internal/sounds"
	"github.com/soundbyte/go-discord-soundboard/internal/voice"
)

func buttonEvent(customID discord.ComponentID) (*gateway.InteractionCreateEvent, *discord.ButtonInteraction) {
	e := &gateway.InteractionCreateEvent{
		InteractionEvent: discord.InteractionEvent{
			Message: &discord.Message{
				Components: discord.ContainerComponents{
					&discord.ActionRowComponent{
						&discord.ButtonComponent{CustomID: "https://cdn.example.com/bruh.mp3", Label: "Replay"},
						&discord.ButtonComponent{CustomID: "stop", Label: "Stop"},
					},
				},
			},
		},
	}

	return e, &discord.ButtonInteraction{CustomID: customID}
}

func TestButtonHandlerName(t *testing.T) {
	t.Run("replay button resolves by label", func(t *testing.T) {
		e, data := buttonEvent("https://cdn.example.com/bruh.mp3")
		assert.Equal(t, "replay", buttonHandlerName(e, data))
	})

	t.Run("stop button resolves by label", func(t *testing.T) {
		e, data := buttonEvent("stop")
		assert.Equal(t, "stop", buttonHandlerName(e, data))
	})

	t.Run("unknown custom id", func(t *testing.T) {
		e, data := buttonEvent("something-else")
		assert.Empty(t, buttonHandlerName(e, data))
	})

	t.Run("no message attached", func(t *testing.T) {
		e, data := buttonEvent("stop")
		e.Message = nil
		assert.Empty(t, buttonHandlerName(e, data))
	})
}

func TestGuard(t *testing.T) {
	r := &Router{logger: zap.NewNop()}

	t.Run("panic becomes a generic error reply", func(t *testing.T) {
		var err error
		assert.NotPanics(t, func() {
			err = r.guard("play", func() error {
				panic("handler bug")
			})
		})
		assert.Error(t, err)
		assert.Equal(t, locale.KeyCommandGenericError, replyKeyForError(err))
	})

	t.Run("errors pass through unchanged", func(t *testing.T) {
		err := r.guard("stop", func() error {
			return voice.ErrSessionAbsent
		})
		assert.ErrorIs(t, err, voice.ErrSessionAbsent)
	})

	t.Run("success stays nil", func(t *testing.T) {
		assert.NoError(t, r.guard("quit", func() error { return nil }))
	})
}

func TestReplyKeyForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want locale.Key
	}{
		{"requester outside voice", playback.ErrNotInChannel, locale.KeyUserNotInChannel},
		{"free-typed text", playback.ErrSoundNotSelected, locale.KeySoundNotSelected},
		{"unknown sound", catalog.ErrSoundNotFound, locale.KeySoundNotFound},
		{"catalog down", fmt.Errorf("%w: status 500", catalog.ErrUnavailable), locale.KeySoundNotFound},
		{"download failure", fmt.Errorf("%w: status 502", sounds.ErrDownloadFailed), locale.KeyDownloadError},
		{"playback failure", fmt.Errorf("%w: dial", playback.ErrPlaybackFailed), locale.KeyPlaybackError},
		{"bot absent", voice.ErrSessionAbsent, locale.KeyBotNotInChannel},
		{"wrong channel", voice.ErrChannelMismatch, locale.KeyBotNotInChannel},
		{"anything else", errors.New("boom"), locale.KeyCommandGenericError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replyKeyForError(tt.err))
		})
	}
}
