package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/catalog"
	"github.com/soundbyte/go-discord-soundboard/internal/commands"
	"github.com/soundbyte/go-discord-soundboard/internal/locale"
	"github.com/soundbyte/go-discord-soundboard/internal/playback"
	"github.com/soundbyte/go-discord-soundboard/internal/sounds"
	"github.com/soundbyte/go-discord-soundboard/internal/voice"
)

// Router dispatches every incoming interaction to a named handler and turns
// failures into exactly one locale-resolved reply. No request is dropped
// silently and no handler error escapes as a crash.
type Router struct {
	logger    *zap.Logger
	session   *session.Session
	manager   *commands.CommandManager
	localizer *locale.Localizer
}

// NewRouter creates the interaction router.
func NewRouter(logger *zap.Logger, s *session.Session, manager *commands.CommandManager, localizer *locale.Localizer) *Router {
	return &Router{
		logger:    logger.Named("router"),
		session:   s,
		manager:   manager,
		localizer: localizer,
	}
}

// HandleInteraction is registered as the gateway handler for interaction
// events.
func (r *Router) HandleInteraction(e *gateway.InteractionCreateEvent) {
	ctx := context.Background()

	switch data := e.Data.(type) {
	case *discord.CommandInteraction:
		r.dispatch(ctx, e, data.Name)
	case *discord.AutocompleteInteraction:
		r.autocomplete(ctx, e, data)
	case *discord.ButtonInteraction:
		name := buttonHandlerName(e, data)
		if name == "" {
			r.logger.Warn("Button click with no matching component",
				zap.String("custom_id", string(data.CustomID)))
			r.reply(e, locale.KeyCommandNotFound)

			return
		}
		r.dispatch(ctx, e, name)
	default:
		r.logger.Debug("Unhandled interaction type", zap.Any("type", e.Data))
	}
}

func (r *Router) dispatch(ctx context.Context, e *gateway.InteractionCreateEvent, name string) {
	cmd, ok := r.manager.GetCommand(name)
	if !ok {
		r.logger.Warn("Unknown command", zap.String("commandName", name))
		r.reply(e, locale.KeyCommandNotFound)

		return
	}

	err := r.guard(name, func() error {
		return cmd.Execute(ctx, e)
	})
	if err != nil {
		r.logger.Error("Command execution failed",
			zap.String("commandName", name),
			zap.Error(err))
		r.reply(e, replyKeyForError(err))
	}
}

// guard runs fn and converts a panic into a plain error, so a misbehaving
// handler produces a logged failure and a generic reply instead of unwinding
// through the gateway loop.
func (r *Router) guard(name string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Handler panicked",
				zap.String("commandName", name),
				zap.Any("panic", rec),
				zap.Stack("stack"))
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	return fn()
}

func (r *Router) autocomplete(ctx context.Context, e *gateway.InteractionCreateEvent, data *discord.AutocompleteInteraction) {
	cmd, ok := r.manager.GetCommand(data.Name)
	if !ok {
		r.logger.Warn("Autocomplete for unknown command", zap.String("commandName", data.Name))

		return
	}

	ac, ok := cmd.(commands.Autocompleter)
	if !ok {
		r.logger.Warn("Command does not support autocomplete", zap.String("commandName", data.Name))

		return
	}

	err := r.guard(data.Name, func() error {
		return ac.Autocomplete(ctx, e, data)
	})
	if err != nil {
		r.logger.Error("Autocomplete failed",
			zap.String("commandName", data.Name),
			zap.Error(err))
	}
}

func (r *Router) reply(e *gateway.InteractionCreateEvent, key locale.Key) {
	err := r.session.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Content: option.NewNullableString(r.localizer.Get(e.Locale, key)),
		},
	})
	if err != nil {
		r.logger.Error("Failed to respond to interaction", zap.Error(err))
	}
}

// buttonHandlerName resolves a button click to a handler name: the visible
// label of the clicked component, lowercased. The custom ID cannot serve as
// the name because the Replay button's ID is the clip's source URL.
func buttonHandlerName(e *gateway.InteractionCreateEvent, data *discord.ButtonInteraction) string {
	if e.Message == nil {
		return ""
	}

	for _, component := range e.Message.Components {
		row, ok := component.(*discord.ActionRowComponent)
		if !ok {
			continue
		}
		for _, inner := range *row {
			button, ok := inner.(*discord.ButtonComponent)
			if !ok {
				continue
			}
			if button.CustomID == data.CustomID {
				return strings.ToLower(button.Label)
			}
		}
	}

	return ""
}

// replyKeyForError maps the error taxonomy onto reply keys. Catalog
// unavailability reads as "not found" to the user; the distinction only
// matters in the logs.
func replyKeyForError(err error) locale.Key {
	switch {
	case errors.Is(err, playback.ErrNotInChannel):
		return locale.KeyUserNotInChannel
	case errors.Is(err, playback.ErrSoundNotSelected):
		return locale.KeySoundNotSelected
	case errors.Is(err, catalog.ErrSoundNotFound), errors.Is(err, catalog.ErrUnavailable):
		return locale.KeySoundNotFound
	case errors.Is(err, sounds.ErrDownloadFailed):
		return locale.KeyDownloadError
	case errors.Is(err, playback.ErrPlaybackFailed):
		return locale.KeyPlaybackError
	case errors.Is(err, voice.ErrSessionAbsent), errors.Is(err, voice.ErrChannelMismatch):
		return locale.KeyBotNotInChannel
	default:
		return locale.KeyCommandGenericError
	}
}
