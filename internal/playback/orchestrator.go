// Package playback runs the per-request workflow that turns a sound request
// into audio in a voice channel.
package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/internal/catalog"
	"github.com/soundbyte/go-discord-soundboard/internal/sounds"
	"github.com/soundbyte/go-discord-soundboard/internal/voice"
)

// Error definitions
var (
	ErrNotInChannel     = errors.New("requester is not in a voice channel")
	ErrSoundNotSelected = errors.New("no sound selected")
	ErrPlaybackFailed   = errors.New("unable to play the sound")
)

// Request identifies one play invocation. Exactly one of Slug or SourceURL
// is set: Slug for the catalog-driven path, SourceURL for replay, which
// already carries the resolved media location.
type Request struct {
	GuildID   discord.GuildID
	UserID    discord.UserID
	Slug      string
	SourceURL string
}

// Result reports a successful playback for the reply layer.
type Result struct {
	Name      string
	SourceURL string
}

// VoiceStates is the slice of gateway state the orchestrator needs: where is
// this member right now.
type VoiceStates interface {
	VoiceState(guildID discord.GuildID, userID discord.UserID) (*discord.VoiceState, error)
}

// Orchestrator wires the catalog, cache and voice manager into the single
// play/stop/quit workflow. It holds no state of its own.
type Orchestrator struct {
	logger  *zap.Logger
	catalog catalog.Client
	cache   *sounds.Cache
	voice   *voice.Manager
	states  VoiceStates
}

// NewOrchestrator creates the playback orchestrator.
func NewOrchestrator(logger *zap.Logger, cat catalog.Client, cache *sounds.Cache, mgr *voice.Manager, states VoiceStates) *Orchestrator {
	return &Orchestrator{
		logger:  logger.Named("playback"),
		catalog: cat,
		cache:   cache,
		voice:   mgr,
		states:  states,
	}
}

// Play validates the requester, resolves the clip, ensures a cached file and
// starts playback. Each step's failure short-circuits the rest; a session
// joined before a failed play stays valid for a later retry.
func (o *Orchestrator) Play(ctx context.Context, req Request) (*Result, error) {
	channelID, err := o.requesterChannel(req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	name := ""
	sourceURL := req.SourceURL
	if sourceURL == "" {
		if req.Slug == "" {
			return nil, ErrSoundNotSelected
		}

		sound, err := o.catalog.Detail(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		name = sound.Name
		sourceURL = sound.SoundURL
	}

	path, err := o.cache.Ensure(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	if _, err := o.voice.Join(ctx, req.GuildID, channelID); err != nil {
		o.logger.Warn("Voice join failed",
			zap.String("guild_id", req.GuildID.String()),
			zap.Error(err))

		return nil, fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	if err := o.voice.Play(ctx, req.GuildID, path); err != nil {
		o.logger.Warn("Playback start failed",
			zap.String("guild_id", req.GuildID.String()),
			zap.Error(err))

		return nil, fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	return &Result{Name: name, SourceURL: sourceURL}, nil
}

// Stop halts the guild's current playback if the requester shares the
// session's channel.
func (o *Orchestrator) Stop(guildID discord.GuildID, userID discord.UserID) error {
	channelID, err := o.requesterChannel(guildID, userID)
	if err != nil {
		return err
	}

	return o.voice.Stop(guildID, channelID)
}

// Quit disconnects the bot from the guild's voice channel.
func (o *Orchestrator) Quit(ctx context.Context, guildID discord.GuildID, userID discord.UserID) error {
	channelID, err := o.requesterChannel(guildID, userID)
	if err != nil {
		return err
	}

	return o.voice.Quit(ctx, guildID, channelID)
}

func (o *Orchestrator) requesterChannel(guildID discord.GuildID, userID discord.UserID) (discord.ChannelID, error) {
	vs, err := o.states.VoiceState(guildID, userID)
	if err != nil || vs == nil || !vs.ChannelID.IsValid() {
		return 0, ErrNotInChannel
	}

	return vs.ChannelID, nil
}
