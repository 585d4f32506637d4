package playback

import (
	"github.com/diamondburned/arikawa/v3/state"
	"go.uber.org/fx"
)

// Module provides playback dependencies.
var Module = fx.Module("playback",
	fx.Provide(
		provideVoiceStates,
		NewOrchestrator,
	),
)

func provideVoiceStates(st *state.State) VoiceStates {
	return st
}
