package commands

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
)

// Command defines the interface for interaction handlers. Execute receives
// the raw event because a handler may be reached by a slash command or by a
// button click; each implementation asserts the data shape it supports.
type Command interface {
	Name() string
	Description() string
	// DescriptionLocalizations returns translated descriptions, or nil.
	DescriptionLocalizations() discord.StringLocales
	Options() []discord.CommandOption
	Execute(ctx context.Context, e *gateway.InteractionCreateEvent) error
}

// Autocompleter is implemented by commands that answer autocomplete
// requests for their options.
type Autocompleter interface {
	Autocomplete(ctx context.Context, e *gateway.InteractionCreateEvent, data *discord.AutocompleteInteraction) error
}
