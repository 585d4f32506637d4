package locale

import (
	"go.uber.org/fx"
)

// Module provides localization dependencies.
var Module = fx.Module("locale",
	fx.Provide(New),
)
