package catalog

import (
	"go.uber.org/fx"
)

// Module provides catalog dependencies.
var Module = fx.Module("catalog",
	fx.Provide(NewClient),
)
