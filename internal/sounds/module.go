package sounds

import (
	"go.uber.org/fx"
)

// Module provides sound cache dependencies.
var Module = fx.Module("sounds",
	fx.Provide(NewCache),
)
