// Package voice owns the per-guild voice sessions and their Fx module.
package voice

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/soundbyte/go-discord-soundboard/pkg/audio"
)

// Module provides voice session dependencies.
var Module = fx.Module("voice",
	fx.Provide(
		NewGatewayDialer,
		NewFFmpegOpener,
		NewManager,
	),
	fx.Invoke(registerShutdown),
)

// NewFFmpegOpener provides the production audio pipeline: ffmpeg decodes the
// cached file, gopus packs it into opus frames.
func NewFFmpegOpener(logger *zap.Logger) SourceOpener {
	return &ffmpegOpener{logger: logger.Named("audio")}
}

type ffmpegOpener struct {
	logger *zap.Logger
}

func (o *ffmpegOpener) Open(path string) (FrameSource, error) {
	o.logger.Debug("Opening audio stream", zap.String("path", path))

	return audio.OpenStream(path)
}

func registerShutdown(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			m.CloseAll(ctx)

			return nil
		},
	})
}
