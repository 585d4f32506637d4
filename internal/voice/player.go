package voice

import (
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FrameDuration is the wall-clock length of one opus frame sent to Discord.
const FrameDuration = 20 * time.Millisecond

// FrameSource yields opus packets ready for a voice connection. Next returns
// io.EOF when the clip is exhausted.
type FrameSource interface {
	Next() ([]byte, error)
	Close() error
}

// SourceOpener turns a cached file path into a FrameSource.
type SourceOpener interface {
	Open(path string) (FrameSource, error)
}

// Player streams one clip to a connection. Once started it runs to completion
// or failure on its own; mid-playback errors go to the log, never back to the
// interaction that started it.
type Player struct {
	logger *zap.Logger
	conn   Connection
	source FrameSource

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newPlayer(logger *zap.Logger, conn Connection, source FrameSource) *Player {
	return &Player{
		logger: logger,
		conn:   conn,
		source: source,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (p *Player) run() {
	defer close(p.done)
	defer p.source.Close()

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			frame, err := p.source.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				p.logger.Warn("Reading audio frame failed", zap.Error(err))

				return
			}

			if _, err := p.conn.Write(frame); err != nil {
				p.logger.Warn("Writing voice frame failed", zap.Error(err))

				return
			}
		}
	}
}

// Stop halts playback. Safe to call more than once.
func (p *Player) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}
