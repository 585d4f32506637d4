// Package main provides the entry point for the Discord soundboard bot application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/soundbyte/go-discord-soundboard/internal/app"
	"github.com/soundbyte/go-discord-soundboard/internal/bot"
	"github.com/soundbyte/go-discord-soundboard/internal/catalog"
	"github.com/soundbyte/go-discord-soundboard/internal/commands"
	"github.com/soundbyte/go-discord-soundboard/internal/config"
	"github.com/soundbyte/go-discord-soundboard/internal/discord"
	"github.com/soundbyte/go-discord-soundboard/internal/infrastructure"
	"github.com/soundbyte/go-discord-soundboard/internal/locale"
	"github.com/soundbyte/go-discord-soundboard/internal/playback"
	"github.com/soundbyte/go-discord-soundboard/internal/sounds"
	"github.com/soundbyte/go-discord-soundboard/internal/voice"
	pkginfra "github.com/soundbyte/go-discord-soundboard/pkg/infrastructure"
)

func main() {
	// Set a default config path. This can be overridden by environment variables or flags if needed.
	configPath := "config.yaml"

	application := app.New(
		// Core modules
		config.Module,
		infrastructure.LoggerModule,

		// External service modules
		discord.Module,
		catalog.Module,

		// Application modules
		sounds.Module,
		locale.Module,
		voice.Module,
		playback.Module,
		commands.Module,
		bot.Module,

		// Supply the config path
		fx.Supply(configPath),

		// Configure Fx to use our Zap logger for its own internal logging
		fx.WithLogger(pkginfra.NewFxLoggerAdapter),
	)

	// Set up a channel to listen for OS signals (like Ctrl+C)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go application.Run()

	sig := <-sigCh
	fmt.Printf("Received signal: %s, initiating shutdown.\n", sig)

	// Give the application 30 seconds to shut down gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	err := application.Stop(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Application has shut down gracefully.")
}
