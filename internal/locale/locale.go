// Package locale resolves user-facing reply text by message key and
// requester locale.
package locale

import (
	_ "embed"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var repliesRaw []byte

// Key identifies one user-visible message.
type Key string

const (
	KeyPlaying             Key = "playing"
	KeyUserNotInChannel    Key = "user-not-in-channel"
	KeySoundNotSelected    Key = "sound-not-selected"
	KeySoundNotFound       Key = "sound-not-found"
	KeyDownloadError       Key = "download-error"
	KeyPlaybackError       Key = "playback-error"
	KeyBotNotInChannel     Key = "bot-not-in-channel"
	KeyQuit                Key = "quit"
	KeyStop                Key = "stop"
	KeyCommandNotFound     Key = "command-not-found"
	KeyCommandGenericError Key = "command-generic-error"
)

// fallbackLocale is the locale every key ships a default for.
const fallbackLocale = discord.Language("en-US")

// Localizer serves the embedded reply table.
type Localizer struct {
	replies map[Key]map[discord.Language]string
}

// New parses the embedded reply table.
func New() (*Localizer, error) {
	l := &Localizer{}
	if err := yaml.Unmarshal(repliesRaw, &l.replies); err != nil {
		return nil, fmt.Errorf("parsing reply table: %w", err)
	}

	return l, nil
}

// Get returns the reply for key in the requester's locale, falling back to
// the English default when the locale is not translated. An unknown key
// echoes the key itself; all keys used by the bot are constants above, so
// that only happens on a programming error.
func (l *Localizer) Get(lang discord.Language, key Key) string {
	byLang, ok := l.replies[key]
	if !ok {
		return string(key)
	}

	if text, ok := byLang[lang]; ok {
		return text
	}

	return byLang[fallbackLocale]
}
