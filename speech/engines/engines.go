// Package engines provides the speech.Engine implementations: piper
// (offline subprocess), gtts (online subprocess), a mock for tests, and a
// fallback chain that picks whichever validates first.
package engines

import (
	"fmt"

	"github.com/dgnsrekt/sotto/internal/cache"
	"github.com/dgnsrekt/sotto/speech"
	"github.com/dgnsrekt/sotto/speech/audio"
	"github.com/dgnsrekt/sotto/speech/engines/gtts"
	"github.com/dgnsrekt/sotto/speech/engines/mock"
	"github.com/dgnsrekt/sotto/speech/engines/piper"
	speechsync "github.com/dgnsrekt/sotto/speech/sync"
)

// Config selects and tunes an engine at startup.
type Config struct {
	// Engine is one of "piper", "gtts", "mock", or "auto".
	Engine string

	// Model is the piper voice model path.
	Model string

	// Speed is the playback rate multiplier, 1.0 for natural.
	Speed float64

	// Language is the gtts language code.
	Language string

	// CacheDir enables the persistent clip cache when non-empty.
	CacheDir string

	// CacheSize is the per-tier cache capacity in bytes.
	CacheSize int64

	// Player overrides the audio device, primarily for tests. Nil selects
	// the platform player.
	Player audio.Player
}

const defaultCacheSize = 64 << 20

// New builds the configured engine. The returned engine is ready for the
// worker to own; construction failures are startup errors for the caller to
// surface.
func New(cfg Config) (speech.Engine, error) {
	if cfg.Speed == 0 {
		cfg.Speed = 1.0
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCacheSize
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Engine {
	case "piper":
		return newSpeaker(piper.New(piper.Config{Model: cfg.Model, Speed: cfg.Speed}), cfg, store), nil
	case "gtts":
		return newSpeaker(gtts.New(gtts.Config{Language: cfg.Language, Speed: cfg.Speed}), cfg, store), nil
	case "mock":
		if cfg.Player == nil {
			cfg.Player = audio.NewNullPlayer()
		}
		return newSpeaker(mock.New(), cfg, store), nil
	case "auto", "":
		return newChain(cfg, store), nil
	default:
		_ = store.Close()
		return nil, fmt.Errorf("%w: %q", speech.ErrEngineNotFound, cfg.Engine)
	}
}

// newStore opens the clip cache. One store per process: every engine New
// builds speaks through it, so a single disk index owns the cache
// directory.
func newStore(cfg Config) (*cache.Store, error) {
	if cfg.CacheDir == "" {
		return cache.NewStore(cfg.CacheSize, nil), nil
	}
	disk, err := cache.NewDisk(cfg.CacheDir, cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("opening clip cache: %w", err)
	}
	return cache.NewStore(cfg.CacheSize, disk), nil
}

// newChain builds the auto-selection chain: piper first, gtts as the online
// fallback. Members share the store, so a clip cached through one is a hit
// for the other.
func newChain(cfg Config, store *cache.Store) speech.Engine {
	local := newSpeaker(piper.New(piper.Config{Model: cfg.Model, Speed: cfg.Speed}), cfg, store)
	online := newSpeaker(gtts.New(gtts.Config{Language: cfg.Language, Speed: cfg.Speed}), cfg, store)
	return NewChain(local, online)
}

func newSpeaker(synth Synthesizer, cfg Config, store *cache.Store) *speaker {
	player := cfg.Player
	if player == nil {
		player = audio.NewPlayer()
	}

	return &speaker{
		synth:   synth,
		player:  player,
		store:   store,
		emitter: speechsync.NewEmitter(),
	}
}
