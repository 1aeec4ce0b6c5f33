package engines

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/sotto/internal/cache"
	"github.com/dgnsrekt/sotto/speech"
	"github.com/dgnsrekt/sotto/speech/audio"
	speechsync "github.com/dgnsrekt/sotto/speech/sync"
)

// Synthesizer produces PCM clips from text. Implementations wrap one
// synthesis backend and know nothing about playback or word timing.
type Synthesizer interface {
	// Synthesize renders text to a PCM clip. It does not play audio.
	Synthesize(ctx context.Context, text string) (audio.Clip, error)

	// Voice identifies the active voice for cache keying.
	Voice() string

	// Speed returns the configured rate multiplier.
	Speed() float64

	Info() speech.EngineInfo
	Validate() error
	Close() error
}

// speaker turns a Synthesizer into a speech.Engine: it caches clips, plays
// them synchronously, and drives word-boundary callbacks off the playback
// clock. Engines built this way are owned by the worker goroutine and are
// not safe for concurrent use.
type speaker struct {
	synth    Synthesizer
	player   audio.Player
	store    *cache.Store
	emitter  *speechsync.Emitter
	registry speech.CallbackRegistry
}

func (s *speaker) Speak(ctx context.Context, text string) error {
	info := s.synth.Info()

	for _, seg := range segment(text, info.MaxTextSize) {
		clip, err := s.clipFor(ctx, seg.text)
		if err != nil {
			return speech.NewError(err, info.Name, "synthesize")
		}
		if err := s.play(ctx, clip, seg); err != nil {
			return speech.NewError(err, info.Name, "play")
		}
	}
	return nil
}

// play plays one segment's clip, firing word callbacks against the playback
// clock. It returns only after both playback and the emitter have finished,
// so no callback ever outlives the Speak call.
func (s *speaker) play(ctx context.Context, clip audio.Clip, seg textSegment) error {
	emitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if s.registry.Active() {
		tl := speech.BuildTimeline(speech.SplitWords(seg.text), clip.Duration())
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.emitter.Run(emitCtx, tl, s.player.Position, func(w speech.Word) {
				s.registry.Emit(seg.offset+w.Offset, w.Length)
			})
		}()
	}

	err := s.player.PlaySync(ctx, clip)
	cancel()
	wg.Wait()
	return err
}

// clipFor returns the segment's clip, synthesizing on cache miss.
func (s *speaker) clipFor(ctx context.Context, text string) (audio.Clip, error) {
	info := s.synth.Info()
	key := cache.Key(info.Name, s.synth.Voice(), s.synth.Speed(), text)

	if data, ok := s.store.Get(key); ok {
		cached, err := audio.DecodeClip(data)
		if err == nil {
			log.Debug("clip cache hit", "engine", info.Name, "bytes", len(cached.Data))
			return cached, nil
		}
		// A clip from before the format header, or a damaged one. Drop it
		// and synthesize fresh.
		log.Debug("dropping undecodable cached clip", "engine", info.Name, "key", key, "err", err)
		s.store.Delete(key)
	}

	start := time.Now()
	clip, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return audio.Clip{}, err
	}
	log.Debug("synthesized clip",
		"engine", info.Name,
		"text_bytes", len(text),
		"pcm_bytes", len(clip.Data),
		"took", time.Since(start))

	s.store.Put(key, clip.Encode())
	return clip, nil
}

func (s *speaker) RegisterWordCallback(fn speech.WordBoundaryFunc) (speech.Token, error) {
	return s.registry.Register(fn)
}

func (s *speaker) UnregisterWordCallback(token speech.Token) error {
	return s.registry.Unregister(token)
}

func (s *speaker) Info() speech.EngineInfo {
	return s.synth.Info()
}

func (s *speaker) Validate() error {
	return s.synth.Validate()
}

func (s *speaker) Close() error {
	err := s.synth.Close()
	if cerr := s.player.Close(); err == nil {
		err = cerr
	}
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// textSegment is a piece of the spoken text with its byte offset in the
// original, so word events from any segment index the full text.
type textSegment struct {
	offset int
	text   string
}

// segment splits text into pieces no longer than max bytes, cutting between
// words and preferring sentence boundaries. Engines with no limit get the
// whole text as one segment. A single word longer than max becomes its own
// segment and is left for the engine to reject.
func segment(text string, max int) []textSegment {
	if max <= 0 || len(text) <= max {
		return []textSegment{{offset: 0, text: text}}
	}

	words := speech.SplitWords(text)
	if len(words) == 0 {
		return []textSegment{{offset: 0, text: text}}
	}

	var segments []textSegment
	start := words[0].Offset
	lastEnd := -1     // end offset of the last word that fits
	sentenceEnd := -1 // end offset of the last sentence break that fits

	flush := func(end int) {
		segments = append(segments, textSegment{offset: start, text: text[start:end]})
	}

	for _, w := range words {
		end := w.Offset + w.Length
		if end-start > max && lastEnd > start {
			cut := lastEnd
			if sentenceEnd > start {
				cut = sentenceEnd
			}
			flush(cut)
			start = w.Offset
			if cut < w.Offset {
				// Words between the sentence cut and here reflow into
				// the new segment.
				for _, back := range words {
					if back.Offset >= cut && back.Offset < w.Offset {
						start = back.Offset
						break
					}
				}
			}
			sentenceEnd = -1
		}
		lastEnd = end
		if strings.ContainsAny(text[end-1:end], ".!?") {
			sentenceEnd = end
		}
	}
	flush(lastEnd)

	return segments
}
