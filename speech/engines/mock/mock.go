// Package mock provides an in-memory synthesizer for tests and dry runs.
// It produces silent PCM whose duration tracks the word count, so word
// timing behaves like a real engine without audio hardware or
// subprocesses.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/dgnsrekt/sotto/speech"
	"github.com/dgnsrekt/sotto/speech/audio"
)

const sampleRate = 22050

// Engine is the mock synthesizer. The zero delay is small enough to keep
// test runs fast while still exercising the playback clock.
type Engine struct {
	mu        sync.Mutex
	wordDelay time.Duration
	failWith  error
	calls     int
	closed    bool
}

// New creates a mock engine with a 10ms per-word duration.
func New() *Engine {
	return &Engine{wordDelay: 10 * time.Millisecond}
}

// SetWordDelay changes the synthetic duration per word.
func (e *Engine) SetWordDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wordDelay = d
}

// FailWith makes every subsequent Synthesize return err. Pass nil to
// restore normal operation.
func (e *Engine) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failWith = err
}

// Calls returns how many times Synthesize has been invoked.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Synthesize produces a silent clip lasting wordDelay per word.
func (e *Engine) Synthesize(_ context.Context, text string) (audio.Clip, error) {
	e.mu.Lock()
	e.calls++
	failWith := e.failWith
	wordDelay := e.wordDelay
	e.mu.Unlock()

	if failWith != nil {
		return audio.Clip{}, failWith
	}

	words := len(speech.SplitWords(text))
	if words == 0 {
		words = 1
	}
	duration := time.Duration(words) * wordDelay
	samples := int(duration.Seconds() * sampleRate)

	return audio.Clip{
		Data:       make([]byte, samples*audio.BytesPerSample),
		SampleRate: sampleRate,
		Channels:   1,
	}, nil
}

// Voice identifies the mock voice for cache keying.
func (e *Engine) Voice() string { return "mock" }

// Speed returns the fixed mock rate.
func (e *Engine) Speed() float64 { return 1.0 }

// Info describes the mock output format.
func (e *Engine) Info() speech.EngineInfo {
	return speech.EngineInfo{
		Name:       "mock",
		SampleRate: sampleRate,
		Channels:   1,
		Online:     false,
	}
}

// Validate always succeeds; the mock needs nothing from the host.
func (e *Engine) Validate() error { return nil }

// Close records the call for tests.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
