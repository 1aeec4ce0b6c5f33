package speech

import (
	"context"
	"sync"
)

// WordBoundaryFunc receives the byte offset and length of the word being
// spoken, relative to the text passed to Speak.
type WordBoundaryFunc func(offset, length int)

// Token identifies a registered word-boundary callback so it can be
// released.
type Token int

// EngineInfo describes an engine's capabilities and output format.
type EngineInfo struct {
	Name        string // Engine name ("piper", "gtts", "mock")
	SampleRate  int    // PCM sample rate in Hz
	Channels    int    // 1 mono, 2 stereo
	MaxTextSize int    // Maximum bytes per synthesis request, 0 for no limit
	Online      bool   // Requires network access
}

// Engine is a speech synthesizer. Engines are not safe for concurrent use;
// the worker goroutine owns its engine exclusively.
//
// Speak blocks until audio playback of the whole text has completed. Word
// boundary callbacks are transient: registered before a speak call that
// wants them and released afterwards via the returned token.
type Engine interface {
	Speak(ctx context.Context, text string) error
	RegisterWordCallback(fn WordBoundaryFunc) (Token, error)
	UnregisterWordCallback(token Token) error
	Info() EngineInfo
	Validate() error
	Close() error
}

// CallbackRegistry provides the word-callback bookkeeping shared by engine
// implementations. The zero value is ready to use.
//
// Registration and release happen on the worker goroutine while Emit is
// called from an engine's playback loop, so access is synchronized.
type CallbackRegistry struct {
	mu   sync.RWMutex
	next Token
	fns  map[Token]WordBoundaryFunc
}

// Register adds fn and returns its release token.
func (r *CallbackRegistry) Register(fn WordBoundaryFunc) (Token, error) {
	if fn == nil {
		return 0, ErrNilCallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fns == nil {
		r.fns = make(map[Token]WordBoundaryFunc)
	}
	r.next++
	token := r.next
	r.fns[token] = fn
	return token, nil
}

// Unregister releases the callback identified by token.
func (r *CallbackRegistry) Unregister(token Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fns[token]; !ok {
		return ErrCallbackNotFound
	}
	delete(r.fns, token)
	return nil
}

// Emit invokes every registered callback with the given word span.
func (r *CallbackRegistry) Emit(offset, length int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fn := range r.fns {
		fn(offset, length)
	}
}

// Active reports whether any callback is currently registered. Engines skip
// the word-timing machinery entirely when nothing listens.
func (r *CallbackRegistry) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns) > 0
}
