package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/sotto/speech"
)

// Chain tries engines in order: validation picks the first available one,
// and a speak call that fails with an availability error falls through to
// the next engine in line. Word callbacks are mirrored onto every engine so
// events keep flowing after a fallback.
type Chain struct {
	engines []speech.Engine
	active  int

	mu     sync.Mutex
	next   speech.Token
	tokens map[speech.Token][]speech.Token
}

// NewChain creates a fallback chain. Order is priority order.
func NewChain(engines ...speech.Engine) *Chain {
	return &Chain{
		engines: engines,
		tokens:  make(map[speech.Token][]speech.Token),
	}
}

// Speak speaks through the active engine, advancing down the chain when an
// engine reports itself unavailable.
func (c *Chain) Speak(ctx context.Context, text string) error {
	var lastErr error
	for i := c.active; i < len(c.engines); i++ {
		err := c.engines[i].Speak(ctx, text)
		if err == nil {
			c.active = i
			return nil
		}
		lastErr = err
		if !errors.Is(err, speech.ErrEngineUnavailable) {
			return err
		}
		log.Warn("engine unavailable, falling back",
			"engine", c.engines[i].Info().Name,
			"err", err)
	}
	return lastErr
}

// RegisterWordCallback registers fn with every engine in the chain.
func (c *Chain) RegisterWordCallback(fn speech.WordBoundaryFunc) (speech.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inner := make([]speech.Token, 0, len(c.engines))
	for _, engine := range c.engines {
		token, err := engine.RegisterWordCallback(fn)
		if err != nil {
			// Roll back the registrations that succeeded.
			for i, t := range inner {
				_ = c.engines[i].UnregisterWordCallback(t)
			}
			return 0, err
		}
		inner = append(inner, token)
	}

	c.next++
	c.tokens[c.next] = inner
	return c.next, nil
}

// UnregisterWordCallback releases the callback from every engine.
func (c *Chain) UnregisterWordCallback(token speech.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	inner, ok := c.tokens[token]
	if !ok {
		return speech.ErrCallbackNotFound
	}
	delete(c.tokens, token)

	var firstErr error
	for i, t := range inner {
		if err := c.engines[i].UnregisterWordCallback(t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Info reports the active engine's capabilities.
func (c *Chain) Info() speech.EngineInfo {
	return c.engines[c.active].Info()
}

// Validate selects the first engine that validates. It fails only when no
// engine in the chain is usable.
func (c *Chain) Validate() error {
	var errs []error
	for i, engine := range c.engines {
		if err := engine.Validate(); err != nil {
			log.Debug("engine failed validation",
				"engine", engine.Info().Name,
				"err", err)
			errs = append(errs, err)
			continue
		}
		c.active = i
		log.Info("selected speech engine", "engine", engine.Info().Name)
		return nil
	}
	return fmt.Errorf("%w: %v", speech.ErrEngineUnavailable, errors.Join(errs...))
}

// Close closes every engine in the chain.
func (c *Chain) Close() error {
	var firstErr error
	for _, engine := range c.engines {
		if err := engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
