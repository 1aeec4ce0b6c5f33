package audio

import (
	"context"
	"sync"
	"time"
)

// Player plays PCM clips synchronously and exposes the playback clock.
// Implementations are not safe for concurrent PlaySync calls; the speech
// worker serializes all playback.
type Player interface {
	// PlaySync blocks until the clip has played to completion, or ctx is
	// done. Device problems surface here wrapped around
	// ErrDeviceUnavailable.
	PlaySync(ctx context.Context, clip Clip) error

	// Position returns the playback position within the current clip, or
	// zero when nothing is playing. Safe for concurrent use with an
	// in-flight PlaySync.
	Position() time.Duration

	// Playing reports whether a clip is in flight.
	Playing() bool

	// Close releases the device.
	Close() error
}

// NullPlayer consumes clips in real time without touching an audio device.
// It backs cgo-less builds and tests; the playback clock advances exactly
// as it would with a real device.
type NullPlayer struct {
	mu        sync.Mutex
	startedAt time.Time
	total     time.Duration
	playing   bool
}

// NewNullPlayer creates a silent player.
func NewNullPlayer() *NullPlayer {
	return &NullPlayer{}
}

// PlaySync sleeps for the clip's duration.
func (p *NullPlayer) PlaySync(ctx context.Context, clip Clip) error {
	total := clip.Duration()

	p.mu.Lock()
	p.startedAt = time.Now()
	p.total = total
	p.playing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	if total <= 0 {
		return nil
	}

	timer := time.NewTimer(total)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Position returns the elapsed play time of the current clip.
func (p *NullPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return 0
	}
	pos := time.Since(p.startedAt)
	if pos > p.total {
		pos = p.total
	}
	return pos
}

// Playing reports whether a clip is in flight.
func (p *NullPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close is a no-op.
func (p *NullPlayer) Close() error {
	return nil
}
