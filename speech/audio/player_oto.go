//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto permits one audio context per process. The context is created lazily
// by the first clip played and its format is fixed from then on.
var (
	contextOnce sync.Once
	audioCtx    *oto.Context
	audioCtxErr error
	ctxRate     int
	ctxChannels int
)

func sharedContext(sampleRate, channels int) (*oto.Context, error) {
	contextOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		// Platform-specific buffer sizes; CoreAudio wants more headroom.
		switch runtime.GOOS {
		case "darwin":
			opts.BufferSize = 100 * time.Millisecond
		case "windows":
			opts.BufferSize = 80 * time.Millisecond
		default:
			opts.BufferSize = 50 * time.Millisecond
		}

		log.Debug("initializing audio context",
			"sample_rate", sampleRate,
			"channels", channels,
			"buffer_size", opts.BufferSize)

		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			audioCtxErr = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
			return
		}

		select {
		case <-ready:
			audioCtx = ctx
			ctxRate = sampleRate
			ctxChannels = channels
		case <-time.After(5 * time.Second):
			audioCtxErr = fmt.Errorf("%w: context initialization timeout", ErrDeviceUnavailable)
		}
	})

	if audioCtxErr != nil {
		return nil, audioCtxErr
	}
	if sampleRate != ctxRate || channels != ctxChannels {
		return nil, fmt.Errorf("%w: device %dHz/%dch, clip %dHz/%dch",
			ErrFormatMismatch, ctxRate, ctxChannels, sampleRate, channels)
	}
	return audioCtx, nil
}

// devicePlayer plays clips through the process audio context, tracking the
// playback clock on wall time.
type devicePlayer struct {
	mu        sync.Mutex
	startedAt time.Time
	total     time.Duration
	playing   bool
}

// NewPlayer creates a player for the local audio device. The device itself
// is opened lazily on the first PlaySync.
func NewPlayer() Player {
	return &devicePlayer{}
}

// PlaySync plays the clip to completion.
func (p *devicePlayer) PlaySync(ctx context.Context, clip Clip) error {
	octx, err := sharedContext(clip.SampleRate, clip.Channels)
	if err != nil {
		return err
	}

	player := octx.NewPlayer(bytes.NewReader(clip.Data))
	defer player.Close() //nolint:errcheck

	p.mu.Lock()
	p.startedAt = time.Now()
	p.total = clip.Duration()
	p.playing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}

// Position returns the elapsed play time of the current clip.
func (p *devicePlayer) Position() time.Duration {
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
func (p *devicePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close releases the player. The process audio context has no close in oto
// v3 and is reclaimed at exit.
func (p *devicePlayer) Close() error {
	return nil
}
