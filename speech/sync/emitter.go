// Package sync drives word-boundary callbacks in real time against the
// audio playback clock. Engines own a timeline of word start times; the
// emitter watches the clock and fires each word's callback, in text order,
// as its start time is crossed.
package sync

import (
	"context"
	"time"

	"github.com/dgnsrekt/sotto/speech"
)

// Default clock-polling interval. Small enough that a boundary is never
// more than a syllable late, large enough to stay invisible in profiles.
const defaultInterval = 10 * time.Millisecond

// Emitter fires word callbacks as the playback clock crosses word starts.
type Emitter struct {
	interval time.Duration
}

// NewEmitter creates an emitter with the default polling interval.
func NewEmitter() *Emitter {
	return &Emitter{interval: defaultInterval}
}

// NewEmitterWithInterval creates an emitter that polls the clock every
// interval. Intervals below 1ms are raised to 1ms.
func NewEmitterWithInterval(interval time.Duration) *Emitter {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return &Emitter{interval: interval}
}

// Run fires emit for each word whose start time the clock has crossed,
// strictly in text order, and returns once every word has fired or ctx is
// done. pos reports the current playback position. Run blocks: engines call
// it from a goroutine alongside synchronous playback and cancel ctx when
// playback ends, which guarantees no callbacks fire after the speak call
// returns.
func (e *Emitter) Run(ctx context.Context, tl *speech.Timeline, pos func() time.Duration, emit func(speech.Word)) {
	if tl == nil || len(tl.Words) == 0 {
		return
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	next := 0
	for next < len(tl.Words) {
		p := pos()
		// Catch up on every word start the clock has passed; a coarse
		// tick may cross several short words at once.
		for next < len(tl.Words) && tl.Starts[next] <= p {
			emit(tl.Words[next])
			next++
		}
		if next >= len(tl.Words) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
