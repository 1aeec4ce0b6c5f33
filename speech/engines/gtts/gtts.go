// Package gtts synthesizes speech online through gtts-cli (Google
// Translate's TTS endpoint). The MP3 output is decoded to PCM in-process.
package gtts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	mp3 "github.com/hajimehoshi/go-mp3"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/sotto/speech"
	"github.com/dgnsrekt/sotto/speech/audio"
)

const (
	binaryName  = "gtts-cli"
	maxTextSize = 5000

	// Google's endpoint; responses usually decode to this rate.
	defaultSampleRate = 24000

	// Network synthesis gets a longer leash than local engines.
	synthesisTimeout = 30 * time.Second

	// Requests per minute. Conservative so bulk reads don't get the
	// client blocked.
	requestsPerMinute = 50
)

// Config holds gtts settings.
type Config struct {
	// Language is the two-letter language code, "en" by default.
	Language string

	// Speed below 0.9 enables gtts's slow mode; the endpoint offers no
	// finer rate control.
	Speed float64
}

// Engine shells out to gtts-cli per request and decodes the returned MP3
// with go-mp3, so no ffmpeg is needed.
type Engine struct {
	language string
	speed    float64
	slow     bool
	limiter  *rate.Limiter

	// Decoded sample rate observed from the first response; Info reports
	// the default until then.
	sampleRate int
}

// New creates a gtts engine.
func New(cfg Config) *Engine {
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1.0
	}
	return &Engine{
		language:   language,
		speed:      speed,
		slow:       speed < 0.9,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), 1),
		sampleRate: defaultSampleRate,
	}
}

// Synthesize renders text to 16-bit stereo PCM.
func (e *Engine) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	if strings.TrimSpace(text) == "" {
		return audio.Clip{}, speech.ErrSynthesisFailed
	}
	if len(text) > maxTextSize {
		return audio.Clip{}, fmt.Errorf("%w: %d bytes (max %d)", speech.ErrTextTooLong, len(text), maxTextSize)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return audio.Clip{}, fmt.Errorf("rate limit wait: %w", err)
	}

	mp3Data, err := e.fetchMP3(ctx, text)
	if err != nil {
		return audio.Clip{}, err
	}

	return e.decode(mp3Data)
}

func (e *Engine) fetchMP3(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	args := []string{text, "-l", e.language}
	if e.slow {
		args = append(args, "--slow")
	}
	args = append(args, "-o", "-")

	cmd := exec.CommandContext(ctx, binaryName, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- cmd.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("gtts-cli timed out: %w", ctx.Err())
			}
			return nil, fmt.Errorf("gtts-cli failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
	case <-ctx.Done():
		interruptThenKill(cmd, done)
		return nil, fmt.Errorf("gtts-cli timed out: %w", ctx.Err())
	}

	data := stdout.Bytes()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: gtts-cli produced no audio: %s",
			speech.ErrSynthesisFailed, strings.TrimSpace(stderr.String()))
	}
	return data, nil
}

// decode converts MP3 to raw PCM. go-mp3 always yields 16-bit stereo at the
// stream's native rate.
func (e *Engine) decode(data []byte) (audio.Clip, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("decoding mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("reading mp3 frames: %w", err)
	}

	e.sampleRate = dec.SampleRate()
	return audio.Clip{Data: pcm, SampleRate: dec.SampleRate(), Channels: 2}, nil
}

// Voice identifies the language for cache keying.
func (e *Engine) Voice() string { return e.language }

// Speed returns the configured rate multiplier.
func (e *Engine) Speed() float64 { return e.speed }

// Info describes gtts output: stereo PCM at the stream rate, online.
func (e *Engine) Info() speech.EngineInfo {
	return speech.EngineInfo{
		Name:        "gtts",
		SampleRate:  e.sampleRate,
		Channels:    2,
		MaxTextSize: maxTextSize,
		Online:      true,
	}
}

// Validate checks that gtts-cli is on PATH. Network reachability is only
// discovered at first synthesis.
func (e *Engine) Validate() error {
	if _, err := exec.LookPath(binaryName); err != nil {
		return fmt.Errorf("%w: gtts-cli not found in PATH", speech.ErrEngineUnavailable)
	}
	return nil
}

// Close is a no-op; each synthesis owns its own subprocess.
func (e *Engine) Close() error { return nil }

func interruptThenKill(cmd *exec.Cmd, done <-chan error) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		log.Debug("interrupt failed", "err", err)
	}
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		_ = cmd.Process.Kill()
		<-done
	}
}
