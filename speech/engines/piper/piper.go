// Package piper synthesizes speech with the piper binary: text on stdin,
// raw PCM on stdout. Fully offline.
package piper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/sotto/speech"
	"github.com/dgnsrekt/sotto/speech/audio"
)

const (
	binaryName  = "piper"
	sampleRate  = 22050
	maxTextSize = 5000

	// One subprocess per synthesis; anything slower than this is hung.
	synthesisTimeout = 30 * time.Second
)

// Config holds piper settings.
type Config struct {
	// Model is the voice model path (.onnx). Required.
	Model string

	// Speed is the rate multiplier; piper takes the inverse as its length
	// scale.
	Speed float64
}

// Engine runs one piper subprocess per synthesis request. A fresh process
// with pre-wired stdin sidesteps the races of a long-lived pipe.
type Engine struct {
	model string
	speed float64
}

// New creates a piper engine. Availability is checked by Validate, not
// here.
func New(cfg Config) *Engine {
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1.0
	}
	return &Engine{model: cfg.Model, speed: speed}
}

// Synthesize renders text to 16-bit mono PCM.
func (e *Engine) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	if strings.TrimSpace(text) == "" {
		return audio.Clip{}, speech.ErrSynthesisFailed
	}
	if len(text) > maxTextSize {
		return audio.Clip{}, fmt.Errorf("%w: %d bytes (max %d)", speech.ErrTextTooLong, len(text), maxTextSize)
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	args := []string{
		"--model", e.model,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1.0/e.speed),
	}

	cmd := exec.CommandContext(ctx, binaryName, args...)
	cmd.Stdin = strings.NewReader(text)

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
				return audio.Clip{}, fmt.Errorf("piper timed out: %w", ctx.Err())
			}
			return audio.Clip{}, fmt.Errorf("piper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
	case <-ctx.Done():
		interruptThenKill(cmd, done)
		return audio.Clip{}, fmt.Errorf("piper timed out: %w", ctx.Err())
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return audio.Clip{}, fmt.Errorf("%w: piper produced no audio: %s",
			speech.ErrSynthesisFailed, strings.TrimSpace(stderr.String()))
	}

	return audio.Clip{Data: pcm, SampleRate: sampleRate, Channels: 1}, nil
}

// Voice identifies the model for cache keying.
func (e *Engine) Voice() string { return e.model }

// Speed returns the configured rate multiplier.
func (e *Engine) Speed() float64 { return e.speed }

// Info describes piper output: 22.05kHz mono PCM, offline.
func (e *Engine) Info() speech.EngineInfo {
	return speech.EngineInfo{
		Name:        "piper",
		SampleRate:  sampleRate,
		Channels:    1,
		MaxTextSize: maxTextSize,
		Online:      false,
	}
}

// Validate checks that the binary is on PATH and the model file exists.
func (e *Engine) Validate() error {
	if _, err := exec.LookPath(binaryName); err != nil {
		return fmt.Errorf("%w: piper not found in PATH", speech.ErrEngineUnavailable)
	}
	if e.model == "" {
		return fmt.Errorf("%w: no piper model configured", speech.ErrEngineUnavailable)
	}
	if _, err := os.Stat(e.model); err != nil {
		return fmt.Errorf("%w: model %s: %v", speech.ErrEngineUnavailable, e.model, err)
	}
	return nil
}

// Close is a no-op; each synthesis owns its own subprocess.
func (e *Engine) Close() error { return nil }

// interruptThenKill asks the subprocess to exit and kills it if it ignores
// the request.
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
