// Package speech implements the read-aloud pipeline: a worker goroutine
// that owns a synthesis engine, the command/event bridge connecting it to
// the presentation layer, and the word-timing support engines use to report
// which word is being spoken.
package speech

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Worker drains the inbound command queue on a dedicated goroutine for the
// life of the process. It exclusively owns its Engine; nothing else may
// touch it. The worker never reads or writes presentation state — its only
// outputs are events published to the bridge.
type Worker struct {
	bridge  *Bridge
	engine  Engine
	machine *StateMachine

	done         chan struct{}
	startOnce    sync.Once
	shutdownOnce sync.Once
}

// NewWorker creates a worker. The worker takes ownership of the engine and
// closes it on termination.
func NewWorker(bridge *Bridge, engine Engine) *Worker {
	return &Worker{
		bridge:  bridge,
		engine:  engine,
		machine: NewStateMachine(),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. Subsequent calls are no-ops.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return w.machine.Current()
}

// Done is closed once the worker has terminated and released its engine.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Shutdown sends the shutdown sentinel and blocks until the worker has
// processed every command queued before it and terminated. Only one
// sentinel is ever sent per process; further calls just wait. Safe to call
// from any goroutine.
func (w *Worker) Shutdown() {
	w.shutdownOnce.Do(func() {
		log.Debug("sending shutdown sentinel")
		if err := w.bridge.SendCommand(shutdownSentinel); err != nil {
			log.Debug("shutdown sentinel not delivered", "err", err)
		}
	})
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	defer func() {
		if err := w.engine.Close(); err != nil {
			log.Error("engine close failed", "err", err)
		}
	}()

	for {
		cmd, err := w.bridge.NextCommand()
		if err != nil {
			// Bridge closed underneath us; treat like the sentinel.
			log.Debug("command queue closed, terminating worker")
			w.machine.Transition(StateTerminated)
			return
		}

		switch c := cmd.(type) {
		case shutdownCommand:
			log.Debug("shutdown sentinel received", "pending", w.bridge.PendingCommands())
			w.machine.Transition(StateTerminated)
			return
		case SpeakCommand:
			w.speak(c)
		}
	}
}

func (w *Worker) speak(cmd SpeakCommand) {
	if cmd.Blank() {
		log.Debug("blank speak command ignored")
		return
	}

	if !w.machine.Transition(StateSpeaking) {
		log.Error("refusing speak command", "state", w.machine.Current())
		return
	}
	defer w.machine.Transition(StateIdle)

	w.publish(SpeakStarted{})

	if cmd.EmitWordEvents {
		token, err := w.engine.RegisterWordCallback(func(offset, length int) {
			w.publish(WordEvent{Offset: offset, Length: length})
		})
		if err != nil {
			log.Warn("word callback registration failed", "err", err)
		} else {
			// Release is guaranteed even when synthesis fails, so
			// callbacks never accumulate across reads.
			defer func() {
				if err := w.engine.UnregisterWordCallback(token); err != nil {
					log.Debug("word callback release failed", "err", err)
				}
			}()
		}
	}

	start := time.Now()
	err := w.engine.Speak(context.Background(), cmd.Text)
	if err != nil {
		log.Error("synthesis failed", "engine", w.engine.Info().Name, "err", err)
	} else {
		log.Debug("speak command completed",
			"engine", w.engine.Info().Name,
			"bytes", len(cmd.Text),
			"words", cmd.EmitWordEvents,
			"took", time.Since(start))
	}

	w.publish(SpeakFinished{Err: err})
}

func (w *Worker) publish(ev Event) {
	if err := w.bridge.PublishEvent(ev); err != nil {
		log.Debug("event dropped", "err", err)
	}
}
