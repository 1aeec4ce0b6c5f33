package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// scriptedEngine emits one word event per word during Speak, via whatever
// callbacks are registered, and records everything it spoke.
type scriptedEngine struct {
	mu       sync.Mutex
	registry CallbackRegistry
	spoken   []string
	speakErr error
	closed   bool
	delay    time.Duration
}

func (e *scriptedEngine) Speak(_ context.Context, text string) error {
	if e.speakErr != nil {
		return e.speakErr
	}
	e.mu.Lock()
	e.spoken = append(e.spoken, text)
	e.mu.Unlock()

	for _, w := range SplitWords(text) {
		e.registry.Emit(w.Offset, w.Length)
		if e.delay > 0 {
			time.Sleep(e.delay)
		}
	}
	return nil
}

func (e *scriptedEngine) RegisterWordCallback(fn WordBoundaryFunc) (Token, error) {
	return e.registry.Register(fn)
}

func (e *scriptedEngine) UnregisterWordCallback(token Token) error {
	return e.registry.Unregister(token)
}

func (e *scriptedEngine) Info() EngineInfo { return EngineInfo{Name: "scripted"} }
func (e *scriptedEngine) Validate() error  { return nil }

func (e *scriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *scriptedEngine) spokenTexts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.spoken...)
}

func startWorker(t *testing.T) (*Worker, *Bridge, *scriptedEngine) {
	t.Helper()
	bridge := NewBridge()
	engine := &scriptedEngine{}
	worker := NewWorker(bridge, engine)
	worker.Start()
	return worker, bridge, engine
}

// drainUntilFinished collects events until a SpeakFinished arrives.
func drainUntilFinished(t *testing.T, bridge *Bridge) []Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	var events []Event
	for {
		for _, ev := range bridge.DrainEvents() {
			events = append(events, ev)
			if _, ok := ev.(SpeakFinished); ok {
				return events
			}
		}
		select {
		case <-deadline:
			t.Fatalf("no SpeakFinished after 2s; events so far: %v", events)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestWorker_HelloWorldScenario(t *testing.T) {
	worker, bridge, _ := startWorker(t)
	defer worker.Shutdown()

	if err := bridge.SendCommand(SpeakCommand{Text: "Hello world", EmitWordEvents: true}); err != nil {
		t.Fatal(err)
	}

	events := drainUntilFinished(t, bridge)

	var words []WordEvent
	for _, ev := range events {
		if w, ok := ev.(WordEvent); ok {
			words = append(words, w)
		}
	}

	want := []WordEvent{{Offset: 0, Length: 5}, {Offset: 6, Length: 5}}
	if len(words) != len(want) {
		t.Fatalf("expected %d word events, got %v", len(want), words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word event %d = %+v, want %+v", i, words[i], want[i])
		}
	}

	if _, ok := events[0].(SpeakStarted); !ok {
		t.Error("first event should be SpeakStarted")
	}
	if _, ok := events[len(events)-1].(SpeakFinished); !ok {
		t.Error("last event should be SpeakFinished")
	}
}

func TestWorker_NoWordEventsWhenDisabled(t *testing.T) {
	worker, bridge, _ := startWorker(t)
	defer worker.Shutdown()

	if err := bridge.SendCommand(SpeakCommand{Text: "Hello world", EmitWordEvents: false}); err != nil {
		t.Fatal(err)
	}

	for _, ev := range drainUntilFinished(t, bridge) {
		if w, ok := ev.(WordEvent); ok {
			t.Errorf("unexpected word event %+v with EmitWordEvents=false", w)
		}
	}
}

func TestWorker_BlankTextIsNoOp(t *testing.T) {
	worker, bridge, engine := startWorker(t)
	defer worker.Shutdown()

	blanks := []string{"", "   ", "\n\t  \n"}
	for _, text := range blanks {
		if err := bridge.SendCommand(SpeakCommand{Text: text, EmitWordEvents: true}); err != nil {
			t.Fatal(err)
		}
	}
	// A real command after the blanks proves they were consumed silently.
	if err := bridge.SendCommand(SpeakCommand{Text: "real", EmitWordEvents: false}); err != nil {
		t.Fatal(err)
	}

	drainUntilFinished(t, bridge)

	if spoken := engine.spokenTexts(); len(spoken) != 1 || spoken[0] != "real" {
		t.Errorf("engine spoke %v, want only [real]", spoken)
	}
}

func TestWorker_CommandsStaySerialized(t *testing.T) {
	worker, bridge, engine := startWorker(t)
	defer worker.Shutdown()

	engine.delay = 5 * time.Millisecond

	if err := bridge.SendCommand(SpeakCommand{Text: "first one", EmitWordEvents: true}); err != nil {
		t.Fatal(err)
	}
	if err := bridge.SendCommand(SpeakCommand{Text: "second one", EmitWordEvents: true}); err != nil {
		t.Fatal(err)
	}

	var events []Event
	finished := 0
	deadline := time.After(2 * time.Second)
	for finished < 2 {
		for _, ev := range bridge.DrainEvents() {
			events = append(events, ev)
			if _, ok := ev.(SpeakFinished); ok {
				finished++
			}
		}
		select {
		case <-deadline:
			t.Fatalf("only %d commands finished; events: %v", finished, events)
		case <-time.After(time.Millisecond):
		}
	}

	// Events must form two complete, non-interleaved runs:
	// Started, words..., Finished, Started, words..., Finished.
	run := 0
	inRun := false
	for i, ev := range events {
		switch ev.(type) {
		case SpeakStarted:
			if inRun {
				t.Fatalf("event %d: run %d started before previous finished", i, run+1)
			}
			inRun = true
		case SpeakFinished:
			if !inRun {
				t.Fatalf("event %d: finish without start", i)
			}
			inRun = false
			run++
		case WordEvent:
			if !inRun {
				t.Fatalf("event %d: word event outside a run", i)
			}
		}
	}
	if run != 2 {
		t.Errorf("expected 2 complete runs, got %d", run)
	}

	spoken := engine.spokenTexts()
	if len(spoken) != 2 || spoken[0] != "first one" || spoken[1] != "second one" {
		t.Errorf("commands processed out of order: %v", spoken)
	}
}

func TestWorker_ShutdownTerminatesAndIsIdempotent(t *testing.T) {
	worker, bridge, engine := startWorker(t)

	if err := bridge.SendCommand(SpeakCommand{Text: "last words", EmitWordEvents: false}); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		worker.Shutdown()
		worker.Shutdown() // second call just waits
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not complete")
	}

	if worker.State() != StateTerminated {
		t.Errorf("worker state = %v, want terminated", worker.State())
	}
	if !engine.closed {
		t.Error("engine was not closed on termination")
	}
	if spoken := engine.spokenTexts(); len(spoken) != 1 {
		t.Errorf("commands queued before the sentinel must drain first, spoke %v", spoken)
	}
}

func TestWorker_SpeakErrorSurfacesInFinished(t *testing.T) {
	bridge := NewBridge()
	engine := &scriptedEngine{speakErr: errors.New("engine exploded")}
	worker := NewWorker(bridge, engine)
	worker.Start()
	defer worker.Shutdown()

	if err := bridge.SendCommand(SpeakCommand{Text: "doomed", EmitWordEvents: false}); err != nil {
		t.Fatal(err)
	}

	events := drainUntilFinished(t, bridge)
	finished := events[len(events)-1].(SpeakFinished)
	if finished.Err == nil {
		t.Error("SpeakFinished.Err should carry the synthesis error")
	}
}

func TestWorker_CallbackAlwaysReleased(t *testing.T) {
	worker, bridge, engine := startWorker(t)

	// Several event-emitting reads in a row must not accumulate
	// callbacks; a leak would multiply events per word.
	for i := 0; i < 3; i++ {
		if err := bridge.SendCommand(SpeakCommand{Text: "check leak", EmitWordEvents: true}); err != nil {
			t.Fatal(err)
		}
		events := drainUntilFinished(t, bridge)
		words := 0
		for _, ev := range events {
			if _, ok := ev.(WordEvent); ok {
				words++
			}
		}
		if words != 2 {
			t.Fatalf("read %d: got %d word events, want 2 (callback leak?)", i, words)
		}
	}

	worker.Shutdown()
	if engine.registry.Active() {
		t.Error("callbacks still registered after reads completed")
	}
}
