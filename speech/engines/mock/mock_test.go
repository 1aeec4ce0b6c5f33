package mock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSynthesize_DurationTracksWords(t *testing.T) {
	e := New()
	e.SetWordDelay(10 * time.Millisecond)

	tests := []struct {
		name  string
		text  string
		words int
	}{
		{"single word", "hello", 1},
		{"two words", "hello world", 2},
		{"five words", "one two three four five", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip, err := e.Synthesize(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Synthesize failed: %v", err)
			}
			want := time.Duration(tt.words) * 10 * time.Millisecond
			got := clip.Duration()
			if diff := got - want; diff < -time.Millisecond || diff > time.Millisecond {
				t.Errorf("clip duration = %v, want ~%v", got, want)
			}
		})
	}
}

func TestSynthesize_ScriptedFailure(t *testing.T) {
	e := New()
	boom := errors.New("boom")

	e.FailWith(boom)
	if _, err := e.Synthesize(context.Background(), "text"); !errors.Is(err, boom) {
		t.Errorf("expected scripted failure, got %v", err)
	}

	e.FailWith(nil)
	if _, err := e.Synthesize(context.Background(), "text"); err != nil {
		t.Errorf("expected recovery after clearing failure, got %v", err)
	}

	if e.Calls() != 2 {
		t.Errorf("expected 2 recorded calls, got %d", e.Calls())
	}
}

func TestValidateAndClose(t *testing.T) {
	e := New()
	if err := e.Validate(); err != nil {
		t.Errorf("mock must always validate, got %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if !e.Closed() {
		t.Error("Closed() should report true after Close")
	}
}
