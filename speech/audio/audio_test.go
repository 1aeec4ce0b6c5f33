package audio

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestClip_Duration(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want time.Duration
	}{
		{
			name: "one second mono",
			clip: Clip{Data: make([]byte, 22050*2), SampleRate: 22050, Channels: 1},
			want: time.Second,
		},
		{
			name: "one second stereo",
			clip: Clip{Data: make([]byte, 44100*4), SampleRate: 44100, Channels: 2},
			want: time.Second,
		},
		{
			name: "half second",
			clip: Clip{Data: make([]byte, 22050), SampleRate: 22050, Channels: 1},
			want: 500 * time.Millisecond,
		},
		{
			name: "empty",
			clip: Clip{SampleRate: 22050, Channels: 1},
			want: 0,
		},
		{
			name: "invalid rate",
			clip: Clip{Data: make([]byte, 100), Channels: 1},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClip_EncodePreservesFormat(t *testing.T) {
	clip := Clip{Data: []byte{1, 2, 3, 4, 5, 6}, SampleRate: 16000, Channels: 2}

	got, err := DecodeClip(clip.Encode())
	if err != nil {
		t.Fatalf("DecodeClip failed: %v", err)
	}
	if got.SampleRate != clip.SampleRate || got.Channels != clip.Channels {
		t.Errorf("decoded format %dHz/%dch, want %dHz/%dch",
			got.SampleRate, got.Channels, clip.SampleRate, clip.Channels)
	}
	if !bytes.Equal(got.Data, clip.Data) {
		t.Error("decoded PCM differs from source")
	}
}

func TestDecodeClip_RejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too short", []byte("PCM1")},
		{"wrong magic", append([]byte("XXXX"), make([]byte, 20)...)},
		{"zero rate", Clip{Data: []byte{1, 2}, SampleRate: 0, Channels: 1}.Encode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeClip(tt.data); !errors.Is(err, ErrBadClip) {
				t.Errorf("expected ErrBadClip, got %v", err)
			}
		})
	}
}

func TestNullPlayer_PlaysForClipDuration(t *testing.T) {
	p := NewNullPlayer()
	clip := Clip{Data: make([]byte, 22050/10*2), SampleRate: 22050, Channels: 1} // 100ms

	start := time.Now()
	if err := p.PlaySync(context.Background(), clip); err != nil {
		t.Fatalf("PlaySync failed: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 90*time.Millisecond {
		t.Errorf("playback returned after %v, clip lasts 100ms", elapsed)
	}
	if p.Playing() {
		t.Error("player still reports playing after PlaySync returned")
	}
	if pos := p.Position(); pos != 0 {
		t.Errorf("Position after playback = %v, want 0", pos)
	}
}

func TestNullPlayer_PositionAdvancesDuringPlayback(t *testing.T) {
	p := NewNullPlayer()
	clip := Clip{Data: make([]byte, 22050*2), SampleRate: 22050, Channels: 1} // 1s

	done := make(chan error, 1)
	go func() {
		done <- p.PlaySync(context.Background(), clip)
	}()

	time.Sleep(50 * time.Millisecond)
	if !p.Playing() {
		t.Error("expected Playing during playback")
	}
	pos := p.Position()
	if pos <= 0 || pos > time.Second {
		t.Errorf("Position during playback = %v", pos)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("playback never finished")
	}
}

func TestNullPlayer_CancelStopsPlayback(t *testing.T) {
	p := NewNullPlayer()
	clip := Clip{Data: make([]byte, 22050*2*10), SampleRate: 22050, Channels: 1} // 10s

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.PlaySync(ctx, clip)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("PlaySync returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancel did not stop playback")
	}
}

func TestNullPlayer_EmptyClipReturnsImmediately(t *testing.T) {
	p := NewNullPlayer()
	start := time.Now()
	if err := p.PlaySync(context.Background(), Clip{}); err != nil {
		t.Fatalf("PlaySync failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("empty clip took %v to play", elapsed)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
