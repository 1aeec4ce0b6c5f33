package speech

import "testing"

func TestCallbackRegistry(t *testing.T) {
	var r CallbackRegistry

	if r.Active() {
		t.Error("empty registry should not be active")
	}
	// Emit with nothing registered is a no-op.
	r.Emit(0, 5)

	var got [][2]int
	token, err := r.Register(func(off, n int) {
		got = append(got, [2]int{off, n})
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !r.Active() {
		t.Error("registry with a callback should be active")
	}

	r.Emit(0, 5)
	r.Emit(6, 5)
	if len(got) != 2 || got[0] != [2]int{0, 5} || got[1] != [2]int{6, 5} {
		t.Errorf("callback received %v", got)
	}

	if err := r.Unregister(token); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if r.Active() {
		t.Error("registry should be inactive after release")
	}

	r.Emit(12, 4)
	if len(got) != 2 {
		t.Error("released callback still fired")
	}
}

func TestCallbackRegistry_Errors(t *testing.T) {
	var r CallbackRegistry

	if _, err := r.Register(nil); err != ErrNilCallback {
		t.Errorf("Register(nil) = %v, want ErrNilCallback", err)
	}
	if err := r.Unregister(Token(99)); err != ErrCallbackNotFound {
		t.Errorf("Unregister(unknown) = %v, want ErrCallbackNotFound", err)
	}

	token, err := r.Register(func(int, int) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Unregister(token); err != nil {
		t.Fatal(err)
	}
	if err := r.Unregister(token); err != ErrCallbackNotFound {
		t.Errorf("double Unregister = %v, want ErrCallbackNotFound", err)
	}
}

func TestError_WrapAndUnwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		want   string
		target error
	}{
		{
			name:   "engine and op",
			err:    NewError(ErrSynthesisFailed, "piper", "speak"),
			want:   "piper: speak: speech synthesis failed",
			target: ErrSynthesisFailed,
		},
		{
			name:   "op only",
			err:    NewError(ErrWorkerTerminated, "", "enqueue"),
			want:   "enqueue: speech worker has terminated",
			target: ErrWorkerTerminated,
		},
		{
			name:   "bare",
			err:    NewError(ErrEngineUnavailable, "", ""),
			want:   "speech engine is not available",
			target: ErrEngineUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if tt.err.Unwrap() != tt.target {
				t.Error("Unwrap did not return the underlying error")
			}
		})
	}
}
