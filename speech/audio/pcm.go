// Package audio provides synchronous PCM playback and the playback clock
// the word-timing emitter reads.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

// Playback errors.
var (
	// ErrDeviceUnavailable is returned when the audio device cannot be
	// initialized.
	ErrDeviceUnavailable = errors.New("audio device is not available")

	// ErrFormatMismatch is returned when a clip's format differs from the
	// format the process audio context was created with. One context
	// exists per process; its format is fixed by the first clip played.
	ErrFormatMismatch = errors.New("clip format differs from active audio format")
)

// BytesPerSample is the size of one sample: 16-bit signed little endian.
const BytesPerSample = 2

// Clip is raw PCM audio ready for playback.
type Clip struct {
	Data       []byte
	SampleRate int // Hz
	Channels   int // 1 mono, 2 stereo
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 || len(c.Data) == 0 {
		return 0
	}
	frames := len(c.Data) / (BytesPerSample * c.Channels)
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

// ErrBadClip is returned by DecodeClip for bytes that are not an encoded
// clip.
var ErrBadClip = errors.New("undecodable clip data")

// clipMagic marks encoded clips so stale or foreign bytes are rejected
// instead of replayed with a garbage format.
var clipMagic = []byte("PCM1")

const clipHeaderSize = 10 // magic + uint32 rate + uint16 channels

// Encode serializes the clip together with its format, so a clip decoded
// later replays at the rate it was synthesized at even if the engine's
// default has changed.
func (c Clip) Encode() []byte {
	buf := make([]byte, clipHeaderSize+len(c.Data))
	copy(buf, clipMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(c.SampleRate)) //nolint:gosec
	binary.LittleEndian.PutUint16(buf[8:], uint16(c.Channels))   //nolint:gosec
	copy(buf[clipHeaderSize:], c.Data)
	return buf
}

// DecodeClip reverses Encode.
func DecodeClip(data []byte) (Clip, error) {
	if len(data) < clipHeaderSize || !bytes.Equal(data[:len(clipMagic)], clipMagic) {
		return Clip{}, ErrBadClip
	}
	rate := int(binary.LittleEndian.Uint32(data[4:]))
	channels := int(binary.LittleEndian.Uint16(data[8:]))
	if rate <= 0 || channels <= 0 {
		return Clip{}, ErrBadClip
	}
	return Clip{
		Data:       data[clipHeaderSize:],
		SampleRate: rate,
		Channels:   channels,
	}, nil
}
