//go:build nocgo
// +build nocgo

package audio

// NewPlayer returns a silent player on builds without cgo audio support.
func NewPlayer() Player {
	return NewNullPlayer()
}
