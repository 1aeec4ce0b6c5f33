package speech

import "strings"

// Command is a unit of work delivered to the Worker over the inbound queue.
// The only implementations are SpeakCommand and the shutdown sentinel.
type Command interface {
	isCommand()
}

// SpeakCommand asks the worker to speak Text. Text is a snapshot taken when
// the command is created; the worker never reads presentation state. When
// EmitWordEvents is set the worker publishes a WordEvent for each word as it
// is spoken, with offsets indexing into Text.
type SpeakCommand struct {
	Text           string
	EmitWordEvents bool
}

func (SpeakCommand) isCommand() {}

// Blank reports whether the command carries no speakable text. Blank
// commands are silent no-ops.
func (c SpeakCommand) Blank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// shutdownCommand terminates the worker loop. Exactly one is sent per
// process lifetime, by Worker.Shutdown.
type shutdownCommand struct{}

func (shutdownCommand) isCommand() {}

var shutdownSentinel = shutdownCommand{}
