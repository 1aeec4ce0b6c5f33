package speech

import "github.com/dgnsrekt/sotto/internal/fifo"

// Bridge is the only communication channel between the presentation layer
// and the speech worker: an inbound command queue and an outbound event
// queue, both unbounded FIFO. A Bridge is constructed once at startup and
// handed to both sides; there is no package-level queue state.
type Bridge struct {
	commands *fifo.Queue[Command]
	events   *fifo.Queue[Event]
}

// NewBridge creates a bridge with empty queues.
func NewBridge() *Bridge {
	return &Bridge{
		commands: fifo.New[Command](),
		events:   fifo.New[Event](),
	}
}

// SendCommand enqueues a command for the worker. Commands are processed
// strictly in submission order; a command sent while another is in flight
// waits behind it.
func (b *Bridge) SendCommand(cmd Command) error {
	return b.commands.Enqueue(cmd)
}

// NextCommand blocks until a command is available. It returns fifo.ErrClosed
// once the bridge has been closed and drained.
func (b *Bridge) NextCommand() (Command, error) {
	return b.commands.Dequeue()
}

// PublishEvent enqueues an event for the presentation layer.
func (b *Bridge) PublishEvent(ev Event) error {
	return b.events.Enqueue(ev)
}

// DrainEvents returns all currently available events without blocking. Safe
// to call from the UI loop every tick.
func (b *Bridge) DrainEvents() []Event {
	return b.events.Drain()
}

// PendingCommands returns the number of queued, unprocessed commands.
func (b *Bridge) PendingCommands() int {
	return b.commands.Len()
}

// Close closes both queues. Called after the worker has terminated; blocked
// dequeues are woken with fifo.ErrClosed.
func (b *Bridge) Close() {
	b.commands.Close()
	b.events.Close()
}
