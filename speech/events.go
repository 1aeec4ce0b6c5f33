package speech

// Event is a notification delivered to the presentation layer over the
// outbound queue. Events are strictly ordered: SpeakStarted precedes any
// WordEvent of the same command, and SpeakFinished follows them all.
type Event interface {
	isEvent()
}

// WordEvent reports the word currently being spoken. Offset and Length are
// byte positions within the Text of the SpeakCommand that produced the
// event. Ranges that no longer fit the displayed text are skipped by the
// consumer.
type WordEvent struct {
	Offset int
	Length int
}

func (WordEvent) isEvent() {}

// SpeakStarted is published when the worker begins synthesizing a command.
type SpeakStarted struct{}

func (SpeakStarted) isEvent() {}

// SpeakFinished is published when synthesis and playback of a command have
// completed. Err is nil on success.
type SpeakFinished struct {
	Err error
}

func (SpeakFinished) isEvent() {}
