package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/sotto/speech"
)

// How often the event loop drains the bridge. Comfortably under the shortest
// plausible word duration, so highlights never lag noticeably.
const drainInterval = time.Millisecond * 30

type (
	drainTickMsg  time.Time
	workerDoneMsg struct{}
)

// drainTick re-arms the bridge poll. It runs for the life of the program.
func drainTick() tea.Cmd {
	return tea.Tick(drainInterval, func(t time.Time) tea.Msg {
		return drainTickMsg(t)
	})
}

// speak snapshots text into a command and queues it for the worker. The
// bridge is unbounded, so this never blocks the event loop.
func speak(bridge *speech.Bridge, text string, wordEvents bool) tea.Cmd {
	return func() tea.Msg {
		cmd := speech.SpeakCommand{Text: text, EmitWordEvents: wordEvents}
		if err := bridge.SendCommand(cmd); err != nil {
			log.Error("speak command not queued", "error", err)
			return errMsg{err}
		}
		return nil
	}
}

// awaitShutdown sends the shutdown sentinel and blocks until the worker has
// drained its queue and released the engine. The program must not quit
// before this returns.
func awaitShutdown(worker *speech.Worker) tea.Cmd {
	return func() tea.Msg {
		worker.Shutdown()
		return workerDoneMsg{}
	}
}
