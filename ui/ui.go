// Package ui provides the terminal UI for sotto: a document chooser, the
// reading view with word highlighting, and the confusable-letter palette.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/sotto/speech"
	"github.com/muesli/gitcha"
)

const (
	statusMessageTimeout = time.Second * 3
	ellipsis             = "…"
)

var markdownExtensions = []string{
	"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown",
}

// NewProgram returns a new Tea program wired to the speech bridge. When
// content is non-empty (stdin, URLs) it is shown directly; otherwise cfg.Path
// decides between the chooser and the reader.
func NewProgram(cfg Config, content string, bridge *speech.Bridge, worker *speech.Worker) *tea.Program {
	log.Debug("starting sotto", "engine", cfg.Engine, "path", cfg.Path)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, content, bridge, worker)
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	initLocalFileSearchMsg struct {
		cwd string
		ch  chan gitcha.SearchResult
	}
	foundLocalFileMsg       gitcha.SearchResult
	localFileSearchFinished struct{}
	statusMessageTimeoutMsg struct{}
)

// state is the top-level application state.
type state int

const (
	stateShowChooser state = iota
	stateShowReader
)

func (s state) String() string {
	return map[state]string{
		stateShowChooser: "showing file listing",
		stateShowReader:  "showing document",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	cwd    string
	width  int
	height int

	bridge *speech.Bridge
	worker *speech.Worker

	// Set once quit has been requested; the program exits only after the
	// worker acknowledges shutdown.
	quitting bool
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	chooser chooserModel
	reader  readerModel

	// Channel that receives paths to local markdown files
	// (via the github.com/muesli/gitcha package)
	localFileFinder chan gitcha.SearchResult
}

func newModel(cfg Config, content string, bridge *speech.Bridge, worker *speech.Worker) tea.Model {
	cwd, _ := os.Getwd()
	common := commonModel{
		cfg:    cfg,
		cwd:    cwd,
		bridge: bridge,
		worker: worker,
	}

	m := model{
		common:  &common,
		state:   stateShowChooser,
		chooser: newChooserModel(&common),
		reader:  newReaderModel(&common),
	}

	if content != "" {
		m.state = stateShowReader
		m.reader.setDocument(newDocument("", []byte(content), true))
		return m
	}

	path := cfg.Path
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		log.Error("unable to stat file", "file", path, "error", err)
		m.fatalErr = err
		return m
	}
	if !info.IsDir() {
		m.state = stateShowReader
	}

	return m
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	cmds := []tea.Cmd{drainTick()}

	switch m.state {
	case stateShowChooser:
		cmds = append(cmds, m.chooser.spinner.Tick, findLocalFiles(*m.common))
	case stateShowReader:
		if m.common.cfg.Path != "" {
			cmds = append(cmds, loadDocument(m.common.cfg.Path, m.common.cwd))
		}
	}

	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been a fatal error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, awaitShutdownAndQuit(m.common)
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			// pass through if we're editing the filter
			if m.state == stateShowChooser && m.chooser.filterState == filtering {
				break
			}
			return m.quit()

		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			return m.quit()

		case "esc":
			if m.state == stateShowReader && m.reader.focus == focusPalette {
				m.reader.focus = focusReader
				m.reader.palette.focused = false
				return m, nil
			}
			if m.state == stateShowReader {
				m.state = stateShowChooser
				m.reader.unload()
				if len(m.chooser.entries) == 0 {
					return m, tea.Batch(m.chooser.spinner.Tick, findLocalFiles(*m.common))
				}
				return m, nil
			}

		case "ctrl+z":
			return m, tea.Suspend
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.reader.setSize(msg.Width, msg.Height)
		m.chooser.clampWindow()

	// The recurring bridge poll: apply everything the worker produced
	// since the last tick, in order, then re-arm.
	case drainTickMsg:
		for _, ev := range m.common.bridge.DrainEvents() {
			switch ev := ev.(type) {
			case speech.SpeakStarted:
				cmds = append(cmds, m.reader.setReading(true))
			case speech.WordEvent:
				m.reader.highlightWord(ev.Offset, ev.Length)
			case speech.SpeakFinished:
				cmds = append(cmds, m.reader.setReading(false))
				if ev.Err != nil {
					log.Error("speech failed", "error", ev.Err)
					cmds = append(cmds, m.reader.showStatusMessage("Speech failed: "+ev.Err.Error()))
				}
			}
		}
		cmds = append(cmds, drainTick())
		return m, tea.Batch(cmds...)

	case workerDoneMsg:
		return m, tea.Quit

	case docLoadedMsg:
		m.state = stateShowReader
		if cmd := m.reader.setDocument(document(msg)); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case initLocalFileSearchMsg:
		m.localFileFinder = msg.ch
		m.common.cwd = msg.cwd
		cmds = append(cmds, findNextLocalFile(m))

	case foundLocalFileMsg:
		res := gitcha.SearchResult(msg)
		m.chooser.addEntry(chooserEntry{
			path:    res.Path,
			note:    stripAbsolutePath(res.Path, m.common.cwd),
			modtime: res.Info.ModTime(),
		})
		cmds = append(cmds, findNextLocalFile(m))

	case localFileSearchFinished:
		m.chooser.searchDone = true
		log.Debug("local file search finished", "files", len(m.chooser.entries))

	case errMsg:
		if m.state == stateShowReader && m.reader.doc.text != "" {
			cmds = append(cmds, m.reader.showStatusMessage("Error: "+msg.Error()))
		} else {
			m.fatalErr = msg.err
		}
		return m, tea.Batch(cmds...)
	}

	// Process children
	switch m.state {
	case stateShowChooser:
		newChooserModel, cmd := m.chooser.update(msg)
		m.chooser = newChooserModel
		cmds = append(cmds, cmd)

	case stateShowReader:
		newReaderModel, cmd := m.reader.update(msg)
		m.reader = newReaderModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// quit starts the shutdown handshake. The status bar shows that we're
// waiting; the program exits on workerDoneMsg.
func (m model) quit() (tea.Model, tea.Cmd) {
	if m.common.quitting {
		return m, nil
	}
	m.common.quitting = true
	return m, awaitShutdown(m.common.worker)
}

func awaitShutdownAndQuit(common *commonModel) tea.Cmd {
	return tea.Sequence(awaitShutdown(common.worker), tea.Quit)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state { //nolint:exhaustive
	case stateShowReader:
		return m.reader.View()
	default:
		return m.chooser.view()
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle("ERROR"),
		err,
		subtleStyle(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func findLocalFiles(m commonModel) tea.Cmd {
	return func() tea.Msg {
		log.Info("findLocalFiles")
		var (
			cwd = m.cfg.Path
			err error
		)

		if cwd == "" {
			cwd, err = os.Getwd()
		} else {
			var info os.FileInfo
			info, err = os.Stat(cwd)
			if err == nil && info.IsDir() {
				cwd, err = filepath.Abs(cwd)
			}
		}

		// Note that this is one error check for both cases above
		if err != nil {
			log.Error("error finding local files", "error", err)
			return errMsg{err}
		}

		log.Debug("local directory is", "cwd", cwd)

		// Switch between FindFiles and FindAllFiles to bypass .gitignore rules
		var ch chan gitcha.SearchResult
		if m.cfg.ShowAllFiles {
			ch, err = gitcha.FindAllFilesExcept(cwd, markdownExtensions, nil)
		} else {
			ch, err = gitcha.FindFilesExcept(cwd, markdownExtensions, ignorePatterns(m))
		}

		if err != nil {
			log.Error("error finding local files", "error", err)
			return errMsg{err}
		}

		return initLocalFileSearchMsg{ch: ch, cwd: cwd}
	}
}

func findNextLocalFile(m model) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-m.localFileFinder
		if ok {
			// Okay now find the next one
			return foundLocalFileMsg(res)
		}
		// We're done
		log.Debug("local file search finished")
		return localFileSearchFinished{}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

func ignorePatterns(m commonModel) []string {
	return []string{
		filepath.Join(m.cfg.Gopath, "pkg"),
		"node_modules",
		".*",
	}
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
