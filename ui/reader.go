package ui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/dgnsrekt/sotto/utils"
	"github.com/fsnotify/fsnotify"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

const statusBarHeight = 1

var readerHelpHeight int

type (
	reloadMsg         struct{}
	editorFinishedMsg struct{ err error }
)

type readerState int

const (
	readerStateBrowse readerState = iota
	readerStateStatusMessage
)

type focusArea int

const (
	focusReader focusArea = iota
	focusPalette
)

// rowSpan is one soft-wrapped display row together with its byte span in the
// source text. The spans are what make word highlighting possible: a
// WordEvent offset is located by intersecting it with these ranges.
type rowSpan struct {
	start, end int // [start, end) in document text bytes
}

// readerModel displays a document, highlights the spoken word, and hosts the
// letter palette strip.
type readerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    readerState
	showHelp bool

	doc  document
	rows []rowSpan

	// Current highlight span; hlEnd == 0 means no highlight.
	hlStart, hlEnd int

	focus   focusArea
	palette paletteModel

	reading       bool
	pendingReload bool
	spinner       spinner.Model

	statusMessage      string
	statusMessageTimer *time.Timer

	watcher *fsnotify.Watcher
}

func newReaderModel(common *commonModel) readerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	m := readerModel{
		common:   common,
		state:    readerStateBrowse,
		viewport: viewport.New(0, 0),
		palette:  newPaletteModel(),
		spinner:  sp,
	}
	m.initWatcher()
	return m
}

func (m *readerModel) setSize(w, h int) {
	m.palette.setWidth(w)
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight - m.palette.height()

	if m.showHelp {
		if readerHelpHeight == 0 {
			readerHelpHeight = strings.Count(m.helpView(), "\n")
		}
		m.viewport.Height -= (statusBarHeight + readerHelpHeight)
	}
	if m.viewport.Height < 0 {
		m.viewport.Height = 0
	}

	if m.doc.text != "" {
		m.rows = wrapRows(m.doc.text, w)
		m.viewport.SetContent(m.renderRows())
	}
}

// setDocument replaces the displayed document and resets reading state. The
// previous file, if any, is unwatched.
func (m *readerModel) setDocument(doc document) tea.Cmd {
	if m.doc.localPath != "" && m.doc.localPath != doc.localPath {
		m.unwatchFile()
	}
	m.doc = doc
	m.hlStart, m.hlEnd = 0, 0
	m.pendingReload = false
	m.rows = wrapRows(doc.text, m.viewport.Width)
	m.viewport.SetContent(m.renderRows())
	m.viewport.YOffset = 0

	if doc.localPath != "" {
		return m.watchFile
	}
	return nil
}

func (m *readerModel) unload() {
	if m.showHelp {
		m.toggleHelp()
	}
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = readerStateBrowse
	m.focus = focusReader
	m.hlStart, m.hlEnd = 0, 0
	m.pendingReload = false
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
	if m.doc.localPath != "" {
		m.unwatchFile()
	}
	m.doc = document{}
	m.rows = nil
}

func (m *readerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

func (m *readerModel) showStatusMessage(msg string) tea.Cmd {
	m.state = readerStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// setReading flips the reading indicator. Deferred reloads are applied once
// speech finishes, keeping the text immutable while offsets are live.
func (m *readerModel) setReading(reading bool) tea.Cmd {
	m.reading = reading
	if reading {
		return m.spinner.Tick
	}
	m.clearHighlight()
	if m.pendingReload && m.doc.localPath != "" {
		m.pendingReload = false
		return loadDocument(m.doc.localPath, m.common.cwd)
	}
	return nil
}

func (m readerModel) update(msg tea.Msg) (readerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			row := msg.Y - m.viewport.Height
			if i := m.palette.cellAt(msg.X, row); row >= 0 && i >= 0 {
				m.palette.cursor = i
				m.focus = focusPalette
				m.palette.focused = true
				return m, speak(m.common.bridge, m.palette.selected(), false)
			}
		}

	case spinner.TickMsg:
		if m.reading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case reloadMsg:
		if m.reading {
			m.pendingReload = true
			log.Debug("reload deferred until speech finishes", "file", m.doc.localPath)
			return m, nil
		}
		return m, loadDocument(m.doc.localPath, m.common.cwd)

	case editorFinishedMsg:
		if msg.err != nil {
			return m, m.showStatusMessage("Editor failed: " + msg.err.Error())
		}
		return m, loadDocument(m.doc.localPath, m.common.cwd)

	case statusMessageTimeoutMsg:
		m.state = readerStateBrowse
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m readerModel) handleKey(msg tea.KeyMsg) (readerModel, tea.Cmd) {
	if m.focus == focusPalette {
		switch msg.String() {
		case "tab":
			m.focus = focusReader
			m.palette.focused = false
			return m, nil
		case "enter":
			return m, speak(m.common.bridge, m.palette.selected(), false)
		case "left", "right", "up", "down", "h", "j", "k", "l", "home", "end", "g", "G":
			m.palette = m.palette.update(msg)
			return m, nil
		}
	}

	switch msg.String() {
	case "tab":
		m.focus = focusPalette
		m.palette.focused = true
		return m, nil

	case " ":
		if m.reading {
			return m, m.showStatusMessage("Already reading")
		}
		if strings.TrimSpace(m.doc.text) == "" {
			return m, nil
		}
		return m, speak(m.common.bridge, m.doc.text, true)

	case "home", "g":
		m.viewport.GotoTop()

	case "end", "G":
		m.viewport.GotoBottom()

	case "e":
		if m.doc.localPath == "" {
			break
		}
		if m.reading {
			return m, m.showStatusMessage("Cannot edit while reading")
		}
		if !utils.IsWritable(m.doc.localPath) {
			return m, m.showStatusMessage("File is not writable")
		}
		log.Info("opening editor", "file", m.doc.localPath)
		return m, openEditor(m.doc.localPath)

	case "c":
		// OSC 52 first, native clipboard as fallback
		termenv.Copy(m.doc.text)
		_ = clipboard.WriteAll(m.doc.text)
		return m, m.showStatusMessage("Copied contents")

	case "r":
		if m.doc.localPath == "" {
			break
		}
		if m.reading {
			m.pendingReload = true
			return m, m.showStatusMessage("Reload deferred until reading finishes")
		}
		return m, loadDocument(m.doc.localPath, m.common.cwd)

	case "?":
		m.toggleHelp()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// highlightWord applies the exclusive highlight for a spoken word. A
// zero-length event clears the highlight. Events whose span falls outside
// the current text are stale (the document changed between snapshot and
// playback is prevented elsewhere, but a late event after esc is not) and
// are skipped silently.
func (m *readerModel) highlightWord(offset, length int) {
	end := offset + length
	if offset < 0 || length < 0 || end > len(m.doc.text) {
		log.Debug("word event out of range", "offset", offset, "length", length, "text", len(m.doc.text))
		return
	}
	if length == 0 {
		m.clearHighlight()
		return
	}
	m.hlStart, m.hlEnd = offset, end
	m.viewport.SetContent(m.renderRows())
	m.scrollToHighlight()
}

func (m *readerModel) clearHighlight() {
	if m.hlEnd == 0 {
		return
	}
	m.hlStart, m.hlEnd = 0, 0
	m.viewport.SetContent(m.renderRows())
}

// scrollToHighlight brings the first highlighted row into the visible window
// if it is outside it.
func (m *readerModel) scrollToHighlight() {
	idx := -1
	for i, row := range m.rows {
		if row.end > m.hlStart && row.start < m.hlEnd || (row.start == row.end && row.start == m.hlStart) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if idx < m.viewport.YOffset || idx >= m.viewport.YOffset+m.viewport.Height {
		offset := idx - m.viewport.Height/3
		if offset < 0 {
			offset = 0
		}
		m.viewport.SetYOffset(offset)
	}
}

func (m readerModel) renderRows() string {
	var b strings.Builder
	for i, row := range m.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderRow(row))
	}
	return b.String()
}

// renderRow styles the part of the row covered by the highlight span, if
// any. A word wrapped across rows gets both fragments styled.
func (m readerModel) renderRow(row rowSpan) string {
	text := m.doc.text[row.start:row.end]
	if m.hlEnd == 0 || m.hlEnd <= row.start || m.hlStart >= row.end {
		return text
	}
	s := max(m.hlStart, row.start) - row.start
	e := min(m.hlEnd, row.end) - row.start
	return text[:s] + highlightStyle(text[s:e]) + text[e:]
}

func (m readerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	fmt.Fprint(&b, m.palette.view()+"\n")
	m.statusBarView(&b)
	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func (m readerModel) statusBarView(b *strings.Builder) {
	showStatusMessage := m.state == readerStateStatusMessage

	logo := logoView()

	percent := math.Max(0, math.Min(1, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*100))

	helpNote := statusBarHelpStyle(" ? Help ")

	var note string
	switch {
	case showStatusMessage:
		note = m.statusMessage
	case m.common.quitting:
		note = "Finishing speech..."
	case m.reading:
		note = m.spinner.View() + "Reading " + m.doc.note
	default:
		note = m.doc.note
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = statusBarMessageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m readerModel) helpView() (s string) {
	col1 := []string{
		"g/home  go to top",
		"G/end   go to bottom",
		"c       copy contents",
		"e       edit this document",
		"r       reload this document",
		"esc     back to files",
		"q       quit",
	}

	s += "\n"
	s += "space    read aloud          " + col1[0] + "\n"
	s += "enter    speak letter        " + col1[1] + "\n"
	s += "tab      focus letters       " + col1[2] + "\n"
	s += "k/↑      up                  " + col1[3] + "\n"
	s += "j/↓      down                " + col1[4] + "\n"
	s += "b/pgup   page up             " + col1[5] + "\n"
	s += "f/pgdn   page down           " + col1[6]

	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// COMMANDS

func openEditor(path string) tea.Cmd {
	cb, err := editor.Cmd("Sotto", path)
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	return tea.ExecProcess(cb, func(err error) tea.Msg {
		return editorFinishedMsg{err}
	})
}

// FILE WATCHING

func (m *readerModel) initWatcher() {
	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
	}
}

func (m *readerModel) watchFile() tea.Msg {
	if m.watcher == nil {
		return nil
	}
	dir := m.doc.dir()

	if err := m.watcher.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		return nil
	}

	log.Info("fsnotify watching dir", "dir", dir)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok || event.Name != m.doc.localPath {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return reloadMsg{}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				continue
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

func (m *readerModel) unwatchFile() {
	if m.watcher == nil {
		return
	}
	dir := m.doc.dir()

	err := m.watcher.Remove(dir)
	if err == nil {
		log.Debug("fsnotify dir unwatched", "dir", dir)
	} else {
		log.Error("fsnotify fail to unwatch dir", "dir", dir, "error", err)
	}
}

// TEXT LAYOUT

// wrapRows soft-wraps text to the given display width and records each
// resulting row's byte span. Hard newlines always break rows; long words
// break at word boundaries when possible and mid-word otherwise.
func wrapRows(text string, width int) []rowSpan {
	if width < 1 {
		width = 1
	}
	var rows []rowSpan
	lineStart := 0
	for {
		rel := strings.IndexByte(text[lineStart:], '\n')
		if rel < 0 {
			rows = append(rows, wrapLine(text, lineStart, len(text), width)...)
			break
		}
		lineEnd := lineStart + rel
		rows = append(rows, wrapLine(text, lineStart, lineEnd, width)...)
		lineStart = lineEnd + 1
	}
	return rows
}

func wrapLine(text string, start, end, width int) []rowSpan {
	if start == end {
		return []rowSpan{{start: start, end: end}}
	}

	var rows []rowSpan
	rowStart := start
	cells := 0
	lastSpace := -1

	for i := rowStart; i < end; {
		r, size := utf8.DecodeRuneInString(text[i:end])
		w := runewidth.RuneWidth(r)

		if cells+w > width && cells > 0 {
			br := i
			if r != ' ' && lastSpace > rowStart {
				br = lastSpace
			}
			rows = append(rows, rowSpan{start: rowStart, end: br})
			rowStart = br
			for rowStart < end && text[rowStart] == ' ' {
				rowStart++
			}
			i = rowStart
			cells = 0
			lastSpace = -1
			continue
		}

		if r == ' ' {
			lastSpace = i
		}
		cells += w
		i += size
	}

	if rowStart < end || len(rows) == 0 {
		rows = append(rows, rowSpan{start: rowStart, end: end})
	}
	return rows
}
