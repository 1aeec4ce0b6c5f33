package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
)

const chooserChromeHeight = 4 // header, filter line, spacing, status bar

type filterState int

const (
	unfiltered filterState = iota
	filtering
	filterApplied
)

// chooserEntry is one discovered document in the file listing.
type chooserEntry struct {
	path    string
	note    string
	modtime time.Time
}

// chooserModel is the file listing shown when sotto is launched on a
// directory. Files stream in from gitcha while the spinner runs; the list is
// fuzzy-filterable.
type chooserModel struct {
	common *commonModel

	entries  []chooserEntry
	filtered []chooserEntry

	cursor      int
	windowStart int

	filterState filterState
	filterInput textinput.Model

	searchDone bool
	spinner    spinner.Model
}

func newChooserModel(common *commonModel) chooserModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(fuchsia)

	return chooserModel{
		common:      common,
		spinner:     sp,
		filterInput: ti,
	}
}

func (m *chooserModel) addEntry(e chooserEntry) {
	m.entries = append(m.entries, e)
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].modtime.After(m.entries[j].modtime)
	})
	m.applyFilter()
}

// visible is the list the cursor moves over: filtered when a filter is
// active, everything otherwise.
func (m chooserModel) visible() []chooserEntry {
	if m.filterState != unfiltered {
		return m.filtered
	}
	return m.entries
}

func (m *chooserModel) applyFilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	if query == "" {
		m.filtered = m.entries
	} else {
		notes := make([]string, len(m.entries))
		for i, e := range m.entries {
			notes[i] = e.note
		}
		matches := fuzzy.Find(query, notes)
		m.filtered = make([]chooserEntry, 0, len(matches))
		for _, match := range matches {
			m.filtered = append(m.filtered, m.entries[match.Index])
		}
	}
	if m.cursor >= len(m.visible()) {
		m.cursor = max(0, len(m.visible())-1)
	}
	m.clampWindow()
}

func (m *chooserModel) moveCursor(delta int) {
	n := len(m.visible())
	if n == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	m.clampWindow()
}

func (m *chooserModel) clampWindow() {
	h := m.listHeight()
	if m.cursor < m.windowStart {
		m.windowStart = m.cursor
	}
	if m.cursor >= m.windowStart+h {
		m.windowStart = m.cursor - h + 1
	}
	if m.windowStart < 0 {
		m.windowStart = 0
	}
}

func (m chooserModel) listHeight() int {
	return max(1, m.common.height-chooserChromeHeight)
}

func (m chooserModel) update(msg tea.Msg) (chooserModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filterState == filtering {
			switch msg.String() {
			case "enter":
				m.filterState = filterApplied
				m.filterInput.Blur()
				if strings.TrimSpace(m.filterInput.Value()) == "" {
					m.resetFilter()
				}
				return m, nil
			case "esc":
				m.resetFilter()
				return m, nil
			default:
				var cmd tea.Cmd
				m.filterInput, cmd = m.filterInput.Update(msg)
				m.applyFilter()
				return m, cmd
			}
		}

		switch msg.String() {
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "pgup", "b":
			m.moveCursor(-m.listHeight())
		case "pgdown", "f":
			m.moveCursor(m.listHeight())
		case "home", "g":
			m.cursor = 0
			m.clampWindow()
		case "end", "G":
			m.cursor = max(0, len(m.visible())-1)
			m.clampWindow()
		case "/":
			m.filterState = filtering
			m.filterInput.SetValue("")
			m.applyFilter()
			return m, m.filterInput.Focus()
		case "esc":
			if m.filterState == filterApplied {
				m.resetFilter()
			}
		case "enter":
			items := m.visible()
			if len(items) == 0 {
				return m, nil
			}
			return m, loadDocument(items[m.cursor].path, m.common.cwd)
		}

	case spinner.TickMsg:
		if !m.searchDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *chooserModel) resetFilter() {
	m.filterState = unfiltered
	m.filterInput.SetValue("")
	m.filterInput.Blur()
	m.applyFilter()
}

func (m chooserModel) view() string {
	var b strings.Builder

	b.WriteString("\n  " + logoView())
	if !m.searchDone {
		b.WriteString(" " + m.spinner.View() + subtleStyle(" Looking for documents..."))
	}
	b.WriteString("\n\n")

	if m.filterState != unfiltered {
		b.WriteString("  " + m.filterInput.View() + "\n\n")
	}

	items := m.visible()
	if len(items) == 0 {
		if m.searchDone {
			b.WriteString(subtleStyle("  No documents found."))
		}
		return b.String()
	}

	h := m.listHeight()
	end := min(m.windowStart+h, len(items))
	for i := m.windowStart; i < end; i++ {
		e := items[i]
		line := fmt.Sprintf("%s %s", e.note, chooserTimeStyle(humanize.Time(e.modtime)))
		if i == m.cursor && m.filterState != filtering {
			b.WriteString(chooserSelectedStyle("> " + line))
		} else {
			b.WriteString(chooserItemStyle(line))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n" + subtleStyle("  enter: open  /: filter  q: quit"))
	return b.String()
}
