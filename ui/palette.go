package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/sotto/internal/confusion"
)

const paletteCellWidth = 3

// paletteModel is the fixed reference strip of confusable glyphs under the
// reader. Cells sharing a confusion group share a color; enter speaks the
// glyph under the cursor, without word events.
type paletteModel struct {
	glyphs  []rune
	cursor  int
	width   int
	focused bool
}

func newPaletteModel() paletteModel {
	return paletteModel{glyphs: confusion.Glyphs()}
}

func (m *paletteModel) setWidth(w int) {
	m.width = w
}

// perRow is how many cells fit on one palette row at the current width.
func (m paletteModel) perRow() int {
	n := m.width / paletteCellWidth
	if n < 1 {
		n = 1
	}
	return n
}

// height is the number of rendered palette rows.
func (m paletteModel) height() int {
	per := m.perRow()
	return (len(m.glyphs) + per - 1) / per
}

// selected returns the glyph under the cursor.
func (m paletteModel) selected() string {
	return string(m.glyphs[m.cursor])
}

func (m paletteModel) update(msg tea.KeyMsg) paletteModel {
	per := m.perRow()
	switch msg.String() {
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.glyphs)-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor-per >= 0 {
			m.cursor -= per
		}
	case "down", "j":
		if m.cursor+per < len(m.glyphs) {
			m.cursor += per
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.glyphs) - 1
	}
	return m
}

// cellAt maps a terminal click position within the palette to a glyph index.
// Returns -1 when the position falls outside the grid.
func (m paletteModel) cellAt(x, row int) int {
	col := x / paletteCellWidth
	if col >= m.perRow() {
		return -1
	}
	i := row*m.perRow() + col
	if i < 0 || i >= len(m.glyphs) {
		return -1
	}
	return i
}

func (m paletteModel) view() string {
	per := m.perRow()
	var b strings.Builder
	for i, g := range m.glyphs {
		if i > 0 && i%per == 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.cell(i, g))
	}
	return b.String()
}

func (m paletteModel) cell(i int, g rune) string {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(confusion.ColorOf(g)))
	if m.focused && i == m.cursor {
		s = s.Inherit(paletteCursorStyle)
	}
	return s.Render(" " + string(g) + " ")
}
