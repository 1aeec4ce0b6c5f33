package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestWrapRows(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		rows  []string
	}{
		{
			name:  "fits on one row",
			text:  "hello world",
			width: 20,
			rows:  []string{"hello world"},
		},
		{
			name:  "breaks at word boundary",
			text:  "hello world",
			width: 8,
			rows:  []string{"hello", "world"},
		},
		{
			name:  "exact fit then remainder",
			text:  "hello world foo",
			width: 11,
			rows:  []string{"hello world", "foo"},
		},
		{
			name:  "hard newlines always break",
			text:  "alpha\nbeta",
			width: 40,
			rows:  []string{"alpha", "beta"},
		},
		{
			name:  "blank line keeps a row",
			text:  "a\n\nb",
			width: 40,
			rows:  []string{"a", "", "b"},
		},
		{
			name:  "oversized word splits mid-word",
			text:  "abcdef",
			width: 3,
			rows:  []string{"abc", "def"},
		},
		{
			name:  "multibyte runes stay intact",
			text:  "héllo wörld",
			width: 6,
			rows:  []string{"héllo", "wörld"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spans := wrapRows(tc.text, tc.width)
			if len(spans) != len(tc.rows) {
				t.Fatalf("got %d rows, want %d: %+v", len(spans), len(tc.rows), spans)
			}
			for i, span := range spans {
				got := tc.text[span.start:span.end]
				if got != tc.rows[i] {
					t.Errorf("row %d: got %q, want %q", i, got, tc.rows[i])
				}
			}
		})
	}
}

func TestWrapRowsSpansCoverEveryWord(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	spans := wrapRows(text, 10)

	// Every non-space byte must land in exactly one span.
	covered := make([]int, len(text))
	for _, span := range spans {
		for i := span.start; i < span.end; i++ {
			covered[i]++
		}
	}
	for i, c := range covered {
		if text[i] == ' ' {
			continue
		}
		if c != 1 {
			t.Errorf("byte %d (%q) covered %d times", i, text[i], c)
		}
	}
}

func newTestReader(t *testing.T, text string, width, height int) *readerModel {
	t.Helper()
	common := &commonModel{width: width, height: height}
	m := newReaderModel(common)
	m.setSize(width, height)
	m.setDocument(document{note: "test", text: text})
	return &m
}

func TestHighlightWord(t *testing.T) {
	m := newTestReader(t, "hello world", 200, 30)

	m.highlightWord(0, 5)
	if m.hlStart != 0 || m.hlEnd != 5 {
		t.Fatalf("highlight = [%d,%d), want [0,5)", m.hlStart, m.hlEnd)
	}

	// A new event replaces the old highlight; there is never more than one.
	m.highlightWord(6, 5)
	if m.hlStart != 6 || m.hlEnd != 11 {
		t.Fatalf("highlight = [%d,%d), want [6,11)", m.hlStart, m.hlEnd)
	}
}

func TestHighlightWordOutOfRange(t *testing.T) {
	m := newTestReader(t, "hello world", 200, 30)
	m.highlightWord(0, 5)

	tests := []struct {
		name           string
		offset, length int
	}{
		{"past end", 7, 50},
		{"negative offset", -1, 3},
		{"negative length", 2, -1},
		{"offset beyond text", 100, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m.highlightWord(tc.offset, tc.length)
			if m.hlStart != 0 || m.hlEnd != 5 {
				t.Errorf("highlight moved to [%d,%d); out-of-range events must be no-ops", m.hlStart, m.hlEnd)
			}
		})
	}
}

func TestHighlightWordZeroLengthClears(t *testing.T) {
	m := newTestReader(t, "hello world", 200, 30)
	m.highlightWord(0, 5)

	// An in-bounds zero-length event means "nothing is being spoken": the
	// previous word's highlight must not linger.
	m.highlightWord(6, 0)
	if m.hlStart != 0 || m.hlEnd != 0 {
		t.Fatalf("highlight survived a zero-length event: [%d,%d)", m.hlStart, m.hlEnd)
	}
}

func TestClearHighlight(t *testing.T) {
	m := newTestReader(t, "hello world", 200, 30)
	m.highlightWord(6, 5)
	m.clearHighlight()
	if m.hlStart != 0 || m.hlEnd != 0 {
		t.Fatalf("highlight not cleared: [%d,%d)", m.hlStart, m.hlEnd)
	}
	if !strings.Contains(m.renderRows(), "hello world") {
		t.Error("document text missing after clearing highlight")
	}
}

func TestHighlightAcrossWrappedRows(t *testing.T) {
	// "stretch" wraps as "stre" / "tch" at width 4, so a single word event
	// must style fragments on two rows. Styles are stripped without a color
	// profile, so force one for the assertion.
	lipgloss.SetColorProfile(termenv.TrueColor)
	m := newTestReader(t, "stretch", 4, 30)
	if len(m.rows) < 2 {
		t.Fatalf("expected wrapped rows, got %+v", m.rows)
	}
	m.highlightWord(0, 7)

	for _, row := range m.rows {
		rendered := m.renderRow(row)
		if rendered == m.doc.text[row.start:row.end] && row.start < row.end {
			t.Errorf("row [%d,%d) not styled", row.start, row.end)
		}
	}
}

func TestSetReadingAppliesDeferredReload(t *testing.T) {
	m := newTestReader(t, "hello world", 200, 30)
	m.doc.localPath = "/tmp/nonexistent.md"

	m.setReading(true)
	if !m.reading {
		t.Fatal("reading flag not set")
	}

	m.pendingReload = true
	cmd := m.setReading(false)
	if m.reading {
		t.Fatal("reading flag not cleared")
	}
	if cmd == nil {
		t.Fatal("expected a reload command once reading finished")
	}
	if m.pendingReload {
		t.Fatal("pendingReload should be consumed")
	}
}

func TestWatchFileWithoutWatcher(t *testing.T) {
	m := newTestReader(t, "hello world", 200, 30)

	// Watcher creation can fail (fd limits, exotic platforms); file watching
	// then degrades to manual reloads instead of crashing.
	if m.watcher != nil {
		m.watcher.Close() //nolint:errcheck
	}
	m.watcher = nil
	m.doc.localPath = "/tmp/doc.md"

	if msg := m.watchFile(); msg != nil {
		t.Errorf("watchFile without a watcher returned %v, want nil", msg)
	}
	m.unwatchFile()
}

func TestScrollToHighlightBringsRowIntoView(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "line"
	}
	text := strings.Join(lines, "\n")

	m := newTestReader(t, text, 200, 12)
	if m.viewport.Height <= 0 || m.viewport.Height >= 50 {
		t.Skipf("viewport height %d not useful for this test", m.viewport.Height)
	}

	// Highlight a word far below the visible window.
	target := m.rows[40]
	m.highlightWord(target.start, target.end-target.start)
	if 40 < m.viewport.YOffset || 40 >= m.viewport.YOffset+m.viewport.Height {
		t.Errorf("row 40 not in view: offset=%d height=%d", m.viewport.YOffset, m.viewport.Height)
	}
}
