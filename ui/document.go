package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/sotto/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// document is what the reader displays and what the worker speaks. The text
// field is the single source of truth for word offsets: it is shown verbatim
// in the viewport and snapshotted verbatim into speak commands, so a
// WordEvent offset indexes into it directly.
type document struct {
	localPath string // empty for stdin and URLs
	note      string
	modtime   time.Time
	text      string // NFC-normalized plain text
}

type docLoadedMsg document

func newDocument(note string, raw []byte, markdown bool) document {
	body := utils.RemoveFrontmatter(raw)
	var text string
	if markdown {
		text = extractPlainText(body)
	} else {
		text = strings.TrimSpace(string(body))
	}
	return document{note: note, text: norm.NFC.String(text)}
}

// loadDocument reads and prepares a local file off the event loop.
func loadDocument(path, cwd string) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Error("unable to read file", "file", path, "error", err)
			return errMsg{err}
		}
		doc := newDocument(stripAbsolutePath(path, cwd), raw, utils.IsMarkdownFile(path))
		doc.localPath = path
		if info, err := os.Stat(path); err == nil {
			doc.modtime = info.ModTime()
		}
		log.Debug("document loaded", "file", path, "bytes", len(doc.text))
		return docLoadedMsg(doc)
	}
}

// extractPlainText flattens markdown to readable plain text. Inline
// formatting is dropped, code blocks and link destinations are skipped, and
// block elements are separated by blank lines. The result is what gets
// spoken, so it should sound like the document reads.
func extractPlainText(source []byte) string {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch n.Kind() {
			case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML:
				return ast.WalkSkipChildren, nil
			}
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
				if t.HardLineBreak() {
					buf.WriteByte('\n')
				} else if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			}
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindParagraph, ast.KindHeading, ast.KindBlockquote:
			buf.WriteString("\n\n")
		case ast.KindListItem:
			buf.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(squeezeBlankLines(buf.String()))
}

// squeezeBlankLines caps runs of newlines at two, so block separation never
// produces more than one blank line.
func squeezeBlankLines(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	run := 0
	for _, r := range s {
		if r == '\n' {
			run++
			if run > 2 {
				continue
			}
		} else {
			run = 0
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripAbsolutePath(fullPath, cwd string) string {
	fp, _ := filepath.EvalSymlinks(fullPath)
	cp, _ := filepath.EvalSymlinks(cwd)
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}

func (d document) dir() string {
	return filepath.Dir(d.localPath)
}
