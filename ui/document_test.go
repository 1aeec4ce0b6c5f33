package ui

import (
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "heading and paragraph",
			in:   "# Title\n\nHello *world*.",
			want: "Title\n\nHello world.",
		},
		{
			name: "code block skipped",
			in:   "Before.\n\n```\nfmt.Println(\"hi\")\n```\n\nAfter.",
			want: "Before.\n\nAfter.",
		},
		{
			name: "link keeps label drops target",
			in:   "See [the docs](https://example.com) for more.",
			want: "See the docs for more.",
		},
		{
			name: "list items on their own lines",
			in:   "- first\n- second",
			want: "first\nsecond",
		},
		{
			name: "soft line break becomes a space",
			in:   "one\ntwo",
			want: "one two",
		},
		{
			name: "inline code is kept",
			in:   "Run `sotto` now.",
			want: "Run sotto now.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractPlainText([]byte(tc.in))
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewDocumentNormalizesToNFC(t *testing.T) {
	// Decomposed e + combining acute should come out as a single rune, so
	// that byte offsets are stable no matter how the file was written.
	raw := []byte("café")
	doc := newDocument("note", raw, false)
	if doc.text != "café" {
		t.Fatalf("got %q, want %q", doc.text, "café")
	}
}

func TestNewDocumentStripsFrontmatter(t *testing.T) {
	raw := []byte("---\ntitle: x\n---\n\nBody text.\n")
	doc := newDocument("note", raw, true)
	if doc.text != "Body text." {
		t.Fatalf("got %q, want %q", doc.text, "Body text.")
	}
}

func TestSqueezeBlankLines(t *testing.T) {
	got := squeezeBlankLines("a\n\n\n\nb")
	if got != "a\n\nb" {
		t.Fatalf("got %q, want %q", got, "a\n\nb")
	}
}
