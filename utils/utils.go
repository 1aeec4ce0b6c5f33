// Package utils provides small helpers shared by the CLI and the TUI.
package utils

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
	"github.com/muesli/termenv"
)

var markdownExtensions = map[string]bool{
	".md":       true,
	".mdown":    true,
	".mkdn":     true,
	".mkd":      true,
	".markdown": true,
}

// ExpandPath expands a leading tilde. Paths that fail to expand are
// returned unchanged.
func ExpandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// RemoveFrontmatter strips a leading YAML frontmatter block, fences
// included.
func RemoveFrontmatter(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return content
	}
	end := bytes.Index(content[4:], []byte("\n---"))
	if end < 0 {
		return content
	}
	rest := content[4+end+len("\n---"):]
	// The closing fence owns the remainder of its line.
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	} else {
		rest = nil
	}
	return rest
}

// IsMarkdownFile reports whether path has a markdown extension. Extension
// matching is all we have for stdin and URLs.
func IsMarkdownFile(path string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(path))]
}

// GlamourStyle resolves a style name to a renderer option. Code documents
// get the style's margin stripped so the block spans the full width.
func GlamourStyle(style string, isCode bool) glamour.TermRendererOption {
	if !isCode {
		if style == styles.AutoStyle {
			return glamour.WithAutoStyle()
		}
		return glamour.WithStylePath(style)
	}

	var cfg ansi.StyleConfig
	switch style {
	case styles.AutoStyle:
		if termenv.HasDarkBackground() {
			cfg = styles.DarkStyleConfig
		} else {
			cfg = styles.LightStyleConfig
		}
	case styles.DarkStyle:
		cfg = styles.DarkStyleConfig
	case styles.LightStyle:
		cfg = styles.LightStyleConfig
	case styles.PinkStyle:
		cfg = styles.PinkStyleConfig
	case styles.AsciiStyle:
		cfg = styles.ASCIIStyleConfig
	case styles.DraculaStyle:
		cfg = styles.DraculaStyleConfig
	case styles.TokyoNightStyle:
		cfg = styles.TokyoNightStyleConfig
	case styles.NoTTYStyle:
		cfg = styles.NoTTYStyleConfig
	default:
		return glamour.WithStylePath(style)
	}

	var margin uint
	cfg.Document.Margin = &margin
	cfg.CodeBlock.Margin = &margin
	return glamour.WithStyles(cfg)
}

// WrapCodeBlock fences content as a code block, deriving the language from
// the file extension.
func WrapCodeBlock(content, ext string) string {
	lang := strings.TrimPrefix(ext, ".")
	return "```" + lang + "\n" + content + "\n```"
}
