// Package confusion holds the reference data behind the letter palette:
// glyphs that dyslexic readers commonly mistake for one another, grouped so
// each confusable set can be rendered in its own color.
package confusion

// Groups lists the confusable sets. Glyphs in the same group look alike in
// many typefaces and are frequent swap victims; everything not listed here
// is rendered in the neutral color.
var Groups = [][]rune{
	{'I', 'l', '1'},
	{'O', '0', 'o'},
	{'B', '8'},
	{'S', '5'},
	{'Z', '2'},
	{'m', 'r', 'n'},
}

// GroupColors are the default per-group colors, indexed like Groups. The
// exact values are cosmetic; what matters is that glyphs within a group
// share one and groups differ.
var GroupColors = []string{
	"#FF5F87", // I l 1
	"#00AFFF", // O 0 o
	"#AFFF00", // B 8
	"#FFAF00", // S 5
	"#D787FF", // Z 2
	"#00D7AF", // m r n
}

// NeutralColor is used for glyphs outside every group.
const NeutralColor = "#7D7D7D"

var groupOf = buildIndex()

func buildIndex() map[rune]int {
	idx := make(map[rune]int)
	for i, group := range Groups {
		for _, r := range group {
			idx[r] = i
		}
	}
	return idx
}

// GroupOf returns the group index for r, or -1 when r belongs to no
// confusable group.
func GroupOf(r rune) int {
	if i, ok := groupOf[r]; ok {
		return i
	}
	return -1
}

// ColorOf returns the display color for r: its group color, or the neutral
// color for ungrouped glyphs.
func ColorOf(r rune) string {
	if i := GroupOf(r); i >= 0 {
		return GroupColors[i]
	}
	return NeutralColor
}

// Glyphs returns the full palette contents in display order: uppercase,
// lowercase, then digits.
func Glyphs() []rune {
	glyphs := make([]rune, 0, 62)
	for r := 'A'; r <= 'Z'; r++ {
		glyphs = append(glyphs, r)
	}
	for r := 'a'; r <= 'z'; r++ {
		glyphs = append(glyphs, r)
	}
	for r := '0'; r <= '9'; r++ {
		glyphs = append(glyphs, r)
	}
	return glyphs
}
