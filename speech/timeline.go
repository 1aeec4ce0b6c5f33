package speech

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Word is a whitespace-delimited token with its byte span in the source
// text. Offsets index the exact string handed to the engine, so they can be
// applied to the displayed text without translation.
type Word struct {
	Offset int
	Length int
	Text   string
}

// SplitWords scans text into words. A word is a maximal run of non-space
// runes; all Unicode whitespace separates.
func SplitWords(text string) []Word {
	var words []Word
	start := -1

	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, Word{Offset: start, Length: i - start, Text: text[start:i]})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Offset: start, Length: len(text) - start, Text: text[start:]})
	}

	return words
}

// Natural speaking rate used when no measured clip duration is available.
const baseWordsPerMinute = 150

// EstimateTotal estimates the speaking time of words at a natural rate,
// adjusted for word complexity. Longer average words slow the rate down.
func EstimateTotal(words []Word) time.Duration {
	if len(words) == 0 {
		return 0
	}

	base := time.Duration(float64(len(words)) / baseWordsPerMinute * float64(time.Minute))

	var runes int
	for _, w := range words {
		runes += utf8.RuneCountInString(w.Text)
	}
	complexity := float64(runes) / float64(len(words)) / 5.0
	if complexity < 0.8 {
		complexity = 0.8
	} else if complexity > 1.5 {
		complexity = 1.5
	}

	return time.Duration(float64(base) * complexity)
}

// Timeline maps each word of a spoken clip to its start time. Starts are
// strictly non-decreasing and Starts[0] is always zero.
type Timeline struct {
	Words  []Word
	Starts []time.Duration
	Total  time.Duration
}

// BuildTimeline distributes total across words proportionally to their
// estimated speaking cost. Longer words take longer; words closing a clause
// or sentence get a pause surcharge. When total is zero the natural-rate
// estimate is used instead.
func BuildTimeline(words []Word, total time.Duration) *Timeline {
	if total <= 0 {
		total = EstimateTotal(words)
	}

	tl := &Timeline{
		Words:  words,
		Starts: make([]time.Duration, len(words)),
		Total:  total,
	}
	if len(words) == 0 {
		return tl
	}

	weights := make([]float64, len(words))
	var sum float64
	for i, w := range words {
		weight := 2.0 + float64(utf8.RuneCountInString(w.Text))
		if strings.ContainsAny(lastRune(w.Text), ".!?") {
			weight += 2
		} else if strings.ContainsAny(lastRune(w.Text), ",;:") {
			weight += 1
		}
		weights[i] = weight
		sum += weight
	}

	var acc float64
	for i := range words {
		tl.Starts[i] = time.Duration(acc / sum * float64(total))
		acc += weights[i]
	}

	return tl
}

// WordAt returns the index of the word active at pos, or -1 when pos is
// before the first word or the timeline is empty.
func (t *Timeline) WordAt(pos time.Duration) int {
	if len(t.Words) == 0 || pos < 0 {
		return -1
	}

	// Binary search for the last start <= pos.
	lo, hi := 0, len(t.Starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.Starts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func lastRune(s string) string {
	r, size := utf8.DecodeLastRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(r)
}
