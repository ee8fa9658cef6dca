package workspace

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/gistnote/internal/models"
)

// Extract returns the text between sel.From and sel.To. Positions past the
// end of a line or of the text are clamped; a reversed range is swapped.
func Extract(text string, sel models.Selection) string {
	from := offset(text, sel.From)
	to := offset(text, sel.To)
	if from > to {
		from, to = to, from
	}
	return text[from:to]
}

// offset converts a position to a byte offset into text.
func offset(text string, pos models.Position) int {
	if pos.Line < 0 {
		return 0
	}
	start := 0
	for line := 0; line < pos.Line; line++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			return len(text)
		}
		start += i + 1
	}
	end := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		end = start + i
	}
	off := start
	for ch := 0; ch < pos.Ch && off < end; ch++ {
		_, size := utf8.DecodeRuneInString(text[off:end])
		off += size
	}
	return off
}

// LineRange selects whole lines first..last (1-based, inclusive) without
// the trailing newline of the last line.
func LineRange(first, last int) models.Selection {
	if last < first {
		first, last = last, first
	}
	return models.Selection{
		From: models.Position{Line: first - 1, Ch: 0},
		To:   models.Position{Line: last - 1, Ch: math.MaxInt},
	}
}

// ParseLineRange parses "a:b" (or a single "a") into a whole-line selection.
func ParseLineRange(s string) (models.Selection, error) {
	a, b, found := strings.Cut(s, ":")
	first, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil || first < 1 {
		return models.Selection{}, fmt.Errorf("invalid line range %q", s)
	}
	last := first
	if found {
		last, err = strconv.Atoi(strings.TrimSpace(b))
		if err != nil || last < 1 {
			return models.Selection{}, fmt.Errorf("invalid line range %q", s)
		}
	}
	return LineRange(first, last), nil
}

// ParsePosition parses a zero-based "line:ch" pair.
func ParsePosition(s string) (models.Position, error) {
	a, b, found := strings.Cut(s, ":")
	if !found {
		return models.Position{}, fmt.Errorf("invalid position %q, want line:ch", s)
	}
	line, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil || line < 0 {
		return models.Position{}, fmt.Errorf("invalid position %q", s)
	}
	ch, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil || ch < 0 {
		return models.Position{}, fmt.Errorf("invalid position %q", s)
	}
	return models.Position{Line: line, Ch: ch}, nil
}
