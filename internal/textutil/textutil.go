// Package textutil provides the width-aware string primitives used by the
// layout engine. All widths are terminal display columns, not bytes or runes.
package textutil

import (
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// Ellipsis is appended to truncated text
const Ellipsis = "…"

// tabWidth is the number of spaces a tab expands to in sanitized text
const tabWidth = 4

// Width returns the display width of s, ignoring ANSI escape sequences and
// counting wide runes as two columns.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s so its display width does not exceed width, appending an
// ellipsis when anything was removed. A width of zero yields "", and a
// negative width means unbounded and returns s unchanged.
func Truncate(s string, width int) string {
	if width < 0 {
		return s
	}
	if width == 0 {
		return ""
	}
	if Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// PadRight truncates or pads s with spaces to exactly width columns
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = Truncate(s, width)
	if w := Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Sanitize removes ANSI escape sequences and control characters that would
// corrupt the terminal when file content is echoed. Tabs become spaces and
// carriage returns are dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	if !needsControlStrip(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case r == '\n':
			b.WriteRune(r)
		case r < 0x20, r == 0x7f:
			// drop C0 controls, CR and DEL
		case r >= 0x80 && r < 0xa0:
			// drop C1 controls
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsControlStrip(s string) bool {
	for _, r := range s {
		if (r < 0x20 && r != '\n') || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return true
		}
	}
	return false
}

// SanitizeLines sanitizes text and splits it into lines, dropping a single
// trailing empty line.
func SanitizeLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(Sanitize(s), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Clamp limits v to the inclusive range [lo, hi]. When hi < lo, lo wins.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// ClampIndex limits i to a valid index of a collection of length n, returning
// -1 for an empty collection.
func ClampIndex(i, n int) int {
	if n <= 0 {
		return -1
	}
	return Clamp(i, 0, n-1)
}

// ClampDuration limits d to [lo, hi]
func ClampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts the timestamp shapes that appear in front-matter
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t relative to now ("3 minutes ago"). The zero time
// renders as an empty string.
func FormatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatRawTimestamp parses a front-matter timestamp and formats it relative
// to now. Unparsable values are returned verbatim.
func FormatRawTimestamp(value string, now time.Time) string {
	t, ok := ParseTime(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return FormatTimestamp(t, now)
}

// FormatClock renders t as a wall-clock time for status lines
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}
