package render

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"

	"github.com/mpjhorner/specdash/internal/render/components"
	"github.com/mpjhorner/specdash/internal/textutil"
)

// MarkdownOptions controls markdown preview coloring
type MarkdownOptions struct {
	// HighlightCode runs fenced blocks that name a language through chroma.
	HighlightCode bool

	// Theme is the chroma style, monokai when empty.
	Theme string
}

var (
	headingLine = regexp.MustCompile(`^#{1,6}\s`)
	listMarker  = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])(\s+)(.*)$`)
	ruleLine    = regexp.MustCompile(`^\s*(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
)

// HighlightMarkdown sanitizes text and colors it line by line: headings, list
// markers, block quotes, horizontal rules and fenced code. A fence line
// toggles code mode for the lines after it.
func HighlightMarkdown(text string, opts MarkdownOptions) []string {
	return highlightMarkdown(DefaultStyles(), textutil.SanitizeLines(text), opts)
}

func highlightMarkdown(s Styles, lines []string, opts MarkdownOptions) []string {
	code := s.line(StyleCode)
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if !strings.HasPrefix(trimmed, "```") && !strings.HasPrefix(trimmed, "~~~") {
			out = append(out, styleMarkdownLine(s, line, trimmed))
			continue
		}

		fence := trimmed[:3]
		lang := ""
		if info := strings.Fields(strings.TrimLeft(trimmed, fence[:1])); len(info) > 0 {
			lang = info[0]
		}
		out = append(out, s.line(StyleMuted).Render(line))

		end := i + 1
		for end < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[end]), fence) {
			end++
		}
		block := lines[i+1 : end]
		out = append(out, highlightBlock(block, lang, opts, code.Render)...)

		if end < len(lines) {
			out = append(out, s.line(StyleMuted).Render(lines[end]))
		}
		i = end
	}

	return out
}

func styleMarkdownLine(s Styles, line, trimmed string) string {
	switch {
	case trimmed == "":
		return ""
	case headingLine.MatchString(trimmed):
		return s.line(StyleHeading).Render(line)
	case ruleLine.MatchString(line):
		return s.line(StyleMuted).Render(line)
	case strings.HasPrefix(trimmed, ">"):
		return s.line(StyleMuted).Italic(true).Render(line)
	}

	if m := listMarker.FindStringSubmatch(line); m != nil {
		return m[1] + s.line(StyleAccent).Render(m[2]) + m[3] + m[4]
	}
	return line
}

// highlightBlock colors the lines of one fenced block. Blocks without a
// language, unknown languages and disabled highlighting use the fixed code
// color.
func highlightBlock(block []string, lang string, opts MarkdownOptions, plain func(...string) string) []string {
	fallback := func() []string {
		out := make([]string, 0, len(block))
		for _, l := range block {
			out = append(out, plain(l))
		}
		return out
	}
	if len(block) == 0 {
		return nil
	}
	if !opts.HighlightCode || lang == "" {
		return fallback()
	}

	theme := opts.Theme
	if theme == "" {
		theme = "monokai"
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, strings.Join(block, "\n"), lang, "terminal256", theme); err != nil {
		return fallback()
	}

	highlighted := strings.Split(buf.String(), "\n")
	if len(highlighted) < len(block) {
		return fallback()
	}
	out := make([]string, 0, len(block))
	for i := range block {
		// keep colors from bleeding into the next row
		out = append(out, highlighted[i]+ansi.ResetStyle)
	}
	return out
}

// HighlightDiff sanitizes git diff output and colors file headers, hunk
// headers, additions and deletions
func HighlightDiff(text string) []string {
	clean := strings.Join(textutil.SanitizeLines(text), "\n")
	return components.NewDiffViewer().RenderLines(components.ParseDiff(clean))
}
