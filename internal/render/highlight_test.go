package render

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansi.Strip(l)
	}
	return out
}

const sampleMarkdown = "# Login flow\n" +
	"\n" +
	"> note\n" +
	"- first\n" +
	"2. second\n" +
	"---\n" +
	"```go\n" +
	"func main() {}\n" +
	"```\n" +
	"done\n"

func TestHighlightMarkdownKeepsText(t *testing.T) {
	for _, code := range []bool{false, true} {
		got := HighlightMarkdown(sampleMarkdown, MarkdownOptions{HighlightCode: code})

		assert.Equal(t, []string{
			"# Login flow",
			"",
			"> note",
			"- first",
			"2. second",
			"---",
			"```go",
			"func main() {}",
			"```",
			"done",
		}, stripAll(got), "highlight=%v", code)
	}
}

func TestHighlightMarkdownUnclosedFence(t *testing.T) {
	got := HighlightMarkdown("```\nstill code\nmore", MarkdownOptions{})

	assert.Equal(t, []string{"```", "still code", "more"}, stripAll(got))
}

func TestHighlightMarkdownUnknownLanguage(t *testing.T) {
	got := HighlightMarkdown("```not-a-language\nx := 1\n```", MarkdownOptions{HighlightCode: true})

	require.Len(t, got, 3)
	assert.Equal(t, "x := 1", ansi.Strip(got[1]))
}

func TestHighlightMarkdownSanitizes(t *testing.T) {
	got := HighlightMarkdown("# T\x1b[2Jitle\r\nbell\a here\n", MarkdownOptions{})

	assert.Equal(t, []string{"# Title", "bell here"}, stripAll(got))
	for _, l := range got {
		assert.NotContains(t, l, "\x1b[2J")
		assert.NotContains(t, l, "\a")
	}
}

func TestStyleMarkdownLineListMarker(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, "  * nested", ansi.Strip(styleMarkdownLine(s, "  * nested", "* nested")))
	assert.Equal(t, "**bold**", styleMarkdownLine(s, "**bold**", "**bold**"), "emphasis is not a list")
}

func TestHighlightDiff(t *testing.T) {
	text := "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1 +1 @@\n-old\x1b[31m\n+new\n"

	got := HighlightDiff(text)
	assert.Equal(t, []string{
		"diff --git a/x b/x",
		"--- a/x",
		"+++ b/x",
		"@@ -1 +1 @@",
		"-old",
		"+new",
	}, stripAll(got))
	assert.Empty(t, HighlightDiff(""))
}
