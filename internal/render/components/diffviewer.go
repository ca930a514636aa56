package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DiffLine represents a single line in a diff
type DiffLine struct {
	Type    DiffLineType
	Content string
}

// DiffLineType represents the type of a diff line
type DiffLineType int

const (
	DiffLineContext  DiffLineType = iota // Unchanged line
	DiffLineAdded                        // Added line (starts with +)
	DiffLineRemoved                      // Removed line (starts with -)
	DiffLineHeader                       // Hunk header (@@ ... @@)
	DiffLineFilePath                     // diff --git, --- or +++
	DiffLineMeta                         // index, mode and similarity lines
)

// FileDiff is one git diff split into typed lines
type FileDiff struct {
	FilePath     string
	Lines        []DiffLine
	AddedCount   int
	RemovedCount int
}

// ParseDiff classifies the lines of git diff output. The file path is taken
// from the "+++ b/" line, falling back to "--- a/" for deletions.
func ParseDiff(text string) *FileDiff {
	diff := &FileDiff{}
	for _, line := range splitLines(text) {
		t := classifyDiffLine(line)
		switch t {
		case DiffLineAdded:
			diff.AddedCount++
		case DiffLineRemoved:
			diff.RemovedCount++
		case DiffLineFilePath:
			if path, ok := diffPath(line); ok && (diff.FilePath == "" || strings.HasPrefix(line, "+++")) {
				diff.FilePath = path
			}
		}
		diff.Lines = append(diff.Lines, DiffLine{Type: t, Content: line})
	}
	return diff
}

func classifyDiffLine(line string) DiffLineType {
	switch {
	case strings.HasPrefix(line, "diff --git"),
		strings.HasPrefix(line, "+++"),
		strings.HasPrefix(line, "---"):
		return DiffLineFilePath
	case strings.HasPrefix(line, "@@"):
		return DiffLineHeader
	case strings.HasPrefix(line, "+"):
		return DiffLineAdded
	case strings.HasPrefix(line, "-"):
		return DiffLineRemoved
	case strings.HasPrefix(line, "index "),
		strings.HasPrefix(line, "new file mode"),
		strings.HasPrefix(line, "deleted file mode"),
		strings.HasPrefix(line, "similarity index"),
		strings.HasPrefix(line, "rename "),
		strings.HasPrefix(line, `\ No newline`):
		return DiffLineMeta
	default:
		return DiffLineContext
	}
}

func diffPath(line string) (string, bool) {
	for _, prefix := range []string{"+++ b/", "--- a/", "+++ ", "--- "} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			if rest == "/dev/null" {
				return "", false
			}
			return rest, true
		}
	}
	return "", false
}

// splitLines splits content into lines, handling empty content
func splitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	// Remove trailing empty line if content ended with newline
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// DiffViewer styles parsed diffs
type DiffViewer struct {
	addedStyle   lipgloss.Style
	removedStyle lipgloss.Style
	contextStyle lipgloss.Style
	headerStyle  lipgloss.Style
	pathStyle    lipgloss.Style
	metaStyle    lipgloss.Style
	statsStyle   lipgloss.Style
}

// NewDiffViewer creates a new diff viewer
func NewDiffViewer() *DiffViewer {
	return &DiffViewer{
		addedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")), // Green
		removedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")), // Red
		contextStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		headerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // Cyan
			Bold(true),
		pathStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")). // Purple
			Bold(true),
		metaStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")), // Muted
		statsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")), // Muted
	}
}

// RenderLines returns one styled string per diff line
func (d *DiffViewer) RenderLines(diff *FileDiff) []string {
	if diff == nil {
		return nil
	}

	out := make([]string, 0, len(diff.Lines))
	for _, line := range diff.Lines {
		out = append(out, d.style(line.Type).Render(line.Content))
	}
	return out
}

func (d *DiffViewer) style(t DiffLineType) lipgloss.Style {
	switch t {
	case DiffLineAdded:
		return d.addedStyle
	case DiffLineRemoved:
		return d.removedStyle
	case DiffLineHeader:
		return d.headerStyle
	case DiffLineFilePath:
		return d.pathStyle
	case DiffLineMeta:
		return d.metaStyle
	default:
		return d.contextStyle
	}
}

// RenderCompact renders a compact summary of the diff
func (d *DiffViewer) RenderCompact(diff *FileDiff) string {
	if diff == nil {
		return ""
	}

	path := d.pathStyle.Render(diff.FilePath)
	stats := d.statsStyle.Render(formatStats(diff.AddedCount, diff.RemovedCount))

	return path + " " + stats
}

// formatStats formats the +/- statistics
func formatStats(added, removed int) string {
	var parts []string
	if added > 0 {
		parts = append(parts, "+"+strconv.Itoa(added))
	}
	if removed > 0 {
		parts = append(parts, "-"+strconv.Itoa(removed))
	}
	if len(parts) == 0 {
		return "(no changes)"
	}
	return strings.Join(parts, " ")
}
