package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/render/components"
	"github.com/mpjhorner/specdash/internal/textutil"
)

// Frame is everything one screen shows. View builders produce it; the engine
// only lays it out.
type Frame struct {
	Project string
	Flow    string
	Kind    model.Flow
	View    components.Tab

	// TabCounts badges the tab labels.
	TabCounts map[components.Tab]int

	// Status is the orchestrator state: idle, refreshing or error.
	Status  string
	Updated string

	Progress      model.Counts
	ProgressLabel string

	Gates  []string
	Error  *model.Error
	Panels []Panel
	Footer string
}

// Renderer turns a frame into terminal output of at most width columns. A
// height of zero or less means unbounded.
type Renderer interface {
	Render(f Frame, width, height int) string
}

// Engine is the lipgloss-backed Renderer
type Engine struct {
	Styles Styles
	ASCII  bool
}

// NewEngine creates an engine with the default palette
func NewEngine(ascii bool) *Engine {
	return &Engine{Styles: DefaultStyles(), ASCII: ascii}
}

// Render composes header, tab bar, banners, allocated panels and footer
func (e *Engine) Render(f Frame, width, height int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	top := []string{e.header(f, width)}
	if f.ProgressLabel != "" {
		bar := components.NewCountsBar(f.Progress, textutil.Clamp(width/4, 10, 30)).WithLabel(f.ProgressLabel)
		bar.ASCII = e.ASCII
		top = append(top, textutil.Truncate(bar.Render(), width))
	}

	tabs := components.NewTabBar(f.Kind, f.View)
	tabs.Width = width
	tabs.Counts = f.TabCounts
	top = append(top, textutil.Truncate(tabs.Render(), width))

	for _, gate := range f.Gates {
		badge := e.Styles.Gate.Render(" APPROVAL ")
		top = append(top, badge+" "+textutil.Truncate(gate, width-lipgloss.Width(badge)-1))
	}
	top = append(top, e.errorBanner(f.Error, width)...)

	var footer []string
	if f.Footer != "" {
		for _, line := range strings.Split(f.Footer, "\n") {
			footer = append(footer, textutil.Truncate(line, width))
		}
	}

	var body []string
	if height > 0 {
		// Banners can use up the height; panels still get their minimum.
		budget := max(height-len(top)-len(footer)-1, 0)
		body = e.panels(f.Panels, budget, width)
	} else {
		body = e.panels(f.Panels, -1, width)
	}

	out := append(top, "")
	out = append(out, body...)
	out = append(out, footer...)
	return strings.Join(out, "\n")
}

func (e *Engine) header(f Frame, width int) string {
	left := e.Styles.Header.Render("specdash")
	if f.Project != "" {
		left += " " + f.Project
	}
	if f.Flow != "" {
		left += e.Styles.Footer.Render(" · " + f.Flow)
	}

	right := statusBadge(f.Status)
	if f.Updated != "" {
		right = e.Styles.Footer.Render(f.Updated) + " " + right
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return textutil.Truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func statusBadge(status string) string {
	switch status {
	case "refreshing":
		return lipgloss.NewStyle().
			Background(ColorSecondary).
			Foreground(lipgloss.Color("0")).
			Bold(true).
			Render(" REFRESHING ")
	case "error":
		return lipgloss.NewStyle().
			Background(ColorError).
			Foreground(lipgloss.Color("255")).
			Bold(true).
			Render(" ERROR ")
	default:
		return lipgloss.NewStyle().
			Background(ColorSuccess).
			Foreground(lipgloss.Color("0")).
			Bold(true).
			Render(" LIVE ")
	}
}

func (e *Engine) errorBanner(err *model.Error, width int) []string {
	if err == nil {
		return nil
	}

	code := e.Styles.ErrorCode.Render(" " + string(err.Code) + " ")
	lines := []string{code + " " + e.Styles.ErrorBox.Render(textutil.Truncate(textutil.Sanitize(err.Message), width-lipgloss.Width(code)-1))}
	detail := func(label, value string) {
		for _, l := range textutil.SanitizeLines(value) {
			lines = append(lines, e.Styles.Footer.Render(textutil.Truncate("  "+label+l, width)))
			label = strings.Repeat(" ", len(label))
		}
	}
	if err.Path != "" {
		detail("path: ", err.Path)
	}
	if err.Details != "" {
		detail("", err.Details)
	}
	if err.Hint != "" {
		detail("hint: ", err.Hint)
	}
	return lines
}

// panels lays out the body. A negative budget gives every panel all of its
// lines.
func (e *Engine) panels(panels []Panel, budget, width int) []string {
	if len(panels) == 0 {
		return nil
	}

	var allocs []Allocation
	if budget < 0 {
		for _, p := range panels {
			allocs = append(allocs, Allocation{Panel: p, Rows: len(p.Lines) + 1})
		}
	} else {
		sized := make([]Panel, len(panels))
		for i, p := range panels {
			if p.MaxRows == 0 {
				p.MaxRows = max(len(p.Lines)+1, MinPanelRows)
			}
			sized[i] = p
		}
		allocs = Allocate(sized, budget)
	}

	var out []string
	for i, a := range allocs {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, e.Styles.Title.Render(textutil.Truncate(a.Panel.Title, width)))
		for _, line := range Window(a.Panel.Lines, a.Rows-1) {
			out = append(out, e.line(line, width))
		}
	}
	return out
}

func (e *Engine) line(l Line, width int) string {
	gutter := "  "
	if l.Selected {
		gutter = e.Styles.Gutter.Render("> ")
	}

	text := textutil.Truncate(l.Text, width-2)
	switch {
	case l.Styled:
		return gutter + text
	case l.Selected:
		return gutter + e.Styles.Selected.Render(text)
	default:
		return gutter + e.Styles.line(l.Style).Render(text)
	}
}
