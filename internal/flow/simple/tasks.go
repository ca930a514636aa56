package simple

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mpjhorner/specdash/internal/model"
)

var (
	// checklistLine matches "- [ ] text", "* [x] text" and "- [ ]* text" (optional)
	checklistLine = regexp.MustCompile(`^[-*]\s*\[( |x|X)\](\*)?\s+(.+)$`)

	// numberedPrefix matches "1. " or "1.2 " at the start of a task text
	numberedPrefix = regexp.MustCompile(`^(\d+\.(?:\d+\.?)*)\s+(.+)$`)
)

// ParseTasks extracts checklist items from a tasks.md body. Lines that do not
// match the checklist syntax are ignored. A numbered prefix becomes the task
// id; other tasks are identified by their line number.
func ParseTasks(content string) []model.Task {
	var tasks []model.Task
	for i, raw := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		m := checklistLine.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}

		line := i + 1
		task := model.Task{
			ID:       fmt.Sprintf("line-%d", line),
			Text:     strings.TrimSpace(m[3]),
			Done:     m[1] != " ",
			Optional: m[2] == "*",
			Line:     line,
		}
		if n := numberedPrefix.FindStringSubmatch(task.Text); n != nil {
			task.ID = strings.TrimSuffix(n[1], ".")
			task.Text = strings.TrimSpace(n[2])
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// CountTasks summarizes tasks
func CountTasks(tasks []model.Task) model.TaskCounts {
	var c model.TaskCounts
	for _, t := range tasks {
		c.Total++
		if t.Done {
			c.Completed++
		}
		if t.Optional {
			c.Optional++
			continue
		}
		c.Required++
		if t.Done {
			c.RequiredCompleted++
		}
	}
	return c
}
