package view

import (
	"github.com/mpjhorner/specdash/internal/model"
)

// IconSet is the glyph table used in view lines
type IconSet struct {
	Name       string
	Completed  string
	InProgress string
	Pending    string
	Blocked    string
	Unknown    string
	Gate       string
	Warning    string
	Collapsed  string
	Expanded   string
	File       string
	Branch     string
}

var asciiIcons = IconSet{
	Name:       "ascii",
	Completed:  "[x]",
	InProgress: "[~]",
	Pending:    "[ ]",
	Blocked:    "[!]",
	Unknown:    "[?]",
	Gate:       "(!)",
	Warning:    "!",
	Collapsed:  "+",
	Expanded:   "-",
	File:       "*",
	Branch:     "@",
}

var nerdIcons = IconSet{
	Name:       "nerd",
	Completed:  "\uf00c", // nf-fa-check
	InProgress: "\uf110", // nf-fa-spinner
	Pending:    "\uf10c", // nf-fa-circle_o
	Blocked:    "\uf05e", // nf-fa-ban
	Unknown:    "\uf128", // nf-fa-question
	Gate:       "\uf256", // nf-fa-hand_paper_o
	Warning:    "\uf071", // nf-fa-warning
	Collapsed:  "\uf054", // nf-fa-chevron_right
	Expanded:   "\uf078", // nf-fa-chevron_down
	File:       "\uf15c", // nf-fa-file_text
	Branch:     "\ue725", // nf-dev-git_branch
}

// Icons returns the named icon set. Anything but "nerd" is ascii.
func Icons(name string) IconSet {
	if name == nerdIcons.Name {
		return nerdIcons
	}
	return asciiIcons
}

// IconSetNames lists the accepted icon set names
func IconSetNames() []string {
	return []string{asciiIcons.Name, nerdIcons.Name}
}

// ASCII reports whether the set is plain text
func (i IconSet) ASCII() bool {
	return i.Name != nerdIcons.Name
}

// Status returns the glyph for a status
func (i IconSet) Status(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return i.Completed
	case model.StatusInProgress:
		return i.InProgress
	case model.StatusPending:
		return i.Pending
	case model.StatusBlocked:
		return i.Blocked
	default:
		return i.Unknown
	}
}

// Fold returns the expand/collapse marker
func (i IconSet) Fold(expanded bool) string {
	if expanded {
		return i.Expanded
	}
	return i.Collapsed
}
