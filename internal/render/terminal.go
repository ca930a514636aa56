package render

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
)

// Fallback size when the output is not a terminal
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Terminal is the capability the dashboard draws through
type Terminal interface {
	io.Writer
	Size() (width, height int)
	IsTTY() bool
}

// FileTerminal is a Terminal backed by file descriptors
type FileTerminal struct {
	in  *os.File
	out *os.File
}

// NewTerminal wraps an input and output file
func NewTerminal(in, out *os.File) *FileTerminal {
	return &FileTerminal{in: in, out: out}
}

// Write writes to the output
func (t *FileTerminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size returns the output's size, or the fallback size when unknown
func (t *FileTerminal) Size() (int, int) {
	w, h, err := term.GetSize(t.out.Fd())
	if err != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return w, h
}

// IsTTY reports whether both input and output are terminals
func (t *FileTerminal) IsTTY() bool {
	return term.IsTerminal(t.in.Fd()) && term.IsTerminal(t.out.Fd())
}
