package layout

import (
	"io"
	"os"

	"github.com/penwyp/go-mela-save-monitor/internal/util"
	"golang.org/x/term"
)

const (
	// DefaultWidth is used when the output is not a terminal.
	DefaultWidth = 100
	minWidth     = 60
	maxWidth     = 160
)

// Sizer reports the usable width of an output stream.
type Sizer struct {
	fd    int
	width int
}

// NewSizer inspects w. Only an *os.File attached to a terminal has a real size.
func NewSizer(w io.Writer) *Sizer {
	s := &Sizer{fd: -1}
	if f, ok := w.(*os.File); ok {
		s.fd = int(f.Fd())
	}
	return s
}

// NewFixedSizer always reports width. Used by tests.
func NewFixedSizer(width int) *Sizer {
	return &Sizer{fd: -1, width: width}
}

// IsTerminal reports whether the output is an interactive terminal.
func (s *Sizer) IsTerminal() bool {
	return s.fd >= 0 && term.IsTerminal(s.fd)
}

func (s *Sizer) GetMaxWidth() int {
	if s.width > 0 {
		return s.width
	}
	if !s.IsTerminal() {
		return DefaultWidth
	}

	termWidth, _, err := term.GetSize(s.fd)
	if err != nil || termWidth < minWidth {
		return minWidth
	}
	if termWidth > maxWidth {
		termWidth = maxWidth
	}

	util.LogDebugf("GetMaxWidth %d", termWidth)
	return termWidth
}
