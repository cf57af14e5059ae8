package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/yourusername/ytmp3-go/internal/domain"
)

// progressPrinter renders events as terminal lines. Download and
// conversion progress rewrites the current line; every other event
// starts a new one.
type progressPrinter struct {
	w       io.Writer
	inPlace bool
	lastLen int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

// Print renders one event
func (p *progressPrinter) Print(e domain.Event) {
	switch e.Phase {
	case domain.PhaseDownloading, domain.PhaseTranscoding:
		line := progressLine(e)
		pad := ""
		if n := p.lastLen - len(line); n > 0 {
			pad = strings.Repeat(" ", n)
		}
		fmt.Fprintf(p.w, "\r%s%s", line, pad)
		p.inPlace = true
		p.lastLen = len(line)
	default:
		p.Finish()
		fmt.Fprintln(p.w, e.StatusText())
	}
}

// Finish ends an in-place progress line
func (p *progressPrinter) Finish() {
	if p.inPlace {
		fmt.Fprintln(p.w)
		p.inPlace = false
		p.lastLen = 0
	}
}

func progressLine(e domain.Event) string {
	line := fmt.Sprintf("%s %5.1f%%", e.StatusText(), e.Progress.Percentage)
	if e.Phase == domain.PhaseDownloading {
		if speed := e.Progress.SpeedString(); speed != "" {
			line += "  " + speed
		}
		line += "  ETA " + e.Progress.ETAString()
	}
	return line
}
