package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/axflash/axdl-go/flash"
)

// progressBar renders a fixed-width ASCII progress bar, parameterized by
// width.
type progressBar struct {
	width int
}

func (pb progressBar) render(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(float64(pb.width) * fraction)
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat("=", filled), strings.Repeat(" ", pb.width-filled), fraction*100)
}

// newProgressPrinter returns a flash.ProgressCallback. When stderr is a
// terminal it redraws one line in place; otherwise (redirected to a file,
// piped, or running under CI) it falls back to one log line per report so
// the output stays readable without ANSI control codes.
func newProgressPrinter(stderr *os.File) flash.ProgressCallback {
	interactive := term.IsTerminal(int(stderr.Fd()))
	bar := progressBar{width: 30}
	start := time.Now()
	var lastStage flash.Stage

	return func(p flash.Progress) {
		if !interactive {
			fmt.Fprintf(stderr, "[%s] %s\n", p.Stage, p.Description)
			return
		}

		if p.Stage != lastStage {
			fmt.Fprintln(stderr)
			lastStage = p.Stage
		}

		fmt.Fprint(stderr, "\r\033[K")
		if p.Fraction != nil {
			fmt.Fprintf(stderr, "%s %s (%s)", bar.render(*p.Fraction), p.Description, time.Since(start).Round(time.Second))
		} else {
			fmt.Fprintf(stderr, "%s (%s)", p.Description, time.Since(start).Round(time.Second))
		}
	}
}
