package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/dsmcdb/internal/sim"
)

const (
	width       = 60
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws species temperatures as bars on every observed
// snapshot, at most frameRate times per second.
type LiveRenderer struct {
	out       io.Writer
	title     string
	species   []string
	frameRate int
	lastFrame time.Time
}

func NewLiveRenderer(out io.Writer, title string, species []string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{out: out, title: title, species: species, frameRate: frameRate}
}

func (r *LiveRenderer) OnStep(s sim.Snapshot) {
	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	fmt.Fprint(r.out, r.render(s))
}

func (r *LiveRenderer) render(s sim.Snapshot) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  step=%d  particles=%d  accepted=%d\n", r.title, s.Step, s.Particles, s.Accepted))
	b.WriteString("  " + strings.Repeat("-", width+20) + "\n")

	maxT := s.Temperature
	for _, t := range s.Species {
		maxT = math.Max(maxT, t)
	}
	for i, name := range r.species {
		t := 0.0
		if i < len(s.Species) {
			t = s.Species[i]
		}
		n := 0
		if maxT > 0 {
			n = int(t / maxT * width)
		}
		b.WriteString(fmt.Sprintf("  %-6s %s%s %10.1fK\n", name, strings.Repeat("#", n), strings.Repeat(" ", width-n), t))
	}

	b.WriteString("  " + strings.Repeat("-", width+20) + "\n")
	b.WriteString(fmt.Sprintf("  T=%.1fK  E=%.4e J  absorbed=%.4e J\n", s.Temperature, s.Energy, s.Absorbed))
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
