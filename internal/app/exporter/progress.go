package exporter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
)

const (
	defaultBarWidth = 36
	minBarWidth     = 16
	maxBarWidth     = 64
	// Room left on the line for the counter and the area title.
	barLineReserve = 40
)

// areaProgress draws one bar line that is redrawn in place after every area.
type areaProgress struct {
	out   io.Writer
	bar   progress.Model
	total int
	done  int
	drawn int
}

// newAreaProgress returns nil when there is nothing to draw on; every method
// accepts a nil receiver.
func newAreaProgress(out io.Writer, total int) *areaProgress {
	if out == nil {
		return nil
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = barWidth(os.Getenv("COLUMNS"))
	return &areaProgress{out: out, bar: bar, total: max(total, 1)}
}

func (p *areaProgress) Area(title string) {
	if p == nil {
		return
	}
	p.done = min(p.done+1, p.total)
	p.draw(title)
}

func (p *areaProgress) Done() {
	if p == nil {
		return
	}
	p.done = p.total
	p.draw("done")
	p.endLine()
}

// Stop leaves the cursor on a fresh line if a bar is still showing.
func (p *areaProgress) Stop() {
	if p == nil {
		return
	}
	p.endLine()
}

func (p *areaProgress) draw(label string) {
	ratio := float64(p.done) / float64(p.total)
	line := fmt.Sprintf("%s %d/%d areas  %s", p.bar.ViewAs(ratio), p.done, p.total, strings.TrimSpace(label))
	fmt.Fprint(p.out, "\r"+line+strings.Repeat(" ", max(p.drawn-len(line), 0)))
	p.drawn = len(line)
}

func (p *areaProgress) endLine() {
	if p.drawn == 0 {
		return
	}
	fmt.Fprintln(p.out)
	p.drawn = 0
}

func barWidth(columns string) int {
	cols, err := strconv.Atoi(strings.TrimSpace(columns))
	if err != nil || cols <= 0 {
		return defaultBarWidth
	}
	return min(max(cols-barLineReserve, minBarWidth), maxBarWidth)
}

// progressOutput is stderr when it is an interactive terminal, else nil.
func progressOutput() io.Writer {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return nil
	}
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}
	return os.Stderr
}
