package cli

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/glorpus-work/freshen/pkg/engine"
	"github.com/glorpus-work/freshen/pkg/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
}

// progressPrinter turns engine events into one line per state change and
// at most progressSteps lines per download. Engines report concurrently.
type progressPrinter struct {
	mu    sync.Mutex
	out   io.Writer
	state map[string]model.UpdateState
	step  map[string]int
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{
		out:   out,
		state: make(map[string]model.UpdateState),
		step:  make(map[string]int),
	}
}

func (p *progressPrinter) hooks() engine.Hooks {
	return engine.Hooks{OnEvent: p.onEvent}
}

func (p *progressPrinter) onEvent(e engine.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.State == model.StateIdle {
		delete(p.state, e.AppID)
		delete(p.step, e.AppID)
		return
	}

	if prev, seen := p.state[e.AppID]; !seen || prev != e.State {
		p.state[e.AppID] = e.State
		p.step[e.AppID] = 0
		line := fmt.Sprintf("%s: %s", e.AppID, renderState(e.State))
		if e.Msg != "" {
			line += " " + render(faintStyle, "("+e.Msg+")")
		}
		_, _ = fmt.Fprintln(p.out, line)
		return
	}

	if e.State != model.StateDownloadingUpdate {
		return
	}
	step := int(e.Progress * progressSteps)
	if step <= p.step[e.AppID] {
		return
	}
	p.step[e.AppID] = step
	_, _ = fmt.Fprintf(p.out, "%s: downloading %3.0f%%\n", e.AppID, e.Progress*100)
}
