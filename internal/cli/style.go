package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glorpus-work/freshen/pkg/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	updateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	faintStyle   = lipgloss.NewStyle().Faint(true)

	stateStyles = map[model.UpdateState]lipgloss.Style{
		model.StateIdle:              lipgloss.NewStyle().Faint(true),
		model.StateGatheringInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		model.StateDownloadingUpdate: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		model.StateInstallingUpdate:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		model.StateUpdated:           lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.StateFailed:            lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		model.StateUnsupported:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
)

// render applies style unless colors are disabled.
func render(style lipgloss.Style, s string) string {
	if noColor() {
		return s
	}
	return style.Render(s)
}

func renderState(s model.UpdateState) string {
	style, ok := stateStyles[s]
	if !ok {
		return s.String()
	}
	return render(style, s.String())
}
