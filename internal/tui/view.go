package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fieldmap/internal/editor"
	"fieldmap/internal/geodesy"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	cols, rows := m.mapSize()

	header := titleStyle.Render(" fieldmap ─ site survey board ")
	header = lipgloss.NewStyle().Width(cols).Render(header)

	var body string
	switch m.mode {
	case modePicker:
		box := boxStyle.Render(m.picker.View())
		body = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, box)
	case modeBuilding, modeText, modePaste:
		m.ta.SetWidth(min(cols-4, 60))
		box := boxStyle.Render(m.ta.View())
		body = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, box)
	case modeTable:
		m.tbl.SetHeight(min(rows-2, 20))
		box := boxStyle.Render(m.tbl.View())
		body = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, box)
	default:
		body = lipgloss.NewStyle().Width(cols).Height(rows).Render(m.renderMap(cols, rows))
	}

	footer := lipgloss.NewStyle().Width(cols).Render(m.renderFooter(cols))
	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(cols).Height(m.height).Render(ui)
}

func (m Model) renderFooter(cols int) string {
	status := m.status
	if m.engine.AltimetryBusy() {
		status = alertStyle.Render("profiling…") + "  " + status
	}
	if _, open := m.engine.MenuAt(); open {
		status = "menu: [c]opy coords  [m]ark site  [t]ext  [i]nspect  esc"
	}
	left := dimStyle.Render(" " + status + " ")

	// live measurement of the in-progress draft
	meas := m.draftMeasurement()
	right := ""
	if meas != "" {
		right = dimStyle.Render("  " + meas + "  ")
	}
	spacerW := max(0, cols-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + strings.Repeat(" ", spacerW) + right

	return lipgloss.JoinVertical(lipgloss.Left, line, m.renderHelp())
}

// draftMeasurement reports the running length or area of the draft so
// the operator sees the measurement before committing.
func (m Model) draftMeasurement() string {
	draft := m.engine.Draft()
	switch m.engine.Tool() {
	case editor.ToolLine, editor.ToolAltimetry:
		if len(draft) >= 2 {
			return geodesy.FormatDistance(geodesy.PolylineLength(draft))
		}
	case editor.ToolAzimuth:
		if len(draft) >= 2 {
			return geodesy.FormatDistance(geodesy.Distance(draft[0], draft[len(draft)-1]))
		}
	case editor.ToolPolygon:
		if len(draft) >= 3 {
			return geodesy.FormatArea(geodesy.PolygonArea(draft))
		}
	case editor.ToolRectangle:
		if anchor, ok := m.engine.RectAnchor(); ok {
			return "corner 1: " + geodesy.FormatLatLng(anchor)
		}
	}
	if m.lastProfile != "" {
		return m.lastProfile
	}
	if m.lastAzimuth != "" {
		return m.lastAzimuth
	}
	return ""
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"d line",
		"a poly",
		"g rect",
		"b bldg",
		"s symbol",
		"e profile",
		"z azimuth",
		"x delete",
		"p wkt",
		"f list",
		"w/k save",
		"0 fit",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
