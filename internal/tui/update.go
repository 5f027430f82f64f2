package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"fieldmap/internal/board"
	"fieldmap/internal/editor"
	"fieldmap/internal/geodesy"
)

const (
	headerHeight = 1
	footerHeight = 2
	doubleClick  = 400 * time.Millisecond
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Cols, m.vp.Rows = m.mapSize()
		return m, nil

	case toolMsg:
		m.status = "tool: " + msg.tool.String()
		if msg.tool == editor.ToolNone {
			m.status = "view mode"
		}
		return m, m.sink.wait()
	case committedMsg:
		label := string(msg.feature.Type)
		if mm := msg.feature.MeasurementLabel(); mm != "" {
			label += "  " + mm
		}
		m.status = "committed " + label
		m.refreshTable()
		return m, m.sink.wait()
	case azimuthMsg:
		m.lastAzimuth = fmt.Sprintf("azimuth: %.1f°", msg.degrees)
		m.status = m.lastAzimuth
		return m, m.sink.wait()
	case profileMsg:
		st := msg.profile.Stats
		m.lastProfile = fmt.Sprintf("profile: %s  +%s -%s  avg %.1f%%  max %.1f%%",
			geodesy.FormatDistance(st.TotalDistance),
			geodesy.FormatDistance(st.GainPositive),
			geodesy.FormatDistance(st.GainNegative),
			st.AvgSlope, st.MaxSlope)
		m.status = m.lastProfile
		return m, m.sink.wait()
	case failedMsg:
		m.status = "error: " + msg.err.Error()
		m.log.Warn("engine error", zap.Error(msg.err))
		return m, m.sink.wait()

	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.mode == modeMap {
			return m.handleMouse(msg)
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modePicker:
		if m.picker.FilterState() != list.Filtering {
			switch msg.String() {
			case "esc":
				m.mode = modeMap
				m.status = "view mode"
				return m, nil
			case "enter":
				if it, ok := m.picker.SelectedItem().(symbolItem); ok {
					m.engine.ArmSymbol(it.spec)
					m.status = "place " + it.spec.Label + ": click the map"
				}
				m.mode = modeMap
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case modeBuilding, modeText, modePaste:
		switch msg.String() {
		case "esc":
			m.mode = modeMap
			m.ta.Blur()
			m.status = "view mode"
			return m, nil
		case "enter":
			return m.commitOverlay()
		}
		var cmd tea.Cmd
		m.ta, cmd = m.ta.Update(msg)
		return m, cmd

	case modeTable:
		switch msg.String() {
		case "esc", "f":
			m.mode = modeMap
			return m, nil
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}

	// context menu actions
	if at, open := m.engine.MenuAt(); open {
		switch msg.String() {
		case "c":
			coords := m.engine.FormatCoordinates(at)
			if err := clipboard.WriteAll(coords); err != nil {
				m.status = "clipboard error: " + err.Error()
			} else {
				m.status = "copied " + coords
			}
			m.engine.CloseMenu()
			return m, nil
		case "m":
			if _, err := m.engine.DropSiteMarker(at); err != nil {
				m.status = "error: " + err.Error()
			}
			m.refreshTable()
			return m, nil
		case "t":
			m.textAt = at
			m.engine.CloseMenu()
			return m.openOverlay(modeText, "Text label. Enter to place; Esc to cancel."), nil
		case "i":
			info := m.engine.InspectPoint(at)
			if info.NearestID == "" {
				m.status = info.Formatted + "  (board empty)"
			} else {
				m.status = fmt.Sprintf("%s  nearest %s %s away",
					info.Formatted, info.NearestType,
					geodesy.FormatDistance(info.NearestDistance))
			}
			m.engine.CloseMenu()
			return m, nil
		case "esc":
			m.engine.CloseMenu()
			m.status = "view mode"
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "d":
		m.engine.ActivateTool(editor.ToolLine)
	case "a":
		m.engine.ActivateTool(editor.ToolPolygon)
	case "g":
		m.engine.ActivateTool(editor.ToolRectangle)
	case "b":
		return m.openOverlay(modeBuilding, "Building name. Enter to arm; Esc to cancel."), nil
	case "e":
		m.engine.ActivateTool(editor.ToolAltimetry)
	case "z":
		m.engine.ActivateTool(editor.ToolAzimuth)
	case "x":
		m.engine.ActivateTool(editor.ToolDelete)
	case "s":
		m.mode = modePicker
		m.picker.SetSize(36, max(8, m.vp.Rows-4))
		return m, nil
	case "p":
		return m.openOverlay(modePaste, "Paste WKT (LINESTRING, POLYGON). Enter to import; Esc to cancel."), nil
	case "f":
		m.refreshTable()
		m.mode = modeTable
		return m, nil
	case "w":
		m.saveDocument()
	case "k":
		m.saveKML()
	case "h":
		m.helpVisible = !m.helpVisible
	case "0":
		if lo, hi, ok := m.store.Bounds(); ok {
			m.vp.Fit(lo, hi)
			m.status = "fitted to features"
		}
	case "esc":
		m.engine.KeyDown(editor.KeyEscape)
	case "enter":
		m.engine.KeyDown(editor.KeyEnter)
	case "r":
		m.engine.KeyDown(editor.KeyDropVertex)
	case "backspace", "delete":
		m.engine.KeyDown(editor.KeyDelete)
		m.refreshTable()
	case "up":
		m.vp.Pan(0, -1)
	case "down":
		m.vp.Pan(0, 1)
	case "left":
		m.vp.Pan(-2, 0)
	case "right":
		m.vp.Pan(2, 0)
	case "+", "=":
		m.vp.ZoomIn()
		m.status = fmt.Sprintf("zoom: %.2fx", m.vp.Zoom)
	case "-", "_":
		m.vp.ZoomOut()
		m.status = fmt.Sprintf("zoom: %.2fx", m.vp.Zoom)
	}
	return m, nil
}

func (m Model) openOverlay(mode inputMode, placeholder string) Model {
	m.mode = mode
	m.ta.SetValue("")
	m.ta.Placeholder = placeholder
	m.ta.Focus()
	return m
}

func (m Model) commitOverlay() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.ta.Value())
	mode := m.mode
	m.mode = modeMap
	m.ta.Blur()
	if value == "" {
		m.status = "view mode"
		return m, nil
	}
	switch mode {
	case modeBuilding:
		m.engine.ArmBuilding(value)
		m.status = "building " + value + ": click two corners"
	case modeText:
		if _, err := m.engine.AddText(m.textAt, value); err != nil {
			m.status = "error: " + err.Error()
			return m, nil
		}
		m.status = "text placed"
		m.refreshTable()
	case modePaste:
		f, err := board.ParseWKT(value)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		if _, err := m.store.Add(f); err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		if lo, hi, ok := m.store.Bounds(); ok {
			m.vp.Fit(lo, hi)
		}
		m.status = "imported " + string(f.Type) + " from wkt"
		m.refreshTable()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cx, cy, inMap := m.mapCell(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.vp.ZoomIn()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.vp.ZoomOut()
		return m, nil
	}

	if !inMap && msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	p := m.vp.CellToLatLng(cx, cy)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			now := time.Now()
			cell := [2]int{cx, cy}
			if now.Sub(m.lastClickAt) < doubleClick && cell == m.lastClickCell {
				m.lastClickAt = time.Time{}
				m.engine.DoubleClick()
			} else {
				m.lastClickAt = now
				m.lastClickCell = cell
				m.engine.Click(p)
			}
		case tea.MouseButtonRight:
			m.engine.PressAt(p)
		}
	case tea.MouseActionMotion:
		if m.engine.Dragging() {
			m.engine.MouseMove(p)
		}
	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonRight || msg.Button == tea.MouseButtonNone {
			if m.engine.Dragging() {
				m.engine.MouseUp()
				m.refreshTable()
			} else if inMap && msg.Button == tea.MouseButtonRight {
				m.engine.ContextMenu(p)
			}
		}
	}
	return m, nil
}

// mapSize returns the map canvas size in cells for the current window.
func (m Model) mapSize() (cols, rows int) {
	cols = max(10, m.width)
	rows = max(4, m.height-headerHeight-footerHeight)
	return cols, rows
}

// mapCell converts terminal coordinates to a map-area cell.
func (m Model) mapCell(x, y int) (cx, cy int, ok bool) {
	cols, rows := m.mapSize()
	cx = x
	cy = y - headerHeight
	ok = cx >= 0 && cx < cols && cy >= 0 && cy < rows
	return cx, cy, ok
}
