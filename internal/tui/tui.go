// Package tui is the terminal host for the annotation engine: a Bubble
// Tea program that renders the board on a braille canvas and translates
// terminal input into engine events.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"fieldmap/internal/board"
	"fieldmap/internal/editor"
)

// Run wires the engine to a fresh program and blocks until quit. The
// altimeter may be nil when no elevation service is configured.
func Run(store *board.Store, altimeter editor.Altimeter, log *zap.Logger, opts Options) error {
	sink := newUISink()
	// the engine projects through the live viewport, so build that
	// first, then the engine, then the model around both
	vp := NewViewport(opts.Center, opts.Zoom)
	engine := editor.New(store, vp, sink, altimeter, log)
	m := New(engine, store, sink, log, opts)
	m.vp = vp

	// restore a previous session if the save file exists
	if data, err := os.ReadFile(m.savePath); err == nil {
		if err := board.LoadDocument(store, data); err != nil {
			log.Warn("saved document ignored", zap.Error(err))
		} else if lo, hi, ok := store.Bounds(); ok {
			vp.Fit(lo, hi)
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}

func (m *Model) saveDocument() {
	data, err := board.MarshalDocument(m.store)
	if err != nil {
		m.status = "save error: " + err.Error()
		return
	}
	if err := os.WriteFile(m.savePath, data, 0o644); err != nil {
		m.status = "save error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d features to %s", m.store.Len(), m.savePath)
	m.log.Info("document saved", zap.String("path", m.savePath), zap.Int("features", m.store.Len()))
}

func (m *Model) saveKML() {
	f, err := os.Create(m.kmlPath)
	if err != nil {
		m.status = "kml error: " + err.Error()
		return
	}
	defer f.Close()
	if err := board.WriteKML(m.store, "fieldmap", f); err != nil {
		m.status = "kml error: " + err.Error()
		return
	}
	m.status = "exported " + m.kmlPath
	m.log.Info("kml exported", zap.String("path", m.kmlPath))
}

var _ editor.Projection = (*Viewport)(nil)
