// Package editor is the interactive annotation engine: a tool-mode state
// machine that turns pointer/keyboard events from the host view into
// committed features, plus the modal drag/rotate controller for committed
// geometry. All state transitions happen synchronously on the host's
// input goroutine; the only asynchronous work is the altimetry request.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fieldmap/internal/board"
	"fieldmap/internal/geodesy"
)

type pendingPhoto struct {
	id     string
	number int
}

// Engine owns the tool mode, the in-progress draft and the drag session
// for one board. It expects a single caller goroutine for all input
// methods.
type Engine struct {
	store     *board.Store
	proj      Projection
	sink      EventSink
	altimeter Altimeter
	log       *zap.Logger

	tool       Tool
	draft      []geodesy.LatLng
	rectAnchor *geodesy.LatLng

	pendingBuilding string
	pendingSymbol   *board.SymbolSpec
	pendingPhoto    *pendingPhoto

	selected string
	drag     *dragSession
	menuAt   *geodesy.LatLng

	altMu     sync.Mutex
	altBusy   bool
	altCancel context.CancelFunc
}

// New wires an engine to its collaborators. proj is the host viewport;
// sink receives notifications; altimeter may be nil if the host has no
// elevation service configured.
func New(store *board.Store, proj Projection, sink EventSink, altimeter Altimeter, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, proj: proj, sink: sink, altimeter: altimeter, log: log}
}

// Tool returns the active tool mode.
func (e *Engine) Tool() Tool { return e.tool }

// Draft returns a copy of the in-progress draft vertices.
func (e *Engine) Draft() []geodesy.LatLng {
	out := make([]geodesy.LatLng, len(e.draft))
	copy(out, e.draft)
	return out
}

// RectAnchor returns the first clicked rectangle corner, if any.
func (e *Engine) RectAnchor() (geodesy.LatLng, bool) {
	if e.rectAnchor == nil {
		return geodesy.LatLng{}, false
	}
	return *e.rectAnchor, true
}

// Selected returns the id of the selected feature, or "".
func (e *Engine) Selected() string { return e.selected }

// Dragging reports whether a drag session currently owns pointer input.
func (e *Engine) Dragging() bool { return e.drag != nil }

// MenuAt returns the location of the open context menu, if any.
func (e *Engine) MenuAt() (geodesy.LatLng, bool) {
	if e.menuAt == nil {
		return geodesy.LatLng{}, false
	}
	return *e.menuAt, true
}

// AltimetryBusy reports whether a profile request is in flight.
func (e *Engine) AltimetryBusy() bool {
	e.altMu.Lock()
	defer e.altMu.Unlock()
	return e.altBusy
}

// ActivateTool switches the tool mode, discarding any unfinished draft of
// the previous mode. Symbol and photo placement are armed through
// ArmSymbol/ArmPhoto since they need a payload.
func (e *Engine) ActivateTool(t Tool) {
	if t == ToolSymbol || t == ToolPhoto {
		e.sink.Failed(fmt.Errorf("%s placement needs a payload", t))
		return
	}
	if t == ToolAltimetry && e.AltimetryBusy() {
		e.sink.Failed(errors.New("elevation profile already running"))
		return
	}
	e.resetDraft()
	e.setTool(t)
}

// ArmSymbol arms single-click placement of a catalog symbol.
func (e *Engine) ArmSymbol(spec board.SymbolSpec) {
	e.resetDraft()
	e.pendingSymbol = &spec
	e.setTool(ToolSymbol)
}

// ArmPhoto arms single-click placement of a photo marker referencing an
// externally-owned photo resource.
func (e *Engine) ArmPhoto(photoID string, number int) {
	e.resetDraft()
	e.pendingPhoto = &pendingPhoto{id: photoID, number: number}
	e.setTool(ToolPhoto)
}

// ArmBuilding arms the two-click rectangle tool with a predefined
// building name attached to the resulting rectangle.
func (e *Engine) ArmBuilding(name string) {
	e.resetDraft()
	e.pendingBuilding = name
	e.setTool(ToolRectangle)
}

// Click handles a primary click at a geographic position.
func (e *Engine) Click(p geodesy.LatLng) {
	if e.drag != nil {
		return // drag session owns pointer input
	}
	e.menuAt = nil
	switch e.tool {
	case ToolLine, ToolPolygon, ToolAltimetry, ToolAzimuth:
		e.draft = append(e.draft, p)
	case ToolRectangle:
		if e.rectAnchor == nil {
			anchor := p
			e.rectAnchor = &anchor
			return
		}
		e.commitRectangle(*e.rectAnchor, p)
	case ToolSymbol:
		e.commitSymbol(p)
	case ToolPhoto:
		e.commitPhoto(p)
	case ToolDelete:
		if id, ok := e.hitTest(p); ok {
			e.store.Remove(id)
			e.log.Info("feature deleted", zap.String("id", id))
		}
	case ToolNone:
		if id, ok := e.hitTest(p); ok {
			e.selected = id
		} else {
			e.selected = ""
		}
	}
}

// DoubleClick commits the active draft, with the same semantics as Enter.
func (e *Engine) DoubleClick() { e.commitDraft() }

// ContextMenu opens the secondary action menu at a position. Ignored
// while a drag session is active.
func (e *Engine) ContextMenu(p geodesy.LatLng) {
	if e.drag != nil {
		return
	}
	at := p
	e.menuAt = &at
}

// CloseMenu dismisses the context menu.
func (e *Engine) CloseMenu() { e.menuAt = nil }

// KeyDown handles the keyboard subset of the input contract.
func (e *Engine) KeyDown(k Key) {
	switch k {
	case KeyEscape:
		e.cancel()
	case KeyEnter:
		e.commitDraft()
	case KeyDropVertex:
		switch e.tool {
		case ToolLine, ToolPolygon, ToolAltimetry:
			if len(e.draft) > 0 {
				e.draft = e.draft[:len(e.draft)-1]
			}
		}
	case KeyDelete:
		if e.tool == ToolNone && e.selected != "" {
			e.store.Remove(e.selected)
			e.selected = ""
		}
	}
}

// cancel clears the draft and every pending placement, selection and menu
// state, aborts an in-flight altimetry request, and returns to ToolNone.
func (e *Engine) cancel() {
	e.altMu.Lock()
	if e.altCancel != nil {
		e.altCancel()
	}
	e.altMu.Unlock()

	e.resetDraft()
	e.selected = ""
	e.menuAt = nil
	e.setTool(ToolNone)
}

func (e *Engine) resetDraft() {
	e.draft = nil
	e.rectAnchor = nil
	e.pendingBuilding = ""
	e.pendingSymbol = nil
	e.pendingPhoto = nil
}

func (e *Engine) setTool(t Tool) {
	if e.tool == t {
		return
	}
	e.tool = t
	e.sink.ToolChanged(t)
}

// commitDraft converts a valid draft into its result: a feature for
// line/polygon, a profile run for altimetry, a bearing for azimuth.
// Invalid drafts (too few points) are silently ignored.
func (e *Engine) commitDraft() {
	switch e.tool {
	case ToolLine, ToolPolygon:
		if len(e.draft) < e.tool.minVertices() {
			return
		}
		ftype := board.TypeLine
		if e.tool == ToolPolygon {
			ftype = board.TypePolygon
		}
		e.commit(board.Feature{Type: ftype, Coords: e.draft})
		e.draft = nil
		if !e.tool.sticky() {
			e.setTool(ToolNone)
		}
	case ToolAltimetry:
		if len(e.draft) < 2 {
			return
		}
		line := e.draft
		e.draft = nil
		e.setTool(ToolNone)
		e.runAltimetry(line)
	case ToolAzimuth:
		if len(e.draft) >= 2 {
			deg := geodesy.Azimuth(e.draft[0], e.draft[len(e.draft)-1])
			e.sink.AzimuthMeasured(deg)
		}
		// ephemeral by design: nothing is persisted
		e.draft = nil
		e.setTool(ToolNone)
	}
}

func (e *Engine) commitRectangle(a, b geodesy.LatLng) {
	f := board.Feature{
		Type:         board.TypeRectangle,
		Coords:       board.RectangleCorners(a, b),
		BuildingName: e.pendingBuilding,
	}
	e.rectAnchor = nil
	e.pendingBuilding = ""
	e.commit(f)
	e.setTool(ToolNone)
}

func (e *Engine) commitSymbol(p geodesy.LatLng) {
	spec := e.pendingSymbol
	e.pendingSymbol = nil
	if spec == nil {
		e.setTool(ToolNone)
		return
	}
	f := board.Feature{
		Type:       board.TypeSymbol,
		At:         p,
		SymbolType: spec.Type,
		Label:      spec.Label,
		Emoji:      spec.Emoji,
	}
	if spec.Type == board.SymbolBuilding {
		f.Number = e.store.CountSymbols(board.SymbolBuilding) + 1
	}
	e.commit(f)
	e.setTool(ToolNone)
}

func (e *Engine) commitPhoto(p geodesy.LatLng) {
	pending := e.pendingPhoto
	e.pendingPhoto = nil
	if pending == nil {
		e.setTool(ToolNone)
		return
	}
	e.commit(board.Feature{
		Type:    board.TypePhoto,
		At:      p,
		PhotoID: pending.id,
		Number:  pending.number,
	})
	e.setTool(ToolNone)
}

func (e *Engine) commit(f board.Feature) {
	id, err := e.store.Add(f)
	if err != nil {
		// invalid commits are ignored without surfacing an error
		e.log.Warn("commit rejected", zap.Error(err))
		return
	}
	f.ID = id
	e.log.Info("feature committed",
		zap.String("id", id),
		zap.String("type", string(f.Type)))
	e.sink.FeatureCommitted(f)
}

// runAltimetry starts the asynchronous profile request. Each run carries
// its own cancellation, triggered by Escape or engine reset; a response
// arriving after cancellation is discarded, never applied.
func (e *Engine) runAltimetry(line []geodesy.LatLng) {
	if e.altimeter == nil {
		e.sink.Failed(errors.New("no elevation service configured"))
		return
	}
	e.altMu.Lock()
	if e.altBusy {
		e.altMu.Unlock()
		e.sink.Failed(errors.New("elevation profile already running"))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.altBusy = true
	e.altCancel = cancel
	e.altMu.Unlock()

	go func() {
		defer cancel()
		profile, err := e.altimeter.Profile(ctx, line)

		e.altMu.Lock()
		e.altBusy = false
		e.altCancel = nil
		e.altMu.Unlock()

		if ctx.Err() != nil {
			e.log.Info("altimetry cancelled, result discarded")
			return
		}
		if err != nil {
			e.sink.Failed(fmt.Errorf("altimetry: %w", err))
			return
		}
		e.sink.ProfileReady(profile)
	}()
}
