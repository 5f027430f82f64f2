package editor

import (
	"math"

	"go.uber.org/zap"

	"fieldmap/internal/board"
	"fieldmap/internal/geodesy"
)

// Hit-test tolerances, in the Projection's screen units.
const (
	hitRadius    = 8.0
	handleRadius = 4.0
)

// handle offset from the rectangle's NE corner, in screen units
const (
	handleDX = 4.0
	handleDY = -3.0
)

type dragKind int

const (
	dragMove dragKind = iota
	dragRotate
)

// dragSession is the modal state of an in-progress move or rotate. While
// it exists it owns every pointer-move event until pointer-up, excluding
// any other gesture recognition including tool-mode clicks.
type dragSession struct {
	kind      dragKind
	featureID string
	anchor    geodesy.LatLng
}

// PressAt begins a drag session from a secondary-button press while no
// tool mode is active: on a rectangle's rotate handle it starts a rotate,
// on a feature body a move. It reports whether a session began; when it
// did not, the host may treat the release as a context-menu request.
func (e *Engine) PressAt(p geodesy.LatLng) bool {
	if e.tool != ToolNone || e.drag != nil {
		return false
	}
	sp := e.proj.ToScreen(p)

	for _, f := range e.store.List() {
		if f.Type != board.TypeRectangle {
			continue
		}
		h := RotateHandle(e.proj, f)
		if screenDist(h, sp) <= handleRadius {
			e.drag = &dragSession{kind: dragRotate, featureID: f.ID, anchor: p}
			e.selected = f.ID
			return true
		}
	}

	if id, ok := e.hitTest(p); ok {
		e.drag = &dragSession{kind: dragMove, featureID: id, anchor: p}
		e.selected = id
		return true
	}
	return false
}

// MouseMove advances the active drag session. Moves translate the feature
// by the pointer delta since the previous event, updating the anchor each
// time; rotates store the angle between the rectangle's centroid and the
// pointer in projected screen space.
func (e *Engine) MouseMove(p geodesy.LatLng) {
	if e.drag == nil {
		return
	}
	switch e.drag.kind {
	case dragMove:
		dLat := p.Lat - e.drag.anchor.Lat
		dLng := p.Lng - e.drag.anchor.Lng
		e.store.Update(e.drag.featureID, func(f *board.Feature) {
			f.Translate(dLat, dLng)
		})
		e.drag.anchor = p
	case dragRotate:
		f, ok := e.store.Get(e.drag.featureID)
		if !ok {
			e.drag = nil
			return
		}
		c, ok := geodesy.Centroid(f.Coords)
		if !ok {
			return
		}
		cs := e.proj.ToScreen(c)
		ps := e.proj.ToScreen(p)
		angle := math.Atan2(ps.Y-cs.Y, ps.X-cs.X) * 180 / math.Pi
		e.store.Update(e.drag.featureID, func(f *board.Feature) {
			f.Angle = angle
		})
	}
}

// MouseUp ends the drag session, releasing pointer input back to the tool
// state machine.
func (e *Engine) MouseUp() {
	if e.drag == nil {
		return
	}
	e.log.Debug("drag finished", zap.String("id", e.drag.featureID))
	e.drag = nil
}

// hitTest returns the topmost feature at the given position, testing in
// reverse insertion order.
func (e *Engine) hitTest(p geodesy.LatLng) (string, bool) {
	sp := e.proj.ToScreen(p)
	features := e.store.List()
	for i := len(features) - 1; i >= 0; i-- {
		if e.hits(features[i], sp) {
			return features[i].ID, true
		}
	}
	return "", false
}

func (e *Engine) hits(f board.Feature, sp ScreenPoint) bool {
	switch f.Type {
	case board.TypeSymbol, board.TypePhoto, board.TypeText:
		return screenDist(e.proj.ToScreen(f.At), sp) <= hitRadius
	case board.TypeLine:
		for i := 0; i+1 < len(f.Coords); i++ {
			a := e.proj.ToScreen(f.Coords[i])
			b := e.proj.ToScreen(f.Coords[i+1])
			if distToSegment(sp, a, b) <= hitRadius {
				return true
			}
		}
		return false
	case board.TypePolygon:
		return e.inRing(f.Coords, sp)
	case board.TypeRectangle:
		return e.inRing(RotatedCorners(e.proj, f), sp)
	}
	return false
}

// inRing tests point-in-polygon in screen space with an even-odd crossing
// rule.
func (e *Engine) inRing(ring []geodesy.LatLng, sp ScreenPoint) bool {
	if len(ring) < 3 {
		return false
	}
	inside := false
	for i := range ring {
		a := e.proj.ToScreen(ring[i])
		b := e.proj.ToScreen(ring[(i+1)%len(ring)])
		if (a.Y > sp.Y) != (b.Y > sp.Y) {
			x := a.X + (sp.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if sp.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// RotatedCorners applies a rectangle's rotation angle to its stored
// corners, rotating around the centroid in the projection's screen space.
// The stored corners themselves are never rewritten by rotation.
func RotatedCorners(proj Projection, f board.Feature) []geodesy.LatLng {
	if f.Type != board.TypeRectangle || f.Angle == 0 {
		return f.Coords
	}
	c, ok := geodesy.Centroid(f.Coords)
	if !ok {
		return f.Coords
	}
	cs := proj.ToScreen(c)
	sin, cos := math.Sincos(f.Angle * math.Pi / 180)
	out := make([]geodesy.LatLng, len(f.Coords))
	for i, corner := range f.Coords {
		v := proj.ToScreen(corner)
		dx, dy := v.X-cs.X, v.Y-cs.Y
		out[i] = proj.ToLatLng(ScreenPoint{
			X: cs.X + dx*cos - dy*sin,
			Y: cs.Y + dx*sin + dy*cos,
		})
	}
	return out
}

// RotateHandle returns the screen position of a rectangle's rotate
// handle, offset from its (rotated) NE corner. The host renders a grip
// glyph there; presses within handleRadius of it start a rotate.
func RotateHandle(proj Projection, f board.Feature) ScreenPoint {
	corners := RotatedCorners(proj, f)
	if len(corners) < 2 {
		return ScreenPoint{}
	}
	ne := proj.ToScreen(corners[1])
	return ScreenPoint{X: ne.X + handleDX, Y: ne.Y + handleDY}
}

func screenDist(a, b ScreenPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// distToSegment is the distance from p to the segment ab in screen space.
func distToSegment(p, a, b ScreenPoint) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return screenDist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return screenDist(p, ScreenPoint{X: a.X + t*dx, Y: a.Y + t*dy})
}
