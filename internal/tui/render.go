package tui

import (
	"sort"
	"strconv"
	"strings"

	"fieldmap/internal/board"
	"fieldmap/internal/editor"
	"fieldmap/internal/geodesy"
)

// renderMap draws the committed features, the in-progress draft and the
// selection marks onto a braille canvas of the given cell size.
func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)

	type glyphAt struct {
		cx, cy int
		text   string
		styled bool
	}
	var glyphs []glyphAt

	micro := func(p geodesy.LatLng) (int, int) {
		sp := m.vp.ToScreen(p)
		return int(sp.X), int(sp.Y)
	}

	for _, f := range m.store.List() {
		selected := f.ID == m.engine.Selected()
		switch f.Type {
		case board.TypeLine:
			drawPath(br, m.vp, f.Coords, false)
			if mid, ok := geodesy.MidpointAlongLine(f.Coords); ok {
				mx, my := micro(mid)
				glyphs = append(glyphs, glyphAt{mx / 2, my / 4, f.MeasurementLabel(), false})
			}
		case board.TypePolygon:
			drawPath(br, m.vp, f.Coords, true)
			fillRing(br, m.vp, f.Coords, w, h)
			if c, ok := geodesy.Centroid(f.Coords); ok {
				mx, my := micro(c)
				glyphs = append(glyphs, glyphAt{mx / 2, my / 4, f.MeasurementLabel(), false})
			}
		case board.TypeRectangle:
			corners := editor.RotatedCorners(m.vp, f)
			drawPath(br, m.vp, corners, true)
			if f.BuildingName != "" {
				if c, ok := geodesy.Centroid(corners); ok {
					mx, my := micro(c)
					glyphs = append(glyphs, glyphAt{mx / 2, my / 4, f.BuildingName, false})
				}
			}
			if selected {
				hp := editor.RotateHandle(m.vp, f)
				glyphs = append(glyphs, glyphAt{int(hp.X) / 2, int(hp.Y) / 4, "+", true})
			}
		case board.TypeSymbol:
			mx, my := micro(f.At)
			text := f.Emoji
			if f.SymbolType == board.SymbolBuilding && f.Number > 0 {
				text += strconv.Itoa(f.Number)
			}
			glyphs = append(glyphs, glyphAt{mx / 2, my / 4, text, false})
		case board.TypePhoto:
			mx, my := micro(f.At)
			glyphs = append(glyphs, glyphAt{mx / 2, my / 4, "📷" + strconv.Itoa(f.Number), false})
		case board.TypeText:
			mx, my := micro(f.At)
			glyphs = append(glyphs, glyphAt{mx / 2, my / 4, f.Value, false})
		}
		if selected {
			mx, my := micro(f.Anchor())
			glyphs = append(glyphs, glyphAt{mx / 2, my / 4, "◉", true})
		}
	}

	// in-progress draft: open polyline plus a marker on each vertex
	draft := m.engine.Draft()
	drawPath(br, m.vp, draft, false)
	for _, p := range draft {
		mx, my := micro(p)
		br.setPixel(mx, my)
	}
	if anchor, ok := m.engine.RectAnchor(); ok {
		mx, my := micro(anchor)
		glyphs = append(glyphs, glyphAt{mx / 2, my / 4, "┼", true})
	}

	lines := br.toLines()

	// context menu marker
	if at, open := m.engine.MenuAt(); open {
		mx, my := micro(at)
		glyphs = append(glyphs, glyphAt{mx / 2, my / 4, "▣", true})
	}

	for _, g := range glyphs {
		if g.cy < 0 || g.cy >= len(lines) {
			continue
		}
		lines[g.cy] = spliceGlyph(lines[g.cy], g.cx, g.text, g.styled)
	}
	return strings.Join(lines, "\n")
}

// drawPath draws the vertices of a path as connected micro segments,
// closing the ring when closed is set.
func drawPath(br *brailleBuf, vp *Viewport, path []geodesy.LatLng, closed bool) {
	if len(path) < 2 {
		return
	}
	n := len(path)
	limit := n - 1
	if closed {
		limit = n
	}
	for i := 0; i < limit; i++ {
		a := vp.ToScreen(path[i])
		b := vp.ToScreen(path[(i+1)%n])
		br.drawLineMicro(int(a.X), int(a.Y), int(b.X), int(b.Y))
	}
}

// fillRing shades a ring interior per scanline with an even-odd rule.
func fillRing(br *brailleBuf, vp *Viewport, ring []geodesy.LatLng, w, h int) {
	if len(ring) < 3 {
		return
	}
	pts := make([][2]int, len(ring))
	for i, p := range ring {
		sp := vp.ToScreen(p)
		pts[i] = [2]int{int(sp.X), int(sp.Y)}
	}
	hMic := h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(pts); i++ {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if a[1] == b[1] { // horizontal edge: skip
				continue
			}
			if (yMic >= a[1] && yMic < b[1]) || (yMic >= b[1] && yMic < a[1]) {
				t := float64(yMic-a[1]) / float64(b[1]-a[1])
				xs = append(xs, a[0]+int(t*float64(b[0]-a[0])))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			// shade sparsely so edges stay readable
			for xMic := max(0, xs[i]); xMic <= xs[i+1] && xMic < w*2; xMic += 3 {
				br.setPixel(xMic, yMic)
			}
		}
	}
}

// spliceGlyph overwrites cells of a rendered line with a text overlay
// starting at cell cx.
func spliceGlyph(line string, cx int, text string, styled bool) string {
	if text == "" {
		return line
	}
	r := []rune(line)
	if cx < 0 || cx >= len(r) {
		return line
	}
	gl := []rune(text)
	end := cx + len(gl)
	if end > len(r) {
		end = len(r)
		gl = gl[:end-cx]
	}
	rendered := string(gl)
	if styled {
		rendered = selectStyle.Render(rendered)
	}
	return string(r[:cx]) + rendered + string(r[end:])
}
