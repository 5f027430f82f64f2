package tui

import (
	"math"

	"fieldmap/internal/editor"
	"fieldmap/internal/geodesy"
)

// baseScale is micro-pixels per degree of latitude at zoom 1. With an 80
// column terminal the map spans roughly 0.08 degrees, a few kilometers,
// which suits a single survey site.
const baseScale = 2000.0

// Viewport is the live map projection: an equirectangular mapping around
// the view center onto the braille micro-pixel grid (2x4 per cell). It
// implements the editor's Projection, so drawing, hit-testing and
// rotation all share one coordinate space.
type Viewport struct {
	Center geodesy.LatLng
	Zoom   float64
	Cols   int // map area width in cells
	Rows   int // map area height in cells
}

func NewViewport(center geodesy.LatLng, zoom float64) *Viewport {
	if zoom <= 0 {
		zoom = 1.0
	}
	return &Viewport{Center: center, Zoom: zoom, Cols: 80, Rows: 24}
}

// scales returns micro-pixels per degree of longitude and latitude.
// Longitude shrinks with cos(lat) so shapes keep their ground aspect.
func (v *Viewport) scales() (sx, sy float64) {
	sy = baseScale * v.Zoom
	sx = sy * math.Cos(v.Center.Lat*math.Pi/180)
	if sx < 1e-9 {
		sx = 1e-9
	}
	return sx, sy
}

func (v *Viewport) ToScreen(p geodesy.LatLng) editor.ScreenPoint {
	sx, sy := v.scales()
	return editor.ScreenPoint{
		X: float64(v.Cols) + (p.Lng-v.Center.Lng)*sx,
		Y: float64(v.Rows*2) + (v.Center.Lat-p.Lat)*sy,
	}
}

func (v *Viewport) ToLatLng(sp editor.ScreenPoint) geodesy.LatLng {
	sx, sy := v.scales()
	return geodesy.LatLng{
		Lat: v.Center.Lat - (sp.Y-float64(v.Rows*2))/sy,
		Lng: v.Center.Lng + (sp.X-float64(v.Cols))/sx,
	}
}

// CellToLatLng converts a map-area cell coordinate (column, row) to the
// geographic position at the cell's micro-pixel center.
func (v *Viewport) CellToLatLng(cx, cy int) geodesy.LatLng {
	return v.ToLatLng(editor.ScreenPoint{X: float64(cx*2) + 0.5, Y: float64(cy*4) + 1.5})
}

// Pan shifts the view center by whole cells.
func (v *Viewport) Pan(dxCells, dyCells int) {
	sx, sy := v.scales()
	v.Center.Lng += float64(dxCells*2) / sx
	v.Center.Lat -= float64(dyCells*4) / sy
	v.Center.Lat = clampf(v.Center.Lat, -85, 85)
}

func (v *Viewport) ZoomIn() {
	if v.Zoom < 64 {
		v.Zoom *= 1.2
	}
}

func (v *Viewport) ZoomOut() {
	if v.Zoom > 0.05 {
		v.Zoom /= 1.2
	}
}

// Fit recenters on the midpoint of the given bounds and picks a zoom
// that keeps them fully visible with a small margin.
func (v *Viewport) Fit(min, max geodesy.LatLng) {
	v.Center = geodesy.LatLng{
		Lat: (min.Lat + max.Lat) / 2,
		Lng: (min.Lng + max.Lng) / 2,
	}
	dLat := max.Lat - min.Lat
	dLng := (max.Lng - min.Lng) * math.Cos(v.Center.Lat*math.Pi/180)
	span := math.Max(dLat, dLng)
	if span < 1e-9 {
		return
	}
	// fit the span into 80% of the smaller screen dimension
	micro := math.Min(float64(v.Cols*2), float64(v.Rows*4)) * 0.8
	v.Zoom = clampf(micro/(span*baseScale), 0.05, 64)
}
