package editor

import (
	"errors"
	"math"

	"fieldmap/internal/board"
	"fieldmap/internal/geodesy"
)

// PointInfo is the result of inspecting a position: a pure report, no
// feature is created.
type PointInfo struct {
	At        geodesy.LatLng
	Formatted string // lat/lng to 6 decimals
	// Nearest committed feature, if the board is non-empty.
	NearestID       string
	NearestType     board.FeatureType
	NearestDistance float64 // meters to the feature's anchor
}

// FormatCoordinates renders a position for copy-to-clipboard, lat/lng to
// six decimals.
func (e *Engine) FormatCoordinates(p geodesy.LatLng) string {
	return geodesy.FormatLatLng(p)
}

// InspectPoint reports on a position without mutating anything. Dropping
// a site marker is a separate, explicit action (DropSiteMarker).
func (e *Engine) InspectPoint(p geodesy.LatLng) PointInfo {
	info := PointInfo{At: p, Formatted: geodesy.FormatLatLng(p)}
	best := math.Inf(1)
	for _, f := range e.store.List() {
		d := geodesy.Distance(p, f.Anchor())
		if d < best {
			best = d
			info.NearestID = f.ID
			info.NearestType = f.Type
			info.NearestDistance = d
		}
	}
	return info
}

// DropSiteMarker places a "site" catalog symbol at the position and
// returns the new feature id.
func (e *Engine) DropSiteMarker(p geodesy.LatLng) (string, error) {
	spec, ok := board.CatalogSpec(board.SymbolSite)
	if !ok {
		return "", errors.New("site symbol missing from catalog")
	}
	id, err := e.store.Add(board.Feature{
		Type:       board.TypeSymbol,
		At:         p,
		SymbolType: spec.Type,
		Label:      spec.Label,
		Emoji:      spec.Emoji,
	})
	if err != nil {
		return "", err
	}
	e.menuAt = nil
	return id, nil
}

// AddText places a free-text label at the position.
func (e *Engine) AddText(p geodesy.LatLng, value string) (string, error) {
	id, err := e.store.Add(board.Feature{Type: board.TypeText, At: p, Value: value})
	if err != nil {
		return "", err
	}
	e.menuAt = nil
	return id, nil
}
