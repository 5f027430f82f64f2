// Package board holds the canonical collection of committed annotations
// ("features") for a survey document, plus their serialized forms. Derived
// display values (lengths, areas, labels) are always computed from the
// stored coordinates, never cached, so moving a feature keeps its
// measurements correct.
package board

import (
	"errors"
	"fmt"

	"fieldmap/internal/geodesy"
)

// FeatureType discriminates the payload carried by a Feature.
type FeatureType string

const (
	TypeLine      FeatureType = "line"
	TypePolygon   FeatureType = "polygon"
	TypeRectangle FeatureType = "rectangle"
	TypeSymbol    FeatureType = "symbol"
	TypePhoto     FeatureType = "photo"
	TypeText      FeatureType = "text"
)

// Feature is a single committed annotation. Exactly one payload group is
// meaningful for a given Type; the others stay at their zero values.
type Feature struct {
	ID   string      `json:"id"`
	Type FeatureType `json:"type"`

	// line, polygon, rectangle
	Coords []geodesy.LatLng `json:"coords,omitempty"`

	// rectangle only: rotation in degrees around the centroid, applied at
	// render/interaction time. The stored corners are never rewritten.
	Angle        float64 `json:"angle,omitempty"`
	BuildingName string  `json:"buildingName,omitempty"`

	// symbol, photo, text
	At geodesy.LatLng `json:"at,omitempty"`

	// symbol
	SymbolType string `json:"symbolType,omitempty"`
	Label      string `json:"label,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
	// Sequential index, assigned only to building symbols at placement
	// time; never renumbered on deletion.
	Number int `json:"number,omitempty"`

	// photo
	PhotoID string `json:"photoId,omitempty"`

	// text
	Value string `json:"value,omitempty"`
}

// Validate checks that the feature carries a well-formed payload for its
// type. Features failing validation are not valid commit targets.
func (f Feature) Validate() error {
	switch f.Type {
	case TypeLine:
		if len(f.Coords) < 2 {
			return errors.New("line needs at least 2 points")
		}
	case TypePolygon:
		if len(f.Coords) < 3 {
			return errors.New("polygon needs at least 3 points")
		}
	case TypeRectangle:
		if len(f.Coords) != 4 {
			return errors.New("rectangle needs exactly 4 corners")
		}
	case TypeSymbol:
		if f.SymbolType == "" {
			return errors.New("symbol needs a catalog type")
		}
	case TypePhoto:
		if f.PhotoID == "" {
			return errors.New("photo needs a photo id")
		}
	case TypeText:
		if f.Value == "" {
			return errors.New("text needs a value")
		}
	default:
		return fmt.Errorf("unknown feature type %q", f.Type)
	}
	return nil
}

// Length returns the path length in meters for line features, 0 otherwise.
func (f Feature) Length() float64 {
	if f.Type != TypeLine {
		return 0
	}
	return geodesy.PolylineLength(f.Coords)
}

// Area returns the enclosed area in square meters for polygon and
// rectangle features, 0 otherwise. Rotation does not change a rectangle's
// area, so the stored corners are used as is.
func (f Feature) Area() float64 {
	if f.Type != TypePolygon && f.Type != TypeRectangle {
		return 0
	}
	return geodesy.PolygonArea(f.Coords)
}

// Anchor returns the reference position of the feature: the point payload
// for point-like features, the coordinate centroid otherwise.
func (f Feature) Anchor() geodesy.LatLng {
	switch f.Type {
	case TypeSymbol, TypePhoto, TypeText:
		return f.At
	}
	c, _ := geodesy.Centroid(f.Coords)
	return c
}

// Translate shifts every stored coordinate by the given deltas. Used by
// the drag controller; the feature keeps its id and payload otherwise.
func (f *Feature) Translate(dLat, dLng float64) {
	for i := range f.Coords {
		f.Coords[i].Lat += dLat
		f.Coords[i].Lng += dLng
	}
	if f.Type == TypeSymbol || f.Type == TypePhoto || f.Type == TypeText {
		f.At.Lat += dLat
		f.At.Lng += dLng
	}
}

// MeasurementLabel returns the human-facing measurement for the feature:
// formatted length for lines, formatted area for polygons and rectangles,
// the label or value for point features.
func (f Feature) MeasurementLabel() string {
	switch f.Type {
	case TypeLine:
		return geodesy.FormatDistance(f.Length())
	case TypePolygon, TypeRectangle:
		return geodesy.FormatArea(f.Area())
	case TypeSymbol:
		if f.Number > 0 {
			return fmt.Sprintf("%s %d", f.Label, f.Number)
		}
		return f.Label
	case TypePhoto:
		return fmt.Sprintf("photo %d", f.Number)
	case TypeText:
		return f.Value
	}
	return ""
}

// RectangleCorners computes the 4 corners of the axis-aligned bounding box
// of two clicked corners, in fixed NW, NE, SE, SW order. This is the shape
// stored at rectangle commit time; rotation is applied later via Angle.
func RectangleCorners(a, b geodesy.LatLng) []geodesy.LatLng {
	minLat, maxLat := a.Lat, b.Lat
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	minLng, maxLng := a.Lng, b.Lng
	if minLng > maxLng {
		minLng, maxLng = maxLng, minLng
	}
	return []geodesy.LatLng{
		{Lat: maxLat, Lng: minLng}, // NW
		{Lat: maxLat, Lng: maxLng}, // NE
		{Lat: minLat, Lng: maxLng}, // SE
		{Lat: minLat, Lng: minLng}, // SW
	}
}
