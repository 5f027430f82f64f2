package board

import (
	"io"

	kml "github.com/twpayne/go-kml/v2"
)

// WriteKML exports the board as a KML document for hand-off to GIS tools.
// Rectangles are exported as polygons of their stored (unrotated) corners;
// point-like features become placemarks with the catalog label.
func WriteKML(s *Store, name string, w io.Writer) error {
	doc := kml.Document(kml.Name(name))
	for _, f := range s.List() {
		doc.Add(placemark(f))
	}
	return kml.KML(doc).WriteIndent(w, "", "  ")
}

func placemark(f Feature) kml.Element {
	switch f.Type {
	case TypeLine:
		return kml.Placemark(
			kml.Name(f.MeasurementLabel()),
			kml.LineString(kml.Coordinates(coordinates(f)...)),
		)
	case TypePolygon, TypeRectangle:
		name := f.MeasurementLabel()
		if f.BuildingName != "" {
			name = f.BuildingName
		}
		ring := coordinates(f)
		if len(ring) > 0 {
			ring = append(ring, ring[0]) // close the ring
		}
		return kml.Placemark(
			kml.Name(name),
			kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(ring...)))),
		)
	default:
		return kml.Placemark(
			kml.Name(f.MeasurementLabel()),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: f.At.Lng, Lat: f.At.Lat})),
		)
	}
}

func coordinates(f Feature) []kml.Coordinate {
	cs := make([]kml.Coordinate, len(f.Coords))
	for i, p := range f.Coords {
		cs[i] = kml.Coordinate{Lon: p.Lng, Lat: p.Lat}
	}
	return cs
}
