package board

import (
	"errors"
	"strconv"
	"strings"

	"fieldmap/internal/geodesy"
)

// ParseWKT parses a pasted WKT LINESTRING or POLYGON into an uncommitted
// line/polygon feature. Coordinates are "lng lat" tuples per WKT
// convention. Only the outer ring of a polygon is kept.
func ParseWKT(wkt string) (Feature, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return Feature{}, errors.New("empty wkt")
	}
	up := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(up, "LINESTRING"):
		i := strings.Index(s, "(")
		j := strings.LastIndex(s, ")")
		if i < 0 || j <= i {
			return Feature{}, errors.New("wkt linestring: invalid")
		}
		pts := parseTuples(s[i+1 : j])
		f := Feature{Type: TypeLine, Coords: pts}
		if err := f.Validate(); err != nil {
			return Feature{}, err
		}
		return f, nil
	case strings.HasPrefix(up, "POLYGON"):
		i := strings.Index(s, "((")
		j := strings.LastIndex(s, "))")
		if i < 0 || j <= i {
			return Feature{}, errors.New("wkt polygon: invalid")
		}
		outer := s[i+2 : j]
		if k := strings.Index(outer, ")"); k >= 0 {
			outer = outer[:k]
		}
		pts := parseTuples(outer)
		// drop an explicit closing vertex, the ring is implicit
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		f := Feature{Type: TypePolygon, Coords: pts}
		if err := f.Validate(); err != nil {
			return Feature{}, err
		}
		return f, nil
	}
	return Feature{}, errors.New("unsupported wkt type")
}

func parseTuples(block string) []geodesy.LatLng {
	var out []geodesy.LatLng
	for _, tup := range strings.Split(block, ",") {
		parts := strings.Fields(strings.TrimSpace(tup))
		if len(parts) < 2 {
			continue
		}
		lng, e1 := strconv.ParseFloat(parts[0], 64)
		lat, e2 := strconv.ParseFloat(parts[1], 64)
		if e1 != nil || e2 != nil {
			continue
		}
		out = append(out, geodesy.LatLng{Lat: lat, Lng: lng})
	}
	return out
}
