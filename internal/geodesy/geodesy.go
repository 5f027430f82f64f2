// Package geodesy holds the pure geodesic math the annotation engine is
// built on: great-circle distances, spherical areas, bearings and
// distance-based sampling along paths. Everything operates on geographic
// coordinates and is approximate at continental scale but accurate at the
// tens-of-kilometres extents the survey tool works with.
package geodesy

import "math"

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle distance between a and b in meters,
// using the haversine formula.
func Distance(a, b LatLng) float64 {
	if a == b {
		return 0
	}
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dlat := toRad(b.Lat - a.Lat)
	dlng := toRad(b.Lng - a.Lng)

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// PolylineLength returns the cumulative great-circle length of the path in
// meters. Paths with fewer than 2 points have length 0.
func PolylineLength(points []LatLng) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += Distance(points[i], points[i+1])
	}
	return total
}

// PolygonArea returns the approximate spherical area of the polygon in
// square meters, via a shoelace-style summation in radians. Rings with
// fewer than 3 vertices have area 0. The approximation holds for the small
// extents the tool is used at; it is not an ellipsoidal computation.
func PolygonArea(points []LatLng) float64 {
	if len(points) < 3 {
		return 0
	}
	sum := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		sum += (toRad(points[j].Lng) - toRad(points[i].Lng)) *
			(2 + math.Sin(toRad(points[i].Lat)) + math.Sin(toRad(points[j].Lat)))
	}
	return math.Abs(sum * EarthRadius * EarthRadius / 2)
}

// Centroid returns the arithmetic mean of the coordinates, a planar
// approximation that is fine at survey scale. ok is false for empty input.
func Centroid(points []LatLng) (c LatLng, ok bool) {
	if len(points) == 0 {
		return LatLng{}, false
	}
	for _, p := range points {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}
	c.Lat /= float64(len(points))
	c.Lng /= float64(len(points))
	return c, true
}

// Azimuth returns the bearing from a to b in the survey tool's convention:
// 0° points south, ±180° north, 90° west and -90° east, normalized to
// (-180, 180]. This is the standard compass bearing shifted by 180° with
// east/west sign-flipped; sightline reports rely on it, so keep it as is.
func Azimuth(a, b LatLng) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dlng := toRad(b.Lng - a.Lng)

	y := math.Sin(dlng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlng)
	compass := math.Mod(toDeg(math.Atan2(y, x))+360, 360)

	az := compass - 180
	if az <= -180 {
		az += 360
	}
	return az
}

// Interpolate returns the point a fraction t of the way from a to b.
// Linear in lat/lng, which is adequate for the short segments drawn here.
func Interpolate(a, b LatLng, t float64) LatLng {
	return LatLng{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lng: a.Lng + t*(b.Lng-a.Lng),
	}
}

// MidpointAlongLine returns the point at half the cumulative path length,
// interpolated by distance along the segments. It is not the arithmetic
// midpoint of the endpoints. ok is false for paths shorter than 2 points.
func MidpointAlongLine(points []LatLng) (LatLng, bool) {
	if len(points) == 0 {
		return LatLng{}, false
	}
	if len(points) == 1 {
		return points[0], true
	}
	half := PolylineLength(points) / 2
	if half == 0 {
		return points[0], true
	}
	walked := 0.0
	for i := 0; i+1 < len(points); i++ {
		seg := Distance(points[i], points[i+1])
		if walked+seg >= half && seg > 0 {
			return Interpolate(points[i], points[i+1], (half-walked)/seg), true
		}
		walked += seg
	}
	return points[len(points)-1], true
}
