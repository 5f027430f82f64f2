package geodesy

import "fmt"

// FormatDistance renders a length in meters below 1 km and in kilometers
// with two decimals above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatArea renders an area in square meters below one hectare and in
// hectares with two decimals above.
func FormatArea(squareMeters float64) string {
	if squareMeters < 10000 {
		return fmt.Sprintf("%.0f m²", squareMeters)
	}
	return fmt.Sprintf("%.2f ha", squareMeters/10000)
}

// FormatLatLng renders a coordinate pair to six decimals, the precision
// used for copy-to-clipboard and inspection popups.
func FormatLatLng(p LatLng) string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng)
}
