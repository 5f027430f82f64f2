// Package altimetry turns a drafted path into an elevation profile: it
// samples the path by distance, fetches elevations from the external
// elevation service in one batch, and derives gain/slope statistics. The
// profile is a side report; nothing here writes into the feature board.
package altimetry

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"fieldmap/internal/geodesy"
)

// ProfilePoint is one sample of the elevation profile: cumulative distance
// from the start of the path, in meters, and altitude in meters.
type ProfilePoint struct {
	Distance float64 `json:"distance"`
	Altitude float64 `json:"altitude"`
}

// Stats are the derived statistics of a profile. Slopes are percentages.
type Stats struct {
	TotalDistance float64 `json:"totalDistance"`
	GainPositive  float64 `json:"gainPositive"`
	GainNegative  float64 `json:"gainNegative"`
	AvgSlope      float64 `json:"avgSlope"`
	MaxSlope      float64 `json:"maxSlope"`
}

// Profile is the result of an altimetry run.
type Profile struct {
	Points []ProfilePoint `json:"profile"`
	Stats  Stats          `json:"stats"`
}

// ElevationSource is the external elevation service contract: one batch
// request, elevations aligned index-for-index with the input points.
type ElevationSource interface {
	Elevations(ctx context.Context, points []geodesy.LatLng) ([]float64, error)
}

// Service runs elevation profiles against an ElevationSource.
type Service struct {
	source ElevationSource
	log    *zap.Logger
}

// NewService wires a profile service to its elevation source.
func NewService(source ElevationSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{source: source, log: log}
}

// SampleBudget returns the target number of samples for a path of the
// given length in meters: one sample per 5 m, clamped to [10, 100].
func SampleBudget(totalLength float64) int {
	n := int(math.Round(totalLength / 5))
	if n < 10 {
		n = 10
	}
	if n > 100 {
		n = 100
	}
	return n
}

// SamplePath distributes budget samples across the path's segments
// proportionally to each segment's share of the total length, with at
// least one sample per segment, interpolating linearly. The final
// endpoint is always included.
func SamplePath(points []geodesy.LatLng, budget int) []geodesy.LatLng {
	if len(points) < 2 {
		return nil
	}
	total := geodesy.PolylineLength(points)
	var samples []geodesy.LatLng
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		steps := 1
		if total > 0 {
			steps = int(math.Round(float64(budget) * geodesy.Distance(a, b) / total))
			if steps < 1 {
				steps = 1
			}
		}
		for k := 0; k < steps; k++ {
			samples = append(samples, geodesy.Interpolate(a, b, float64(k)/float64(steps)))
		}
	}
	return append(samples, points[len(points)-1])
}

// BuildProfile walks the samples in order, pairing each with its
// elevation, and accumulates distance, elevation gain/loss and slopes.
func BuildProfile(samples []geodesy.LatLng, elevations []float64) (*Profile, error) {
	if len(samples) != len(elevations) {
		return nil, fmt.Errorf("elevation count mismatch: %d points, %d elevations", len(samples), len(elevations))
	}
	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}

	p := &Profile{Points: make([]ProfilePoint, len(samples))}
	p.Points[0] = ProfilePoint{Distance: 0, Altitude: elevations[0]}

	cumulative := 0.0
	for i := 1; i < len(samples); i++ {
		step := geodesy.Distance(samples[i-1], samples[i])
		cumulative += step
		p.Points[i] = ProfilePoint{Distance: cumulative, Altitude: elevations[i]}

		delta := elevations[i] - elevations[i-1]
		if delta > 0 {
			p.Stats.GainPositive += delta
		} else {
			p.Stats.GainNegative += -delta
		}
		if step > 0 {
			slope := math.Abs(delta/step) * 100
			if slope > p.Stats.MaxSlope {
				p.Stats.MaxSlope = slope
			}
		}
	}
	p.Stats.TotalDistance = cumulative
	if cumulative > 0 {
		p.Stats.AvgSlope = (p.Stats.GainPositive + p.Stats.GainNegative) / cumulative * 100
	}
	return p, nil
}

// Profile samples the drafted line, batch-requests elevations and returns
// the profile with statistics. The context carries the caller's
// cancellation: a cancelled run returns the context error and the partial
// result is discarded.
func (s *Service) Profile(ctx context.Context, line []geodesy.LatLng) (*Profile, error) {
	if len(line) < 2 {
		return nil, errors.New("altimetry needs at least 2 points")
	}

	length := geodesy.PolylineLength(line)
	samples := SamplePath(line, SampleBudget(length))
	s.log.Debug("sampling path",
		zap.Float64("length_m", length),
		zap.Int("samples", len(samples)))

	elevations, err := s.source.Elevations(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("fetch elevations: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BuildProfile(samples, elevations)
}
