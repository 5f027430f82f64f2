package editor

import (
	"context"

	"fieldmap/internal/altimetry"
	"fieldmap/internal/board"
	"fieldmap/internal/geodesy"
)

// Tool is the currently-active drawing/editing behavior. At most one tool
// is active; activating a new one discards any unfinished draft.
type Tool int

const (
	ToolNone Tool = iota
	ToolLine
	ToolPolygon
	ToolRectangle
	ToolAltimetry
	ToolAzimuth
	ToolDelete
	ToolSymbol
	ToolPhoto
)

func (t Tool) String() string {
	switch t {
	case ToolNone:
		return "none"
	case ToolLine:
		return "line"
	case ToolPolygon:
		return "polygon"
	case ToolRectangle:
		return "rectangle"
	case ToolAltimetry:
		return "altimetry"
	case ToolAzimuth:
		return "azimuth"
	case ToolDelete:
		return "delete"
	case ToolSymbol:
		return "symbol"
	case ToolPhoto:
		return "photo"
	}
	return "unknown"
}

// sticky tools re-arm after a successful commit; the others exit to
// ToolNone after one shape. The asymmetry is intended behavior.
func (t Tool) sticky() bool {
	return t == ToolLine || t == ToolPolygon || t == ToolDelete
}

// minVertices is the smallest committable draft for multi-click tools.
func (t Tool) minVertices() int {
	switch t {
	case ToolPolygon:
		return 3
	case ToolLine, ToolAltimetry, ToolAzimuth:
		return 2
	}
	return 0
}

// Key is the subset of keyboard input the engine interprets.
type Key int

const (
	KeyEscape Key = iota
	KeyEnter
	KeyDelete // delete or backspace
	KeyDropVertex
)

// ScreenPoint is a position in the host view's projected space. The units
// are whatever the Projection produces; the engine only compares relative
// distances in them.
type ScreenPoint struct {
	X float64
	Y float64
}

// Projection converts between geographic coordinates and the host view's
// screen space. The host injects its live viewport so rotation and
// hit-testing stay independent of any particular rendering library.
type Projection interface {
	ToScreen(geodesy.LatLng) ScreenPoint
	ToLatLng(ScreenPoint) geodesy.LatLng
}

// EventSink receives engine-to-host notifications. Methods are invoked
// synchronously from input handling, except ProfileReady and Failed for
// altimetry results, which arrive from the profile goroutine; sink
// implementations must be safe for that.
type EventSink interface {
	ToolChanged(Tool)
	FeatureCommitted(board.Feature)
	AzimuthMeasured(degrees float64)
	ProfileReady(*altimetry.Profile)
	Failed(err error)
}

// Altimeter runs elevation profiles; satisfied by *altimetry.Service.
type Altimeter interface {
	Profile(ctx context.Context, line []geodesy.LatLng) (*altimetry.Profile, error)
}
