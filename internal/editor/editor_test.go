package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldmap/internal/altimetry"
	"fieldmap/internal/board"
	"fieldmap/internal/geodesy"
)

// flatProjection maps degrees to screen units linearly: 1e4 units per
// degree, Y growing southward. Plenty of resolution for hit tolerances.
type flatProjection struct{}

func (flatProjection) ToScreen(p geodesy.LatLng) ScreenPoint {
	return ScreenPoint{X: p.Lng * 1e4, Y: -p.Lat * 1e4}
}

func (flatProjection) ToLatLng(sp ScreenPoint) geodesy.LatLng {
	return geodesy.LatLng{Lat: -sp.Y / 1e4, Lng: sp.X / 1e4}
}

// recordingSink captures engine notifications; safe for the altimetry
// goroutine.
type recordingSink struct {
	mu        sync.Mutex
	tools     []Tool
	committed []board.Feature
	azimuths  []float64
	profiles  []*altimetry.Profile
	errs      []error
	notify    chan struct{}
}

func newSink() *recordingSink {
	return &recordingSink{notify: make(chan struct{}, 16)}
}

func (s *recordingSink) ToolChanged(t Tool) {
	s.mu.Lock()
	s.tools = append(s.tools, t)
	s.mu.Unlock()
}

func (s *recordingSink) FeatureCommitted(f board.Feature) {
	s.mu.Lock()
	s.committed = append(s.committed, f)
	s.mu.Unlock()
}

func (s *recordingSink) AzimuthMeasured(deg float64) {
	s.mu.Lock()
	s.azimuths = append(s.azimuths, deg)
	s.mu.Unlock()
}

func (s *recordingSink) ProfileReady(p *altimetry.Profile) {
	s.mu.Lock()
	s.profiles = append(s.profiles, p)
	s.mu.Unlock()
	s.notify <- struct{}{}
}

func (s *recordingSink) Failed(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *recordingSink) lastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[len(s.errs)-1]
}

func (s *recordingSink) profileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

type fakeAltimeter struct {
	mu      sync.Mutex
	delay   time.Duration
	err     error
	calls   int
	profile *altimetry.Profile
}

func (a *fakeAltimeter) Profile(ctx context.Context, line []geodesy.LatLng) (*altimetry.Profile, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	if a.profile != nil {
		return a.profile, nil
	}
	return &altimetry.Profile{Stats: altimetry.Stats{TotalDistance: geodesy.PolylineLength(line)}}, nil
}

func newEngine(t *testing.T) (*Engine, *board.Store, *recordingSink, *fakeAltimeter) {
	t.Helper()
	store := board.NewStore()
	sink := newSink()
	alt := &fakeAltimeter{}
	return New(store, flatProjection{}, sink, alt, nil), store, sink, alt
}

var (
	ptA = geodesy.LatLng{Lat: 45.00, Lng: 5.00}
	ptB = geodesy.LatLng{Lat: 45.01, Lng: 5.01}
	ptC = geodesy.LatLng{Lat: 45.02, Lng: 5.00}
)

func TestLineTool_CommitStaysArmed(t *testing.T) {
	e, store, sink, _ := newEngine(t)

	e.ActivateTool(ToolLine)
	e.Click(ptA)
	e.Click(ptB)
	e.DoubleClick()

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, board.TypeLine, list[0].Type)
	assert.Equal(t, []geodesy.LatLng{ptA, ptB}, list[0].Coords)

	// sticky: the tool stays armed for the next shape
	assert.Equal(t, ToolLine, e.Tool())
	assert.Empty(t, e.Draft())
	require.Len(t, sink.committed, 1)
}

func TestLineTool_EnterCommits(t *testing.T) {
	e, store, _, _ := newEngine(t)

	e.ActivateTool(ToolLine)
	e.Click(ptA)
	e.Click(ptB)
	e.KeyDown(KeyEnter)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, ToolLine, e.Tool())
}

func TestLineTool_TooFewPointsIgnored(t *testing.T) {
	e, store, sink, _ := newEngine(t)

	e.ActivateTool(ToolLine)
	e.Click(ptA)
	e.DoubleClick()

	// silently ignored: no feature, no error, draft intact
	assert.Equal(t, 0, store.Len())
	assert.Nil(t, sink.lastError())
	assert.Len(t, e.Draft(), 1)
}

func TestLineTool_EscapeDiscards(t *testing.T) {
	e, store, _, _ := newEngine(t)

	e.ActivateTool(ToolLine)
	e.Click(ptA)
	e.KeyDown(KeyEscape)

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, ToolNone, e.Tool())
	assert.Empty(t, e.Draft())
}

func TestLineTool_DropLastVertex(t *testing.T) {
	e, _, _, _ := newEngine(t)

	e.ActivateTool(ToolLine)
	e.Click(ptA)
	e.Click(ptB)
	e.KeyDown(KeyDropVertex)

	assert.Equal(t, []geodesy.LatLng{ptA}, e.Draft())

	// no-op on an empty draft
	e.KeyDown(KeyDropVertex)
	e.KeyDown(KeyDropVertex)
	assert.Empty(t, e.Draft())
}

func TestPolygonTool_MinThreeVertices(t *testing.T) {
	e, store, _, _ := newEngine(t)

	e.ActivateTool(ToolPolygon)
	e.Click(ptA)
	e.Click(ptB)
	e.DoubleClick()
	assert.Equal(t, 0, store.Len())

	e.Click(ptC)
	e.DoubleClick()
	require.Equal(t, 1, store.Len())
	assert.Equal(t, board.TypePolygon, store.List()[0].Type)
	assert.Equal(t, ToolPolygon, e.Tool())
}

func TestRectangleTool_TwoClicks(t *testing.T) {
	e, store, _, _ := newEngine(t)

	e.ActivateTool(ToolRectangle)
	e.Click(geodesy.LatLng{Lat: 0, Lng: 0})

	_, anchored := e.RectAnchor()
	assert.True(t, anchored)
	assert.Equal(t, 0, store.Len())

	e.Click(geodesy.LatLng{Lat: 1, Lng: 1})

	list := store.List()
	require.Len(t, list, 1)
	f := list[0]
	assert.Equal(t, board.TypeRectangle, f.Type)
	assert.Equal(t, 0.0, f.Angle)
	assert.Equal(t, board.RectangleCorners(
		geodesy.LatLng{Lat: 0, Lng: 0}, geodesy.LatLng{Lat: 1, Lng: 1}), f.Coords)

	// one-shot: rectangle exits its mode after a single shape
	assert.Equal(t, ToolNone, e.Tool())
}

func TestArmBuilding_NamesRectangle(t *testing.T) {
	e, store, _, _ := newEngine(t)

	e.ArmBuilding("Warehouse 3")
	assert.Equal(t, ToolRectangle, e.Tool())
	e.Click(geodesy.LatLng{Lat: 0, Lng: 0})
	e.Click(geodesy.LatLng{Lat: 1, Lng: 1})

	require.Equal(t, 1, store.Len())
	assert.Equal(t, "Warehouse 3", store.List()[0].BuildingName)
}

func TestAzimuthTool_EphemeralMeasurement(t *testing.T) {
	e, store, sink, _ := newEngine(t)

	e.ActivateTool(ToolAzimuth)
	e.Click(geodesy.LatLng{Lat: 45.0, Lng: 5.0})
	e.Click(geodesy.LatLng{Lat: 45.1, Lng: 5.0}) // due north
	e.DoubleClick()

	// nothing persisted, bearing reported, tool exits
	assert.Equal(t, 0, store.Len())
	require.Len(t, sink.azimuths, 1)
	assert.InDelta(t, 180, sink.azimuths[0], 0.01)
	assert.Equal(t, ToolNone, e.Tool())
}

func TestAzimuthTool_SinglePointJustExits(t *testing.T) {
	e, store, sink, _ := newEngine(t)

	e.ActivateTool(ToolAzimuth)
	e.Click(ptA)
	e.DoubleClick()

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, sink.azimuths)
	assert.Equal(t, ToolNone, e.Tool())
}

func TestSymbolPlacement_OneShot(t *testing.T) {
	e, store, _, _ := newEngine(t)

	spec, ok := board.CatalogSpec("antenna")
	require.True(t, ok)
	e.ArmSymbol(spec)
	assert.Equal(t, ToolSymbol, e.Tool())

	e.Click(ptA)

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, board.TypeSymbol, list[0].Type)
	assert.Equal(t, "antenna", list[0].SymbolType)
	assert.Equal(t, ptA, list[0].At)
	assert.Equal(t, 0, list[0].Number)
	assert.Equal(t, ToolNone, e.Tool())
}

func TestSymbolPlacement_BuildingNumbering(t *testing.T) {
	e, store, _, _ := newEngine(t)
	spec, _ := board.CatalogSpec(board.SymbolBuilding)

	e.ArmSymbol(spec)
	e.Click(ptA)
	e.ArmSymbol(spec)
	e.Click(ptB)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Number)
	assert.Equal(t, 2, list[1].Number)

	// numbers are never reassigned on deletion
	store.Remove(list[0].ID)
	e.ArmSymbol(spec)
	e.Click(ptC)
	list = store.List()
	assert.Equal(t, 2, list[len(list)-1].Number)
}

func TestPhotoPlacement(t *testing.T) {
	e, store, _, _ := newEngine(t)

	e.ArmPhoto("photo-123", 7)
	e.Click(ptB)

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, board.TypePhoto, list[0].Type)
	assert.Equal(t, "photo-123", list[0].PhotoID)
	assert.Equal(t, 7, list[0].Number)
	assert.Equal(t, ToolNone, e.Tool())
}

func TestActivateTool_DiscardsPreviousDraft(t *testing.T) {
	e, _, _, _ := newEngine(t)

	e.ActivateTool(ToolLine)
	e.Click(ptA)
	e.ActivateTool(ToolPolygon)

	assert.Empty(t, e.Draft())
	assert.Equal(t, ToolPolygon, e.Tool())
}

func TestActivateTool_SymbolNeedsPayload(t *testing.T) {
	e, _, sink, _ := newEngine(t)

	e.ActivateTool(ToolSymbol)
	assert.Equal(t, ToolNone, e.Tool())
	assert.Error(t, sink.lastError())
}

func TestDeleteTool_RemovesClickedFeature(t *testing.T) {
	e, store, _, _ := newEngine(t)
	id1, _ := store.Add(board.Feature{Type: board.TypeSymbol, SymbolType: "antenna", Label: "Antenna", At: ptA})
	id2, _ := store.Add(board.Feature{Type: board.TypeSymbol, SymbolType: "antenna", Label: "Antenna", At: ptC})

	e.ActivateTool(ToolDelete)
	e.Click(ptA)

	_, gone := store.Get(id1)
	assert.False(t, gone)
	_, kept := store.Get(id2)
	assert.True(t, kept)

	// delete mode is sticky until cancelled
	assert.Equal(t, ToolDelete, e.Tool())
	e.Click(geodesy.LatLng{Lat: 10, Lng: 10}) // empty space: no-op
	assert.Equal(t, 1, store.Len())
}

func TestSelection_DeleteKey(t *testing.T) {
	e, store, _, _ := newEngine(t)
	id, _ := store.Add(board.Feature{Type: board.TypeText, At: ptA, Value: "note"})
	other, _ := store.Add(board.Feature{Type: board.TypeText, At: ptC, Value: "keep"})

	e.Click(ptA)
	assert.Equal(t, id, e.Selected())

	e.KeyDown(KeyDelete)
	_, gone := store.Get(id)
	assert.False(t, gone)
	_, kept := store.Get(other)
	assert.True(t, kept)
	assert.Empty(t, e.Selected())

	// delete with nothing selected is a no-op
	e.KeyDown(KeyDelete)
	assert.Equal(t, 1, store.Len())
}

func TestSelection_ClickEmptyClears(t *testing.T) {
	e, store, _, _ := newEngine(t)
	id, _ := store.Add(board.Feature{Type: board.TypeText, At: ptA, Value: "note"})

	e.Click(ptA)
	require.Equal(t, id, e.Selected())

	e.Click(geodesy.LatLng{Lat: 20, Lng: 20})
	assert.Empty(t, e.Selected())
}

func TestContextMenu_OpenAndEscape(t *testing.T) {
	e, _, _, _ := newEngine(t)

	e.ContextMenu(ptA)
	at, open := e.MenuAt()
	require.True(t, open)
	assert.Equal(t, ptA, at)

	e.KeyDown(KeyEscape)
	_, open = e.MenuAt()
	assert.False(t, open)
}

func TestInspectPoint_PureQuery(t *testing.T) {
	e, store, _, _ := newEngine(t)
	id, _ := store.Add(board.Feature{Type: board.TypeSymbol, SymbolType: "antenna", Label: "Antenna", At: ptA})

	info := e.InspectPoint(ptB)
	assert.Equal(t, id, info.NearestID)
	assert.Equal(t, board.TypeSymbol, info.NearestType)
	assert.Greater(t, info.NearestDistance, 0.0)
	assert.Equal(t, "45.010000, 5.010000", info.Formatted)

	// inspection never mutates the board
	assert.Equal(t, 1, store.Len())
}

func TestDropSiteMarker_ExplicitMutation(t *testing.T) {
	e, store, _, _ := newEngine(t)

	id, err := e.DropSiteMarker(ptB)
	require.NoError(t, err)

	f, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, board.SymbolSite, f.SymbolType)
	assert.Equal(t, ptB, f.At)
}

func TestAddText(t *testing.T) {
	e, store, _, _ := newEngine(t)

	id, err := e.AddText(ptA, "access via north gate")
	require.NoError(t, err)
	f, _ := store.Get(id)
	assert.Equal(t, "access via north gate", f.Value)

	_, err = e.AddText(ptA, "")
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestAltimetry_CommitRunsProfileAndExits(t *testing.T) {
	e, store, sink, alt := newEngine(t)

	e.ActivateTool(ToolAltimetry)
	e.Click(ptA)
	e.Click(ptB)
	e.DoubleClick()

	assert.Equal(t, ToolNone, e.Tool())
	assert.Equal(t, 0, store.Len()) // a side report, never a feature

	select {
	case <-sink.notify:
	case <-time.After(time.Second):
		t.Fatal("profile never arrived")
	}
	assert.Equal(t, 1, sink.profileCount())
	assert.Equal(t, 1, alt.calls)
}

func TestAltimetry_FailureSurfacesError(t *testing.T) {
	e, store, sink, alt := newEngine(t)
	alt.err = errors.New("service down")

	e.ActivateTool(ToolAltimetry)
	e.Click(ptA)
	e.Click(ptB)
	e.KeyDown(KeyEnter)

	select {
	case <-sink.notify:
	case <-time.After(time.Second):
		t.Fatal("error never arrived")
	}
	require.Error(t, sink.lastError())
	assert.Contains(t, sink.lastError().Error(), "service down")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, ToolNone, e.Tool())
}

func TestAltimetry_EscapeCancelsInFlight(t *testing.T) {
	e, _, sink, alt := newEngine(t)
	alt.delay = 5 * time.Second

	e.ActivateTool(ToolAltimetry)
	e.Click(ptA)
	e.Click(ptB)
	e.DoubleClick()
	require.True(t, e.AltimetryBusy())

	e.KeyDown(KeyEscape)

	// the stale response must be discarded, not applied
	deadline := time.Now().Add(time.Second)
	for e.AltimetryBusy() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.False(t, e.AltimetryBusy())
	assert.Equal(t, 0, sink.profileCount())
}

func TestAltimetry_BusyGuardsReactivation(t *testing.T) {
	e, _, sink, alt := newEngine(t)
	alt.delay = 200 * time.Millisecond

	e.ActivateTool(ToolAltimetry)
	e.Click(ptA)
	e.Click(ptB)
	e.DoubleClick()

	e.ActivateTool(ToolAltimetry)
	require.Error(t, sink.lastError())
	assert.Contains(t, sink.lastError().Error(), "already running")
	assert.Equal(t, ToolNone, e.Tool())
}
