package tui

import (
	"strconv"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"fieldmap/internal/board"
	"fieldmap/internal/editor"
	"fieldmap/internal/geodesy"
)

// inputMode is the focused overlay; keys go to it instead of the map.
type inputMode int

const (
	modeMap inputMode = iota
	modePicker
	modeBuilding
	modeText
	modePaste
	modeTable
)

type symbolItem struct {
	spec board.SymbolSpec
}

func (s symbolItem) Title() string       { return s.spec.Emoji + " " + s.spec.Label }
func (s symbolItem) Description() string { return s.spec.Type }
func (s symbolItem) FilterValue() string { return s.spec.Label }

type Model struct {
	engine *editor.Engine
	store  *board.Store
	sink   *uiSink
	vp     *Viewport
	log    *zap.Logger

	width  int
	height int

	status      string
	helpVisible bool

	mode   inputMode
	picker list.Model
	ta     textarea.Model
	tbl    table.Model

	// position the text overlay writes to on commit
	textAt geodesy.LatLng

	// last ephemeral results, shown until the next action
	lastAzimuth string
	lastProfile string

	// double-click tracking
	lastClickAt   time.Time
	lastClickCell [2]int

	savePath string
	kmlPath  string
}

type Options struct {
	Center   geodesy.LatLng
	Zoom     float64
	SavePath string
	KMLPath  string
}

// New assembles the map view around an engine and its store. The sink
// must be the same one the engine was wired with.
func New(engine *editor.Engine, store *board.Store, sink *uiSink, log *zap.Logger, opts Options) Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		engine:      engine,
		store:       store,
		sink:        sink,
		vp:          NewViewport(opts.Center, opts.Zoom),
		log:         log,
		status:      "fieldmap ready",
		helpVisible: true,
		savePath:    opts.SavePath,
		kmlPath:     opts.KMLPath,
	}
	if m.savePath == "" {
		m.savePath = "fieldmap.json"
	}
	if m.kmlPath == "" {
		m.kmlPath = "fieldmap.kml"
	}

	// symbol picker
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	items := make([]list.Item, 0, len(board.Catalog()))
	for _, spec := range board.Catalog() {
		items = append(items, symbolItem{spec: spec})
	}
	m.picker = list.New(items, d, 0, 0)
	m.picker.Title = "Symbols"
	m.picker.SetShowHelp(false)
	m.picker.SetShowStatusBar(false)
	m.picker.SetFilteringEnabled(true)

	// text entry / WKT paste
	m.ta = textarea.New()
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(4)

	// feature table
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetColumns([]table.Column{
		{Title: "#", Width: 4},
		{Title: "type", Width: 10},
		{Title: "label", Width: 20},
		{Title: "measure", Width: 16},
	})
	m.tbl.SetHeight(12)
	return m
}

func (m Model) Init() tea.Cmd { return m.sink.wait() }

func (m *Model) refreshTable() {
	features := m.store.List()
	rows := make([]table.Row, 0, len(features))
	for i, f := range features {
		label := f.Label
		if f.BuildingName != "" {
			label = f.BuildingName
		}
		if f.Type == board.TypeText {
			label = f.Value
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1), string(f.Type), label, f.MeasurementLabel(),
		})
	}
	m.tbl.SetRows(rows)
}
