package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"fieldmap/internal/altimetry"
	"fieldmap/internal/board"
	"fieldmap/internal/editor"
)

// Engine notifications delivered into the Bubble Tea loop as messages.
type (
	toolMsg      struct{ tool editor.Tool }
	committedMsg struct{ feature board.Feature }
	azimuthMsg   struct{ degrees float64 }
	profileMsg   struct{ profile *altimetry.Profile }
	failedMsg    struct{ err error }
)

// uiSink bridges the engine's EventSink to the program. Sends never
// block: the channel is buffered and the engine must not stall on a slow
// view, so an overflowing event is dropped.
type uiSink struct {
	events chan tea.Msg
}

func newUISink() *uiSink {
	return &uiSink{events: make(chan tea.Msg, 64)}
}

func (s *uiSink) push(m tea.Msg) {
	select {
	case s.events <- m:
	default:
	}
}

func (s *uiSink) ToolChanged(t editor.Tool)         { s.push(toolMsg{tool: t}) }
func (s *uiSink) FeatureCommitted(f board.Feature)  { s.push(committedMsg{feature: f}) }
func (s *uiSink) AzimuthMeasured(deg float64)       { s.push(azimuthMsg{degrees: deg}) }
func (s *uiSink) ProfileReady(p *altimetry.Profile) { s.push(profileMsg{profile: p}) }
func (s *uiSink) Failed(err error)                  { s.push(failedMsg{err: err}) }

// wait blocks for the next engine event; re-issued after each receipt.
func (s *uiSink) wait() tea.Cmd {
	return func() tea.Msg { return <-s.events }
}
