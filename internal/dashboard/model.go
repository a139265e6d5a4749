package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/subject"
)

const listWidth = 34

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx context.Context
	svc Service
	cfg Config

	// Dimensions
	width  int
	height int

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	topic    textinput.Model

	// runID of the snapshot currently rendered
	runID  string
	cursor int

	ready     bool
	running   bool
	editing   bool
	lastError error
}

// NewModel creates the dashboard model for svc.
func NewModel(ctx context.Context, svc Service, cfg Config) *Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = cursorStyle

	ti := textinput.New()
	ti.Placeholder = "Gold, Nifty 50, ..."
	ti.Prompt = "topic> "
	ti.CharLimit = 64
	ti.SetValue(cfg.Topic)

	if cfg.Refresh <= 0 {
		cfg.Refresh = 2 * time.Second
	}

	m := &Model{
		ctx:      ctx,
		svc:      svc,
		cfg:      cfg,
		keys:     newKeyMap(svc.Variant() == subject.Market),
		help:     help.New(),
		spinner:  sp,
		viewport: viewport.New(60, 10),
		topic:    ti,
	}
	m.sync()
	return m
}

// Init implements tea.Model. It starts a run when nothing is published yet.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresh()}
	if !m.svc.Snapshot().Published() {
		cmds = append(cmds, m.startRun())
	}
	return tea.Batch(cmds...)
}

func (m *Model) startRun() tea.Cmd {
	m.running = true
	m.lastError = nil
	return tea.Batch(m.spinner.Tick, m.analyze(strings.TrimSpace(m.topic.Value())))
}

func (m *Model) analyze(topic string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		snap, err := svc.Analyze(ctx, topic)
		return analysisDoneMsg{snap: snap, err: err}
	}
}

func (m *Model) refresh() tea.Cmd {
	return tea.Tick(m.cfg.Refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// sync points the cursor at the service's current selection and re-renders
// the detail pane.
func (m *Model) sync() {
	snap := m.svc.Snapshot()
	m.runID = snap.RunID

	sel := m.svc.Selection()
	m.cursor = 0
	for i, s := range snap.Subjects {
		if strings.EqualFold(s.ID, sel.ID) {
			m.cursor = i
			break
		}
	}
	m.viewport.SetContent(m.renderDetail(snap, sel))
	m.viewport.GotoTop()
}

func (m *Model) subjects() []subject.Subject {
	return m.svc.Snapshot().Subjects
}

// moveCursor selects the subject delta rows away from the cursor.
func (m *Model) moveCursor(delta int) {
	subjects := m.subjects()
	if len(subjects) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(subjects) {
		return
	}
	m.svc.Select(subjects[next].ID)
	m.sync()
}

// snapshot is a nil-safe accessor used by views.
func (m *Model) snapshot() *analysis.Snapshot {
	return m.svc.Snapshot()
}
