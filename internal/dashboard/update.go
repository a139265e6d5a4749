package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all incoming messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleTopicKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// header(1) + separator(1) + borders(2) + help(1) + topic/error(1)
		height := msg.Height - 6
		if height < 3 {
			height = 3
		}
		width := msg.Width - listWidth - 6
		if width < 20 {
			width = 20
		}
		m.viewport.Width = width
		m.viewport.Height = height
		m.sync()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisDoneMsg:
		m.running = false
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.sync()
		return m, nil

	case refreshMsg:
		if snap := m.svc.Snapshot(); snap.RunID != m.runID {
			m.sync()
		}
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Run):
		if !m.running {
			return m, m.startRun()
		}
	case key.Matches(msg, m.keys.Topic):
		m.editing = true
		return m, m.topic.Focus()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleTopicKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.topic.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.editing = false
		m.topic.Blur()
		if m.running {
			return m, nil
		}
		return m, m.startRun()
	}

	var cmd tea.Cmd
	m.topic, cmd = m.topic.Update(msg)
	return m, cmd
}
