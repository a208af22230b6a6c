// Package tui provides the terminal surface of the chat widget: a scrollable
// message log, a one-line input and a send button.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/rahagir-go/internal/format"
	"github.com/comigor/rahagir-go/internal/history"
	"github.com/comigor/rahagir-go/internal/logger"
	"github.com/comigor/rahagir-go/internal/widget"
)

const (
	sendLabel = "[ Send ]"
	helpText  = "enter or click send · pgup/pgdn scroll · esc quit"
	// separator, input and help rows below the viewport
	chromeHeight = 3
)

// Submitter runs one submission; *widget.Widget satisfies it.
type Submitter interface {
	Submit(ctx context.Context, text string) error
}

type submitDoneMsg struct{ err error }

type entry struct {
	id     string
	origin history.Origin
	markup format.Markup
}

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	submitter Submitter
	ctx       context.Context
	cancel    context.CancelFunc
	botName   string

	viewport viewport.Model
	input    textinput.Model
	styles   styles

	entries      []entry
	width        int
	height       int
	ready        bool
	inputEnabled bool
	submitting   bool
}

// NewModel creates the chat screen. Submissions run with a context derived
// from ctx that is cancelled when the user quits.
func NewModel(ctx context.Context, submitter Submitter, botName string) Model {
	ctx, cancel := context.WithCancel(ctx)

	input := textinput.New()
	input.Placeholder = "Tell me about your trip..."
	input.Prompt = "> "
	input.Focus()

	return Model{
		submitter:    submitter,
		ctx:          ctx,
		cancel:       cancel,
		botName:      botName,
		viewport:     viewport.New(0, 0),
		input:        input,
		styles:       defaultStyles(),
		inputEnabled: true,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if m.inputEnabled {
			m.input, cmd = m.input.Update(msg)
		}
		return m, cmd

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.onSendButton(msg.X, msg.Y) {
			return m.submit()
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case appendMsg:
		m.entries = append(m.entries, entry{id: msg.msg.ID, origin: msg.msg.Origin, markup: format.Format(msg.msg.Text)})
		m.refresh()
		return m, nil

	case removeMsg:
		kept := make([]entry, 0, len(m.entries))
		for _, e := range m.entries {
			if e.id != msg.id {
				kept = append(kept, e)
			}
		}
		m.entries = kept
		m.refresh()
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case clearInputMsg:
		m.input.Reset()
		return m, nil

	case inputEnabledMsg:
		m.inputEnabled = msg.enabled
		if !msg.enabled {
			m.input.Blur()
		}
		return m, nil

	case focusInputMsg:
		if m.inputEnabled {
			cmd = m.input.Focus()
		}
		return m, cmd

	case submitDoneMsg:
		m.submitting = false
		if msg.err == nil {
			return m, nil
		}
		if !errors.Is(msg.err, widget.ErrBusy) {
			logger.L.Error("submit failed", "error", msg.err)
		}
		// the widget never reached Idle's re-enable, so undo the local disable
		m.inputEnabled = true
		cmd = m.input.Focus()
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a submission unless the input is disabled, one is already
// running, or the input is blank.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.inputEnabled || m.submitting {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.submitting = true
	m.inputEnabled = false
	m.input.Blur()
	ctx, s := m.ctx, m.submitter
	return m, func() tea.Msg {
		return submitDoneMsg{err: s.Submit(ctx, text)}
	}
}

func (m *Model) resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 0)
	m.input.Width = max(m.inputWidth()-lipgloss.Width(m.input.Prompt)-1, 1)
	m.ready = true
	m.refresh()
}

func (m Model) inputWidth() int {
	return max(m.width-lipgloss.Width(sendLabel)-1, 0)
}

// onSendButton reports whether the cell (x, y) lies on the send button.
func (m Model) onSendButton(x, y int) bool {
	if !m.ready || y != m.viewport.Height+1 {
		return false
	}
	left := m.width - lipgloss.Width(sendLabel)
	return x >= left && x < m.width
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	wrap := lipgloss.NewStyle().Width(max(m.width-2, 1))

	for _, e := range m.entries {
		if e.origin == history.OriginUser {
			sb.WriteString(m.styles.UserLabel.Render("You") + "\n")
		} else {
			sb.WriteString(m.styles.BotLabel.Render(m.botName) + "\n")
		}
		sb.WriteString(wrap.Render(m.renderMarkup(e.markup)))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (m Model) renderMarkup(markup format.Markup) string {
	var sb strings.Builder
	for _, s := range markup {
		switch {
		case s.Kind == format.Break:
			sb.WriteByte('\n')
		case s.Strong:
			sb.WriteString(m.styles.Strong.Render(s.Text))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	button := m.styles.Button.Render(sendLabel)
	if !m.inputEnabled || m.submitting {
		button = m.styles.ButtonDisabled.Render(sendLabel)
	}
	inputLine := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.inputWidth()).MaxHeight(1).Render(m.input.View()),
		" ",
		button,
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.styles.Muted.Render(strings.Repeat("─", m.width)),
		inputLine,
		m.styles.Muted.Render(helpText),
	)
}
