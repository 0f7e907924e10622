// Package tui implements the interactive chat screen: a scrolling transcript,
// a prompt line, and a mention picker over the participant roster.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parleychat/parley/src/chat"
	"github.com/parleychat/parley/src/chatsdk"
)

// turnUpdateMsg carries a snapshot of the in-flight assistant message.
type turnUpdateMsg chatsdk.Message

// turnDoneMsg signals that the turn reached a terminal state.
type turnDoneMsg struct {
	err error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	store      *chat.Store
	controller *chat.Controller
	logger     *slog.Logger

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	// mention picker state
	mentionActive bool
	mention       chat.Mention
	candidates    []chatsdk.Participant
	selected      int

	// explicit target chosen by completing a mention; nil means the first
	// roster participant answers.
	target *chatsdk.Participant

	sending bool
	updates chan tea.Msg
	status  string
}

// New creates the chat screen over a store and controller.
func New(store *chat.Store, controller *chat.Controller, logger *slog.Logger) Model {
	input := textinput.New()
	input.Placeholder = "type a message, @ to pick a participant"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if logger == nil {
		logger = slog.Default()
	}

	return Model{
		store:      store,
		controller: controller,
		logger:     logger.With("component", "tui"),
		input:      input,
		spinner:    sp,
		updates:    make(chan tea.Msg, 32),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// waitForUpdate pumps the next turn message into the update loop.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		transcriptHeight := msg.Height - 4
		if transcriptHeight < 1 {
			transcriptHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, transcriptHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = transcriptHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.mentionActive {
				m.closeMention()
				return m, nil
			}
			return m, tea.Quit

		case "up":
			if m.mentionActive && len(m.candidates) > 0 {
				m.selected = (m.selected - 1 + len(m.candidates)) % len(m.candidates)
				return m, nil
			}

		case "down":
			if m.mentionActive && len(m.candidates) > 0 {
				m.selected = (m.selected + 1) % len(m.candidates)
				return m, nil
			}

		case "tab":
			if m.mentionActive && len(m.candidates) > 0 {
				m.completeMention()
				return m, nil
			}

		case "enter":
			if m.mentionActive && len(m.candidates) > 0 {
				m.completeMention()
				return m, nil
			}
			return m.submit()
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.refreshMention()
		return m, tea.Batch(cmds...)

	case turnUpdateMsg:
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, tea.Batch(m.waitForUpdate(), m.spinner.Tick)

	case turnDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.status = failedStyle.Render(msg.err.Error())
		} else {
			m.status = ""
		}
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit starts a turn unless one is already running or the input is empty.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.sending || m.controller.Busy() {
		m.status = statusStyle.Render("waiting for the current reply to finish")
		return m, nil
	}

	target := m.target
	m.target = nil
	m.input.Reset()
	m.closeMention()
	m.sending = true
	m.status = ""

	updates := m.updates
	controller := m.controller
	go func() {
		_, err := controller.Send(context.Background(), text, target, func(snapshot chatsdk.Message) {
			updates <- turnUpdateMsg(snapshot)
		})
		updates <- turnDoneMsg{err: err}
	}()

	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, tea.Batch(m.waitForUpdate(), m.spinner.Tick)
}

// refreshMention recomputes the mention picker from the current input. An
// emptied input also drops the explicit target; the next turn falls back to
// the first roster participant unless a new mention is completed.
func (m *Model) refreshMention() {
	if m.input.Value() == "" {
		m.target = nil
	}
	mention, ok := chat.DetectMention(m.input.Value())
	if !ok {
		m.closeMention()
		return
	}
	candidates := chat.FilterRoster(m.store.Roster(), mention.Query)
	if len(candidates) == 0 {
		m.closeMention()
		return
	}
	if !m.mentionActive || m.selected >= len(candidates) {
		m.selected = 0
	}
	m.mentionActive = true
	m.mention = mention
	m.candidates = candidates
}

// completeMention applies the selected candidate to the input and records it
// as the turn's explicit target.
func (m *Model) completeMention() {
	chosen := m.candidates[m.selected]
	m.input.SetValue(chat.CompleteMention(m.input.Value(), m.mention, chosen))
	m.input.CursorEnd()
	m.target = &chosen
	m.closeMention()
}

func (m *Model) closeMention() {
	m.mentionActive = false
	m.candidates = nil
	m.selected = 0
}

// refreshTranscript re-renders the message log into the viewport.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, msg := range m.store.Messages() {
		b.WriteString(renderMessage(msg))
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
}

func renderMessage(msg chatsdk.Message) string {
	switch {
	case msg.Role == chatsdk.RoleUser:
		return userStyle.Render("you") + "  " + msg.Content
	case msg.State == chatsdk.StatePending:
		return assistantStyle.Render("assistant") + "  " + pendingStyle.Render("…")
	case msg.State == chatsdk.StateFailed:
		return assistantStyle.Render("assistant") + "  " + failedStyle.Render(msg.Content)
	case msg.State == chatsdk.StateStreaming:
		return assistantStyle.Render("assistant") + "  " + msg.Content + pendingStyle.Render(" ▌")
	default:
		return assistantStyle.Render("assistant") + "  " + msg.Content
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	statusLine := m.status
	if m.sending {
		statusLine = m.spinner.View() + statusStyle.Render(" thinking")
	}

	sections := []string{m.viewport.View()}
	if m.mentionActive {
		sections = append(sections, m.renderMentionOverlay())
	}
	sections = append(sections, inputStyle.Render(m.input.View()), statusLine)
	return strings.Join(sections, "\n")
}

func (m Model) renderMentionOverlay() string {
	var rows []string
	for i, p := range m.candidates {
		label := fmt.Sprintf("@%s", p.DisplayName())
		if p.EntityMeta.ModelName != "" {
			label += statusStyle.Render("  " + p.EntityMeta.ModelName)
		}
		if i == m.selected {
			label = selectedStyle.Render(label)
		}
		rows = append(rows, label)
	}
	return overlayStyle.Render(strings.Join(rows, "\n"))
}

// Run starts the program on the alternate screen and blocks until exit.
func Run(store *chat.Store, controller *chat.Controller, logger *slog.Logger) error {
	program := tea.NewProgram(New(store, controller, logger), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
