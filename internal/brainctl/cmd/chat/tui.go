package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	borderStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("241"))
)

// replyMsg carries one finished turn back into the update loop.
type replyMsg struct {
	reply *chatReply
	err   error
}

type tuiModel struct {
	client   *BrainClient
	roleName string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	transcript []string
	waiting    bool
	ready      bool
	width      int
}

func newTUIModel(client *BrainClient, roleName string) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "输入消息,回车发送 (/quit 退出)"
	ti.Focus()
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	return &tuiModel{
		client:   client,
		roleName: roleName,
		input:    ti,
		spinner:  sp,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(msg.Width-4),
		)
		if err == nil {
			m.renderer = renderer
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			content := strings.TrimSpace(m.input.Value())
			if content == "" || m.waiting {
				return m, nil
			}
			if content == "/quit" || content == "/exit" {
				return m, tea.Quit
			}
			m.input.Reset()
			m.appendLine(userStyle.Render(m.client.UserName) + "\n" + content)
			m.waiting = true
			return m, tea.Batch(m.spinner.Tick, m.send(content))
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendLine(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.appendLine(agentStyle.Render(m.roleName) + "\n" + m.renderMarkdown(msg.reply.Response))
		if msg.reply.SystemMessage != "" {
			m.appendLine(systemStyle.Render(msg.reply.SystemMessage))
		}
		if len(msg.reply.ToolsUsed) > 0 {
			m.appendLine(systemStyle.Render("tools: " + strings.Join(msg.reply.ToolsUsed, ", ")))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

func (m *tuiModel) View() string {
	if !m.ready {
		return "loading..."
	}
	status := ""
	if m.waiting {
		status = m.spinner.View() + " " + m.roleName + " 正在输入..."
	}
	return m.viewport.View() + "\n" + borderStyle.Width(m.width).Render(status+"\n"+m.input.View())
}

func (m *tuiModel) send(content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()
		reply, err := m.client.Send(ctx, content)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *tuiModel) appendLine(s string) {
	m.transcript = append(m.transcript, s)
	m.refresh()
}

func (m *tuiModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *tuiModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// RunTUI starts the interactive chat interface.
func RunTUI(client *BrainClient, roleName string) error {
	model := newTUIModel(client, roleName)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run chat interface: %w", err)
	}
	return nil
}
