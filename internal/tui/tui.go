// internal/tui/tui.go
// Package tui provides the interactive terminal chat: pick an agent, then talk to it.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/agents/internal/agents"
	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/logging"
	"github.com/mwiater/agents/internal/providerfactory"
	"github.com/mwiater/agents/internal/providers"
)

// roleTool marks tool notes kept in a chat history; they are shown but never sent to the model.
const roleTool = "tool"

// chatMessage represents a single message exchanged with the model.
type chatMessage = providers.ChatMessage

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewAgentSelector is the state where the user picks an agent.
	viewAgentSelector viewState = iota
	// viewLoadingChat is the state where the agent's model is being prepared.
	viewLoadingChat
	// viewChat is the state where the user is interacting with the chat.
	viewChat
)

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx              context.Context
	config           *appconfig.Config
	provider         providers.ChatProvider
	catalog          *agents.Catalog
	state            viewState
	isLoading        bool
	err              error
	agentList        list.Model
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	histories        map[string][]chatMessage
	ready            map[string]bool
	responseBuf      strings.Builder
	responseMeta     providers.StreamMetadata
	selected         *agents.Agent
	host             appconfig.Host
	modelName        string
	width, height    int
	send             func(tea.Msg)
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, cfg *appconfig.Config, catalog *agents.Catalog, provider providers.ChatProvider) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.Prompt = "Ask something: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	all := catalog.List()
	agentItems := make([]list.Item, len(all))
	for i, a := range all {
		agentItems[i] = item{title: a.Title, desc: a.Description, name: a.Name}
	}
	agentList := list.New(agentItems, list.NewDefaultDelegate(), 0, 0)
	agentList.Title = "Choose an agent"

	return &model{
		ctx:       ctx,
		config:    cfg,
		provider:  provider,
		catalog:   catalog,
		state:     viewAgentSelector,
		spinner:   s,
		textArea:  ta,
		agentList: agentList,
		viewport:  viewport.New(100, 5),
		histories: make(map[string][]chatMessage),
		ready:     make(map[string]bool),
	}
}

// item represents a selectable agent in the selector list.
type item struct {
	title string
	desc  string
	name  string
}

// Title returns the title of the list item.
func (i item) Title() string { return i.title }

// Description returns the description of the list item.
func (i item) Description() string { return i.desc }

// FilterValue returns the title of the item, used for filtering.
func (i item) FilterValue() string { return i.title }

// chatReadyMsg is sent when the selected agent's model is ready.
type chatReadyMsg struct{ agent string }

// chatReadyErr is sent when preparing the model failed.
type chatReadyErr struct{ error }

// streamChunkMsg carries a chunk of streamed response text.
type streamChunkMsg string

// toolCallMsg reports a tool the model called while answering.
type toolCallMsg struct {
	name string
	err  error
}

// streamEndMsg is sent when a streaming response has completed.
type streamEndMsg struct{ meta providers.StreamMetadata }

// streamErr is sent when a streaming response failed.
type streamErr struct{ error }

// tickMsg is sent at regular intervals while loading.
type tickMsg time.Time

// conversation drops tool notes so only user and assistant turns reach the model.
func conversation(history []chatMessage) []chatMessage {
	out := make([]chatMessage, 0, len(history))
	for _, msg := range history {
		if msg.Role != roleTool {
			out = append(out, msg)
		}
	}
	return out
}

// loadAgentCmd asks the provider to make the agent's model ready.
func loadAgentCmd(ctx context.Context, provider providers.ChatProvider, agentName string, host appconfig.Host, modelName string) tea.Cmd {
	return func() tea.Msg {
		if err := provider.EnsureModelReady(ctx, host, modelName); err != nil {
			return chatReadyErr{error: err}
		}
		return chatReadyMsg{agent: agentName}
	}
}

// streamChatCmd starts a streaming turn in the background and reports progress through send.
func streamChatCmd(ctx context.Context, send func(tea.Msg), provider providers.ChatProvider, req providers.StreamRequest) tea.Cmd {
	return func() tea.Msg {
		logging.LogEvent("[agents -> %s (%s)] chat turn with %d messages", req.Host.Name, req.Model, len(req.History))

		go func() {
			err := provider.Stream(ctx, req, providers.StreamCallbacks{
				OnChunk: func(msg providers.ChatMessage) error {
					send(streamChunkMsg(msg.Content))
					return nil
				},
				OnToolCall: func(call providers.ToolCall) error {
					send(toolCallMsg{name: call.Name, err: call.Err})
					return nil
				},
				OnComplete: func(meta providers.StreamMetadata) error {
					send(streamEndMsg{meta: meta})
					return nil
				},
			})
			if err != nil {
				send(streamErr{error: err})
			}
		}()

		return nil
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner, and loads the preselected agent if there is one.
func (m *model) Init() tea.Cmd {
	if m.state == viewLoadingChat && m.selected != nil {
		return tea.Batch(m.spinner.Tick, loadAgentCmd(m.ctx, m.provider, m.selected.Name, m.host, m.modelName), tickCmd())
	}
	return m.spinner.Tick
}

// selectAgent resolves where the agent's chat runs and moves to the chat, loading the
// model first when this agent has not been opened yet.
func (m *model) selectAgent(agent *agents.Agent) tea.Cmd {
	host, modelName, err := providerfactory.ChatTarget(m.config, agent.Model)
	if err != nil {
		m.err = err
		return nil
	}
	m.selected = agent
	m.host = host
	m.modelName = modelName
	m.err = nil
	m.responseMeta = providers.StreamMetadata{}

	if m.ready[agent.Name] {
		m.state = viewChat
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return nil
	}
	m.state = viewLoadingChat
	m.isLoading = true
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, loadAgentCmd(m.ctx, m.provider, agent.Name, host, modelName), tickCmd())
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "q":
			if m.state == viewAgentSelector {
				return m, tea.Quit
			}
		case "tab":
			if m.state == viewChat && !m.isLoading {
				m.state = viewAgentSelector
				m.err = nil
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.agentList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 4
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight

	case chatReadyMsg:
		m.ready[msg.agent] = true
		m.isLoading = false
		m.state = viewChat
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case chatReadyErr:
		m.isLoading = false
		m.state = viewAgentSelector
		m.err = msg.error
		return m, nil

	case streamChunkMsg:
		m.responseBuf.WriteString(string(msg))
		m.viewport.GotoBottom()
		return m, nil

	case toolCallMsg:
		note := "Tool used: " + msg.name
		if msg.err != nil {
			note += fmt.Sprintf(" (error: %v)", msg.err)
		}
		m.appendHistory(chatMessage{Role: roleTool, Content: note})
		return m, nil

	case streamEndMsg:
		m.responseMeta = msg.meta
		m.flushResponse()
		m.isLoading = false
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case streamErr:
		m.flushResponse()
		m.isLoading = false
		m.err = msg.error
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewAgentSelector:
		m.agentList, cmd = m.agentList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if selected, ok := m.agentList.SelectedItem().(item); ok {
				if agent, err := m.catalog.Get(selected.name); err == nil {
					cmds = append(cmds, m.selectAgent(agent))
				}
			}
		}

	case viewChat:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

		if m.isLoading {
			break
		}

		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			userInput := strings.TrimSpace(m.textArea.Value())
			if userInput != "" {
				m.responseMeta = providers.StreamMetadata{}
				m.requestStartTime = time.Now()
				m.appendHistory(chatMessage{Role: "user", Content: userInput})
				m.textArea.Reset()
				m.isLoading = true
				m.err = nil

				req := m.selected.Request(m.host, m.modelName, conversation(m.histories[m.selected.Name]))
				req.JSONMode = m.config.JSONMode
				cmds = append(cmds, m.spinner.Tick, streamChatCmd(m.ctx, m.send, m.provider, req), tickCmd())
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) appendHistory(msg chatMessage) {
	if m.selected == nil {
		return
	}
	m.histories[m.selected.Name] = append(m.histories[m.selected.Name], msg)
}

// flushResponse moves the streamed text into the selected agent's history.
func (m *model) flushResponse() {
	if m.responseBuf.Len() == 0 {
		return
	}
	m.appendHistory(chatMessage{Role: "assistant", Content: m.responseBuf.String()})
	m.responseBuf.Reset()
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewAgentSelector:
		listView := m.agentList.View()
		if title := m.agentList.Title; title != "" && !strings.Contains(listView, title) {
			listView = fmt.Sprintf("%s\n\n%s", title, listView)
		}
		if m.err != nil {
			listView = renderError(m.err) + "\n" + listView
		}
		return lipgloss.NewStyle().Margin(1, 2).Render(listView)

	case viewLoadingChat:
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Loading %s (%s)... %ss\n", m.spinner.View(), m.selected.Title, m.modelName, timer)

	case viewChat:
		return m.chatView()

	default:
		return "Unknown state"
	}
}

func renderError(err error) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(fmt.Sprintf("Error: %v", err))
}

// chatView renders the header, the selected agent's history, the response being
// streamed and the input area.
func (m *model) chatView() string {
	var builder strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1).MarginLeft(1)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	status := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(m.selected.Title),
		providerBadge(m.config.ChatProvider()),
		headerStyle.Render("Model: "+m.modelName),
	)
	help := lipgloss.NewStyle().Render(" (tab to switch agent, esc to quit)")
	builder.WriteString(status + help + "\n" + descStyle.Render(m.selected.Description) + "\n\n")

	var historyBuilder strings.Builder
	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	toolStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))

	for _, msg := range m.histories[m.selected.Name] {
		switch msg.Role {
		case roleTool:
			historyBuilder.WriteString(toolStyle.Render("  "+msg.Content) + "\n")
		case "assistant":
			historyBuilder.WriteString(m.renderTurn(assistantStyle.Render("Assistant: "), msg.Content) + "\n")
		default:
			historyBuilder.WriteString(m.renderTurn(userStyle.Render("You: "), msg.Content) + "\n")
		}
	}

	if m.responseBuf.Len() > 0 {
		historyBuilder.WriteString(m.renderTurn(assistantStyle.Render("Assistant: "), m.responseBuf.String()))
	}

	m.viewport.SetContent(historyBuilder.String())
	builder.WriteString(m.viewport.View())

	if m.err != nil {
		builder.WriteString("\n" + renderError(m.err))
	}

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString("\n" + m.spinner.View() + fmt.Sprintf(" Agent is processing... %ss", timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	if m.config.Debug && m.responseMeta.Done {
		builder.WriteString("\n" + formatMeta(m.responseMeta))
	}

	return builder.String()
}

func (m *model) renderTurn(role, content string) string {
	wrapped := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(content)
	return lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped)
}

// formatMeta formats response metadata into a human-readable string.
func formatMeta(meta providers.StreamMetadata) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return style.Render(fmt.Sprintf(
		"  >>> [Model: %s] [Prompt: %d Tokens] [Response: %d Tokens] [Tool Rounds: %d] [Total Duration: %.1fs]",
		meta.Model,
		meta.PromptEvalCount,
		meta.EvalCount,
		meta.ToolRounds,
		float64(meta.TotalDuration)/1e9,
	))
}

// StartGUI runs the interactive chat until the user quits. A non-empty agentName opens
// that agent directly.
func StartGUI(ctx context.Context, cfg *appconfig.Config, catalog *agents.Catalog, provider providers.ChatProvider, agentName string) error {
	m := initialModel(ctx, cfg, catalog, provider)
	if agentName != "" {
		agent, err := catalog.Get(agentName)
		if err != nil {
			return err
		}
		// Init issues the load command for the preselected agent.
		_ = m.selectAgent(agent)
		if m.err != nil {
			return m.err
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.send = p.Send

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
