package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/llm"
)

// Chat messages shown by the client itself, not the model.
const (
	promptAdoptedMessage = "Parfait, le prompt a été mis à jour !"
	noProposalMessage    = "Aucune proposition de prompt à utiliser pour le moment."
	chatErrorPrefix      = "Une erreur est survenue: "
)

// ChatClient is the part of llm.Client the chat screen needs.
type ChatClient interface {
	ContinueChat(ctx context.Context, cfg core.APIConfig, history []core.ChatTurn, systemInstruction string) (llm.ChatReply, error)
}

// chatEntry is one line of a conversation. Local entries (greetings,
// notices, errors) are shown but never sent to the model.
type chatEntry struct {
	turn  core.ChatTurn
	local bool
}

type chatReplyMsg struct {
	persona llm.Persona
	reply   llm.ChatReply
	err     error
}

// ChatModel is the interactive chat screen. Each persona keeps its own
// conversation; only one request is in flight at a time.
type ChatModel struct {
	ctx    context.Context
	client ChatClient
	cfg    core.APIConfig

	persona       llm.Persona
	conversations map[llm.Persona][]chatEntry
	prompt        *core.Prompt // Prompt being worked on, nil if none
	updated       bool
	pendingImage  *core.Image
	notice        string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	loading  bool
	ready    bool
	width    int
	quitting bool
}

// NewChatModel creates the chat screen. prompt may be nil.
func NewChatModel(ctx context.Context, client ChatClient, cfg core.APIConfig, persona llm.Persona, prompt *core.Prompt) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Votre message, ou /use /new /persona /image /quit"
	ti.Prompt = "┃ "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := ChatModel{
		ctx:           ctx,
		client:        client,
		cfg:           cfg,
		persona:       persona,
		conversations: make(map[llm.Persona][]chatEntry),
		prompt:        prompt,
		input:         ti,
		viewport:      viewport.New(80, 20),
		spinner:       sp,
		width:         80,
	}
	m.resetConversation()
	return m
}

// Prompt returns the prompt adopted with /use, or the starting prompt.
func (m ChatModel) Prompt() *core.Prompt {
	return m.prompt
}

// Updated reports whether a proposal was adopted during the session.
func (m ChatModel) Updated() bool {
	return m.updated
}

// History returns the current persona's conversation as displayed.
func (m ChatModel) History() []core.ChatTurn {
	entries := m.conversations[m.persona]
	out := make([]core.ChatTurn, len(entries))
	for i, e := range entries {
		out[i] = e.turn
	}
	return out
}

// sentHistory returns the turns the model sees, without local entries.
func (m ChatModel) sentHistory(persona llm.Persona) []core.ChatTurn {
	var out []core.ChatTurn
	for _, e := range m.conversations[persona] {
		if !e.local {
			out = append(out, e.turn)
		}
	}
	return out
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if strings.HasPrefix(text, "/") {
				return m.runCommand(text)
			}
			return m.submit(text)
		}

	case chatReplyMsg:
		m.loading = false
		m.input.Focus()
		m.receive(msg)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var inputCmd, vpCmd tea.Cmd
	if !m.loading {
		m.input, inputCmd = m.input.Update(msg)
	}
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

// submit appends the user turn and starts the request.
func (m ChatModel) submit(text string) (tea.Model, tea.Cmd) {
	if text == "" && m.pendingImage == nil {
		return m, nil
	}

	m.notice = ""
	m.appendTurn(core.ChatTurn{Role: core.RoleUser, Content: text, Image: m.pendingImage})
	m.pendingImage = nil
	m.loading = true
	m.input.Blur()
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.request())
}

// request sends the conversation. The expert persona also sees the
// current prompt as a system turn.
func (m ChatModel) request() tea.Cmd {
	persona := m.persona
	history := m.sentHistory(persona)
	turns := make([]core.ChatTurn, 0, len(history)+1)
	if persona == llm.PersonaExpert && m.prompt != nil {
		turns = append(turns, llm.ChatContextTurn(m.prompt))
	}
	turns = append(turns, history...)

	client, ctx, cfg := m.client, m.ctx, m.cfg
	return func() tea.Msg {
		reply, err := client.ContinueChat(ctx, cfg, turns, persona.Instruction())
		return chatReplyMsg{persona: persona, reply: reply, err: err}
	}
}

func (m *ChatModel) receive(msg chatReplyMsg) {
	var entry chatEntry
	switch {
	case msg.err != nil:
		entry = chatEntry{turn: core.ChatTurn{Role: core.RoleAssistant, Content: chatErrorPrefix + msg.err.Error()}, local: true}
	default:
		switch r := msg.reply.(type) {
		case llm.PromptReplacement:
			entry = chatEntry{turn: core.ChatTurn{Role: core.RoleAssistant, Content: core.PromptProposalMessage, Prompt: r.Prompt}}
		case llm.TextReply:
			entry = chatEntry{turn: core.ChatTurn{Role: core.RoleAssistant, Content: r.Text}}
		default:
			return
		}
	}
	m.conversations[msg.persona] = append(m.conversations[msg.persona], entry)
}

func (m ChatModel) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	m.notice = ""

	switch fields[0] {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/new":
		m.resetConversation()

	case "/use":
		proposal := m.lastProposal()
		if proposal == nil {
			m.notice = noProposalMessage
			break
		}
		m.prompt = proposal.Clone()
		m.updated = true
		m.appendLocal(core.ChatTurn{Role: core.RoleAssistant, Content: promptAdoptedMessage})

	case "/persona":
		p, err := llm.ParsePersona(arg)
		if err != nil {
			m.notice = err.Error()
			break
		}
		m.persona = p
		if len(m.conversations[p]) == 0 {
			m.resetConversation()
		}

	case "/image":
		if arg == "" {
			m.pendingImage = nil
			m.notice = "Image retirée."
			break
		}
		img, err := core.LoadImage(arg)
		if err != nil {
			m.notice = err.Error()
			break
		}
		m.pendingImage = img
		m.notice = fmt.Sprintf("Image jointe au prochain message (%s).", img.MIMEType)

	default:
		m.notice = fmt.Sprintf("Commande inconnue: %s", fields[0])
	}

	m.refresh()
	return m, nil
}

func (m *ChatModel) resetConversation() {
	m.conversations[m.persona] = []chatEntry{{
		turn:  core.ChatTurn{Role: core.RoleAssistant, Content: m.persona.Greeting(m.prompt != nil)},
		local: true,
	}}
}

func (m *ChatModel) appendTurn(turn core.ChatTurn) {
	m.conversations[m.persona] = append(m.conversations[m.persona], chatEntry{turn: turn})
}

func (m *ChatModel) appendLocal(turn core.ChatTurn) {
	m.conversations[m.persona] = append(m.conversations[m.persona], chatEntry{turn: turn, local: true})
}

func (m ChatModel) lastProposal() *core.Prompt {
	history := m.conversations[m.persona]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].turn.Prompt != nil {
			return history[i].turn.Prompt
		}
	}
	return nil
}

// refresh re-renders the conversation at the current width.
func (m *ChatModel) refresh() {
	width := max(m.width-2, 20)
	var b strings.Builder
	for _, e := range m.conversations[m.persona] {
		b.WriteString(renderTurn(e.turn, width))
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func renderTurn(turn core.ChatTurn, width int) string {
	var b strings.Builder
	switch turn.Role {
	case core.RoleUser:
		b.WriteString(UserStyle.Render("Vous"))
	case core.RoleSystem:
		b.WriteString(HelpStyle.Render("Système"))
	default:
		b.WriteString(AssistantStyle.Render("Assistant"))
	}
	if turn.Image != nil {
		b.WriteString(HelpStyle.Render(fmt.Sprintf("  [image %s]", turn.Image.MIMEType)))
	}
	b.WriteString("\n")
	b.WriteString(wordwrap.String(turn.Content, width))

	if turn.Prompt != nil {
		for _, key := range turn.Prompt.Keys() {
			seg, _ := turn.Prompt.Get(key)
			b.WriteString("\n")
			b.WriteString(FieldKeyStyle.Render(strings.ToUpper(strings.ReplaceAll(key, "_", " "))))
			b.WriteString("\n")
			b.WriteString(wordwrap.String("  "+seg.Value, width))
		}
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("/use pour utiliser ce prompt"))
	}
	return b.String()
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}

	header := fmt.Sprintf("%s  %s  %s",
		TitleStyle.Render("Chat"),
		StageStyle.Render(string(m.persona)),
		ModelStyle.Render(m.cfg.Model),
	)

	status := m.notice
	if m.loading {
		status = m.spinner.View() + " " + HelpStyle.Render("réflexion...")
	} else if m.pendingImage != nil && status == "" {
		status = HelpStyle.Render("image jointe")
	}

	return header + "\n" + m.viewport.View() + "\n" + status + "\n" + m.input.View()
}
