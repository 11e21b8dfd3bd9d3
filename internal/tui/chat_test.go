package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/prompt-builder/internal/core"
	"github.com/dhabedank/prompt-builder/internal/llm"
)

type fakeChat struct {
	reply        llm.ChatReply
	err          error
	histories    [][]core.ChatTurn
	instructions []string
}

func (f *fakeChat) ContinueChat(_ context.Context, _ core.APIConfig, history []core.ChatTurn, instruction string) (llm.ChatReply, error) {
	f.histories = append(f.histories, history)
	f.instructions = append(f.instructions, instruction)
	return f.reply, f.err
}

// runCmd executes cmd and every command it batches, collecting the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typeAndSend(t *testing.T, m ChatModel, text string) ChatModel {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ChatModel)
	for _, msg := range runCmd(cmd) {
		if reply, ok := msg.(chatReplyMsg); ok {
			next, _ = m.Update(reply)
			m = next.(ChatModel)
		}
	}
	return m
}

func workingPrompt() *core.Prompt {
	p := core.NewPrompt()
	p.Set("sujet", core.Segment{Value: "un renard", Alternatives: []string{}})
	return p
}

func TestChatExpertSendsContextAndHistory(t *testing.T) {
	fake := &fakeChat{reply: llm.TextReply{Text: "D'accord."}}
	m := NewChatModel(context.Background(), fake, core.APIConfig{Model: "m"}, llm.PersonaExpert, workingPrompt())

	m = typeAndSend(t, m, "plus sombre")
	m = typeAndSend(t, m, "encore")

	require.Len(t, fake.histories, 2)
	assert.Equal(t, core.ExpertPersona, fake.instructions[0])

	second := fake.histories[1]
	assert.Equal(t, core.RoleSystem, second[0].Role)
	assert.Contains(t, second[0].Content, "CONTEXTE:")
	// context, user, assistant, user; the greeting is not sent
	require.Len(t, second, 4)
	assert.Equal(t, "plus sombre", second[1].Content)
	assert.Equal(t, "D'accord.", second[2].Content)
	assert.Equal(t, "encore", second[3].Content)

	history := m.History()
	assert.Equal(t, "D'accord.", history[len(history)-1].Content)
}

func TestChatGeneralistHasNoContext(t *testing.T) {
	fake := &fakeChat{reply: llm.TextReply{Text: "42"}}
	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaGeneralist, workingPrompt())
	typeAndSend(t, m, "question")

	require.Len(t, fake.histories, 1)
	assert.Equal(t, core.GeneralistPersona, fake.instructions[0])
	for _, turn := range fake.histories[0] {
		assert.NotEqual(t, core.RoleSystem, turn.Role)
	}
}

func TestChatUseAdoptsProposal(t *testing.T) {
	proposal := core.NewPrompt()
	proposal.Set("météo", core.Segment{Value: "brume", Alternatives: []string{}})
	fake := &fakeChat{reply: llm.PromptReplacement{Prompt: proposal}}

	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaExpert, nil)
	m = typeAndSend(t, m, "ajoute la météo")
	assert.False(t, m.Updated())

	last := m.History()[len(m.History())-1]
	assert.Equal(t, core.PromptProposalMessage, last.Content)
	require.NotNil(t, last.Prompt)

	next, _ := m.runCommand("/use")
	m = next.(ChatModel)
	assert.True(t, m.Updated())
	assert.Equal(t, []string{"météo"}, m.Prompt().Keys())
	assert.Equal(t, promptAdoptedMessage, m.History()[len(m.History())-1].Content)
}

func TestChatUseWithoutProposal(t *testing.T) {
	m := NewChatModel(context.Background(), &fakeChat{}, core.APIConfig{}, llm.PersonaExpert, nil)
	next, _ := m.runCommand("/use")
	m = next.(ChatModel)
	assert.False(t, m.Updated())
	assert.Equal(t, noProposalMessage, m.notice)
}

func TestChatErrorBecomesAssistantTurn(t *testing.T) {
	fake := &fakeChat{err: &llm.TransportError{StatusCode: 401, Err: errors.New("no auth")}}
	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaExpert, nil)
	m = typeAndSend(t, m, "bonjour")

	last := m.History()[len(m.History())-1]
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, chatErrorPrefix)
	assert.Contains(t, last.Content, "401")
}

func TestChatErrorIsNotSentBack(t *testing.T) {
	fake := &fakeChat{err: &llm.TransportError{StatusCode: 401, Err: errors.New("bad key")}}
	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaGeneralist, nil)
	m = typeAndSend(t, m, "bonjour")

	fake.err = nil
	fake.reply = llm.TextReply{Text: "ok"}
	m = typeAndSend(t, m, "encore")

	require.Len(t, fake.histories, 2)
	sent := fake.histories[1]
	require.Len(t, sent, 2)
	assert.Equal(t, "bonjour", sent[0].Content)
	assert.Equal(t, "encore", sent[1].Content)
	for _, turn := range sent {
		assert.NotContains(t, turn.Content, chatErrorPrefix)
	}

	// Still displayed.
	assert.Contains(t, m.History()[2].Content, chatErrorPrefix)
}

func TestChatAdoptionNoticeIsNotSent(t *testing.T) {
	proposal := core.NewPrompt()
	proposal.Set("météo", core.Segment{Value: "brume", Alternatives: []string{}})
	fake := &fakeChat{reply: llm.PromptReplacement{Prompt: proposal}}

	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaExpert, nil)
	m = typeAndSend(t, m, "ajoute la météo")
	next, _ := m.runCommand("/use")
	m = next.(ChatModel)

	fake.reply = llm.TextReply{Text: "noté"}
	typeAndSend(t, m, "merci")

	sent := fake.histories[1]
	for _, turn := range sent {
		assert.NotEqual(t, promptAdoptedMessage, turn.Content)
		assert.NotEqual(t, core.ExpertGreeting, turn.Content)
	}
	// The adopted prompt now arrives as the context turn.
	assert.Equal(t, core.RoleSystem, sent[0].Role)
	assert.Equal(t, "ajoute la météo", sent[1].Content)
	assert.Equal(t, core.PromptProposalMessage, sent[2].Content)
	assert.Equal(t, "merci", sent[3].Content)
}

func TestChatPersonaAndNew(t *testing.T) {
	fake := &fakeChat{reply: llm.TextReply{Text: "ok"}}
	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaExpert, nil)
	m = typeAndSend(t, m, "salut")
	assert.Len(t, m.History(), 3)

	next, _ := m.runCommand("/persona generalist")
	m = next.(ChatModel)
	require.Len(t, m.History(), 1)
	assert.Equal(t, core.GeneralistGreeting, m.History()[0].Content)

	next, _ = m.runCommand("/persona expert")
	m = next.(ChatModel)
	assert.Len(t, m.History(), 3, "expert conversation is kept")

	next, _ = m.runCommand("/new")
	m = next.(ChatModel)
	assert.Len(t, m.History(), 1)

	next, _ = m.runCommand("/persona poet")
	m = next.(ChatModel)
	assert.Equal(t, llm.PersonaExpert, m.persona)
	assert.NotEmpty(t, m.notice)
}

func TestChatImageAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	// 1x1 transparent PNG
	png := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}
	require.NoError(t, os.WriteFile(path, png, 0o600))

	fake := &fakeChat{reply: llm.TextReply{Text: "joli"}}
	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaExpert, nil)

	next, _ := m.runCommand("/image " + path)
	m = next.(ChatModel)
	require.NotNil(t, m.pendingImage)
	assert.Equal(t, "image/png", m.pendingImage.MIMEType)

	// An image alone is enough to send.
	m = typeAndSend(t, m, "")
	require.Len(t, fake.histories, 1)
	sent := fake.histories[0][len(fake.histories[0])-1]
	require.NotNil(t, sent.Image)
	assert.Nil(t, m.pendingImage)

	next, _ = m.runCommand("/image " + filepath.Join(t.TempDir(), "missing.png"))
	m = next.(ChatModel)
	assert.Nil(t, m.pendingImage)
	assert.NotEmpty(t, m.notice)
}

func TestChatEmptyMessageIsIgnored(t *testing.T) {
	fake := &fakeChat{}
	m := NewChatModel(context.Background(), fake, core.APIConfig{}, llm.PersonaExpert, nil)
	typeAndSend(t, m, "   ")
	assert.Empty(t, fake.histories)
}

func TestRenderTurnShowsProposal(t *testing.T) {
	out := renderTurn(core.ChatTurn{Role: core.RoleAssistant, Content: core.PromptProposalMessage, Prompt: workingPrompt()}, 40)
	assert.Contains(t, out, "SUJET")
	assert.Contains(t, out, "un renard")
	assert.Contains(t, out, "/use")
}
