package llm

import (
	"fmt"
	"strings"

	"github.com/dhabedank/prompt-builder/internal/core"
)

// ChatReply is the outcome of ContinueChat: a TextReply or a PromptReplacement.
type ChatReply interface {
	isChatReply()
}

// TextReply is a conversational answer.
type TextReply struct {
	Text string
}

// PromptReplacement is a new structured prompt proposed by the model. It may
// add, drop or rename fields.
type PromptReplacement struct {
	Prompt *core.Prompt
}

func (TextReply) isChatReply()         {}
func (PromptReplacement) isChatReply() {}

// Persona selects the chat system instruction.
type Persona string

const (
	PersonaExpert     Persona = "expert"
	PersonaGeneralist Persona = "generalist"
)

// ParsePersona accepts "expert" or "generalist" (case-insensitive).
func ParsePersona(s string) (Persona, error) {
	switch p := Persona(strings.ToLower(strings.TrimSpace(s))); p {
	case PersonaExpert, PersonaGeneralist:
		return p, nil
	default:
		return "", fmt.Errorf("unknown persona %q (want expert or generalist)", s)
	}
}

// Instruction returns the system instruction for the persona.
func (p Persona) Instruction() string {
	if p == PersonaGeneralist {
		return core.GeneralistPersona
	}
	return core.ExpertPersona
}

// Greeting returns the opening assistant message.
func (p Persona) Greeting(hasPrompt bool) string {
	switch {
	case p == PersonaGeneralist:
		return core.GeneralistGreeting
	case hasPrompt:
		return core.ExpertPromptGreeting
	default:
		return core.ExpertGreeting
	}
}

// ChatContextTurn builds the system turn that tells the model which prompt
// the user is working on. Insert it into the history before sending.
func ChatContextTurn(prompt *core.Prompt) core.ChatTurn {
	return core.ChatTurn{Role: core.RoleSystem, Content: core.BuildChatContext(prompt)}
}

// chatMessage maps a history turn to a wire message. An attached prompt is
// sent as JSON after the text so the model sees what it proposed earlier.
func chatMessage(turn core.ChatTurn) Message {
	msg := Message{Role: turn.Role, Text: turn.Content, Image: turn.Image}
	if turn.Prompt != nil {
		if msg.Text == "" {
			msg.Text = core.ToJSON(turn.Prompt)
		} else {
			msg.Text += "\n" + core.ToJSON(turn.Prompt)
		}
	}
	return msg
}
