package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Model identifiers with special handling.
const (
	// PremiumModelID is the recommended paid model.
	PremiumModelID = "openai/gpt-4.1-mini"

	// FreeModelID is the free-tier model. It rejects the response_format hint.
	FreeModelID = "mistralai/mistral-small-3.2-24b-instruct:free"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Segment is one labeled facet of a generated prompt (subject, style, ...).
type Segment struct {
	Value        string   `json:"valeur"`       // Current prompt fragment
	Alternatives []string `json:"alternatives"` // Other phrasings to switch to (4 requested)
}

// APIConfig carries the caller's credentials. It is passed on every call and
// never retained or logged by the client.
type APIConfig struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
	Model  string `json:"model" yaml:"model"`
}

// String hides the API key so the config can be printed safely.
func (c APIConfig) String() string {
	key := "<unset>"
	if c.APIKey != "" {
		key = "<redacted>"
	}
	return fmt.Sprintf("{apiKey:%s model:%s}", key, c.Model)
}

// ChatTurn is one message of a conversation, in chronological order.
type ChatTurn struct {
	Role    string  // user, assistant or system
	Content string  // Message text
	Image   *Image  // Optional attached image (user turns)
	Prompt  *Prompt // Optional structured prompt proposed in this turn
}

// Prompt is an ordered mapping from field key to Segment.
// Key order is significant and survives JSON decoding and encoding.
type Prompt struct {
	keys     []string
	segments map[string]Segment
}

// NewPrompt returns an empty prompt.
func NewPrompt() *Prompt {
	return &Prompt{segments: make(map[string]Segment)}
}

// Set stores a segment. New keys are appended at the end.
func (p *Prompt) Set(key string, s Segment) {
	if p.segments == nil {
		p.segments = make(map[string]Segment)
	}
	if _, ok := p.segments[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.segments[key] = s
}

// Get returns the segment stored under key.
func (p *Prompt) Get(key string) (Segment, bool) {
	s, ok := p.segments[key]
	return s, ok
}

// Delete removes a key. Missing keys are ignored.
func (p *Prompt) Delete(key string) {
	if _, ok := p.segments[key]; !ok {
		return
	}
	delete(p.segments, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field keys in order.
func (p *Prompt) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of fields.
func (p *Prompt) Len() int {
	return len(p.keys)
}

// Move relocates the field at index from to index to, shifting the others.
func (p *Prompt) Move(from, to int) error {
	if from < 0 || from >= len(p.keys) || to < 0 || to >= len(p.keys) {
		return fmt.Errorf("move %d -> %d out of range (have %d fields)", from, to, len(p.keys))
	}
	key := p.keys[from]
	p.keys = append(p.keys[:from], p.keys[from+1:]...)
	p.keys = append(p.keys[:to], append([]string{key}, p.keys[to:]...)...)
	return nil
}

// SameKeys reports whether both prompts have exactly the same key set.
// Order is ignored.
func (p *Prompt) SameKeys(other *Prompt) bool {
	if other == nil || len(p.keys) != len(other.keys) {
		return false
	}
	for _, k := range p.keys {
		if _, ok := other.segments[k]; !ok {
			return false
		}
	}
	return true
}

// Reorder returns a copy of p with keys laid out in the given order.
// Keys of p missing from order keep their relative position at the end.
func (p *Prompt) Reorder(order []string) *Prompt {
	out := NewPrompt()
	for _, k := range order {
		if s, ok := p.segments[k]; ok {
			out.Set(k, s)
		}
	}
	for _, k := range p.keys {
		if _, ok := out.segments[k]; !ok {
			out.Set(k, p.segments[k])
		}
	}
	return out
}

// Clone returns a deep copy.
func (p *Prompt) Clone() *Prompt {
	out := NewPrompt()
	for _, k := range p.keys {
		s := p.segments[k]
		alts := make([]string, len(s.Alternatives))
		copy(alts, s.Alternatives)
		out.Set(k, Segment{Value: s.Value, Alternatives: alts})
	}
	return out
}

// Text joins the field values in order, the form sent to image generators.
func (p *Prompt) Text() string {
	values := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		values = append(values, p.segments[k].Value)
	}
	return strings.Join(values, ", ")
}

// MarshalJSON encodes the prompt as an object with keys in order.
func (p *Prompt) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		s := p.segments[k]
		if s.Alternatives == nil {
			s.Alternatives = []string{}
		}
		seg, err := marshalNoEscape(s)
		if err != nil {
			return nil, err
		}
		buf.Write(seg)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of segments, keeping key order.
// Every field must have the segment shape.
func (p *Prompt) UnmarshalJSON(data []byte) error {
	parsed, err := decodePrompt(data, 0)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// marshalNoEscape encodes v without HTML escaping so prompt text stays readable.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ToJSON returns the compact JSON form of v, as embedded in model messages.
func ToJSON(v any) string {
	data, err := marshalNoEscape(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
