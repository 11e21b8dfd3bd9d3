package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// fenceRegex matches a reply wrapped in a markdown code fence with an
// optional language tag.
var fenceRegex = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// ShapeError reports a reply that parsed as JSON but has the wrong structure.
type ShapeError struct {
	Field   string
	Message string
}

func (e *ShapeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("shape error: %s", e.Message)
	}
	return fmt.Sprintf("shape error: %s - %s", e.Field, e.Message)
}

// Unwrap strips an optional code fence around a model reply.
// Unfenced text is returned trimmed.
func Unwrap(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRegex.FindStringSubmatch(text); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return text
}

// ParsePreserved parses a reply that must keep exactly the key set of ref.
// The result is laid out in ref's key order.
func ParsePreserved(text string, ref *Prompt) (*Prompt, error) {
	parsed, err := decodePrompt([]byte(Unwrap(text)), 0)
	if err != nil {
		return nil, err
	}
	if !parsed.SameKeys(ref) {
		return nil, &ShapeError{
			Message: fmt.Sprintf("key mismatch: got %v, want %v", parsed.Keys(), ref.Keys()),
		}
	}
	return parsed.Reorder(ref.keys), nil
}

// ParseOpen parses a reply that may restructure the prompt freely.
// It needs at least minKeys fields (and never fewer than one).
func ParseOpen(text string, minKeys int) (*Prompt, error) {
	if minKeys < 1 {
		minKeys = 1
	}
	return decodePrompt([]byte(Unwrap(text)), minKeys)
}

// ParseSegment parses a reply holding a single segment object.
func ParseSegment(text string) (Segment, error) {
	return decodeSegment(json.RawMessage(Unwrap(text)), "")
}

// ParseAlternatives parses a reply of the form {"alternatives": [...]}.
func ParseAlternatives(text string) ([]string, error) {
	fields, err := decodeFields([]byte(Unwrap(text)))
	if err != nil {
		return nil, err
	}
	raw, ok := fields["alternatives"]
	if !ok {
		return nil, &ShapeError{Field: "alternatives", Message: "missing"}
	}
	return decodeStrings(raw, "alternatives")
}

// decodePrompt reads an ordered object of segments.
func decodePrompt(data []byte, minKeys int) (*Prompt, error) {
	keys, fields, err := decodeOrdered(data)
	if err != nil {
		return nil, err
	}
	if len(keys) < minKeys {
		return nil, &ShapeError{Message: fmt.Sprintf("expected at least %d fields, got %d", minKeys, len(keys))}
	}

	p := NewPrompt()
	for _, k := range keys {
		seg, err := decodeSegment(fields[k], k)
		if err != nil {
			return nil, err
		}
		p.Set(k, seg)
	}
	return p, nil
}

// decodeOrdered reads a JSON object and returns its keys in document order.
// Duplicate keys keep their first position and last value.
func decodeOrdered(data []byte) ([]string, map[string]json.RawMessage, error) {
	if kind(data) != '{' {
		return nil, nil, &ShapeError{Message: "expected a JSON object"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("failed to parse JSON: unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("failed to parse JSON: trailing data after object")
	}
	return keys, fields, nil
}

// decodeFields reads a JSON object without tracking order.
func decodeFields(data []byte) (map[string]json.RawMessage, error) {
	if kind(data) != '{' {
		return nil, &ShapeError{Message: "expected a JSON object"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return fields, nil
}

func decodeSegment(raw json.RawMessage, field string) (Segment, error) {
	fields, err := decodeFields(raw)
	if err != nil {
		var shapeErr *ShapeError
		if errors.As(err, &shapeErr) {
			shapeErr.Field = field
		}
		return Segment{}, err
	}

	value, ok := fields["valeur"]
	if !ok || kind(value) != '"' {
		return Segment{}, &ShapeError{Field: join(field, "valeur"), Message: "must be a string"}
	}
	var seg Segment
	if err := json.Unmarshal(value, &seg.Value); err != nil {
		return Segment{}, &ShapeError{Field: join(field, "valeur"), Message: err.Error()}
	}

	alts, ok := fields["alternatives"]
	if !ok {
		return Segment{}, &ShapeError{Field: join(field, "alternatives"), Message: "missing"}
	}
	seg.Alternatives, err = decodeStrings(alts, join(field, "alternatives"))
	if err != nil {
		return Segment{}, err
	}
	return seg, nil
}

func decodeStrings(raw json.RawMessage, field string) ([]string, error) {
	if kind(raw) != '[' {
		return nil, &ShapeError{Field: field, Message: "must be an array of strings"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ShapeError{Field: field, Message: err.Error()}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		if kind(item) != '"' || json.Unmarshal(item, &s) != nil {
			return nil, &ShapeError{Field: fmt.Sprintf("%s[%d]", field, i), Message: "must be a string"}
		}
		out = append(out, s)
	}
	return out, nil
}

// kind returns the first non-space byte of a JSON value, or 0.
func kind(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
