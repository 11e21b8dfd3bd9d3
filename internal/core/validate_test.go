package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without newline", "```{\"a\":1}```", `{"a":1}`},
		{"empty fence kept", "``````", "``````"},
		{"fenced text", "```\nhello world\n```", "hello world"},
		{"fence not at start", "voici:\n```json\n{}\n```", "voici:\n```json\n{}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unwrap(tt.in))
		})
	}
}

const fivePrompt = `{
	"sujet": {"valeur": "un chat", "alternatives": ["a", "b", "c", "d"]},
	"style": {"valeur": "aquarelle", "alternatives": ["a", "b", "c", "d"]},
	"éclairage": {"valeur": "doux", "alternatives": []},
	"composition": {"valeur": "centrée", "alternatives": ["x"]},
	"détails": {"valeur": "moustaches", "alternatives": ["a", "b", "c", "d"]}
}`

func TestParseOpen(t *testing.T) {
	p, err := ParseOpen("```json\n"+fivePrompt+"\n```", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"sujet", "style", "éclairage", "composition", "détails"}, p.Keys())

	seg, ok := p.Get("sujet")
	require.True(t, ok)
	assert.Equal(t, "un chat", seg.Value)
	assert.Len(t, seg.Alternatives, 4)

	// alternatives count is not enforced
	seg, _ = p.Get("composition")
	assert.Equal(t, []string{"x"}, seg.Alternatives)
}

func TestParseOpenRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		minKeys int
		shape   bool
	}{
		{"too few keys", `{"sujet":{"valeur":"x","alternatives":[]}}`, 5, true},
		{"empty object", `{}`, 0, true},
		{"not an object", `["a"]`, 1, true},
		{"number value", `{"sujet":{"valeur":3,"alternatives":[]}}`, 1, true},
		{"null alternative", `{"sujet":{"valeur":"x","alternatives":["a",null]}}`, 1, true},
		{"alternatives not array", `{"sujet":{"valeur":"x","alternatives":"a"}}`, 1, true},
		{"missing alternatives", `{"sujet":{"valeur":"x"}}`, 1, true},
		{"segment is string", `{"sujet":"x"}`, 1, true},
		{"syntax error", `{"sujet":`, 1, false},
		{"trailing data", `{"sujet":{"valeur":"x","alternatives":[]}} {}`, 1, false},
		{"plain text", `Bonjour !`, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseOpen(tt.in, tt.minKeys)
			require.Error(t, err)
			assert.Nil(t, p)

			var shapeErr *ShapeError
			assert.Equal(t, tt.shape, errors.As(err, &shapeErr))
		})
	}
}

func TestParsePreserved(t *testing.T) {
	ref := NewPrompt()
	ref.Set("style", Segment{Value: "old"})
	ref.Set("sujet", Segment{Value: "old"})

	t.Run("same keys reordered to reference", func(t *testing.T) {
		p, err := ParsePreserved(`{"sujet":{"valeur":"new s","alternatives":[]},"style":{"valeur":"new st","alternatives":["a"]}}`, ref)
		require.NoError(t, err)
		assert.Equal(t, []string{"style", "sujet"}, p.Keys())
		seg, _ := p.Get("style")
		assert.Equal(t, "new st", seg.Value)
	})

	t.Run("extra key", func(t *testing.T) {
		_, err := ParsePreserved(`{"sujet":{"valeur":"","alternatives":[]},"style":{"valeur":"","alternatives":[]},"mood":{"valeur":"","alternatives":[]}}`, ref)
		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Contains(t, shapeErr.Message, "key mismatch")
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := ParsePreserved(`{"sujet":{"valeur":"","alternatives":[]}}`, ref)
		require.Error(t, err)
	})

	t.Run("renamed key", func(t *testing.T) {
		_, err := ParsePreserved(`{"sujet":{"valeur":"","alternatives":[]},"Style":{"valeur":"","alternatives":[]}}`, ref)
		require.Error(t, err)
	})
}

func TestParseSegment(t *testing.T) {
	seg, err := ParseSegment("```json\n{\"valeur\":\"pluie fine\",\"alternatives\":[\"a\",\"b\",\"c\",\"d\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "pluie fine", seg.Value)
	assert.Equal(t, []string{"a", "b", "c", "d"}, seg.Alternatives)

	_, err = ParseSegment(`{"meteo":{"valeur":"x","alternatives":[]}}`)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "valeur", shapeErr.Field)
}

func TestParseAlternatives(t *testing.T) {
	alts, err := ParseAlternatives(`{"alternatives":["un","deux","trois","quatre"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"un", "deux", "trois", "quatre"}, alts)

	alts, err = ParseAlternatives(`{"alternatives":[]}`)
	require.NoError(t, err)
	assert.Empty(t, alts)

	for _, bad := range []string{`{"alts":[]}`, `{"alternatives":"x"}`, `{"alternatives":[1]}`, `[]`, ``} {
		_, err := ParseAlternatives(bad)
		assert.Error(t, err, bad)
	}
}

func TestShapeErrorMessage(t *testing.T) {
	assert.Equal(t, "shape error: sujet.valeur - must be a string",
		(&ShapeError{Field: "sujet.valeur", Message: "must be a string"}).Error())
	assert.Equal(t, "shape error: expected a JSON object",
		(&ShapeError{Message: "expected a JSON object"}).Error())
}
