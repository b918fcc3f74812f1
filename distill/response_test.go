package distill

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain json untouched",
			in:   `{"title": "Go"}`,
			want: `{"title": "Go"}`,
		},
		{
			name: "fence with language tag",
			in:   "```json\n{\"title\": \"Go\"}\n```",
			want: `{"title": "Go"}`,
		},
		{
			name: "fence without language tag",
			in:   "```\n{\"title\": \"Go\"}\n```",
			want: `{"title": "Go"}`,
		},
		{
			name: "uppercase language tag",
			in:   "```JSON\n{\"title\": \"Go\"}\n```",
			want: `{"title": "Go"}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n```json\n{\"a\": 1}\n```\n  ",
			want: `{"a": 1}`,
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.in))
		})
	}
}

func TestCleanResponseIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"title\": \"Go\"}\n```",
		`{"title": "Go"}`,
		"some prose around {\"a\": 1} here",
	}
	for _, in := range inputs {
		once := CleanResponse(in)
		assert.Equal(t, once, CleanResponse(once))
	}
}

func TestDecodeResponse(t *testing.T) {
	type card struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}

	tests := []struct {
		name string
		in   string
		want card
	}{
		{
			name: "plain json",
			in:   `{"title": "Go", "tags": ["lang"]}`,
			want: card{Title: "Go", Tags: []string{"lang"}},
		},
		{
			name: "fenced json",
			in:   "```json\n{\"title\": \"Go\", \"tags\": [\"lang\"]}\n```",
			want: card{Title: "Go", Tags: []string{"lang"}},
		},
		{
			name: "prose around the object",
			in:   "Here is the card you asked for:\n{\"title\": \"Go\", \"tags\": [\"lang\"]}\nLet me know if you need more.",
			want: card{Title: "Go", Tags: []string{"lang"}},
		},
		{
			name: "missing opening quote on key",
			in:   `{"title": "Go", tags": ["lang"]}`,
			want: card{Title: "Go", Tags: []string{"lang"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got card
			require.NoError(t, DecodeResponse(tt.in, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeResponseFenceAndBareAgree(t *testing.T) {
	type card struct {
		Title string `json:"title"`
	}

	var bare, fenced card
	require.NoError(t, DecodeResponse(`{"title": "Etcd"}`, &bare))
	require.NoError(t, DecodeResponse("```json\n{\"title\": \"Etcd\"}\n```", &fenced))
	assert.Equal(t, bare, fenced)
}

func TestDecodeResponseRoundTrip(t *testing.T) {
	type card struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}

	var first card
	require.NoError(t, DecodeResponse("```json\n{\"title\": \"Go\", \"tags\": [\"lang\"]}\n```", &first))

	data, err := json.Marshal(first)
	require.NoError(t, err)

	var second card
	require.NoError(t, DecodeResponse(string(data), &second))
	assert.Equal(t, first, second)
}

func TestDecodeResponseFailure(t *testing.T) {
	var v struct{}
	err := DecodeResponse("this is not json at all", &v)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "this is not json at all", parseErr.Raw)
}
