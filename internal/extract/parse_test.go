package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"anonymous fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here you go:\n```json\n{\"a\":1}\n```\nHope that helps!", `{"a":1}`},
		{"whitespace only trim", "  {\"a\":1}  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestParsePayloadFencedAndRawIdentical(t *testing.T) {
	raw := `{"vendor":{"name":"Acme"},"items":[]}`
	fenced := "```json\n" + raw + "\n```"

	a, err := ParsePayload(raw)
	require.NoError(t, err)
	b, err := ParsePayload(fenced)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParsePayloadMalformed(t *testing.T) {
	for _, in := range []string{
		"not json at all",
		"```json\nnot json\n```",
		`[1,2,3]`,
		`null`,
		"",
	} {
		_, err := ParsePayload(in)
		var ee *Error
		require.ErrorAs(t, err, &ee, "input %q", in)
		assert.Equal(t, KindMalformedResponse, ee.Kind)
	}
}
