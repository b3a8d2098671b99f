package library

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripBearerPrefix(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t", ""},
		{"bare key", "tvly-abc123", "tvly-abc123"},
		{"bearer prefix", "Bearer tvly-abc123", "tvly-abc123"},
		{"mixed case prefix", "bEaReR tvly-abc123", "tvly-abc123"},
		{"padded", "  Bearer   tvly-abc123  ", "tvly-abc123"},
		{"doubled prefix", "Bearer Bearer tvly-abc123", "tvly-abc123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StripBearerPrefix(tc.input))
		})
	}
}
