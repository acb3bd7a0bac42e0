package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", `[1,2]`},
		{`{"plain":true}`, `{"plain":true}`},
		{"  {\"padded\":true}  ", `{"padded":true}`},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StripCodeFence(tc.in))
	}
}
