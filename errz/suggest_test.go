package errz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "br", 2},
		{"br", "br", 0},
		{"br", "br_if", 3},
		{"loop", "lop", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, editDistance(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		require.Equal(t, tt.expected, editDistance(tt.b, tt.a), "%s/%s", tt.b, tt.a)
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"block", "loop", "br", "br_if", "nop", "drop", "get_local", "set_local", "tee_local"}
	require.Equal(t, []string{"loop", "nop"}, Suggest("lop", names))
	require.Equal(t, []string{"block"}, Suggest("blok", names))
	require.Equal(t, []string{"set_local", "get_local", "tee_local"}, Suggest("set_locl", names))
	require.Empty(t, Suggest("", names))
	require.Empty(t, Suggest("loop", []string{"loop"}))
	require.Empty(t, Suggest("xyzzy", names))
}

func TestDidYouMean(t *testing.T) {
	require.Equal(t, "did you mean 'loop'?", DidYouMean("lop", []string{"loop", "block"}))
	require.Equal(t, "did you mean one of 'get_local', 'set_local'?",
		DidYouMean("xet_local", []string{"get_local", "set_local"}))
	require.Equal(t, "", DidYouMean("zzz", []string{"loop"}))
}
