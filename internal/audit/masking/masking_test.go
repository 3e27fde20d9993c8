package masking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskSecretKeepsPrefixAndSuffix(t *testing.T) {
	require.Equal(t, "sk_****3456", MaskSecret("sk_abcdef123456"))
	require.Equal(t, "****cdef", MaskSecret("abcdef"))
	require.Equal(t, "****", MaskSecret("abcd"))
	require.Equal(t, "", MaskSecret("   "))
}

func TestMaskJSONRecursesIntoNestedValues(t *testing.T) {
	masked := MaskJSON(map[string]any{
		"api_key": "key_secretvalue9876",
		"nested": map[string]any{
			"token": "tok_abcdef",
		},
		"attempts": 3,
		"ids":      []any{"id_12345678"},
		"  ":       "dropped",
	})

	require.Equal(t, "key_****9876", masked["api_key"])
	require.Equal(t, map[string]any{"token": "tok_****cdef"}, masked["nested"])
	require.Equal(t, 3, masked["attempts"])
	require.Equal(t, []any{"id_****5678"}, masked["ids"])
	require.NotContains(t, masked, "")
}

func TestMaskJSONEmptyInput(t *testing.T) {
	require.Nil(t, MaskJSON(nil))
	require.Nil(t, MaskJSON(map[string]any{"": "x"}))
}
