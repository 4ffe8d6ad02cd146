package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_CaseInsensitiveTrimmed(t *testing.T) {
	n := NewNormalizer(map[string]int{"dash": 45, "plus": 43}, 45)

	require.Equal(t, 43, n.Normalize("Plus"))
	require.Equal(t, 43, n.Normalize("  PLUS  "))
	require.Equal(t, 45, n.Normalize("unknown"))
}

func TestNormalizeWithError_NamesValidOptions(t *testing.T) {
	n := NewNormalizer(map[string]string{"before": "b", "after": "a"}, "")

	v, err := n.NormalizeWithError("AFTER")
	require.NoError(t, err)
	require.Equal(t, "a", v)

	_, err = n.NormalizeWithError("sideways")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"sideways"`)
	require.Contains(t, err.Error(), "after")
	require.Contains(t, err.Error(), "before")
}

func TestValidKeys_SortedCopy(t *testing.T) {
	n := NewNormalizer(map[string]int{"star": 42, "dash": 45, "plus": 43}, 45)
	require.Equal(t, []string{"dash", "plus", "star"}, n.ValidKeys())

	keys := n.ValidKeys()
	keys[0] = "mutated"
	require.Equal(t, []string{"dash", "plus", "star"}, n.ValidKeys())
}
