package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum64_Deterministic(t *testing.T) {
	require.Equal(t, Sum64([]byte("discodb")), Sum64([]byte("discodb")))
	require.NotEqual(t, Sum64([]byte("a")), Sum64([]byte("b")))
}

func TestSum64_EmptyKey(t *testing.T) {
	require.Equal(t, Sum64(nil), Sum64([]byte{}))
	require.NotEqual(t, Sum64(nil), Sum64([]byte{0}))
}
