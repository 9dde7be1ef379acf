package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	require.True(t, IntKey(-42).Valid())
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xd6}, IntKey(-42).Bytes())

	require.True(t, TextKey("apple").Valid())
	require.Equal(t, []byte("apple"), TextKey("apple").Bytes())

	require.True(t, TextKey("").Valid())
	require.Empty(t, TextKey("").Bytes())

	var zero Key
	require.False(t, zero.Valid())
	require.NotEqual(t, IntKey(0), zero)
}
