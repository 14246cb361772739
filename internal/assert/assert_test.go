package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotNil(t *testing.T) {
	require.PanicsWithValue(t, "expected client to be not nil", func() {
		NotNil(nil, "client")
	})
	require.PanicsWithValue(t, "expected value to be not nil", func() {
		NotNil(nil)
	})
	require.NotPanics(t, func() {
		NotNil(struct{}{}, "client")
	})
}

func TestNotEmptyStr(t *testing.T) {
	require.PanicsWithValue(t, "expected tenant to be non-empty", func() {
		NotEmptyStr("", "tenant")
	})
	require.NotPanics(t, func() {
		NotEmptyStr("LwlRRM", "tenant")
	})
}
