package testutil

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomSwitch(t *testing.T) {
	rndm := rand.New(rand.NewSource(1))
	pick := RandomSwitch(1, 3)

	counts := make([]int, 2)
	for range 4000 {
		counts[pick(rndm)]++
	}
	require.InDelta(t, 1000, counts[0], 150)
	require.InDelta(t, 3000, counts[1], 150)

	require.Panics(t, func() { RandomSwitch() })
	require.Panics(t, func() { RandomSwitch(1, 0) })
}

func TestRandomString(t *testing.T) {
	rndm := rand.New(rand.NewSource(2))
	str := RandomString(rndm, 12)
	require.Len(t, str, 12)
	for _, c := range str {
		require.True(t, c >= 'a' && c <= 'z')
	}
}

func TestRandomIntPtr(t *testing.T) {
	rndm := rand.New(rand.NewSource(3))
	sawNil := false
	for range 200 {
		value := RandomIntPtr(rndm, 0, 8)
		if value == nil {
			sawNil = true
			continue
		}
		require.GreaterOrEqual(t, *value, 0)
		require.LessOrEqual(t, *value, 8)
	}
	require.True(t, sawNil)
}
