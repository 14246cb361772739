package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl()
	if err != nil {
		t.Skip("tzdata for America/Sao_Paulo is unavailable:", err)
	}
	require.Equal(t, "America/Sao_Paulo", impl.Location().String())
	require.Equal(t, impl.Location(), impl.Now().Location())
	require.WithinDuration(t, time.Now(), impl.Now(), time.Second)
}

func TestFixedImpl(t *testing.T) {
	instant := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	impl := FixedImpl{Instant: instant}
	require.Equal(t, instant, impl.Now())
	require.Equal(t, time.UTC, impl.Location())
}
