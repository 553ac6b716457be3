package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidULID(t *testing.T) {
	t.Parallel()

	id := New()
	require.False(t, id.IsZero())

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewAt(at)

	// ULID time resolution is milliseconds.
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestNewIsMonotonicWithinSameMillisecond(t *testing.T) {
	t.Parallel()

	at := time.Now().UTC()
	a := NewAt(at)
	b := NewAt(at)
	require.Less(t, a.String(), b.String())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "not-a-ulid", "01BX5ZZKBKACTAV9WEVGEMMVR"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrInvalid, "input %q", in)
	}
}

func TestZeroID(t *testing.T) {
	t.Parallel()

	require.True(t, Zero.IsZero())
	require.True(t, Zero.Time().IsZero())
}
