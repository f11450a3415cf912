package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.NotEqual(t, a, b)

	// Monotonic source: same-or-later IDs sort after earlier ones.
	require.Less(t, a.String(), b.String())
}

func TestParse(t *testing.T) {
	id := New()

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	parsed, err = Parse("  " + id.String() + "  ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-ulid", "0000", "01BX5ZZKBKACTAV9WEVGEMMVR!"} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid, "input %q", s)
	}
}

func TestTime(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	id := New()
	after := time.Now().UTC().Add(time.Second)

	ts := id.Time()
	require.True(t, ts.After(before), "timestamp should be recent")
	require.True(t, ts.Before(after), "timestamp should be recent")

	require.True(t, Zero.Time().IsZero())
}
