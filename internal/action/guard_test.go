package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardRejectsReentry(t *testing.T) {
	g := NewGuard()
	first, err := g.Begin("lobby/raise")
	require.NoError(t, err)
	require.Len(t, first.ID, 26)

	_, err = g.Begin("lobby/raise")
	require.ErrorIs(t, err, ErrActionPending)

	_, err = g.Begin("lobby/fold")
	require.NoError(t, err)

	g.End(first)
	_, busy := g.Pending("lobby/raise")
	require.False(t, busy)

	second, err := g.Begin("lobby/raise")
	require.NoError(t, err)

	g.End(first)
	cur, busy := g.Pending("lobby/raise")
	require.True(t, busy)
	require.Equal(t, second.ID, cur.ID)
}
