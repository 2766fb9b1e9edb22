package matchmaker

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func TestResolveCluster(t *testing.T) {
	rng := newRand(1)

	cluster, err := ResolveCluster("US EAST", 123, false, rng)
	require.NoError(t, err)
	assert.Equal(t, int32(123), cluster)

	_, err = ResolveCluster("US EAST", 131, false, rng)
	require.ErrorIs(t, err, ErrServerNotInRegion)

	_, err = ResolveCluster("ATLANTIS", 0, false, rng)
	require.ErrorIs(t, err, ErrUnknownRegion)

	cluster, err = ResolveCluster("EUROPE", 0, true, rng)
	require.NoError(t, err)
	assert.Zero(t, cluster)

	for i := 0; i < 20; i++ {
		cluster, err = ResolveCluster("EUROPE", 0, false, rng)
		require.NoError(t, err)
		assert.True(t, slices.Contains(domain.Regions["EUROPE"], cluster))
	}
}
