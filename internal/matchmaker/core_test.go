package matchmaker

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func TestCreateMatch_PrefersFirstChoice(t *testing.T) {
	pool := mustPool(t, balancedCluster(1, 7, 2))
	m := mustMatchmaker(t, pool, 7, testParameters())
	rng := newRand(1)

	for i := 0; i < 20; i++ {
		ids, err := m.createMatch(rng, 7)
		require.NoError(t, err)
		require.NoError(t, pool.Validate(ids))

		for slot, id := range ids {
			_, position := RoleOf(slot)
			player, _ := pool.Player(id)
			assert.Equal(t, position, player.FirstChoice(), "slot %d", slot)
		}
	}
}

func TestCreateMatch_FallsBackToAnyPreference(t *testing.T) {
	players := balancedCluster(1, 7, 2)
	// 没有人把 1 号位作为第一偏好，但有两个人可以打 1 号位
	players[0].PreferredPositions = []domain.Position{domain.PositionSupport, domain.PositionCarry}
	players[1].PreferredPositions = []domain.Position{domain.PositionSupport, domain.PositionCarry}
	pool := mustPool(t, players)
	m := mustMatchmaker(t, pool, 7, testParameters())

	ids, err := m.createMatch(newRand(3), 7)
	require.NoError(t, err)
	require.NoError(t, pool.Validate(ids))

	for _, slot := range []int{0, 5} {
		player, _ := pool.Player(ids[slot])
		assert.True(t, player.Prefers(domain.PositionCarry))
		assert.NotEqual(t, domain.PositionCarry, player.FirstChoice())
	}
	for _, slot := range []int{4, 9} {
		player, _ := pool.Player(ids[slot])
		assert.Equal(t, domain.PositionSupport, player.FirstChoice())
	}
}

func TestCreateMatch_FailsOnUncoveredRole(t *testing.T) {
	players := balancedCluster(1, 7, 2)
	players[8].PreferredPositions = []domain.Position{domain.PositionCarry}
	players[9].PreferredPositions = []domain.Position{domain.PositionCarry}
	pool := mustPool(t, players)
	m := mustMatchmaker(t, pool, 7, testParameters())

	_, err := m.createMatch(newRand(1), 7)
	require.ErrorIs(t, err, errNoValidMatch)
}

func TestRun_InsufficientCandidates(t *testing.T) {
	players := balancedCluster(1, 7, 2)[:9]
	pool := mustPool(t, players)

	// 固定服务器和不固定服务器都应该直接失败，而不是一直重试
	for _, cluster := range []int32{7, 0} {
		m := mustMatchmaker(t, pool, cluster, testParameters())
		res, err := m.Run(context.Background())
		require.ErrorIs(t, err, ErrInsufficientCandidates)
		assert.Nil(t, res)
	}
}

func TestRun_NoValidPopulation(t *testing.T) {
	players := make([]*domain.Player, 0, 12)
	for i := int64(1); i <= 12; i++ {
		players = append(players, newPlayer(i, 7, 1, domain.PositionCarry))
	}
	pool := mustPool(t, players)

	params := testParameters()
	params.MaxInitAttempts = 25
	m := mustMatchmaker(t, pool, 7, params)

	_, err := m.Run(context.Background())
	require.ErrorIs(t, err, ErrNoValidPopulation)
}

func TestSelectTournament(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 20))
	m := mustMatchmaker(t, pool, 1, testParameters())
	pop, err := m.initPopulation(context.Background(), newRand(5))
	require.NoError(t, err)

	chosen := selectTournament(pop, 3, newRand(9))
	require.Len(t, chosen, len(pop))
	for _, c := range chosen {
		assert.True(t, slices.Contains(pop, c))
	}

	// 锦标赛大小远大于种群时几乎总是选到最好的个体
	best := updateBest(nil, pop)
	chosen = selectTournament(pop, 2000, newRand(9))
	for _, c := range chosen {
		assert.Equal(t, best.Fitness(), c.Fitness())
	}
}

func TestCrossover_ProducesValidChildren(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 20))
	m := mustMatchmaker(t, pool, 1, testParameters())
	rng := newRand(11)

	pop, err := m.initPopulation(context.Background(), rng)
	require.NoError(t, err)

	for i := 0; i+1 < len(pop); i += 2 {
		p1, p2 := pop[i], pop[i+1]
		before1, before2 := p1.IDs(), p2.IDs()

		c1, c2, err := m.crossover(p1, p2, rng)
		require.NoError(t, err)
		require.NoError(t, pool.Validate(c1.ids))
		require.NoError(t, pool.Validate(c2.ids))
		assert.Equal(t, pool.Evaluate(c1.ids), c1.Fitness())
		assert.Equal(t, pool.Evaluate(c2.ids), c2.Fitness())

		// 父代不会被修改
		assert.Equal(t, before1, p1.IDs())
		assert.Equal(t, before2, p2.IDs())
	}
}

func TestCrossover_ExactlyTenCandidates(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 10))
	m := mustMatchmaker(t, pool, 1, testParameters())
	rng := newRand(2)

	p1 := newMatch(pool, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	p2 := newMatch(pool, []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})

	for i := 0; i < 50; i++ {
		c1, c2, err := m.crossover(p1, p2, rng)
		require.NoError(t, err)
		assert.Equal(t, sortedIDs(p1), sortedIDs(c1))
		assert.Equal(t, sortedIDs(p1), sortedIDs(c2))
	}
}

func TestCrossover_ParentsFromDifferentClusters(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 12), mixedCluster(100, 2, 12))
	m := mustMatchmaker(t, pool, 0, testParameters())
	rng := newRand(4)

	p1 := newMatch(pool, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	p2 := newMatch(pool, []int64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109})

	for i := 0; i < 50; i++ {
		c1, c2, err := m.crossover(p1, p2, rng)
		require.NoError(t, err)
		require.NoError(t, pool.Validate(c1.ids))
		require.NoError(t, pool.Validate(c2.ids))

		first1, _ := pool.Player(c1.ids[0])
		first2, _ := pool.Player(c2.ids[0])
		assert.Equal(t, int32(1), first1.Cluster)
		assert.Equal(t, int32(2), first2.Cluster)
	}
}

func TestRepair_DegenerateGroup(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 8))
	m := mustMatchmaker(t, pool, 1, testParameters())

	_, err := m.repair([]int64{1, 2, 3, 4, 5, 1, 2, 3, 4, 5}, 1, newRand(1))
	require.ErrorIs(t, err, ErrDegenerateGroup)
}

func TestRepair_KeepsFirstSeenOrder(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 20))
	m := mustMatchmaker(t, pool, 1, testParameters())

	repaired, err := m.repair([]int64{5, 3, 5, 9, 3, 1, 2, 4, 6, 7}, 1, newRand(1))
	require.NoError(t, err)
	require.Len(t, repaired, MatchSize)
	assert.Equal(t, []int64{5, 3, 9, 1, 2, 4, 6, 7}, repaired[:8])
	assert.True(t, pool.IsValid(repaired))
}

func TestMutate_IsPermutation(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 20))
	m := mustMatchmaker(t, pool, 1, testParameters())
	rng := newRand(8)

	ind := newMatch(pool, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	for i := 0; i < 50; i++ {
		mutated := m.mutate(ind, 0.5, rng)
		assert.Equal(t, sortedIDs(ind), sortedIDs(mutated))
		assert.True(t, pool.IsValid(mutated.ids))
		assert.Equal(t, pool.Evaluate(mutated.ids), mutated.Fitness())
	}

	// 概率为 0 时不会有任何变化
	assert.Equal(t, ind.IDs(), m.mutate(ind, 0, rng).IDs())
}
