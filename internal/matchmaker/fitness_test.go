package matchmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func TestEvaluate_PerfectMatch(t *testing.T) {
	pool := mustPool(t, balancedCluster(1, 1, 2))
	// 1,2 -> 1 号位；3,4 -> 2 号位；...
	ids := []int64{1, 3, 5, 7, 9, 2, 4, 6, 8, 10}

	assert.Equal(t, 1.0, pool.Evaluate(ids))

	b, err := pool.Breakdown(ids)
	require.NoError(t, err)
	assert.Zero(t, b.Penalty)
}

func TestEvaluate_Formula(t *testing.T) {
	players := []*domain.Player{
		newPlayer(1, 1, 1, 1), newPlayer(2, 1, 2, 2), newPlayer(3, 1, 3, 3), newPlayer(4, 1, 4, 4), newPlayer(5, 1, 5, 5),
		newPlayer(6, 1, 1, 1), newPlayer(7, 1, 2, 2), newPlayer(8, 1, 3, 3), newPlayer(9, 1, 4, 4), newPlayer(10, 1, 6, 5),
	}
	pool := mustPool(t, players)

	// 天辉 15 分，夜魇 16 分，只有 5 号位差 1 分
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	b, err := pool.Breakdown(ids)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b.TeamSkillDiff, 1e-12)
	assert.InDelta(t, 1.0, b.PositionSkillDiff, 1e-12)
	assert.Zero(t, b.FirstChoiceMisses)
	assert.Zero(t, b.PreferenceMisses)
	assert.InDelta(t, 1/(1+1+0.5), pool.Evaluate(ids), 1e-12)

	// 交换天辉的 1 号位和 2 号位：两人都不在偏好位置上
	swapped := []int64{2, 1, 3, 4, 5, 6, 7, 8, 9, 10}
	b, err = pool.Breakdown(swapped)
	require.NoError(t, err)
	assert.Equal(t, 2, b.FirstChoiceMisses)
	assert.Equal(t, 2, b.PreferenceMisses)
	// 1 号位差 |2-1|，2 号位差 |1-2|，5 号位差 1
	assert.InDelta(t, 3.0, b.PositionSkillDiff, 1e-12)
	assert.InDelta(t, 1+0.5*3+20*2+10*2, b.Penalty, 1e-12)
}

func TestEvaluate_FirstChoiceViolationDecreasesFitness(t *testing.T) {
	ids := []int64{1, 3, 5, 7, 9, 2, 4, 6, 8, 10}

	base := balancedCluster(1, 1, 2)
	pool := mustPool(t, base)

	// 只改变玩家 1 的偏好：1 号位变成第二偏好，其余完全相同
	changed := balancedCluster(1, 1, 2)
	changed[0].PreferredPositions = []domain.Position{domain.PositionMidlaner, domain.PositionCarry}
	changedPool := mustPool(t, changed)

	b, err := changedPool.Breakdown(ids)
	require.NoError(t, err)
	assert.Equal(t, 1, b.FirstChoiceMisses)
	assert.Zero(t, b.PreferenceMisses)
	assert.Less(t, changedPool.Evaluate(ids), pool.Evaluate(ids))
}

func TestEvaluate_Deterministic(t *testing.T) {
	pool := mustPool(t, mixedCluster(1, 1, 15))
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	first := pool.Evaluate(ids)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, pool.Evaluate(ids))
	}
	assert.Greater(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
}
