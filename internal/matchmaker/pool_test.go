package matchmaker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func TestRoleOf(t *testing.T) {
	tests := []struct {
		position int
		team     domain.Team
		role     domain.Position
	}{
		{0, domain.TeamRadiant, domain.PositionCarry},
		{2, domain.TeamRadiant, domain.PositionOfflaner},
		{4, domain.TeamRadiant, domain.PositionSupport},
		{5, domain.TeamDire, domain.PositionCarry},
		{8, domain.TeamDire, domain.PositionRoamer},
		{9, domain.TeamDire, domain.PositionSupport},
	}

	for _, tt := range tests {
		team, role := RoleOf(tt.position)
		assert.Equal(t, tt.team, team, "position %d", tt.position)
		assert.Equal(t, tt.role, role, "position %d", tt.position)
	}
}

func TestNewPool_RejectsInvalidPlayers(t *testing.T) {
	tests := []struct {
		name    string
		players []*domain.Player
	}{
		{"nil player", []*domain.Player{nil}},
		{"duplicate id", []*domain.Player{newPlayer(1, 1, 0, 1), newPlayer(1, 1, 0, 2)}},
		{"no preferred positions", []*domain.Player{newPlayer(1, 1, 0)}},
		{"duplicate preferred position", []*domain.Player{newPlayer(1, 1, 0, 2, 3, 2)}},
		{"position out of range", []*domain.Player{newPlayer(1, 1, 0, 6)}},
		{"NaN skill", []*domain.Player{newPlayer(1, 1, math.NaN(), 1)}},
		{"+Inf skill", []*domain.Player{newPlayer(1, 1, math.Inf(1), 1)}},
		{"-Inf skill", []*domain.Player{newPlayer(1, 1, math.Inf(-1), 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPool(tt.players)
			require.ErrorIs(t, err, ErrInvalidPlayer)
		})
	}
}

// 一个技术分为 NaN 的玩家会让整个对局的适应度变成 NaN，必须在建池时拒绝
func TestNewPool_RejectsNonFiniteSkillInLargerPool(t *testing.T) {
	players := append(balancedCluster(1, 7, 2), balancedCluster(100, 8, 2)...)
	players[0].SkillScore = math.NaN()

	_, err := NewPool(players)
	require.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestNewPool_GroupsByCluster(t *testing.T) {
	pool := mustPool(t, balancedCluster(100, 133, 2), balancedCluster(1, 121, 1))

	assert.Equal(t, 15, pool.Size())
	assert.Equal(t, []int32{121, 133}, pool.Clusters())
	assert.Equal(t, 10, pool.ClusterSize(133))
	assert.Equal(t, 5, pool.ClusterSize(121))
	assert.Equal(t, 0, pool.ClusterSize(999))

	player, ok := pool.Player(100)
	require.True(t, ok)
	assert.Equal(t, int32(133), player.Cluster)
}

func TestPool_Validate(t *testing.T) {
	pool := mustPool(t, balancedCluster(1, 1, 3), balancedCluster(100, 2, 2))
	valid := []int64{1, 4, 7, 10, 13, 2, 5, 8, 11, 14}

	tests := []struct {
		name string
		ids  []int64
		want error
	}{
		{"valid", valid, nil},
		{"too short", valid[:9], ErrWrongSize},
		{"too long", append(append([]int64{}, valid...), 3), ErrWrongSize},
		{"unknown player", []int64{1, 4, 7, 10, 13, 2, 5, 8, 11, 999}, ErrUnknownPlayer},
		{"duplicate player", []int64{1, 4, 7, 10, 13, 2, 5, 8, 11, 1}, ErrDuplicatePlayer},
		{"mixed cluster", []int64{1, 4, 7, 10, 13, 2, 5, 8, 11, 100}, ErrMixedCluster},
		// 同时违反多条约束时，按顺序报告第一条
		{"unknown before duplicate", []int64{1, 1, 7, 10, 13, 2, 5, 8, 11, 999}, ErrUnknownPlayer},
		{"duplicate before mixed", []int64{1, 1, 7, 10, 13, 2, 5, 8, 11, 100}, ErrDuplicatePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pool.Validate(tt.ids)
			if tt.want == nil {
				require.NoError(t, err)
				assert.True(t, pool.IsValid(tt.ids))
				return
			}
			require.ErrorIs(t, err, tt.want)
			assert.False(t, pool.IsValid(tt.ids))
			assert.True(t, math.IsInf(pool.Evaluate(tt.ids), -1))
		})
	}
}
