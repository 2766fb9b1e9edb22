package matchmaker

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPlayer(id int64, cluster int32, skill float64, prefs ...domain.Position) *domain.Player {
	return &domain.Player{
		ID:                 id,
		Account:            "player",
		Cluster:            cluster,
		SkillScore:         skill,
		PreferredPositions: prefs,
	}
}

// 每个位置 perRole 名玩家，第一偏好依次为 1~5 号位，同一位置的玩家技术分相同
func balancedCluster(firstID int64, cluster int32, perRole int) []*domain.Player {
	players := make([]*domain.Player, 0, perRole*domain.TeamSize)
	id := firstID
	for _, position := range domain.Positions {
		for i := 0; i < perRole; i++ {
			players = append(players, newPlayer(id, cluster, float64(position), position))
			id++
		}
	}
	return players
}

// 技术分和偏好位置各不相同的服务器，用于检查算子在一般情况下的行为
func mixedCluster(firstID int64, cluster int32, n int) []*domain.Player {
	players := make([]*domain.Player, 0, n)
	for i := 0; i < n; i++ {
		first := domain.Positions[i%domain.TeamSize]
		second := domain.Positions[(i+2)%domain.TeamSize]
		players = append(players, newPlayer(firstID+int64(i), cluster, float64(i%7)*0.3+0.1, first, second))
	}
	return players
}

func mustPool(t *testing.T, players ...[]*domain.Player) *Pool {
	t.Helper()
	var all []*domain.Player
	for _, ps := range players {
		all = append(all, ps...)
	}
	pool, err := NewPool(all)
	require.NoError(t, err)
	return pool
}

func testParameters() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 40
	p.Generations = 10
	p.Workers = 4
	p.Seed = 42
	return &p
}

func mustMatchmaker(t *testing.T, pool *Pool, cluster int32, params *Parameters) *Matchmaker {
	t.Helper()
	m, err := New(params, pool, cluster, WithLogger(discardLogger()))
	require.NoError(t, err)
	return m
}

func sortedIDs(m *Match) []int64 {
	ids := m.IDs()
	slices.Sort(ids)
	return ids
}
