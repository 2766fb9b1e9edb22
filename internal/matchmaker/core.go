package matchmaker

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// createMatch 在指定服务器中构造一个对局
// 按 1~5 号位的顺序，每个位置先为天辉选人，再为夜魇选人
func (m *Matchmaker) createMatch(rng *rand.Rand, cluster int32) ([]int64, error) {
	members := m.pool.clusters[cluster]
	if len(members) < MatchSize {
		return nil, fmt.Errorf("%w: 服务器 %d 只有 %d 名玩家", ErrInsufficientCandidates, cluster, len(members))
	}

	ids := make([]int64, MatchSize)
	selected := make(map[int64]bool, MatchSize)

	for _, position := range domain.Positions {
		for _, offset := range []int{0, domain.TeamSize} {
			id, ok := m.pickForPosition(rng, members, selected, position)
			if !ok {
				return nil, fmt.Errorf("%w: 服务器 %d 的 %s", errNoValidMatch, cluster, position)
			}
			ids[offset+int(position)-1] = id
			selected[id] = true
		}
	}

	return ids, nil
}

// 优先从把该位置作为第一偏好的玩家中随机选，其次从偏好列表包含该位置的玩家中随机选
func (m *Matchmaker) pickForPosition(rng *rand.Rand, members []int64, selected map[int64]bool, position domain.Position) (int64, bool) {
	var firstChoiceCandidates []int64
	var otherCandidates []int64

	for _, id := range members {
		if selected[id] {
			continue
		}
		player := m.pool.players[id]
		if player.FirstChoice() == position {
			firstChoiceCandidates = append(firstChoiceCandidates, id)
		} else if player.Prefers(position) {
			otherCandidates = append(otherCandidates, id)
		}
	}

	if len(firstChoiceCandidates) > 0 {
		return firstChoiceCandidates[rng.Intn(len(firstChoiceCandidates))], true
	}
	if len(otherCandidates) > 0 {
		return otherCandidates[rng.Intn(len(otherCandidates))], true
	}

	return 0, false
}

// initPopulation 生成初始种群
// 固定了服务器时总是使用该服务器，否则每次尝试都随机选择一个服务器
// 连续失败 MaxInitAttempts 次后停止尝试
func (m *Matchmaker) initPopulation(ctx context.Context, rng *rand.Rand) ([]*Match, error) {
	if m.cluster != 0 {
		if size := m.pool.ClusterSize(m.cluster); size < MatchSize {
			return nil, fmt.Errorf("%w: 服务器 %d 只有 %d 名玩家", ErrInsufficientCandidates, m.cluster, size)
		}
	} else if !slices.ContainsFunc(m.pool.clusterIDs, func(c int32) bool { return m.pool.ClusterSize(c) >= MatchSize }) {
		return nil, fmt.Errorf("%w: 没有任何服务器的玩家数量达到 %d 人", ErrInsufficientCandidates, MatchSize)
	}

	pop := make([]*Match, 0, m.parameters.PopulationSize)
	failures, totalFailures := 0, 0

	for len(pop) < m.parameters.PopulationSize && failures < m.parameters.MaxInitAttempts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: 初始化种群时中断: %w", ErrCanceled, err)
		}

		cluster := m.cluster
		if cluster == 0 {
			cluster = m.pool.clusterIDs[rng.Intn(len(m.pool.clusterIDs))]
		}

		ids, err := m.createMatch(rng, cluster)
		if err != nil {
			failures++
			totalFailures++
			continue
		}

		failures = 0
		pop = append(pop, newMatch(m.pool, ids))
	}

	initAttempts.WithLabelValues("success").Add(float64(len(pop)))
	initAttempts.WithLabelValues("failure").Add(float64(totalFailures))

	if len(pop) == 0 {
		return nil, fmt.Errorf("%w: 连续 %d 次尝试均失败", ErrNoValidPopulation, m.parameters.MaxInitAttempts)
	}
	if len(pop) < m.parameters.PopulationSize {
		m.logger.Warn("初始种群数量不足，使用已生成的对局继续", "want", m.parameters.PopulationSize, "got", len(pop))
	}

	return pop, nil
}

// 锦标赛选择：每次有放回地随机抽取 k 个对局，保留适应度最高的一个
// 适应度相同时保留先抽到的
func selectTournament(pop []*Match, k int, rng *rand.Rand) []*Match {
	chosen := make([]*Match, len(pop))

	for i := range chosen {
		best := pop[rng.Intn(len(pop))]
		for j := 1; j < k; j++ {
			aspirant := pop[rng.Intn(len(pop))]
			if aspirant.fitness > best.fitness {
				best = aspirant
			}
		}
		chosen[i] = best
	}

	return chosen
}

// 两点交叉，交换 [c1, c2) 区间内的玩家，再分别修复两个子代
// 父代不会被修改
func (m *Matchmaker) crossover(ind1 *Match, ind2 *Match, rng *rand.Rand) (*Match, *Match, error) {
	size := len(ind1.ids)
	if size != len(ind2.ids) || size < 2 {
		return nil, nil, fmt.Errorf("%w: 父代长度为 %d 和 %d", ErrWrongSize, len(ind1.ids), len(ind2.ids))
	}

	c1 := rng.Intn(size) + 1   // [1, size]
	c2 := rng.Intn(size-1) + 1 // [1, size-1]
	if c2 >= c1 {
		c2++
	} else {
		c1, c2 = c2, c1
	}

	child1 := slices.Clone(ind1.ids)
	child2 := slices.Clone(ind2.ids)
	for i := c1; i < c2; i++ {
		child1[i], child2[i] = child2[i], child1[i]
	}

	// c1 >= 1，所以子代的第一个位置一定来自对应的父代，以它所在的服务器为准
	child1, err := m.repair(child1, m.pool.players[ind1.ids[0]].Cluster, rng)
	if err != nil {
		return nil, nil, err
	}
	child2, err = m.repair(child2, m.pool.players[ind2.ids[0]].Cluster, rng)
	if err != nil {
		return nil, nil, err
	}

	return newMatch(m.pool, child1), newMatch(m.pool, child2), nil
}

// repair 去掉重复的玩家以及不在 cluster 中的玩家（保持首次出现的顺序），
// 然后从 cluster 中尚未出场的玩家里无放回地随机补齐到 10 人
func (m *Matchmaker) repair(child []int64, cluster int32, rng *rand.Rand) ([]int64, error) {
	seen := make(map[int64]bool, MatchSize)
	repaired := make([]int64, 0, MatchSize)

	for _, id := range child {
		if seen[id] {
			continue
		}
		player, ok := m.pool.players[id]
		if !ok || player.Cluster != cluster {
			continue
		}
		seen[id] = true
		repaired = append(repaired, id)
	}

	if len(repaired) == MatchSize {
		return repaired, nil
	}

	var candidates []int64
	for _, id := range m.pool.clusters[cluster] {
		if !seen[id] {
			candidates = append(candidates, id)
		}
	}

	for len(repaired) < MatchSize {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: 服务器 %d 只有 %d 名玩家", ErrDegenerateGroup, cluster, m.pool.ClusterSize(cluster))
		}
		i := rng.Intn(len(candidates))
		repaired = append(repaired, candidates[i])
		candidates[i] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]
	}

	return repaired, nil
}

// 变异：每个位置以 indpb 的概率与随机的另一个位置交换（可能与自己交换）
// 只改变玩家的位置，不会改变对局中的玩家集合
func (m *Matchmaker) mutate(ind *Match, indpb float64, rng *rand.Rand) *Match {
	ids := slices.Clone(ind.ids)

	for i := range ids {
		if rng.Float64() >= indpb {
			continue
		}
		j := rng.Intn(len(ids))
		ids[i], ids[j] = ids[j], ids[i]
	}

	return newMatch(m.pool, ids)
}
