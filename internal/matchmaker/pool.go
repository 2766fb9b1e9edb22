package matchmaker

import (
	"fmt"
	"math"
	"slices"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// Pool: 一次运行所使用的候选玩家池，创建之后只读
type Pool struct {
	players    map[int64]*domain.Player
	clusters   map[int32][]int64 // {cluster: [playerID1, playerID2, ...]}，保持传入时的顺序
	clusterIDs []int32           // 升序排列，保证随机选择服务器时结果可复现
}

func NewPool(players []*domain.Player) (*Pool, error) {
	p := &Pool{
		players:  make(map[int64]*domain.Player, len(players)),
		clusters: make(map[int32][]int64),
	}

	for i, player := range players {
		if player == nil {
			return nil, fmt.Errorf("%w: 第 %d 个玩家为空", ErrInvalidPlayer, i)
		}
		if _, exists := p.players[player.ID]; exists {
			return nil, fmt.Errorf("%w: 玩家 %d 重复", ErrInvalidPlayer, player.ID)
		}
		if err := validatePlayer(player); err != nil {
			return nil, err
		}

		p.players[player.ID] = player
		if _, exists := p.clusters[player.Cluster]; !exists {
			p.clusterIDs = append(p.clusterIDs, player.Cluster)
		}
		p.clusters[player.Cluster] = append(p.clusters[player.Cluster], player.ID)
	}

	slices.Sort(p.clusterIDs)

	return p, nil
}

func validatePlayer(player *domain.Player) error {
	if math.IsNaN(player.SkillScore) || math.IsInf(player.SkillScore, 0) {
		return fmt.Errorf("%w: 玩家 %d 的技术分 %v 不是有限数", ErrInvalidPlayer, player.ID, player.SkillScore)
	}
	if len(player.PreferredPositions) == 0 {
		return fmt.Errorf("%w: 玩家 %d 没有偏好位置", ErrInvalidPlayer, player.ID)
	}

	seen := make(map[domain.Position]bool, len(player.PreferredPositions))
	for _, position := range player.PreferredPositions {
		if !position.Valid() {
			return fmt.Errorf("%w: 玩家 %d 的偏好位置 %d 不存在", ErrInvalidPlayer, player.ID, position)
		}
		if seen[position] {
			return fmt.Errorf("%w: 玩家 %d 的偏好位置 %d 重复", ErrInvalidPlayer, player.ID, position)
		}
		seen[position] = true
	}

	return nil
}

func (p *Pool) Player(id int64) (*domain.Player, bool) {
	player, ok := p.players[id]
	return player, ok
}

func (p *Pool) Size() int {
	return len(p.players)
}

func (p *Pool) Clusters() []int32 {
	return slices.Clone(p.clusterIDs)
}

func (p *Pool) ClusterSize(cluster int32) int {
	return len(p.clusters[cluster])
}

// Validate 按顺序检查对局的三个约束，遇到第一个不满足的约束就返回
//  1. 恰好 10 人，且都是池中的玩家
//  2. 10 人互不相同
//  3. 10 人都在同一个服务器
func (p *Pool) Validate(ids []int64) error {
	if len(ids) != MatchSize {
		return fmt.Errorf("%w: 实际为 %d 人", ErrWrongSize, len(ids))
	}
	for _, id := range ids {
		if _, ok := p.players[id]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
		}
	}

	seen := make(map[int64]bool, MatchSize)
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %d", ErrDuplicatePlayer, id)
		}
		seen[id] = true
	}

	cluster := p.players[ids[0]].Cluster
	for _, id := range ids[1:] {
		if p.players[id].Cluster != cluster {
			return fmt.Errorf("%w: %d 和 %d", ErrMixedCluster, cluster, p.players[id].Cluster)
		}
	}

	return nil
}

func (p *Pool) IsValid(ids []int64) bool {
	return p.Validate(ids) == nil
}
