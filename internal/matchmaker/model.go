package matchmaker

import (
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// 一场对局的人数：前 5 个位置是天辉 1~5 号位，后 5 个位置是夜魇 1~5 号位
const MatchSize = 2 * domain.TeamSize

// Match: 一个候选对局（染色体）
// 创建之后不可修改，适应度在创建时计算，因此不会出现适应度过期的情况
type Match struct {
	ids     []int64
	fitness float64
}

func newMatch(pool *Pool, ids []int64) *Match {
	cp := slices.Clone(ids)
	return &Match{
		ids:     cp,
		fitness: pool.Evaluate(cp),
	}
}

// 返回对局中玩家 ID 的副本
func (m *Match) IDs() []int64 {
	return slices.Clone(m.ids)
}

func (m *Match) Fitness() float64 {
	return m.fitness
}

// RoleOf 将对局中的位置映射到 (队伍, 位置号)
func RoleOf(position int) (domain.Team, domain.Position) {
	team := domain.TeamRadiant
	if position >= domain.TeamSize {
		team = domain.TeamDire
	}
	return team, domain.Position(position%domain.TeamSize + 1)
}

// 遗传算法参数
type Parameters struct {
	PopulationSize       int           // 种群大小
	Generations          int           // 迭代次数
	CrossoverProbability float64       // 交叉概率
	MutationProbability  float64       // 个体变异概率
	GeneMutationRate     float64       // 每个位置的变异概率
	TournamentSize       int           // 锦标赛大小
	MaxInitAttempts      int           // 初始化时连续失败的最大次数
	Workers              int           // 并行变异的 goroutine 数量，0 表示使用 GOMAXPROCS
	Timeout              time.Duration // 整个运行的超时时间，0 表示不限制
	Seed                 int64         // 随机数种子，0 表示使用默认种子
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize:       500,
		Generations:          50,
		CrossoverProbability: 0.7,
		MutationProbability:  0.35,
		GeneMutationRate:     0.05,
		TournamentSize:       3,
		MaxInitAttempts:      1000,
		Workers:              runtime.GOMAXPROCS(0),
	}
}

func (p *Parameters) Validate() error {
	switch {
	case p.PopulationSize < MatchSize:
		return fmt.Errorf("%w: 种群大小 %d 不能小于 %d", ErrInvalidParameters, p.PopulationSize, MatchSize)
	case p.Generations < 1:
		return fmt.Errorf("%w: 迭代次数必须大于 0", ErrInvalidParameters)
	case !isProbability(p.CrossoverProbability):
		return fmt.Errorf("%w: 交叉概率必须在 [0, 1] 之间", ErrInvalidParameters)
	case !isProbability(p.MutationProbability):
		return fmt.Errorf("%w: 变异概率必须在 [0, 1] 之间", ErrInvalidParameters)
	case !isProbability(p.GeneMutationRate):
		return fmt.Errorf("%w: 位置变异概率必须在 [0, 1] 之间", ErrInvalidParameters)
	case p.TournamentSize < 2:
		return fmt.Errorf("%w: 锦标赛大小不能小于 2", ErrInvalidParameters)
	case p.MaxInitAttempts < 1:
		return fmt.Errorf("%w: 初始化尝试次数必须大于 0", ErrInvalidParameters)
	case p.Workers < 0:
		return fmt.Errorf("%w: 并行数量不能为负数", ErrInvalidParameters)
	case p.Timeout < 0:
		return fmt.Errorf("%w: 超时时间不能为负数", ErrInvalidParameters)
	}
	return nil
}

func isProbability(v float64) bool {
	return v >= 0 && v <= 1
}

// Result: 一次运行的结果
type Result struct {
	Best       *Match
	History    []domain.GenerationStats
	Population []*Match
	Cluster    int32 // 最佳对局所在的服务器
	Seed       int64
	Elapsed    time.Duration
}
