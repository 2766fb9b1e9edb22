package matchmaker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Matchmaker struct {
	parameters *Parameters
	pool       *Pool
	cluster    int32 // 为 0 时表示不固定服务器
	logger     *slog.Logger
}

type Option func(*Matchmaker)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Matchmaker) {
		m.logger = logger
	}
}

// New 创建一个匹配器
// cluster 必须在调用之前确定好，0 表示每次初始化对局时随机选择服务器
func New(parameters *Parameters, pool *Pool, cluster int32, opts ...Option) (*Matchmaker, error) {
	if parameters == nil {
		return nil, fmt.Errorf("%w: 参数为空", ErrInvalidParameters)
	}
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: 玩家池为空", ErrInvalidParameters)
	}

	p := *parameters
	if p.Workers == 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	if p.Seed == 0 {
		p.Seed = defaultSeed
	}

	m := &Matchmaker{
		parameters: &p,
		pool:       pool,
		cluster:    cluster,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Run 执行遗传算法
// 第 0 代为初始种群，之后每一代依次进行：选择 -> 交叉与变异 -> 评估 -> 更新最佳对局 -> 记录统计
// 每一代开始前检查 ctx，被取消或超时则返回 ErrCanceled，不返回部分结果
func (m *Matchmaker) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if m.parameters.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.parameters.Timeout)
		defer cancel()
	}

	res, err := m.run(ctx)
	elapsed := time.Since(start)

	runsTotal.WithLabelValues(outcomeOf(err)).Inc()
	runDuration.Observe(elapsed.Seconds())

	if err != nil {
		m.logger.Error("匹配失败", "cluster", m.cluster, "error", err, "duration", elapsed)
		return nil, err
	}

	res.Elapsed = elapsed
	bestFitness.Observe(res.Best.fitness)
	m.logger.Info("匹配完成", "cluster", res.Cluster, "fitness", res.Best.fitness, "duration", elapsed)

	return res, nil
}

func (m *Matchmaker) run(ctx context.Context) (*Result, error) {
	rng := newRand(m.parameters.Seed)

	m.logger.Info("开始匹配",
		"cluster", m.cluster,
		"pool", m.pool.Size(),
		"populationSize", m.parameters.PopulationSize,
		"generations", m.parameters.Generations,
	)

	// 生成初始种群
	pop, err := m.initPopulation(ctx, rng)
	if err != nil {
		return nil, err
	}

	history := make([]domain.GenerationStats, 0, m.parameters.Generations+1)
	var best *Match

	best = updateBest(best, pop)
	history = append(history, m.record(0, pop))

	for gen := 1; gen <= m.parameters.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: 第 %d 代: %w", ErrCanceled, gen, err)
		}

		offspring := selectTournament(pop, m.parameters.TournamentSize, rng)

		offspring, err = m.vary(ctx, offspring, gen)
		if err != nil {
			return nil, err
		}

		pop = offspring
		best = updateBest(best, pop)
		history = append(history, m.record(gen, pop))
		generationsTotal.Inc()
	}

	return &Result{
		Best:       best,
		History:    history,
		Population: pop,
		Cluster:    m.pool.players[best.ids[0]].Cluster,
		Seed:       m.parameters.Seed,
	}, nil
}

// vary 对相邻的两个个体以 CrossoverProbability 的概率交叉，再对每个个体以 MutationProbability 的概率变异
// 每一对个体使用独立的随机数生成器并行处理，结果写回各自的位置，与调度顺序无关
func (m *Matchmaker) vary(ctx context.Context, pop []*Match, gen int) ([]*Match, error) {
	offspring := make([]*Match, len(pop))
	copy(offspring, pop)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(m.parameters.Workers)

	for i := 0; i < len(offspring); i += 2 {
		i := i
		g.Go(func() error {
			rng := streamRand(m.parameters.Seed, gen, i/2)

			if i+1 < len(offspring) && rng.Float64() < m.parameters.CrossoverProbability {
				c1, c2, err := m.crossover(offspring[i], offspring[i+1], rng)
				if err != nil {
					return err
				}
				offspring[i], offspring[i+1] = c1, c2
			}

			for j := i; j < min(i+2, len(offspring)); j++ {
				if rng.Float64() < m.parameters.MutationProbability {
					offspring[j] = m.mutate(offspring[j], m.parameters.GeneMutationRate, rng)
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return offspring, nil
}

// 保留历史上适应度最高的对局，相同时保留先出现的
func updateBest(best *Match, pop []*Match) *Match {
	for _, ind := range pop {
		if best == nil || ind.fitness > best.fitness {
			best = ind
		}
	}
	return best
}

func (m *Matchmaker) record(gen int, pop []*Match) domain.GenerationStats {
	fits := make([]float64, len(pop))
	for i, ind := range pop {
		fits[i] = ind.fitness
	}

	s := domain.GenerationStats{
		Generation: gen,
		Min:        floats.Min(fits),
		Avg:        stat.Mean(fits, nil),
		Max:        floats.Max(fits),
	}
	m.logger.Debug("完成一代", "gen", s.Generation, "min", s.Min, "avg", s.Avg, "max", s.Max)

	return s
}
