package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/matchmaker"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/utils"
)

type PlayerSource interface {
	GetPlayersByCluster(cluster int32) ([]*domain.Player, error)
	GetPlayersByClusters(clusters []int32) ([]*domain.Player, error)
}

// MatchService 处理一次完整的匹配请求：确定服务器 -> 读取玩家 -> 运行匹配器 -> 整理结果
// api 的同步接口和 worker 共用这一套流程
type MatchService struct {
	players  PlayerSource
	defaults matchmaker.Parameters
	logger   *slog.Logger
}

func NewMatchService(players PlayerSource, defaults matchmaker.Parameters, logger *slog.Logger) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MatchService{
		players:  players,
		defaults: defaults,
		logger:   logger,
	}
}

// 请求中为 nil 的参数使用默认值
func (s *MatchService) mergeParameters(req *domain.MatchParameters, seed int64) matchmaker.Parameters {
	p := s.defaults
	p.Seed = seed

	if req == nil {
		return p
	}
	if req.PopulationSize != nil {
		p.PopulationSize = *req.PopulationSize
	}
	if req.Generations != nil {
		p.Generations = *req.Generations
	}
	if req.CrossoverProbability != nil {
		p.CrossoverProbability = *req.CrossoverProbability
	}
	if req.MutationProbability != nil {
		p.MutationProbability = *req.MutationProbability
	}
	if req.GeneMutationRate != nil {
		p.GeneMutationRate = *req.GeneMutationRate
	}
	if req.TournamentSize != nil {
		p.TournamentSize = *req.TournamentSize
	}

	return p
}

func (s *MatchService) Match(ctx context.Context, req *domain.MatchRequest) (*domain.MatchResult, error) {
	if err := utils.ValidateMatchRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %w", matchmaker.ErrInvalidParameters, err)
	}

	// 没有指定种子时随机生成一个，并在结果中返回，方便复现
	seed := req.Seed
	if seed == 0 {
		seed = rand.Int63n(1<<62) + 1
	}
	rng := rand.New(rand.NewSource(seed))

	cluster, err := matchmaker.ResolveCluster(req.Region, req.Server, req.RandomServer, rng)
	if err != nil {
		return nil, err
	}

	var players []*domain.Player
	if cluster != 0 {
		players, err = s.players.GetPlayersByCluster(cluster)
	} else {
		players, err = s.players.GetPlayersByClusters(domain.Regions[req.Region])
	}
	if err != nil {
		return nil, err
	}

	pool, err := matchmaker.NewPool(players)
	if err != nil {
		return nil, err
	}

	params := s.mergeParameters(req.Parameters, seed)
	mm, err := matchmaker.New(&params, pool, cluster, matchmaker.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	s.logger.Info("开始匹配", "region", req.Region, "cluster", cluster, "players", pool.Size(), "seed", seed)

	start := time.Now()
	res, err := mm.Run(ctx)
	if err != nil {
		return nil, err
	}

	mr := matchmaker.BuildMatchResult(res, pool, req.Party, rng)
	if err := utils.ValidateMatchResult(mr); err != nil {
		return nil, err
	}
	if mr.Region == "" {
		mr.Region = req.Region
	}

	s.logger.Info("匹配结果已生成", "cluster", mr.Cluster, "fitness", mr.Fitness, "duration", time.Since(start))

	return mr, nil
}
