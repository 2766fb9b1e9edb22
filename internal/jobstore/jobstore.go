package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/config"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

var ErrJobNotFound = errors.New("匹配任务不存在或已过期")

// Store 将异步匹配任务的状态保存在 redis 中，过期后自动删除
type Store struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewStore(cfg *config.Config, rdb *redis.Client) *Store {
	return &Store{
		cfg: cfg,
		rdb: rdb,
	}
}

func jobKey(id string) string {
	return fmt.Sprintf("match_job_%s", id)
}

func (s *Store) Save(ctx context.Context, state *domain.MatchJobState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	expiration := time.Duration(s.cfg.Redis.JobExpiration) * time.Minute
	return s.rdb.Set(ctx, jobKey(state.ID), data, expiration).Err()
}

func (s *Store) Get(ctx context.Context, id string) (*domain.MatchJobState, error) {
	data, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	state := &domain.MatchJobState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}
