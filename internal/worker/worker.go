package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/matchmaker"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/service"
)

// 消息无法解析，重新入队也没有意义
var ErrMalformedJob = errors.New("匹配任务格式错误")

// worker 正在关闭，任务被中断，需要重新入队
var ErrInterrupted = errors.New("匹配任务被中断")

type JobStore interface {
	Save(ctx context.Context, state *domain.MatchJobState) error
}

type Worker struct {
	matchService *service.MatchService
	jobs         JobStore
	storeTimeout time.Duration
	logger       *slog.Logger
}

func New(matchService *service.MatchService, jobs JobStore, storeTimeout time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		matchService: matchService,
		jobs:         jobs,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

func (w *Worker) save(state *domain.MatchJobState) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.storeTimeout)
	defer cancel()

	state.UpdatedAt = time.Now()
	return w.jobs.Save(ctx, state)
}

// Handle 处理一条匹配任务消息
// 匹配本身失败时把错误写入任务状态并返回 nil
// 保存状态失败或 ctx 被取消导致匹配中断时返回错误，由调用方决定是否重新入队
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	job := domain.MatchJob{}
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJob, err)
	}
	if job.ID == "" {
		return fmt.Errorf("%w: 缺少任务ID", ErrMalformedJob)
	}

	logger := w.logger.With("job", job.ID)

	if err := w.save(&domain.MatchJobState{ID: job.ID, Status: domain.MatchJobRunning}); err != nil {
		return err
	}

	logger.Info("开始处理匹配任务", "region", job.Request.Region, "server", job.Request.Server)

	state := &domain.MatchJobState{ID: job.ID}
	result, err := w.matchService.Match(ctx, &job.Request)
	if err != nil && errors.Is(err, matchmaker.ErrCanceled) && ctx.Err() != nil {
		// 不是任务本身超时，而是 worker 在关闭，恢复成 pending 等待重新投递
		logger.Warn("匹配任务被中断，等待重新投递", "error", err)
		if saveErr := w.save(&domain.MatchJobState{ID: job.ID, Status: domain.MatchJobPending}); saveErr != nil {
			logger.Error("无法恢复匹配任务状态", "error", saveErr)
		}
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if err != nil {
		logger.Warn("匹配任务失败", "error", err)
		state.Status = domain.MatchJobFailed
		state.Error = err.Error()
	} else {
		state.Status = domain.MatchJobDone
		state.Result = result
	}

	if err := w.save(state); err != nil {
		return err
	}

	logger.Info("匹配任务已完成", "status", state.Status)
	return nil
}
