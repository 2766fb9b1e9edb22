package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/jobstore"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/matchmaker"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/utils"
)

// 将匹配器返回的错误转换为给用户看的提示，无法识别的错误视为服务器内部错误
func (h *Handler) matchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, matchmaker.ErrInvalidParameters),
		errors.Is(err, matchmaker.ErrUnknownRegion),
		errors.Is(err, matchmaker.ErrServerNotInRegion):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, matchmaker.ErrInsufficientCandidates):
		h.errorResponse(w, r, "服务器中的玩家不足 10 人，无法匹配")
	case errors.Is(err, matchmaker.ErrNoValidPopulation):
		h.errorResponse(w, r, "无法为每个位置找到合适的玩家")
	case errors.Is(err, matchmaker.ErrDegenerateGroup):
		h.errorResponse(w, r, "服务器中的玩家不足以完成交叉修复，请调整参数或更换服务器后重试")
	case errors.Is(err, matchmaker.ErrInvalidPlayer):
		h.errorResponse(w, r, "服务器中存在数据不合法的玩家，请更换服务器后重试")
	case errors.Is(err, matchmaker.ErrCanceled):
		h.errorResponse(w, r, "匹配超时或已被取消")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) readMatchRequest(w http.ResponseWriter, r *http.Request) (*domain.MatchRequest, bool) {
	req := &domain.MatchRequest{}
	if err := h.readJSON(w, r, req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	if err := utils.ValidateMatchRequest(req); err != nil {
		h.errorResponse(w, r, err.Error())
		return nil, false
	}

	return req, true
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readMatchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.matchService.Match(r.Context(), req)
	if err != nil {
		h.matchError(w, r, err)
		return
	}

	h.successResponse(w, r, "匹配成功", result)
}

func (h *Handler) CreateMatchJob(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readMatchRequest(w, r)
	if !ok {
		return
	}

	job := &domain.MatchJob{
		ID:        uuid.NewString(),
		Request:   *req,
		CreatedAt: time.Now(),
	}

	// 先写入状态再投递，避免 worker 更新状态后又被覆盖成 pending
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	state := &domain.MatchJobState{
		ID:        job.ID,
		Status:    domain.MatchJobPending,
		UpdatedAt: job.CreatedAt,
	}
	if err := h.jobs.Save(ctx, state); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publisher.Publish(job); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "匹配任务已提交", map[string]string{"jobID": job.ID})
}

func (h *Handler) GetMatchJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.errorResponse(w, r, "任务ID无效")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	state, err := h.jobs.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, jobstore.ErrJobNotFound):
			h.errorResponse(w, r, "匹配任务不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取匹配任务成功", state)
}
