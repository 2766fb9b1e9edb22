package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/config"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/service"
)

type PlayerRepository interface {
	service.PlayerSource
	CountPlayersByCluster() (map[int32]int, error)
}

type JobStore interface {
	Save(ctx context.Context, state *domain.MatchJobState) error
	Get(ctx context.Context, id string) (*domain.MatchJobState, error)
}

type JobPublisher interface {
	Publish(job *domain.MatchJob) error
}

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   PlayerRepository
	translator   ut.Translator
	matchService *service.MatchService
	publisher    JobPublisher
	jobs         JobStore

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo PlayerRepository, publisher JobPublisher, jobs JobStore) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		matchService: service.NewMatchService(repo, cfg.MatchmakerParameters(), slog.Default()),
		publisher:    publisher,
		jobs:         jobs,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Get("/regions", h.GetAllRegions)
	h.Mux.Get("/players", h.GetPlayersByCluster)

	h.Mux.Route("/matches", func(r chi.Router) {
		r.Post("/", h.CreateMatch)
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.CreateMatchJob)
			r.Get("/{id}", h.GetMatchJob)
		})
	})
}
