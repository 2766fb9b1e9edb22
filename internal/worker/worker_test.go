package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/matchmaker"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/service"
)

type fakePlayers struct {
	players []*domain.Player
}

func (f *fakePlayers) GetPlayersByCluster(cluster int32) ([]*domain.Player, error) {
	out := make([]*domain.Player, 0)
	for _, p := range f.players {
		if p.Cluster == cluster {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlayers) GetPlayersByClusters(clusters []int32) ([]*domain.Player, error) {
	return f.players, nil
}

type recordingStore struct {
	states []domain.MatchJobState
	err    error
}

func (s *recordingStore) Save(_ context.Context, state *domain.MatchJobState) error {
	if s.err != nil {
		return s.err
	}
	s.states = append(s.states, *state)
	return nil
}

func testParameters() matchmaker.Parameters {
	params := matchmaker.DefaultParameters()
	params.PopulationSize = 20
	params.Generations = 3
	params.Workers = 1
	return params
}

func newTestWorker(store JobStore) *Worker {
	return newTestWorkerWith(store, testParameters())
}

func newTestWorkerWith(store JobStore, params matchmaker.Parameters) *Worker {
	players := make([]*domain.Player, 0)
	for i, position := range domain.Positions {
		for j := 0; j < 2; j++ {
			players = append(players, &domain.Player{
				ID:                 int64(i*2 + j + 1),
				Cluster:            224,
				SkillScore:         0.5,
				PreferredPositions: []domain.Position{position},
			})
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewMatchService(&fakePlayers{players: players}, params, logger)
	return New(svc, store, time.Second, logger)
}

func jobBody(t *testing.T, req domain.MatchRequest) []byte {
	t.Helper()
	body, err := json.Marshal(domain.MatchJob{ID: "job-1", Request: req, CreatedAt: time.Now()})
	require.NoError(t, err)
	return body
}

func TestHandle_Done(t *testing.T) {
	store := &recordingStore{}
	w := newTestWorker(store)

	err := w.Handle(context.Background(), jobBody(t, domain.MatchRequest{Region: "PW TELECOM SHANGHAI", Seed: 5}))
	require.NoError(t, err)

	require.Len(t, store.states, 2)
	assert.Equal(t, domain.MatchJobRunning, store.states[0].Status)
	assert.Equal(t, domain.MatchJobDone, store.states[1].Status)
	require.NotNil(t, store.states[1].Result)
	assert.Equal(t, int32(224), store.states[1].Result.Cluster)
	assert.Empty(t, store.states[1].Error)
}

func TestHandle_Failed(t *testing.T) {
	store := &recordingStore{}
	w := newTestWorker(store)

	// 该地区的服务器没有玩家
	err := w.Handle(context.Background(), jobBody(t, domain.MatchRequest{Region: "PW UNICOM"}))
	require.NoError(t, err)

	require.Len(t, store.states, 2)
	assert.Equal(t, domain.MatchJobFailed, store.states[1].Status)
	assert.NotEmpty(t, store.states[1].Error)
	assert.Nil(t, store.states[1].Result)
}

func TestHandle_Malformed(t *testing.T) {
	w := newTestWorker(&recordingStore{})

	require.ErrorIs(t, w.Handle(context.Background(), []byte("not json")), ErrMalformedJob)
	require.ErrorIs(t, w.Handle(context.Background(), []byte(`{"request":{}}`)), ErrMalformedJob)
}

func TestHandle_StoreError(t *testing.T) {
	boom := errors.New("redis down")
	w := newTestWorker(&recordingStore{err: boom})

	err := w.Handle(context.Background(), jobBody(t, domain.MatchRequest{Region: "PW TELECOM SHANGHAI"}))
	require.ErrorIs(t, err, boom)
}

func TestHandle_InterruptedByShutdown(t *testing.T) {
	store := &recordingStore{}
	w := newTestWorker(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Handle(ctx, jobBody(t, domain.MatchRequest{Region: "PW TELECOM SHANGHAI", Seed: 5}))
	require.ErrorIs(t, err, ErrInterrupted)
	require.ErrorIs(t, err, matchmaker.ErrCanceled)

	// 不能写入 failed，否则重新投递前用户会看到失败
	require.Len(t, store.states, 2)
	assert.Equal(t, domain.MatchJobRunning, store.states[0].Status)
	assert.Equal(t, domain.MatchJobPending, store.states[1].Status)
	for _, state := range store.states {
		assert.NotEqual(t, domain.MatchJobFailed, state.Status)
	}
}

func TestHandle_RunTimeoutStillFails(t *testing.T) {
	store := &recordingStore{}
	// 任务自身的超时不是 worker 关闭，应该记为失败
	params := testParameters()
	params.Generations = 100000
	params.Timeout = time.Nanosecond
	w := newTestWorkerWith(store, params)

	err := w.Handle(context.Background(), jobBody(t, domain.MatchRequest{Region: "PW TELECOM SHANGHAI", Seed: 5}))
	require.NoError(t, err)

	require.Len(t, store.states, 2)
	assert.Equal(t, domain.MatchJobFailed, store.states[1].Status)
}
