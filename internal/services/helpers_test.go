package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"climate-dashboard/internal/cache"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/repository"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

func newTestLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func newTestSimulation(t *testing.T, cacheSize int) (*SimulationService, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	svc := NewSimulationService(DefaultSimulationOptions(), cache.New(cacheSize), newTestLogger(), collector)
	return svc, collector
}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

// memoryRunRepository is an in-memory RunRepository
type memoryRunRepository struct {
	mu   sync.Mutex
	runs map[string]*models.Run
	err  error
}

func newMemoryRunRepository() *memoryRunRepository {
	return &memoryRunRepository{runs: make(map[string]*models.Run)}
}

func (m *memoryRunRepository) CreateRun(ctx context.Context, run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memoryRunRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "simulation_run", ID: id}
	}
	return run, nil
}

func (m *memoryRunRepository) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*models.Run, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Run
	for _, r := range m.runs {
		if filter.Kind != nil && r.Kind != *filter.Kind {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if filter.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (m *memoryRunRepository) HealthCheck(ctx context.Context) error {
	return m.err
}
