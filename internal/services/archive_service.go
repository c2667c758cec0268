package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"climate-dashboard/internal/models"
	"climate-dashboard/internal/repository"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// ArchiveService generates a result and stores it as a run so it can be
// fetched again by ID
type ArchiveService struct {
	repo    repository.RunRepository
	sim     *SimulationService
	clock   clockwork.Clock
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewArchiveService creates a new archive service. A nil clock uses real time.
func NewArchiveService(repo repository.RunRepository, sim *SimulationService, clock clockwork.Clock, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ArchiveService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ArchiveService{
		repo:    repo,
		sim:     sim,
		clock:   clock,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ArchiveRequest describes the generation to archive
type ArchiveRequest struct {
	Kind       models.RunKind      `json:"kind"`
	Seed       *int64              `json:"seed,omitempty"`
	Year       *int                `json:"year,omitempty"`
	UntilYear  *int                `json:"until,omitempty"`
	Policy     *models.FieldPolicy `json:"policy,omitempty"`
	Hemisphere *models.Hemisphere  `json:"hemisphere,omitempty"`
	Scale      *float64            `json:"scale,omitempty"`
}

// checkFields rejects options that the requested kind does not use
func (r ArchiveRequest) checkFields() error {
	set := map[string]bool{
		"year":       r.Year != nil,
		"until":      r.UntilYear != nil,
		"policy":     r.Policy != nil,
		"hemisphere": r.Hemisphere != nil,
		"scale":      r.Scale != nil,
	}

	var allowed []string
	switch r.Kind {
	case models.SeriesRun:
		allowed = []string{"until"}
	case models.FieldRun:
		allowed = []string{"year", "policy"}
	case models.GridRun:
		allowed = []string{"hemisphere", "scale"}
	}
	for _, name := range allowed {
		delete(set, name)
	}

	for _, name := range []string{"year", "until", "policy", "hemisphere", "scale"} {
		if set[name] {
			return &models.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("%s does not apply to %s runs", name, r.Kind),
			}
		}
	}
	return nil
}

// Archive runs the requested generator and stores the result
func (s *ArchiveService) Archive(ctx context.Context, req ArchiveRequest) (*models.Run, error) {
	if _, err := models.ParseRunKind(string(req.Kind)); err != nil {
		return nil, err
	}
	if err := req.checkFields(); err != nil {
		return nil, err
	}

	run := &models.Run{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		CreatedAt: s.clock.Now().UTC(),
	}

	var result any
	switch req.Kind {
	case models.SeriesRun:
		series, err := s.sim.SeaLevel(ctx, SeriesRequest{Seed: req.Seed, UntilYear: req.UntilYear})
		if err != nil {
			return nil, err
		}
		run.Seed = series.Seed
		run.Year = req.UntilYear
		run.ItemCount = len(series.Samples)
		result = series

	case models.FieldRun:
		if req.Year == nil {
			return nil, &models.ValidationError{Field: "year", Message: "year is required for field runs"}
		}
		field, err := s.sim.AnomalyField(ctx, FieldRequest{Year: *req.Year, Policy: req.Policy, Seed: req.Seed})
		if err != nil {
			return nil, err
		}
		policy := string(field.Policy)
		run.Seed = field.Seed
		run.Year = req.Year
		run.Policy = &policy
		run.ItemCount = len(field.Points)
		result = field

	case models.GridRun:
		greq := GridRequest{Scale: req.Scale, Seed: req.Seed}
		if req.Hemisphere != nil {
			greq.Hemisphere = *req.Hemisphere
		}
		grid, err := s.sim.AnomalyGrid(ctx, greq)
		if err != nil {
			return nil, err
		}
		hemisphere := string(grid.Hemisphere)
		run.Seed = grid.Seed
		run.Hemisphere = &hemisphere
		run.ItemCount = len(grid.Latitudes) * len(grid.Longitudes)
		result = grid
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run payload: %w", err)
	}
	run.Payload = payload

	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to archive run: %w", err)
	}
	s.metrics.ArchivedRunsTotal.WithLabelValues(string(run.Kind)).Inc()

	s.logger.Info(ctx, "[ARCHIVE_RUN] Run archived", logging.Fields{
		"run_id":     run.ID,
		"kind":       run.Kind,
		"seed":       run.Seed,
		"item_count": run.ItemCount,
	})

	return run, nil
}

// Get retrieves an archived run
func (s *ArchiveService) Get(ctx context.Context, id string) (*models.Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &models.ValidationError{
			Field:   "id",
			Value:   id,
			Message: "invalid run id, expected UUID",
		}
	}
	return s.repo.GetRun(ctx, id)
}

// List retrieves archived runs, newest first
func (s *ArchiveService) List(ctx context.Context, filter repository.RunFilter) ([]*models.Run, int, error) {
	return s.repo.ListRuns(ctx, filter)
}

// HealthCheck reports whether the archive store is reachable
func (s *ArchiveService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
