package services

import (
	"context"

	"climate-dashboard/internal/casestudy"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/repository"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// CaseStudyService serves the authored regional case studies
type CaseStudyService struct {
	table   *casestudy.Table
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCaseStudyService creates a new case study service
func NewCaseStudyService(table *casestudy.Table, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CaseStudyService {
	return &CaseStudyService{
		table:   table,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Get returns the case study for region, or *repository.NotFoundError
func (s *CaseStudyService) Get(ctx context.Context, region string) (*models.CaseStudyEntry, error) {
	entry, ok := s.table.Lookup(region)
	s.metrics.RecordCaseStudyLookup(ok)

	if !ok {
		s.logger.Debug(ctx, "[CASE_STUDY_MISS] Unknown region requested", logging.Fields{
			"region": region,
		})
		return nil, &repository.NotFoundError{
			Resource: "case_study",
			ID:       region,
		}
	}

	return &entry, nil
}

// List returns every case study in authored order
func (s *CaseStudyService) List(ctx context.Context) []models.CaseStudyEntry {
	return s.table.Entries()
}

// Regions returns the known region keys
func (s *CaseStudyService) Regions(ctx context.Context) []string {
	return s.table.Regions()
}
