package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"climate-dashboard/internal/cache"
	"climate-dashboard/internal/config"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/simulation"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// Scale bounds for the anomaly grid colour range, in °C
const (
	MinScale = 1
	MaxScale = 6
)

// SimulationOptions configures the generators behind SimulationService
type SimulationOptions struct {
	FieldPolicy  models.FieldPolicy
	Field        simulation.FieldConfig
	GridRows     int
	GridCols     int
	DefaultScale float64
}

// DefaultSimulationOptions returns the dashboard defaults
func DefaultSimulationOptions() SimulationOptions {
	return SimulationOptions{
		FieldPolicy:  models.DensityPolicy,
		Field:        simulation.DefaultFieldConfig(),
		GridRows:     simulation.DefaultGridRows,
		GridCols:     simulation.DefaultGridCols,
		DefaultScale: 4,
	}
}

// OptionsFromConfig applies the simulation config section over the defaults
func OptionsFromConfig(cfg config.SimulationConfig) SimulationOptions {
	opts := DefaultSimulationOptions()
	opts.FieldPolicy = models.FieldPolicy(cfg.FieldPolicy)
	opts.GridRows = cfg.GridRows
	opts.GridCols = cfg.GridCols
	opts.DefaultScale = cfg.DefaultScale
	return opts
}

// SimulationService validates requests, memoizes seeded results and records
// metrics around the pure generators. Results handed out may be shared with
// the cache and must not be modified.
type SimulationService struct {
	opts    SimulationOptions
	cache   *cache.ResultCache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSimulationService creates a new simulation service
func NewSimulationService(opts SimulationOptions, resultCache *cache.ResultCache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SimulationService {
	return &SimulationService{
		opts:    opts,
		cache:   resultCache,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SeriesRequest selects a sea-level series
type SeriesRequest struct {
	Seed      *int64
	UntilYear *int
}

// FieldRequest selects an anomaly field
type FieldRequest struct {
	Year   int
	Policy *models.FieldPolicy
	Seed   *int64
}

// GridRequest selects an anomaly grid
type GridRequest struct {
	Hemisphere models.Hemisphere
	Scale      *float64
	Seed       *int64
}

// resolveSeed returns the requested seed, or a fresh one when none was given.
// Only explicitly seeded requests are cacheable.
func resolveSeed(seed *int64) (int64, bool) {
	if seed != nil {
		return *seed, true
	}
	return simulation.RandomSeed(), false
}

// SeaLevel returns the sea-level series, optionally cut at UntilYear
func (s *SimulationService) SeaLevel(ctx context.Context, req SeriesRequest) (*models.SeaLevelSeries, error) {
	if req.UntilYear != nil {
		if err := models.ValidateYear("until", *req.UntilYear); err != nil {
			return nil, err
		}
	}

	seed, cacheable := resolveSeed(req.Seed)
	key := cache.Key{Kind: string(models.SeriesRun), Seed: seed}

	samples, err := s.cached(ctx, key, cacheable, func() (any, int, error) {
		out := simulation.GenerateSeries(simulation.NewRand(seed))
		return out, len(out), nil
	})
	if err != nil {
		return nil, err
	}
	full := samples.([]models.YearlySample)

	series := &models.SeaLevelSeries{
		Seed:      seed,
		StartYear: models.MinYear,
		EndYear:   models.MaxYear,
		Samples:   full,
	}
	if req.UntilYear != nil {
		series.Samples = simulation.Prefix(full, *req.UntilYear)
		series.EndYear = *req.UntilYear
	}

	return series, nil
}

// AnomalyField returns the anomaly point cloud for the selected year
func (s *SimulationService) AnomalyField(ctx context.Context, req FieldRequest) (*models.AnomalyField, error) {
	if err := models.ValidateYear("year", req.Year); err != nil {
		return nil, err
	}

	policy := s.opts.FieldPolicy
	if req.Policy != nil {
		policy = *req.Policy
	}
	if _, err := models.ParseFieldPolicy(string(policy)); err != nil {
		return nil, err
	}

	seed, cacheable := resolveSeed(req.Seed)
	key := cache.Key{Kind: string(models.FieldRun), Seed: seed, Year: req.Year, Policy: string(policy)}

	result, err := s.cached(ctx, key, cacheable, func() (any, int, error) {
		points, err := s.opts.Field.GenerateField(policy, req.Year, simulation.NewRand(seed))
		if err != nil {
			return nil, 0, err
		}
		return &models.AnomalyField{
			Seed:            seed,
			Year:            req.Year,
			Policy:          policy,
			IntensityFactor: s.opts.Field.IntensityFactor(policy, req.Year),
			Points:          points,
		}, len(points), nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.AnomalyField), nil
}

// AnomalyGrid returns the latitude-driven anomaly grid for a hemisphere
func (s *SimulationService) AnomalyGrid(ctx context.Context, req GridRequest) (*models.AnomalyGrid, error) {
	hemisphere := req.Hemisphere
	if hemisphere == "" {
		hemisphere = models.Global
	}
	if _, err := models.ParseHemisphere(string(hemisphere)); err != nil {
		return nil, err
	}

	scale := s.opts.DefaultScale
	if req.Scale != nil {
		scale = *req.Scale
	}
	if math.IsNaN(scale) || scale < MinScale || scale > MaxScale {
		return nil, &models.ValidationError{
			Field:   "scale",
			Value:   fmt.Sprintf("%g", scale),
			Message: fmt.Sprintf("invalid scale, expected number between %d and %d", MinScale, MaxScale),
		}
	}

	seed, cacheable := resolveSeed(req.Seed)
	key := cache.Key{
		Kind:       string(models.GridRun),
		Seed:       seed,
		Hemisphere: string(hemisphere),
		Rows:       s.opts.GridRows,
		Cols:       s.opts.GridCols,
	}

	result, err := s.cached(ctx, key, cacheable, func() (any, int, error) {
		grid, err := simulation.GenerateGrid(hemisphere, s.opts.GridRows, s.opts.GridCols, simulation.NewRand(seed))
		if err != nil {
			return nil, 0, err
		}
		grid.Seed = seed
		return grid, len(grid.Latitudes) * len(grid.Longitudes), nil
	})
	if err != nil {
		return nil, err
	}

	// Scale is display metadata and not part of the cache key
	grid := *result.(*models.AnomalyGrid)
	grid.Scale = scale
	return &grid, nil
}

// ClearCache drops every memoized result and returns how many were removed
func (s *SimulationService) ClearCache(ctx context.Context) int {
	removed := s.cache.Clear()
	s.metrics.CacheEntries.Set(0)

	s.logger.Info(ctx, "[CACHE_CLEAR] Result cache cleared", logging.Fields{
		"removed": removed,
	})
	return removed
}

// CacheStats reports the current cache state
func (s *SimulationService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// cached runs generate unless a cacheable result already exists for key
func (s *SimulationService) cached(ctx context.Context, key cache.Key, cacheable bool, generate func() (any, int, error)) (any, error) {
	if cacheable {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheLookup(key.Kind, true)
			s.logger.Debug(ctx, "[SIM_CACHE_HIT] Serving cached result", logging.Fields{
				"key": key.String(),
			})
			return v, nil
		}
		s.metrics.RecordCacheLookup(key.Kind, false)
	}

	start := time.Now()
	v, items, err := generate()
	if err != nil {
		s.logger.Error(ctx, "[SIM_GENERATE_ERROR] Generation failed", logging.Fields{
			"key": key.String(),
		}, err)
		return nil, err
	}
	duration := time.Since(start)
	s.metrics.RecordGeneration(key.Kind, items, duration)

	s.logger.Debug(ctx, "[SIM_GENERATE] Generated synthetic data", logging.Fields{
		"kind":        key.Kind,
		"seed":        key.Seed,
		"items":       items,
		"cacheable":   cacheable,
		"duration_ms": duration.Milliseconds(),
	})

	if cacheable {
		s.cache.Add(key, v)
		s.metrics.CacheEntries.Set(float64(s.cache.Stats().Entries))
	}

	return v, nil
}
