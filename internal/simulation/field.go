package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"climate-dashboard/internal/models"
)

// FieldConfig holds the constants of both field policies
type FieldConfig struct {
	// Density policy
	BasePoints     int
	MaxExtraPoints int
	LatStdDev      float64
	LonStdDev      float64

	// Magnitude policy
	FixedPoints  int
	MinIntensity float64

	// Anomaly values are drawn from U(-AnomalyBound, AnomalyBound)
	AnomalyBound float64
}

// DefaultFieldConfig returns the constants used by the dashboard
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		BasePoints:     100,
		MaxExtraPoints: 1900,
		LatStdDev:      30,
		LonStdDev:      60,
		FixedPoints:    1000,
		MinIntensity:   0.1,
		AnomalyBound:   3,
	}
}

// progress is how far year lies through the simulation range, in [0, 1]
func progress(year int) float64 {
	return float64(year-models.MinYear) / float64(models.MaxYear-models.MinYear)
}

// PointCount is the number of points GenerateField produces for year
func (c FieldConfig) PointCount(policy models.FieldPolicy, year int) int {
	if policy == models.MagnitudePolicy {
		return c.FixedPoints
	}
	p := progress(year)
	return c.BasePoints + int(math.Floor(p*p*float64(c.MaxExtraPoints)))
}

// IntensityFactor scales anomaly values under the magnitude policy.
// The density policy always reports 1.
func (c FieldConfig) IntensityFactor(policy models.FieldPolicy, year int) float64 {
	if policy != models.MagnitudePolicy {
		return 1
	}
	return math.Max(c.MinIntensity, progress(year))
}

// GenerateField produces the anomaly point cloud for year under policy.
// Years outside [MinYear, MaxYear] are rejected.
func (c FieldConfig) GenerateField(policy models.FieldPolicy, year int, rng *rand.Rand) ([]models.AnomalyPoint, error) {
	if err := models.ValidateYear("year", year); err != nil {
		return nil, err
	}

	count := c.PointCount(policy, year)
	points := make([]models.AnomalyPoint, 0, count)

	switch policy {
	case models.DensityPolicy:
		for i := 0; i < count; i++ {
			points = append(points, models.AnomalyPoint{
				Latitude:  clamp(rng.NormFloat64()*c.LatStdDev, -90, 90),
				Longitude: clamp(rng.NormFloat64()*c.LonStdDev, -180, 180),
				Anomaly:   c.uniformAnomaly(rng),
			})
		}
	case models.MagnitudePolicy:
		intensity := c.IntensityFactor(policy, year)
		for i := 0; i < count; i++ {
			points = append(points, models.AnomalyPoint{
				Latitude:  uniform(rng, -90, 90),
				Longitude: uniform(rng, -180, 180),
				Anomaly:   c.uniformAnomaly(rng) * intensity,
			})
		}
	default:
		return nil, fmt.Errorf("unsupported field policy %q", policy)
	}

	return points, nil
}

func (c FieldConfig) uniformAnomaly(rng *rand.Rand) float64 {
	return uniform(rng, -c.AnomalyBound, c.AnomalyBound)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
