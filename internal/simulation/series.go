package simulation

import (
	"math/rand/v2"
	"sort"

	"climate-dashboard/internal/models"
)

const (
	// seriesCurvature is the quadratic coefficient of the rising trend in mm/year²
	seriesCurvature = 0.008
	// seriesNoiseStdDev is the standard deviation of the yearly noise in mm
	seriesNoiseStdDev = 5.0
)

// GenerateSeries builds one sample per year in [MinYear, MaxYear].
// Each year gets 0.008*(y-MinYear)² plus N(0, 5) noise, and the whole series
// is shifted so the first sample is exactly zero.
func GenerateSeries(rng *rand.Rand) []models.YearlySample {
	samples := make([]models.YearlySample, 0, models.MaxYear-models.MinYear+1)

	for year := models.MinYear; year <= models.MaxYear; year++ {
		elapsed := float64(year - models.MinYear)
		rise := seriesCurvature*elapsed*elapsed + rng.NormFloat64()*seriesNoiseStdDev
		samples = append(samples, models.YearlySample{Year: year, RiseMm: rise})
	}

	origin := samples[0].RiseMm
	for i := range samples {
		samples[i].RiseMm -= origin
	}
	samples[0].RiseMm = 0

	return samples
}

// Prefix returns the leading samples with Year <= untilYear.
// The result shares its backing array with samples.
func Prefix(samples []models.YearlySample, untilYear int) []models.YearlySample {
	n := sort.Search(len(samples), func(i int) bool {
		return samples[i].Year > untilYear
	})
	return samples[:n]
}
