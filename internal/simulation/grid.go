package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"climate-dashboard/internal/models"
)

const (
	// DefaultGridRows and DefaultGridCols give a one-degree mesh
	DefaultGridRows = 180
	DefaultGridCols = 360

	gridAmplitude   = 2.0
	gridNoiseStdDev = 0.5
)

// GenerateGrid builds a rows x cols mesh over the globe where each cell holds
// 2*sin(lat) plus N(0, 0.5) noise, keeping only rows inside hemisphere.
// Noise is drawn for the full mesh before filtering so a hemisphere view
// matches the same rows of the global view for one seed.
func GenerateGrid(hemisphere models.Hemisphere, rows, cols int, rng *rand.Rand) (*models.AnomalyGrid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("grid needs at least 2x2 cells, got %dx%d", rows, cols)
	}

	lats := linspace(-90, 90, rows)
	lons := linspace(-180, 180, cols)

	grid := &models.AnomalyGrid{
		Hemisphere: hemisphere,
		Longitudes: lons,
		Latitudes:  make([]float64, 0, rows),
		Values:     make([][]float64, 0, rows),
	}

	for _, lat := range lats {
		trend := gridAmplitude * math.Sin(lat*math.Pi/180)
		row := make([]float64, cols)
		for j := range row {
			row[j] = trend + rng.NormFloat64()*gridNoiseStdDev
		}

		if !hemisphere.Contains(lat) {
			continue
		}
		grid.Latitudes = append(grid.Latitudes, lat)
		grid.Values = append(grid.Values, row)
	}

	return grid, nil
}

// linspace returns n evenly spaced values from start to stop inclusive
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
