package simulation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/internal/models"
)

func TestPointCount(t *testing.T) {
	cfg := DefaultFieldConfig()

	tests := []struct {
		name   string
		policy models.FieldPolicy
		year   int
		want   int
	}{
		{name: "density first year", policy: models.DensityPolicy, year: models.MinYear, want: 100},
		{name: "density last year", policy: models.DensityPolicy, year: models.MaxYear, want: 2000},
		{name: "density midpoint", policy: models.DensityPolicy, year: 1880 + 145/2, want: 100 + 468},
		{name: "magnitude first year", policy: models.MagnitudePolicy, year: models.MinYear, want: 1000},
		{name: "magnitude last year", policy: models.MagnitudePolicy, year: models.MaxYear, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.PointCount(tt.policy, tt.year))
		})
	}
}

func TestIntensityFactor(t *testing.T) {
	cfg := DefaultFieldConfig()

	assert.Equal(t, 0.1, cfg.IntensityFactor(models.MagnitudePolicy, models.MinYear))
	assert.Equal(t, 1.0, cfg.IntensityFactor(models.MagnitudePolicy, models.MaxYear))
	assert.InDelta(t, 72.0/145.0, cfg.IntensityFactor(models.MagnitudePolicy, 1952), 1e-12)
	assert.Equal(t, 1.0, cfg.IntensityFactor(models.DensityPolicy, models.MinYear))
}

func TestGenerateField_Boundaries(t *testing.T) {
	cfg := DefaultFieldConfig()

	for _, policy := range []models.FieldPolicy{models.DensityPolicy, models.MagnitudePolicy} {
		for _, year := range []int{models.MinYear, models.MaxYear} {
			points, err := cfg.GenerateField(policy, year, NewRand(int64(year)))
			require.NoError(t, err)
			require.Len(t, points, cfg.PointCount(policy, year))

			for _, p := range points {
				require.True(t, p.Valid(), "invalid point %+v for %s/%d", p, policy, year)
			}
		}
	}
}

func TestGenerateField_CountIndependentOfSeed(t *testing.T) {
	cfg := DefaultFieldConfig()

	a, err := cfg.GenerateField(models.DensityPolicy, 1990, NewRand(1))
	require.NoError(t, err)
	b, err := cfg.GenerateField(models.DensityPolicy, 1990, NewRand(2))
	require.NoError(t, err)

	assert.Len(t, b, len(a))
	assert.NotEqual(t, a, b)
}

func TestGenerateField_MagnitudeScalesAnomaly(t *testing.T) {
	cfg := DefaultFieldConfig()

	points, err := cfg.GenerateField(models.MagnitudePolicy, models.MinYear, NewRand(5))
	require.NoError(t, err)

	bound := cfg.AnomalyBound * cfg.MinIntensity
	for _, p := range points {
		assert.LessOrEqual(t, p.Anomaly, bound)
		assert.GreaterOrEqual(t, p.Anomaly, -bound)
	}
}

func TestGenerateField_Deterministic(t *testing.T) {
	cfg := DefaultFieldConfig()

	a, err := cfg.GenerateField(models.MagnitudePolicy, 2000, NewRand(11))
	require.NoError(t, err)
	b, err := cfg.GenerateField(models.MagnitudePolicy, 2000, NewRand(11))
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("fields differ for the same seed:\n%s", diff)
	}
}

func TestGenerateField_RejectsOutOfRange(t *testing.T) {
	cfg := DefaultFieldConfig()

	for _, year := range []int{1800, models.MinYear - 1, models.MaxYear + 1} {
		points, err := cfg.GenerateField(models.DensityPolicy, year, NewRand(1))
		assert.Nil(t, points)

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr), "year %d", year)
		assert.Equal(t, "year", verr.Field)
	}
}

func TestGenerateField_UnknownPolicy(t *testing.T) {
	_, err := DefaultFieldConfig().GenerateField("spiral", 1990, NewRand(1))
	assert.Error(t, err)
}
