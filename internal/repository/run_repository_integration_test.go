//go:build integration

package repository

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"climate-dashboard/internal/models"
	"climate-dashboard/migrations"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// startPostgres runs a throwaway PostgreSQL with the archive schema applied
func startPostgres(ctx context.Context, t *testing.T) *database.PostgresDB {
	t.Helper()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("climate_dashboard"),
		postgres.WithUsername("climate"),
		postgres.WithPassword("climate"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres container")

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	logger := logging.NewStructuredLogger("test", "0.0.0", logging.DebugLevel)
	logger.SetOutput(io.Discard)

	db, err := database.NewPostgresDB(&database.Config{
		Host:            host,
		Port:            port.Int(),
		User:            "climate",
		Password:        "climate",
		Database:        "climate_dashboard",
		SSLMode:         "disable",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	}, logger, metrics.NewCollector("test", prometheus.NewRegistry()))
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { db.Close() })

	_, schema, err := migrations.Read(migrations.Up)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "migrate", schema)
	require.NoError(t, err, "apply schema")

	return db
}

func TestRunRepository_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := startPostgres(ctx, t)
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.InfoLevel)
	logger.SetOutput(io.Discard)
	repo := NewRunRepository(db, logger)

	require.NoError(t, repo.HealthCheck(ctx))

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	year := 1990
	policy := "density"
	hemisphere := "north"

	field := &models.Run{
		ID:        uuid.NewString(),
		Kind:      models.FieldRun,
		Seed:      7,
		Year:      &year,
		Policy:    &policy,
		ItemCount: 2,
		Payload:   models.Payload(`{"points": [{"lat": 1, "lon": 2, "anomaly": 0.5}]}`),
		CreatedAt: base,
	}
	grid := &models.Run{
		ID:         uuid.NewString(),
		Kind:       models.GridRun,
		Seed:       -3,
		Hemisphere: &hemisphere,
		ItemCount:  4,
		Payload:    models.Payload(`{"values": [[1, 2], [3, 4]]}`),
		CreatedAt:  base.Add(time.Minute),
	}
	require.NoError(t, repo.CreateRun(ctx, field))
	require.NoError(t, repo.CreateRun(ctx, grid))

	got, err := repo.GetRun(ctx, field.ID)
	require.NoError(t, err)
	assert.Equal(t, field.ID, got.ID)
	assert.Equal(t, models.FieldRun, got.Kind)
	assert.Equal(t, int64(7), got.Seed)
	assert.Equal(t, &year, got.Year)
	assert.Equal(t, &policy, got.Policy)
	assert.Nil(t, got.Hemisphere)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.True(t, json.Valid(got.Payload))
	assert.JSONEq(t, string(field.Payload), string(got.Payload))

	_, err = repo.GetRun(ctx, uuid.NewString())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	runs, total, err := repo.ListRuns(ctx, RunFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, runs, 2)
	assert.Equal(t, grid.ID, runs[0].ID, "newest first")

	kind := models.FieldRun
	runs, total, err = repo.ListRuns(ctx, RunFilter{Kind: &kind, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, runs, 1)
	assert.Equal(t, field.ID, runs[0].ID)

	runs, total, err = repo.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, runs, 1)
	assert.Equal(t, field.ID, runs[0].ID)
}
