package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-dashboard/internal/casestudy"
	"climate-dashboard/internal/repository"
	"climate-dashboard/pkg/metrics"
)

func TestCaseStudyService_Get(t *testing.T) {
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	svc := NewCaseStudyService(casestudy.Default(), newTestLogger(), collector)
	ctx := context.Background()

	entry, err := svc.Get(ctx, "몰디브")
	require.NoError(t, err)
	assert.Equal(t, "몰디브", entry.Region)
	assert.NotEmpty(t, entry.Impact)
	assert.NotEmpty(t, entry.Response)

	_, err = svc.Get(ctx, "Atlantis")
	var nf *repository.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "case_study", nf.Resource)
	assert.Equal(t, "Atlantis", nf.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.CaseStudyLookupsTotal.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.CaseStudyLookupsTotal.WithLabelValues("not_found")))
}

func TestCaseStudyService_List(t *testing.T) {
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	svc := NewCaseStudyService(casestudy.Default(), newTestLogger(), collector)

	entries := svc.List(context.Background())
	regions := svc.Regions(context.Background())

	require.Len(t, entries, 6)
	require.Len(t, regions, 6)
	for i := range entries {
		assert.Equal(t, regions[i], entries[i].Region)
	}
}
