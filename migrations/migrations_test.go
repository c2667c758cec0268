package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	name, up, err := Read(Up)
	require.NoError(t, err)
	assert.Equal(t, "001_create_schema.up.sql", name)
	assert.Contains(t, up, "CREATE TABLE")
	assert.Contains(t, up, "simulation_runs")

	name, down, err := Read(Down)
	require.NoError(t, err)
	assert.Equal(t, "001_create_schema.down.sql", name)
	assert.Contains(t, down, "simulation_runs")

	_, _, err = Read("sideways")
	assert.Error(t, err)
}
