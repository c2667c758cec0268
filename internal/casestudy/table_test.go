package casestudy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_KnownRegion(t *testing.T) {
	entry, ok := Default().Lookup("투발루")
	require.True(t, ok)

	assert.Equal(t, "투발루", entry.Region)
	assert.NotEmpty(t, entry.Impact)
	assert.NotEmpty(t, entry.Response)
	assert.Contains(t, entry.Impact, "해수면")
}

func TestDefault_UnknownRegion(t *testing.T) {
	_, ok := Default().Lookup("Atlantis")
	assert.False(t, ok)
}

func TestLookup_NoNormalization(t *testing.T) {
	table := Default()

	for _, region := range []string{" 투발루", "투발루 ", "마이애미", "미국  마이애미", ""} {
		_, ok := table.Lookup(region)
		assert.False(t, ok, "region %q should not match", region)
	}

	_, ok := table.Lookup("미국 마이애미")
	assert.True(t, ok)
}

func TestDefault_Regions(t *testing.T) {
	regions := Default().Regions()

	assert.Equal(t, []string{
		"투발루", "방글라데시", "몰디브", "네덜란드", "미국 마이애미", "인도네시아 자카르타",
	}, regions)

	for _, r := range regions {
		e, ok := Default().Lookup(r)
		require.True(t, ok)
		assert.NotEmpty(t, e.Impact, r)
		assert.NotEmpty(t, e.Response, r)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	table := Default()

	entries := table.Entries()
	entries[0].Impact = "changed"

	e, _ := table.Lookup(entries[0].Region)
	assert.NotEqual(t, "changed", e.Impact)
}

func TestParse(t *testing.T) {
	table, err := Parse([]byte(`
- region: Atlantis
  impact: sunk
  response: none
`))
	require.NoError(t, err)

	e, ok := table.Lookup("Atlantis")
	require.True(t, ok)
	assert.Equal(t, "sunk", e.Impact)

	_, err = Parse([]byte("- region: A\n- region: A\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("- impact: x\n"))
	assert.ErrorContains(t, err, "no region")

	_, err = Parse([]byte("region: [unterminated"))
	assert.Error(t, err)
}
