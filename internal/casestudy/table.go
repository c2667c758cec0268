// Package casestudy holds the authored regional case studies. The table is
// parsed once from an embedded YAML document and never changes afterwards.
package casestudy

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"climate-dashboard/internal/models"
)

//go:embed casestudies.yaml
var defaultDocument []byte

// Table is an immutable region -> case study mapping
type Table struct {
	entries []models.CaseStudyEntry
	index   map[string]int
}

// Parse builds a table from a YAML list of entries.
// Regions must be non-empty and unique.
func Parse(doc []byte) (*Table, error) {
	var entries []models.CaseStudyEntry
	if err := yaml.Unmarshal(doc, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse case studies: %w", err)
	}

	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Region == "" {
			return nil, fmt.Errorf("case study %d has no region", i)
		}
		if _, dup := index[e.Region]; dup {
			return nil, fmt.Errorf("duplicate case study region %q", e.Region)
		}
		index[e.Region] = i
	}

	return &Table{entries: entries, index: index}, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table shipped with the binary
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultDocument)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Lookup returns the entry for region. Matching is exact and case-sensitive.
func (t *Table) Lookup(region string) (models.CaseStudyEntry, bool) {
	i, ok := t.index[region]
	if !ok {
		return models.CaseStudyEntry{}, false
	}
	return t.entries[i], true
}

// Regions lists the known regions in authored order
func (t *Table) Regions() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Region
	}
	return out
}

// Entries returns a copy of every entry in authored order
func (t *Table) Entries() []models.CaseStudyEntry {
	out := make([]models.CaseStudyEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
