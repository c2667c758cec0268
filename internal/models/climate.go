package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"time"
)

// Canonical simulation range shared by the series and field generators
const (
	MinYear = 1880
	MaxYear = 2025
)

// YearlySample is one point of the sea-level-rise series
type YearlySample struct {
	Year   int     `json:"year"`
	RiseMm float64 `json:"rise_mm"`
}

// SeaLevelSeries is a generated sea-level-rise series together with the seed
// that produced it, so the same series can be requested again
type SeaLevelSeries struct {
	Seed      int64          `json:"seed"`
	StartYear int            `json:"start_year"`
	EndYear   int            `json:"end_year"`
	Samples   []YearlySample `json:"samples"`
}

// AnomalyPoint is a single synthetic anomaly on the map
type AnomalyPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Anomaly   float64 `json:"anomaly"`
}

// Valid reports whether the point lies on the globe and carries finite values
func (p AnomalyPoint) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) || math.IsNaN(p.Anomaly) {
		return false
	}
	if math.IsInf(p.Anomaly, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// FieldPolicy selects how the anomaly field scales with the selected year
type FieldPolicy string

const (
	// DensityPolicy grows the number of points with the selected year
	DensityPolicy FieldPolicy = "density"
	// MagnitudePolicy keeps a fixed point count and scales anomaly values
	MagnitudePolicy FieldPolicy = "magnitude"
)

// ParseFieldPolicy converts a user supplied policy name
func ParseFieldPolicy(s string) (FieldPolicy, error) {
	switch FieldPolicy(s) {
	case DensityPolicy, MagnitudePolicy:
		return FieldPolicy(s), nil
	default:
		return "", &ValidationError{
			Field:   "policy",
			Value:   s,
			Message: "invalid policy, expected density or magnitude",
		}
	}
}

// AnomalyField is a generated anomaly point cloud for one selected year
type AnomalyField struct {
	Seed            int64          `json:"seed"`
	Year            int            `json:"year"`
	Policy          FieldPolicy    `json:"policy"`
	IntensityFactor float64        `json:"intensity_factor"`
	Points          []AnomalyPoint `json:"points"`
}

// Hemisphere restricts the anomaly grid to part of the globe
type Hemisphere string

const (
	Global   Hemisphere = "global"
	Northern Hemisphere = "north"
	Southern Hemisphere = "south"
)

// ParseHemisphere converts a user supplied hemisphere name
func ParseHemisphere(s string) (Hemisphere, error) {
	switch Hemisphere(s) {
	case Global, Northern, Southern:
		return Hemisphere(s), nil
	default:
		return "", &ValidationError{
			Field:   "hemisphere",
			Value:   s,
			Message: "invalid hemisphere, expected global, north or south",
		}
	}
}

// Contains reports whether a latitude belongs to the hemisphere
func (h Hemisphere) Contains(lat float64) bool {
	switch h {
	case Northern:
		return lat >= 0
	case Southern:
		return lat <= 0
	default:
		return true
	}
}

// AnomalyGrid is a regular lat/lon mesh of anomaly values.
// Values[i][j] belongs to Latitudes[i] and Longitudes[j].
type AnomalyGrid struct {
	Seed       int64       `json:"seed"`
	Hemisphere Hemisphere  `json:"hemisphere"`
	Scale      float64     `json:"scale"`
	Latitudes  []float64   `json:"latitudes"`
	Longitudes []float64   `json:"longitudes"`
	Values     [][]float64 `json:"values"`
}

// CaseStudyEntry is authored text about how a region is affected by sea
// level rise and how it responds
type CaseStudyEntry struct {
	Region   string `json:"region" yaml:"region"`
	Impact   string `json:"impact" yaml:"impact"`
	Response string `json:"response" yaml:"response"`
}

// RunKind identifies which generator produced an archived run
type RunKind string

const (
	SeriesRun RunKind = "series"
	FieldRun  RunKind = "field"
	GridRun   RunKind = "grid"
)

// ParseRunKind converts a user supplied run kind
func ParseRunKind(s string) (RunKind, error) {
	switch RunKind(s) {
	case SeriesRun, FieldRun, GridRun:
		return RunKind(s), nil
	default:
		return "", &ValidationError{
			Field:   "kind",
			Value:   s,
			Message: "invalid kind, expected series, field or grid",
		}
	}
}

// Run is an archived generation result
type Run struct {
	ID         string    `json:"id" db:"id"`
	Kind       RunKind   `json:"kind" db:"kind"`
	Seed       int64     `json:"seed" db:"seed"`
	Year       *int      `json:"year,omitempty" db:"year"`
	Policy     *string   `json:"policy,omitempty" db:"policy"`
	Hemisphere *string   `json:"hemisphere,omitempty" db:"hemisphere"`
	ItemCount  int       `json:"item_count" db:"item_count"`
	Payload    Payload   `json:"payload" db:"payload"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Payload is the JSON document of an archived run, stored as JSONB
type Payload []byte

// MarshalJSON embeds the payload as-is
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON keeps a copy of the raw document
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// Value sends the payload as text; lib/pq would encode []byte as bytea
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return string(p), nil
}

// Scan copies a JSONB column into the payload
func (p *Payload) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(Payload(nil), v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("cannot scan %T into Payload", src)
	}
	return nil
}

// ValidateYear checks that year lies inside the simulation range
func ValidateYear(field string, year int) error {
	if year < MinYear || year > MaxYear {
		return &ValidationError{
			Field:   field,
			Value:   fmt.Sprintf("%d", year),
			Message: fmt.Sprintf("invalid %s, expected integer between %d and %d", field, MinYear, MaxYear),
		}
	}
	return nil
}

// ValidationError represents a rejected input value
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
