// Package simulation produces the synthetic climate data shown on the
// dashboard: a yearly sea-level-rise series, an anomaly point cloud for a
// selected year, and a latitude-driven anomaly grid.
//
// Every generator is a pure function of its arguments and the *rand.Rand it
// is handed. Callers that want reproducible output build the source with
// NewRand and a fixed seed.
package simulation
