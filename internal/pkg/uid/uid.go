// Package uid generates identifiers.
//
// NumberID backs primary keys (snowflake). StringID backs record versions,
// token IDs, event IDs and correlation IDs (UUIDv7).
package uid

// NumberID generates sortable int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
