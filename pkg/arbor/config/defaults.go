// Package config provides configuration management for the arbor disk
// usage tree.
package config

// Default configuration values for arbor.
const (
	// DefaultPath is the path walked when none is given on the command
	// line.
	DefaultPath = "."

	// DefaultSortBy is the default child ordering field.
	DefaultSortBy = "size"

	// DefaultSortOrder is the default ordering direction.
	DefaultSortOrder = "desc"

	// DefaultFormat is the default output formatter name.
	DefaultFormat = "tree"

	// DefaultUnit is the default size notation ("bin" or "si").
	DefaultUnit = "bin"

	// DefaultDepth is the default display depth (0 means unlimited).
	DefaultDepth = 0
)

// DefaultExclude contains glob patterns excluded from every walk by
// default.
var DefaultExclude = []string{}
