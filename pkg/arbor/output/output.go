// Package output renders a finalized row sequence in various formats
// (tree, plain, json, yaml).
//
// The package uses a registry pattern so formatters can be selected by
// name at runtime:
//
//	formatter, err := output.Get("tree")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/view"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

// Unit selects the size notation.
type Unit int

const (
	// UnitBinary formats sizes with IEC prefixes (KiB, MiB).
	UnitBinary Unit = iota
	// UnitSI formats sizes with decimal prefixes (kB, MB).
	UnitSI
)

// Result contains the complete data a formatter renders: the flattened
// row sequence plus run metadata.
type Result struct {
	// Rows is the finalized tree in display order.
	Rows []view.Row `json:"rows"`

	// Root is the path that was walked.
	Root string `json:"root"`

	// ScanID identifies the run that produced the rows.
	ScanID string `json:"scan_id"`

	// Stats summarizes the walk.
	Stats walker.Stats `json:"stats"`

	// Errors lists non-fatal degradations encountered during the walk.
	Errors []types.ScanError `json:"errors,omitempty"`

	// ShowPhysical selects physical (disk) size instead of apparent size.
	ShowPhysical bool `json:"-"`

	// Unit selects binary or SI size notation.
	Unit Unit `json:"-"`
}

// size returns the row's display size under the result's settings.
func (r *Result) size(row view.Row) int64 {
	if r.ShowPhysical {
		return row.AggPhysical
	}
	return row.AggSize
}

// formatSize renders a byte count under the result's unit setting.
func (r *Result) formatSize(bytes int64) string {
	if r.Unit == UnitSI {
		return types.FormatSizeSI(bytes)
	}
	return types.FormatSize(bytes)
}

// Formatter is the interface all output formatters implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory to the registry, replacing any
// existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
