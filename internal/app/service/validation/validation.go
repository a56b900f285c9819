// internal/app/service/validation/validation.go
//
// Package validation carries field-level validation failures from the
// service layer to the API boundary, where they become a 422 with a
// per-field detail map.
package validation

import (
	"sort"
	"strings"
)

// Error maps field names to human-readable problems.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Collector accumulates field problems and produces an Error only when at
// least one was added.
type Collector struct {
	fields map[string]string
}

// Add records a problem for a field. The first problem per field wins.
func (c *Collector) Add(field, problem string) {
	if c.fields == nil {
		c.fields = map[string]string{}
	}
	if _, ok := c.fields[field]; !ok {
		c.fields[field] = problem
	}
}

// Err returns the collected Error, or nil when no problems were added.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields}
}
