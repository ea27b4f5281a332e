// Package stats provides the named counter registry shared by all
// components, with interval printing and optional database recording.
package stats

import (
	"fmt"
	"io"
)

// A Stat is a named value exposed through accessor closures. Components
// register accessors at construction; no raw value pointers are stored.
type Stat struct {
	Name  string
	Units string

	// Get returns the current value.
	Get func() any

	// Reset restores the value to its initial state. Computed stats may
	// leave it nil.
	Reset func()
}

// Registry holds the stats of a simulation. It is safe for the
// single-threaded simulation model only.
type Registry struct {
	interval uint64
	stats    []*Stat
}

// NewRegistry creates an empty registry at interval zero.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a stat with explicit accessors.
func (r *Registry) Register(
	name, units string,
	get func() any,
	reset func(),
) {
	r.stats = append(r.stats, &Stat{
		Name:  name,
		Units: units,
		Get:   get,
		Reset: reset,
	})
}

// RegisterUint adds a counter backed by the given variable.
func (r *Registry) RegisterUint(name, units string, v *uint64) {
	r.Register(name, units,
		func() any { return *v },
		func() { *v = 0 })
}

// RegisterFloat adds an accumulator backed by the given variable.
func (r *Registry) RegisterFloat(name, units string, v *float64) {
	r.Register(name, units,
		func() any { return *v },
		func() { *v = 0 })
}

// RegisterFunc adds a computed stat with no reset action.
func (r *Registry) RegisterFunc(name, units string, get func() any) {
	r.Register(name, units, get, nil)
}

// Interval returns the current print interval.
func (r *Registry) Interval() uint64 {
	return r.interval
}

// Each visits every registered stat in registration order.
func (r *Registry) Each(fn func(s *Stat)) {
	for _, s := range r.stats {
		fn(s)
	}
}

// PrintAll writes one line per stat in the form
//
//	i<interval>.<qualified_name> <value>[\t; units]
//
// and advances the interval.
func (r *Registry) PrintAll(w io.Writer) {
	for _, s := range r.stats {
		fmt.Fprintf(w, "i%d.%s %v", r.interval, s.Name, formatValue(s.Get()))
		if s.Units != "" {
			fmt.Fprintf(w, "\t; %s", s.Units)
		}
		fmt.Fprintln(w)
	}

	r.interval++
}

// ResetAll restores every resettable stat to its initial state.
func (r *Registry) ResetAll() {
	for _, s := range r.stats {
		if s.Reset != nil {
			s.Reset()
		}
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%g", x)
	case float32:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
