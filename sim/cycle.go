// Package sim provides the discrete-event core shared by all the memory
// system components: the cycle-keyed event queue, the domain and hook
// abstractions, and the request/address/data types that flow between
// components.
package sim

// Cycle is a time point or duration in the simulated space, in the unit of
// device clock cycles.
type Cycle uint64

// MaxCycle is the largest representable cycle. It is used as the "never"
// value for pending completions.
const MaxCycle = Cycle(^uint64(0))
