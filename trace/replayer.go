package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/nvmsim/sim"
)

// MemorySystem is the inbound surface the replayer drives.
type MemorySystem interface {
	IssueCommand(req *sim.Request) bool
	IssueAtomic(req *sim.Request) bool
	Cycle(steps sim.Cycle)
	CurrentCycle() sim.Cycle
	SetFrontEnd(fe sim.Domain)
}

// Replayer feeds trace entries into the memory system at their recorded
// cycles, retrying rejected requests under backpressure, and tracks the
// requests still in flight.
type Replayer struct {
	sys    MemorySystem
	reader *Reader

	// Entries before this cycle are issued atomically, warming up the data
	// mirror and endurance state without consuming simulated time.
	warmupCycles sim.Cycle

	pending *Entry
	eof     bool

	issued      uint64
	completed   uint64
	outstanding uint64
}

// NewReplayer creates a replayer and registers itself as the system's front
// end.
func NewReplayer(sys MemorySystem, reader *Reader) *Replayer {
	r := &Replayer{sys: sys, reader: reader}
	sys.SetFrontEnd(r)

	return r
}

// SetWarmupCycles makes entries before the given trace cycle issue
// atomically instead of through the timing model.
func (r *Replayer) SetWarmupCycles(cycles sim.Cycle) {
	r.warmupCycles = cycles
}

// Name returns the name of the front end.
func (r *Replayer) Name() string { return "trace" }

// RequestComplete absorbs a finished transaction. Device-level commands
// relayed up the chain are ignored.
func (r *Replayer) RequestComplete(req *sim.Request) bool {
	if !req.IsTransaction() || r.outstanding == 0 {
		return true
	}

	r.completed++
	r.outstanding--

	return true
}

// Cycle issues every entry that is due at the current cycle. A rejected
// entry stays pending and is retried next cycle.
func (r *Replayer) Cycle(steps sim.Cycle) {
	now := r.sys.CurrentCycle()

	for {
		if r.pending == nil {
			r.fetch()
		}
		if r.pending == nil || r.pending.Cycle > now {
			return
		}

		entry := r.pending

		req := sim.NewRequest(entry.Type, sim.Address{
			Physical: entry.Address,
		})
		req.Data = entry.Data

		if entry.Cycle < r.warmupCycles {
			r.sys.IssueAtomic(req)
			r.pending = nil
			continue
		}

		if !r.sys.IssueCommand(req) {
			// Backpressure; retry next cycle.
			return
		}

		r.issued++
		r.outstanding++
		r.pending = nil
	}
}

func (r *Replayer) fetch() {
	if r.eof {
		return
	}

	entry, err := r.reader.Next()
	if err == io.EOF {
		r.eof = true
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace: %v\n", err)
		r.eof = true
		return
	}

	r.pending = entry
}

// Done reports whether the trace is exhausted and every issued request has
// completed.
func (r *Replayer) Done() bool {
	return r.eof && r.pending == nil && r.outstanding == 0
}

// Issued returns the number of requests issued through the timing model.
func (r *Replayer) Issued() uint64 { return r.issued }

// Completed returns the number of completed requests.
func (r *Replayer) Completed() uint64 { return r.completed }

// Run drives the system until the trace is fully replayed or the cycle
// limit is hit. A limit of zero means no limit. It returns the number of
// cycles simulated.
func (r *Replayer) Run(limit sim.Cycle) sim.Cycle {
	start := r.sys.CurrentCycle()

	for !r.Done() {
		if limit > 0 && r.sys.CurrentCycle()-start >= limit {
			break
		}

		r.Cycle(1)
		r.sys.Cycle(1)
	}

	return r.sys.CurrentCycle() - start
}
