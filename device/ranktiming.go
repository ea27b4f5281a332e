package device

import (
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/sim"
)

// RankTiming is the constraint channel shared by the banks of one rank. It
// carries the rank-global timing state: the activate-to-activate spacing
// (tRRD), the four-activate window (tFAW), and the data-bus occupancy that
// serializes bursts from sibling banks. Banks consult it before accepting a
// command and update it on success.
type RankTiming struct {
	p *config.Params

	lastActivate sim.Cycle
	actWindow    []sim.Cycle

	busNextRead  sim.Cycle
	busNextWrite sim.Cycle

	haveActivated bool
}

// NewRankTiming creates the constraint channel for one rank.
func NewRankTiming(p *config.Params) *RankTiming {
	return &RankTiming{p: p}
}

// CanActivate reports whether a new activate at the given cycle satisfies
// tRRD and the tFAW sliding window.
func (r *RankTiming) CanActivate(cycle sim.Cycle) bool {
	if r.haveActivated && cycle < r.lastActivate+r.p.TRRDR {
		return false
	}

	if len(r.actWindow) == 4 && cycle < r.actWindow[0]+r.p.TFAW {
		return false
	}

	return true
}

// NoteActivate records a successful activate.
func (r *RankTiming) NoteActivate(cycle sim.Cycle) {
	r.lastActivate = cycle
	r.haveActivated = true

	r.actWindow = append(r.actWindow, cycle)
	if len(r.actWindow) > 4 {
		r.actWindow = r.actWindow[1:]
	}
}

// NextRead returns the earliest cycle the shared data bus admits a read
// burst.
func (r *RankTiming) NextRead() sim.Cycle {
	return r.busNextRead
}

// NextWrite returns the earliest cycle the shared data bus admits a write
// burst.
func (r *RankTiming) NextWrite() sim.Cycle {
	return r.busNextWrite
}

// NoteRead records a read burst starting at the given cycle and pushes the
// bus-turnaround constraints onto every sibling bank.
func (r *RankTiming) NoteRead(cycle sim.Cycle) {
	p := r.p

	r.busNextRead = maxCycle(r.busNextRead, cycle+maxCycle(p.TBurst, p.TCCD))
	r.busNextWrite = maxCycle(r.busNextWrite,
		cycle+p.TCAS+p.TBurst+2-p.TCWD)
}

// NoteWrite records a write burst starting at the given cycle.
func (r *RankTiming) NoteWrite(cycle sim.Cycle) {
	p := r.p

	r.busNextWrite = maxCycle(r.busNextWrite,
		cycle+maxCycle(p.TBurst, p.TCCD))
	r.busNextRead = maxCycle(r.busNextRead, cycle+p.TCWD+p.TBurst+p.TWTR)
}

func maxCycle(a, b sim.Cycle) sim.Cycle {
	if a > b {
		return a
	}

	return b
}
