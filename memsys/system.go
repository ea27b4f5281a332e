// Package memsys assembles the full memory system from a configuration:
// the event queue, the address translator, one controller per channel with
// its ranks and banks, and the optional endurance models. It exposes the
// inbound API the host simulator or trace front end drives.
package memsys

import (
	"io"

	"github.com/sarchlab/nvmsim/addrtrans"
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/device"
	"github.com/sarchlab/nvmsim/memctrl"
	"github.com/sarchlab/nvmsim/sim"
	"github.com/sarchlab/nvmsim/stats"
)

// System is the root of the component tree. Each cycle it first drains due
// events, then visits every child depth first: controller, then ranks, then
// banks.
type System struct {
	sim.HookableBase

	name string

	queue       *sim.EventQueue
	params      *config.Params
	translator  *addrtrans.Translator
	controllers []*memctrl.Controller
	ranks       [][]*device.Rank
	mirror      sim.DataMirror
	registry    *stats.Registry

	frontEnd sim.Domain

	simulatedCycles uint64
}

// Name returns the name of the system.
func (s *System) Name() string { return s.name }

// EventQueue returns the system's event queue.
func (s *System) EventQueue() *sim.EventQueue { return s.queue }

// Params returns the resolved device parameters.
func (s *System) Params() *config.Params { return s.params }

// Translator returns the system's address translator.
func (s *System) Translator() *addrtrans.Translator { return s.translator }

// Registry returns the stat registry of the system.
func (s *System) Registry() *stats.Registry { return s.registry }

// Controller returns the controller of the given channel.
func (s *System) Controller(channel uint64) *memctrl.Controller {
	return s.controllers[channel]
}

// Rank returns the given rank of the given channel.
func (s *System) Rank(channel, rank uint64) *device.Rank {
	return s.ranks[channel][rank]
}

// SetFrontEnd attaches the domain that absorbs completed transactions not
// owned by a controller.
func (s *System) SetFrontEnd(fe sim.Domain) { s.frontEnd = fe }

// CurrentCycle returns the simulation clock.
func (s *System) CurrentCycle() sim.Cycle { return s.queue.CurrentCycle() }

// Cycle advances the simulation. Each cycle fires the events due at it,
// then visits the controllers in a fixed order; controllers visit their
// ranks and banks.
func (s *System) Cycle(steps sim.Cycle) {
	for i := sim.Cycle(0); i < steps; i++ {
		for _, mc := range s.controllers {
			mc.Cycle(1)
		}

		s.simulatedCycles++
		s.queue.AdvanceTo(s.queue.CurrentCycle() + 1)
	}
}

// IssueCommand admits a transaction, routing it to the controller of its
// decoded channel. It returns false under backpressure.
func (s *System) IssueCommand(req *sim.Request) bool {
	if !req.IsTransaction() {
		return false
	}

	addr := s.translator.Translate(req.Address.Physical)

	return s.controllers[addr.Channel].IssueCommand(req)
}

// IsIssuable reports whether the transaction would be admitted right now.
func (s *System) IsIssuable(req *sim.Request, reason *string) bool {
	if !req.IsTransaction() {
		if reason != nil {
			*reason = "not a transaction"
		}
		return false
	}

	addr := s.translator.Translate(req.Address.Physical)

	return s.controllers[addr.Channel].IsIssuable(req, reason)
}

// QueueFull reports whether any controller queue is at capacity.
func (s *System) QueueFull(req *sim.Request) bool {
	for _, mc := range s.controllers {
		if mc.QueueFull(req) {
			return true
		}
	}

	return false
}

// IssueAtomic performs a zero-time access for warm-up: the data mirror and
// the endurance model observe the access, but no timing state changes.
func (s *System) IssueAtomic(req *sim.Request) bool {
	if !req.IsTransaction() {
		return false
	}

	req.Address = s.translator.Translate(req.Address.Physical)

	switch req.Type {
	case sim.Read:
		if s.mirror != nil {
			var prior sim.DataBlock
			if !s.mirror.GetDataAtAddress(req.Address.Physical, &prior) {
				s.mirror.SetDataAtAddress(req.Address.Physical, req.Data)
			}
		}

	case sim.Write:
		if s.mirror == nil {
			return true
		}

		var oldData sim.DataBlock
		if !s.mirror.GetDataAtAddress(req.Address.Physical, &oldData) {
			oldData = sim.NewDataBlock(int(s.params.WordSize()))
		}
		s.mirror.SetDataAtAddress(req.Address.Physical, req.Data)

		bank := s.ranks[req.Address.Channel][req.Address.Rank].
			Bank(req.Address.Bank)
		if model := bank.EnduranceModel(); model != nil {
			model.Write(req.Address, oldData, req.Data)
		}
	}

	return true
}

// IssueFunctional performs a zero-time, functional-only access: the data
// mirror is updated without endurance consumption.
func (s *System) IssueFunctional(req *sim.Request) bool {
	if !req.IsTransaction() || s.mirror == nil {
		return false
	}

	req.Address = s.translator.Translate(req.Address.Physical)

	if req.Type == sim.Write {
		s.mirror.SetDataAtAddress(req.Address.Physical, req.Data)
	}

	return true
}

// RequestComplete absorbs or relays a completed transaction: requests owned
// by their issuer travel to the front end.
func (s *System) RequestComplete(req *sim.Request) bool {
	if req.Owner != nil && req.Owner != sim.Domain(s) {
		return req.Owner.RequestComplete(req)
	}

	if s.frontEnd != nil {
		return s.frontEnd.RequestComplete(req)
	}

	return true
}

// PrintStats writes every registered stat.
func (s *System) PrintStats(w io.Writer) {
	s.registry.PrintAll(w)
}
