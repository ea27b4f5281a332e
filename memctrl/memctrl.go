// Package memctrl implements the memory controller: per-rank transaction
// queues, the first-ready first-come-first-serve scheduler with write-queue
// drain, and the expansion of transactions into device command sequences.
package memctrl

import (
	"fmt"
	"os"

	"github.com/sarchlab/nvmsim/addrtrans"
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/sim"
	"github.com/sarchlab/nvmsim/stats"
)

// invalidRow marks a bank with no planned open row.
const invalidRow = ^uint64(0)

// Memory is the device side the controller schedules against: one rank with
// its banks.
type Memory interface {
	sim.Domain

	// IssueCommand dispatches a device command to the addressed bank,
	// returning true if it was accepted this cycle.
	IssueCommand(req *sim.Request) bool

	// IsIssuable reports whether the addressed bank could accept the
	// command delay cycles from now.
	IsIssuable(req *sim.Request, delay sim.Cycle) bool

	// WouldConflict reports whether an access to the row would miss the
	// bank's row buffer.
	WouldConflict(bank, row uint64) bool

	// BankClosed reports whether the bank has no open row.
	BankClosed(bank uint64) bool

	// PoweredDown reports whether the bank is in a power-down state.
	PoweredDown(bank uint64) bool

	// RefreshPending reports whether the bank has deferred a due refresh.
	RefreshPending(bank uint64) bool
}

// bankPlan is the controller's planning state for one bank: what the
// command FIFO already queued will leave behind.
type bankPlan struct {
	fifo []*sim.Request

	activateQueued bool
	effectiveRow   uint64

	starvation uint64
}

// Controller is a first-ready first-come-first-serve memory controller
// with a sticky write-queue-drain mode. It owns per-rank read and write
// queues and per-bank command FIFOs.
type Controller struct {
	sim.HookableBase

	name   string
	id     int
	parent sim.Domain
	queue  *sim.EventQueue
	p      *config.Params

	translator *addrtrans.Translator
	ranks      []Memory

	readQueues  [][]*sim.Request
	writeQueues [][]*sim.Request
	plans       [][]bankPlan
	draining    []bool

	readQueueSize       uint64
	writeQueueSize      uint64
	starvationThreshold uint64
	highWaterMark       uint64
	lowWaterMark        uint64

	memReads             uint64
	memWrites            uint64
	rbHits               uint64
	rbMiss               uint64
	starvationPrecharges uint64

	averageLatency         float64
	averageQueueLatency    float64
	measuredLatencies      uint64
	measuredQueueLatencies uint64
}

// NewController creates a controller for the given ranks. Watermarks are
// sanity-clamped with a warning.
func NewController(
	name string,
	id int,
	queue *sim.EventQueue,
	p *config.Params,
	translator *addrtrans.Translator,
	ranks []Memory,
) *Controller {
	c := &Controller{
		name:       name,
		id:         id,
		queue:      queue,
		p:          p,
		translator: translator,
		ranks:      ranks,

		readQueueSize:       p.ReadQueueSize,
		writeQueueSize:      p.WriteQueueSize,
		starvationThreshold: p.StarvationThreshold,
		highWaterMark:       p.HighWaterMark,
		lowWaterMark:        p.LowWaterMark,
	}

	if c.highWaterMark > c.writeQueueSize {
		fmt.Fprintf(os.Stderr,
			"%s: warning: high watermark cannot exceed the write queue "+
				"size, clamping to %d\n", name, c.writeQueueSize)
		c.highWaterMark = c.writeQueueSize
	}
	if c.lowWaterMark > c.highWaterMark {
		fmt.Fprintf(os.Stderr,
			"%s: warning: low watermark cannot exceed the high watermark, "+
				"resetting to 0\n", name)
		c.lowWaterMark = 0
	}

	for range ranks {
		c.readQueues = append(c.readQueues, nil)
		c.writeQueues = append(c.writeQueues, nil)
		c.draining = append(c.draining, false)

		plans := make([]bankPlan, p.Banks)
		for i := range plans {
			plans[i].effectiveRow = invalidRow
		}
		c.plans = append(c.plans, plans)
	}

	return c
}

// Name returns the qualified name of the controller.
func (c *Controller) Name() string { return c.name }

// SetParent attaches the domain transaction completions are relayed to.
func (c *Controller) SetParent(parent sim.Domain) { c.parent = parent }

// IssueCommand admits a transaction. It returns false under backpressure,
// leaving the retry to the caller.
func (c *Controller) IssueCommand(req *sim.Request) bool {
	req.Address = c.translator.Translate(req.Address.Physical)
	rank := req.Address.Rank

	switch req.Type {
	case sim.Read:
		if uint64(len(c.readQueues[rank])) >= c.readQueueSize {
			return false
		}
	case sim.Write:
		if uint64(len(c.writeQueues[rank])) >= c.writeQueueSize {
			return false
		}
	default:
		return false
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    sim.HookPosBeforeIssue,
		Item:   req,
	})

	req.ArrivalCycle = c.queue.CurrentCycle()
	req.Status = sim.StatusQueued

	if req.Type == sim.Read {
		c.readQueues[rank] = append(c.readQueues[rank], req)
		c.memReads++
	} else {
		c.writeQueues[rank] = append(c.writeQueues[rank], req)
		c.memWrites++
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    sim.HookPosAfterIssue,
		Item:   req,
	})

	return true
}

// IsIssuable reports whether the transaction would be admitted right now.
// The reason, when non-nil, receives a short explanation on rejection.
func (c *Controller) IsIssuable(req *sim.Request, reason *string) bool {
	addr := c.translator.Translate(req.Address.Physical)

	switch req.Type {
	case sim.Read:
		if uint64(len(c.readQueues[addr.Rank])) >= c.readQueueSize {
			if reason != nil {
				*reason = "read queue full"
			}
			return false
		}
	case sim.Write:
		if uint64(len(c.writeQueues[addr.Rank])) >= c.writeQueueSize {
			if reason != nil {
				*reason = "write queue full"
			}
			return false
		}
	default:
		if reason != nil {
			*reason = "not a transaction"
		}
		return false
	}

	return true
}

// QueueFull reports whether any transaction queue is at capacity. The host
// interface cannot say which queue the next request needs, so a single full
// queue means full.
func (c *Controller) QueueFull(req *sim.Request) bool {
	for r := range c.ranks {
		if uint64(len(c.readQueues[r])) >= c.readQueueSize ||
			uint64(len(c.writeQueues[r])) >= c.writeQueueSize {
			return true
		}
	}

	return false
}

// RequestComplete observes a completion coming back up from the device.
// Transactions update the latency statistics and travel on to the parent;
// controller-owned commands are absorbed here.
func (c *Controller) RequestComplete(req *sim.Request) bool {
	if req.IsTransaction() {
		req.Status = sim.StatusComplete
		req.CompletionCycle = c.queue.CurrentCycle()

		c.averageLatency = (c.averageLatency*float64(c.measuredLatencies) +
			float64(req.CompletionCycle) - float64(req.IssueCycle)) /
			float64(c.measuredLatencies+1)
		c.measuredLatencies++

		c.averageQueueLatency =
			(c.averageQueueLatency*float64(c.measuredQueueLatencies) +
				float64(req.IssueCycle) - float64(req.ArrivalCycle)) /
				float64(c.measuredQueueLatencies+1)
		c.measuredQueueLatencies++
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    sim.HookPosReqComplete,
		Item:   req,
	})

	if req.Owner == c {
		// Internally generated command; freed here.
		return true
	}

	if c.parent != nil {
		return c.parent.RequestComplete(req)
	}

	return true
}

// Cycle schedules at most one transaction per rank, issues command-FIFO
// heads, and advances the device.
func (c *Controller) Cycle(steps sim.Cycle) {
	for r := range c.ranks {
		c.scheduleRank(r)
	}

	c.cycleCommandQueues()

	for _, rank := range c.ranks {
		rank.Cycle(steps)
	}
}

// RegisterStats exposes the controller's counters.
func (c *Controller) RegisterStats(reg *stats.Registry) {
	prefix := c.name + "."

	reg.RegisterUint(prefix+"mem_reads", "", &c.memReads)
	reg.RegisterUint(prefix+"mem_writes", "", &c.memWrites)
	reg.RegisterUint(prefix+"rb_hits", "", &c.rbHits)
	reg.RegisterUint(prefix+"rb_miss", "", &c.rbMiss)
	reg.RegisterUint(prefix+"starvation_precharges", "",
		&c.starvationPrecharges)
	reg.RegisterFloat(prefix+"averageLatency", "", &c.averageLatency)
	reg.RegisterFloat(prefix+"averageQueueLatency", "",
		&c.averageQueueLatency)
	reg.RegisterUint(prefix+"measuredLatencies", "", &c.measuredLatencies)
	reg.RegisterUint(prefix+"measuredQueueLatencies", "",
		&c.measuredQueueLatencies)
}
