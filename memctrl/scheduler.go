package memctrl

import "github.com/sarchlab/nvmsim/sim"

// Selection outcomes, in pass order.
type pick int

const (
	pickNone pick = iota
	pickStarved
	pickHit
	pickReady
	pickClosed
)

// updateDrain applies the sticky write-queue-drain predicate: draining
// starts when the write queue reaches the high watermark and stops only
// when it falls to the low watermark.
func (c *Controller) updateDrain(r int) {
	size := uint64(len(c.writeQueues[r]))

	if !c.draining[r] && size >= c.highWaterMark {
		c.draining[r] = true
	} else if c.draining[r] && size <= c.lowWaterMark {
		c.draining[r] = false
	}
}

// scheduleRank selects at most one transaction for the rank and expands it
// into commands. The write queue is considered while draining, the read
// queue otherwise.
func (c *Controller) scheduleRank(r int) {
	c.updateDrain(r)

	var queue *[]*sim.Request
	if c.draining[r] {
		queue = &c.writeQueues[r]
	} else {
		queue = &c.readQueues[r]
	}

	idx, how := c.selectRequest(r, *queue)
	if idx < 0 {
		return
	}

	req := (*queue)[idx]

	switch how {
	case pickStarved:
		c.rbMiss++
		c.starvationPrecharges++
	case pickHit:
		c.rbHits++
		// Every older candidate passed over in favor of this hit moves
		// closer to forced promotion.
		for i := 0; i < idx; i++ {
			bank := (*queue)[i].Address.Bank
			c.plans[r][bank].starvation++
		}
	default:
		c.rbMiss++
	}

	*queue = append((*queue)[:idx], (*queue)[idx+1:]...)

	c.expand(r, req)
}

// selectRequest runs the four selection passes over the queue, oldest
// first: starved, row-buffer hit, oldest ready, closed bank.
func (c *Controller) selectRequest(
	r int,
	queue []*sim.Request,
) (int, pick) {
	for i, req := range queue {
		plan := &c.plans[r][req.Address.Bank]
		if plan.starvation >= c.starvationThreshold && c.canBegin(r, req) {
			return i, pickStarved
		}
	}

	for i, req := range queue {
		if c.rowHit(r, req) {
			return i, pickHit
		}
	}

	for i, req := range queue {
		if c.canBegin(r, req) {
			return i, pickReady
		}
	}

	for i, req := range queue {
		plan := &c.plans[r][req.Address.Bank]
		if !plan.activateQueued &&
			(c.ranks[r].BankClosed(req.Address.Bank) ||
				c.ranks[r].PoweredDown(req.Address.Bank)) {
			return i, pickClosed
		}
	}

	return -1, pickNone
}

// rowHit reports whether the request will find its row open: either the
// command FIFO already leaves that row open, or the bank holds it live.
func (c *Controller) rowHit(r int, req *sim.Request) bool {
	plan := &c.plans[r][req.Address.Bank]

	if plan.activateQueued {
		return plan.effectiveRow == req.Address.Row
	}

	return !c.ranks[r].WouldConflict(req.Address.Bank, req.Address.Row)
}

// canBegin reports whether the bank could start the request's command
// sequence this cycle, with nothing already queued ahead of it.
func (c *Controller) canBegin(r int, req *sim.Request) bool {
	plan := &c.plans[r][req.Address.Bank]
	if len(plan.fifo) > 0 {
		return false
	}

	probe := *req
	switch {
	case c.rowHit(r, req):
		// Probe the read or write directly.
	case c.ranks[r].PoweredDown(req.Address.Bank):
		probe.Type = sim.PowerUp
	case c.ranks[r].BankClosed(req.Address.Bank):
		probe.Type = sim.Activate
	default:
		probe.Type = sim.Precharge
	}

	return c.ranks[r].IsIssuable(&probe, 0)
}

// expand turns the selected transaction into the minimal command sequence
// given the planned or live bank state, and queues it on the bank's FIFO.
func (c *Controller) expand(r int, req *sim.Request) {
	bank := req.Address.Bank
	plan := &c.plans[r][bank]

	hit := c.rowHit(r, req)

	if !hit {
		// A fast-exit precharge power-down needs a wake-up first. Active
		// power-down is left to the front end's compound commands.
		if c.ranks[r].PoweredDown(bank) {
			plan.fifo = append(plan.fifo, c.makeCommand(sim.PowerUp, req))
		} else if plan.activateQueued || !c.ranks[r].BankClosed(bank) {
			// The bank ends up open on the wrong row (planned or live, or
			// held open against a due refresh): close it first.
			plan.fifo = append(plan.fifo, c.makeCommand(sim.Precharge, req))
		}

		plan.fifo = append(plan.fifo, c.makeCommand(sim.Activate, req))
		plan.activateQueued = true
		plan.effectiveRow = req.Address.Row
	}

	plan.fifo = append(plan.fifo, req)
	plan.starvation = 0
}

// makeCommand creates a controller-owned device command inheriting the
// trigger's address.
func (c *Controller) makeCommand(
	t sim.OpType,
	trigger *sim.Request,
) *sim.Request {
	cmd := sim.NewRequest(t, trigger.Address)
	cmd.Owner = c
	cmd.ArrivalCycle = c.queue.CurrentCycle()

	return cmd
}

// cycleCommandQueues walks every bank FIFO and issues the head if the bank
// admits it. A head stalled behind a deferred refresh on an open bank gets
// a precharge (and re-activate) injected so the refresh can proceed.
func (c *Controller) cycleCommandQueues() {
	now := c.queue.CurrentCycle()

	for r, rank := range c.ranks {
		for b := range c.plans[r] {
			plan := &c.plans[r][b]
			if len(plan.fifo) == 0 {
				continue
			}

			head := plan.fifo[0]

			if !rank.IsIssuable(head, 0) {
				c.maybeBreakRefreshStall(r, uint64(b))
				continue
			}

			if !rank.IssueCommand(head) {
				continue
			}

			if head.IsTransaction() {
				head.IssueCycle = now
				head.Status = sim.StatusIssued
			}

			plan.fifo = plan.fifo[1:]

			// A trailing precharge leaves the bank closed with no plan.
			if head.Type == sim.Precharge && len(plan.fifo) == 0 {
				plan.activateQueued = false
				plan.effectiveRow = invalidRow
			}
		}
	}
}

// maybeBreakRefreshStall injects a precharge (and, for a stalled read or
// write, a re-activate) ahead of the FIFO when an open bank defers a
// refresh that the queued commands are waiting on.
func (c *Controller) maybeBreakRefreshStall(r int, bank uint64) {
	plan := &c.plans[r][bank]
	head := plan.fifo[0]

	if head.Type == sim.Precharge {
		return
	}

	if !c.ranks[r].RefreshPending(bank) || c.ranks[r].BankClosed(bank) {
		return
	}

	inject := []*sim.Request{c.makeCommand(sim.Precharge, head)}
	if head.IsTransaction() {
		inject = append(inject, c.makeCommand(sim.Activate, head))
	}

	plan.fifo = append(inject, plan.fifo...)
	plan.activateQueued = true
	plan.effectiveRow = head.Address.Row
}
