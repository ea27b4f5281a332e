package device

import (
	"fmt"
	"os"

	"github.com/sarchlab/nvmsim/sim"
)

// scriptFor expands a compound-command tag into its full command sequence,
// head included.
func scriptFor(bulk sim.BulkCmd) ([]sim.OpType, bool) {
	switch bulk {
	case sim.BulkActReadPre:
		return []sim.OpType{sim.Activate, sim.Read, sim.Precharge}, true
	case sim.BulkActRead2Pre:
		return []sim.OpType{
			sim.Activate, sim.Read, sim.Read, sim.Precharge}, true
	case sim.BulkActRead3Pre:
		return []sim.OpType{
			sim.Activate, sim.Read, sim.Read, sim.Read, sim.Precharge}, true
	case sim.BulkActRead4Pre:
		return []sim.OpType{
			sim.Activate, sim.Read, sim.Read, sim.Read, sim.Read,
			sim.Precharge}, true
	case sim.BulkActWritePre:
		return []sim.OpType{sim.Activate, sim.Write, sim.Precharge}, true
	case sim.BulkActWrite2Pre:
		return []sim.OpType{
			sim.Activate, sim.Write, sim.Write, sim.Precharge}, true
	case sim.BulkActWrite3Pre:
		return []sim.OpType{
			sim.Activate, sim.Write, sim.Write, sim.Write,
			sim.Precharge}, true
	case sim.BulkActWrite4Pre:
		return []sim.OpType{
			sim.Activate, sim.Write, sim.Write, sim.Write, sim.Write,
			sim.Precharge}, true
	case sim.BulkActReadPrePD:
		return []sim.OpType{
			sim.Activate, sim.Read, sim.Precharge,
			sim.PowerDownPDPF}, true
	case sim.BulkActWritePrePD:
		return []sim.OpType{
			sim.Activate, sim.Write, sim.Precharge,
			sim.PowerDownPDPF}, true
	case sim.BulkPUActReadPre:
		return []sim.OpType{
			sim.PowerUp, sim.Activate, sim.Read, sim.Precharge}, true
	case sim.BulkPUActWritePre:
		return []sim.OpType{
			sim.PowerUp, sim.Activate, sim.Write, sim.Precharge}, true
	case sim.BulkPUActReadPrePD:
		return []sim.OpType{
			sim.PowerUp, sim.Activate, sim.Read, sim.Precharge,
			sim.PowerDownPDPF}, true
	case sim.BulkPUActWritePrePD:
		return []sim.OpType{
			sim.PowerUp, sim.Activate, sim.Write, sim.Precharge,
			sim.PowerDownPDPF}, true
	}

	return nil, false
}

// startChain installs the follow-on script of a compound request after its
// head command succeeded. The tag is consumed so implicit re-dispatch of
// the same request cannot expand it twice.
func (b *Bank) startChain(req *sim.Request) {
	if req == nil || req.BulkCmd == sim.BulkNone {
		return
	}

	seq, ok := scriptFor(req.BulkCmd)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unknown bulk command %d\n",
			b.name, req.BulkCmd)
		req.BulkCmd = sim.BulkNone
		return
	}

	if seq[0] != req.Type {
		fmt.Fprintf(os.Stderr,
			"%s: bulk command %d does not start with %s\n",
			b.name, req.BulkCmd, req.Type)
		req.BulkCmd = sim.BulkNone
		return
	}

	req.BulkCmd = sim.BulkNone

	// The follow-on commands reuse a copy of the triggering request, so
	// mutating its type cannot alias responses already in flight.
	cp := *req
	b.script = seq[1:]
	b.scriptReq = &cp

	b.scheduleChain()
}

// scheduleChain wakes the bank at the earliest legal cycle of the pending
// follow-on command.
func (b *Bank) scheduleChain() {
	if len(b.script) == 0 {
		b.scriptReq = nil
		return
	}

	b.wakeAt(b.nextCycleFor(b.script[0]))
}

func (b *Bank) wakeAt(cycle sim.Cycle) {
	now := b.now()
	if cycle <= now {
		cycle = now + 1
	}

	// A pending wake no later than the requested one already covers it.
	if b.chainWake > now && b.chainWake <= cycle {
		return
	}

	b.chainWake = cycle
	b.queue.InsertEvent(sim.EventCycle, b, nil, cycle)
}

// nextCycleFor returns the earliest-legal-cycle entry gating the given
// command kind.
func (b *Bank) nextCycleFor(op sim.OpType) sim.Cycle {
	switch op {
	case sim.Activate:
		return b.nextActivate
	case sim.Read:
		return b.nextRead
	case sim.Write:
		return b.nextWrite
	case sim.Precharge:
		return b.nextPrecharge
	case sim.PowerDownPDA, sim.PowerDownPDPF, sim.PowerDownPDPS:
		return b.nextPowerDown
	case sim.PowerUp:
		return b.nextPowerUp
	case sim.Refresh:
		return b.nextRefresh
	}

	return b.now()
}

// issueImplicit retries the head of the pending follow-on script. A blocked
// head reschedules itself at its earliest legal cycle; timing is preserved
// if the bank is busy.
func (b *Bank) issueImplicit() {
	if len(b.script) == 0 {
		return
	}

	op := b.script[0]
	req := b.scriptReq
	req.Type = op

	// IsIssuable refuses all commands while a chain pends; probe with the
	// chain hidden.
	saved := b.script
	b.script = nil
	issuable := b.IsIssuable(req, 0)
	b.script = saved

	if !issuable {
		b.wakeAt(b.nextCycleFor(op))
		return
	}

	b.script = saved[1:]

	switch op {
	case sim.Activate:
		b.Activate(req)
	case sim.Read:
		b.Read(req)
	case sim.Write:
		b.Write(req)
	case sim.Precharge:
		b.Precharge(req)
	case sim.PowerDownPDA:
		b.PowerDown(BankPDA)
	case sim.PowerDownPDPF:
		b.PowerDown(BankPDPF)
	case sim.PowerDownPDPS:
		b.PowerDown(BankPDPS)
	case sim.PowerUp:
		b.PowerUp(req)
	case sim.Refresh:
		b.Refresh()
	}

	b.scheduleChain()
}
