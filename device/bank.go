package device

import (
	"fmt"
	"os"

	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/endurance"
	"github.com/sarchlab/nvmsim/sim"
)

// A Bank is the smallest independently-addressable timing unit of a rank.
// It owns at most one open row, enforces every inter-command timing
// constraint through its earliest-legal-cycle set, accounts energy, and
// issues the follow-on commands of compound requests as timing permits.
//
// All command methods return true if the command was accepted at the
// current cycle.
type Bank struct {
	sim.HookableBase

	name   string
	id     int
	parent sim.Domain
	queue  *sim.EventQueue
	p      *config.Params
	rank   *RankTiming

	mirror sim.DataMirror
	endr   endurance.Model

	state        BankState
	openRow      uint64
	lastActivate sim.Cycle
	writeCycle   bool

	nextActivate  sim.Cycle
	nextPrecharge sim.Cycle
	nextRead      sim.Cycle
	nextWrite     sim.Cycle
	nextPowerDown sim.Cycle
	nextPowerUp   sim.Cycle
	nextRefresh   sim.Cycle

	// Pending follow-on commands of a compound request, consumed head
	// first. While non-empty the bank accepts no external commands.
	script    []sim.OpType
	scriptReq *sim.Request
	chainWake sim.Cycle

	refreshUsed     bool
	refreshRows     uint64
	refreshPending  bool
	refreshRowIndex uint64

	pendingCompletion map[*sim.Request]sim.Cycle
	nextCompletion    sim.Cycle

	energy energyCounters

	reads       uint64
	writes      uint64
	activates   uint64
	refreshes   uint64
	actWaits    uint64
	actWaitTime uint64

	dataCycles   sim.Cycle
	activeCycles sim.Cycle
	powerCycles  sim.Cycle
	feCycles     sim.Cycle
	seCycles     sim.Cycle
}

// NewBank creates a bank. The id is the device id within the logical bank:
// when a bank spans multiple devices, only device 0 schedules responses and
// models endurance.
func NewBank(
	name string,
	id int,
	parent sim.Domain,
	queue *sim.EventQueue,
	p *config.Params,
	rank *RankTiming,
) *Bank {
	b := &Bank{
		name:              name,
		id:                id,
		parent:            parent,
		queue:             queue,
		p:                 p,
		rank:              rank,
		endr:              endurance.New(p),
		pendingCompletion: make(map[*sim.Request]sim.Cycle),
		nextCompletion:    sim.MaxCycle,
		refreshRows:       p.RefreshRows,
	}

	if p.InitPD {
		b.state = BankPDPF
	}

	if p.UseRefresh {
		b.refreshUsed = true
		b.nextRefresh = queue.CurrentCycle() + b.refreshInterval()
	}

	return b
}

// Name returns the qualified name of the bank.
func (b *Bank) Name() string { return b.name }

// SetDataMirror attaches the address-to-data map used by endurance
// modeling.
func (b *Bank) SetDataMirror(m sim.DataMirror) { b.mirror = m }

// SetEnduranceModel replaces the endurance model created from the
// configuration.
func (b *Bank) SetEnduranceModel(m endurance.Model) { b.endr = m }

// EnduranceModel returns the bank's endurance model, or nil when endurance
// is not modeled.
func (b *Bank) EnduranceModel() endurance.Model { return b.endr }

// State returns the current bank state.
func (b *Bank) State() BankState { return b.state }

// OpenRow returns the open row. Only meaningful while the state is
// BankOpen.
func (b *Bank) OpenRow() uint64 { return b.openRow }

func (b *Bank) now() sim.Cycle { return b.queue.CurrentCycle() }

func (b *Bank) refreshInterval() sim.Cycle {
	groups := b.p.Rows / b.refreshRows
	if groups == 0 {
		groups = 1
	}

	return b.p.TRFI / sim.Cycle(groups)
}

// Activate opens the request's row. Accepted only from BankClosed, past
// nextActivate, with no refresh due, and within the rank's tRRD/tFAW
// constraints.
func (b *Bank) Activate(req *sim.Request) bool {
	now := b.now()
	p := b.p

	if now < b.nextActivate || b.state != BankClosed {
		if b.state == BankOpen {
			fmt.Fprintf(os.Stderr,
				"%s: attempted to activate open row\n", b.name)
		}
		return false
	}

	if b.refreshUsed && (b.refreshPending || now >= b.nextRefresh) {
		return false
	}

	if !b.rank.CanActivate(now) {
		return false
	}

	b.nextActivate = maxCycle(b.nextActivate,
		now+maxCycle(p.TRCD, p.TRAS)+p.TRP)
	b.nextPrecharge = maxCycle(b.nextPrecharge,
		now+maxCycle(p.TRCD, p.TRAS))
	b.nextRead = maxCycle(b.nextRead, now+p.TRCD-p.TAL)
	b.nextWrite = maxCycle(b.nextWrite, now+p.TRCD-p.TAL)
	b.nextPowerDown = maxCycle(b.nextPowerDown, now+p.TRCD+1)

	b.openRow = req.Address.Row
	b.state = BankOpen
	b.writeCycle = false
	b.lastActivate = now
	b.rank.NoteActivate(now)

	b.energy.addActivate(p)
	b.activates++

	b.startChain(req)

	return true
}

// Read bursts the open row. Accepted only when the bank is open on the
// request's row, past nextRead, and once the shared data bus is free.
func (b *Bank) Read(req *sim.Request) bool {
	now := b.now()
	p := b.p

	if now < b.nextRead || b.state != BankOpen ||
		req.Address.Row != b.openRow {
		return false
	}

	if b.refreshUsed && b.refreshPending {
		return false
	}

	if now < b.rank.NextRead() {
		return false
	}

	b.nextPrecharge = maxCycle(b.nextPrecharge,
		now+p.TAL+p.TBurst+p.TRTP-p.TCCD)
	b.nextRead = maxCycle(b.nextRead, now+maxCycle(p.TBurst, p.TCCD))
	b.nextWrite = maxCycle(b.nextWrite, now+p.TCAS+p.TBurst+2-p.TCWD)
	b.nextActivate = maxCycle(b.nextActivate, b.lastActivate+p.TRRDR)
	b.nextPowerDown = maxCycle(b.nextPowerDown,
		now+p.TAL+p.TBurst+p.TCAS+1)

	b.rank.NoteRead(now)
	b.dataCycles += p.TBurst

	// Data occupies the bus from tCAS for tBURST; the owner learns of
	// completion when the full burst has transferred. Only the leader bank
	// of a logical access responds.
	if b.id == 0 {
		b.queue.InsertEvent(sim.EventResponse, b.parent, req,
			now+p.TCAS+maxCycle(p.TBurst, p.TCCD))
	}

	b.energy.addRead(p)
	b.reads++

	// A value read before ever being written is still authoritative:
	// record it so later endurance comparisons start from real data.
	if b.mirror != nil && b.endr != nil {
		var prior sim.DataBlock
		if !b.mirror.GetDataAtAddress(req.Address.Physical, &prior) {
			b.mirror.SetDataAtAddress(req.Address.Physical, req.Data)
		}
	}

	b.startChain(req)

	return true
}

// Write bursts new data into the open row and, on the leader bank, runs the
// endurance model against the previously recorded block.
func (b *Bank) Write(req *sim.Request) bool {
	now := b.now()
	p := b.p

	if now < b.nextWrite || b.state != BankOpen ||
		req.Address.Row != b.openRow {
		return false
	}

	if b.refreshUsed && b.refreshPending {
		return false
	}

	if now < b.rank.NextWrite() {
		return false
	}

	b.nextPrecharge = maxCycle(b.nextPrecharge,
		now+p.TAL+p.TCWD+p.TBurst+p.TWR)
	b.nextRead = maxCycle(b.nextRead, now+p.TCWD+p.TBurst+p.TWTR)
	b.nextWrite = maxCycle(b.nextWrite, now+maxCycle(p.TBurst, p.TCCD))
	b.nextPowerDown = maxCycle(b.nextPowerDown,
		now+p.TAL+p.TBurst+p.TWR+p.TCWD+1)

	b.rank.NoteWrite(now)
	b.dataCycles += p.TBurst

	if b.id == 0 {
		b.queue.InsertEvent(sim.EventResponse, b.parent, req,
			now+p.TCWD+maxCycle(p.TBurst, p.TCCD))
	}

	b.energy.addWrite(p)
	b.writeCycle = true
	b.writes++

	if b.endr != nil && b.id == 0 {
		b.modelEndurance(req)
	}

	b.startChain(req)

	return true
}

func (b *Bank) modelEndurance(req *sim.Request) {
	if b.mirror == nil {
		fmt.Fprintf(os.Stderr,
			"%s: endurance modeled without a data mirror\n", b.name)
		return
	}

	var oldData sim.DataBlock
	if !b.mirror.GetDataAtAddress(req.Address.Physical, &oldData) {
		// Never-written data is assumed zero.
		oldData = sim.NewDataBlock(int(b.p.WordSize()))
	}

	b.mirror.SetDataAtAddress(req.Address.Physical, req.Data)

	if !b.endr.Write(req.Address, oldData, req.Data) {
		fmt.Fprintf(os.Stderr,
			"%s: write to 0x%x resulted in a hard error\n",
			b.name, req.Address.Physical)
	}
}

// Precharge closes the open row. The closure completes, and the owner is
// notified, tRP cycles later.
func (b *Bank) Precharge(req *sim.Request) bool {
	now := b.now()
	p := b.p

	if now < b.nextPrecharge || b.state != BankOpen {
		if b.state == BankClosed {
			fmt.Fprintf(os.Stderr,
				"%s: attempted to precharge a closed bank\n", b.name)
		}
		return false
	}

	b.nextActivate = maxCycle(b.nextActivate, now+p.TRP)
	b.nextPowerDown = maxCycle(b.nextPowerDown, now+p.TRP)

	if b.id == 0 && req != nil {
		completion := now + p.TRP
		b.pendingCompletion[req] = completion
		if completion < b.nextCompletion {
			b.nextCompletion = completion
		}
		b.queue.InsertEvent(sim.EventCycle, b, nil, completion)
	}

	b.state = BankClosed

	return true
}

// Refresh restores one group of rows. Accepted only from BankClosed once
// the refresh interval elapsed.
func (b *Bank) Refresh() bool {
	now := b.now()
	p := b.p

	if now < b.nextRefresh || b.state != BankClosed {
		return false
	}

	hold := sim.Cycle(b.refreshRows) * p.TRFC
	b.nextActivate = maxCycle(b.nextActivate, now+hold)
	b.nextPowerDown = maxCycle(b.nextPowerDown, now+hold)

	b.refreshRowIndex = (b.refreshRowIndex + b.refreshRows) % b.p.Rows
	b.nextRefresh = now + b.refreshInterval()
	b.refreshPending = false

	b.queue.InsertEvent(sim.EventCycle, b, nil, b.nextRefresh)

	b.energy.addRefresh(p, b.refreshRows)
	b.refreshes++

	return true
}

// PowerDown moves the bank into the given power-down state.
func (b *Bank) PowerDown(target BankState) bool {
	now := b.now()
	p := b.p

	if now < b.nextPowerDown ||
		(b.state != BankOpen && b.state != BankClosed) {
		return false
	}

	if !target.powerDown() {
		fmt.Fprintf(os.Stderr,
			"%s: invalid power-down target state %s\n", b.name, target)
		return false
	}

	b.state = target

	b.nextPowerUp = maxCycle(b.nextPowerUp, now+p.TPD)
	b.nextActivate = maxCycle(b.nextActivate, now+p.TPD+p.TXP)
	if target == BankPDPS {
		b.nextRead = maxCycle(b.nextRead, now+p.TPD+p.TXPDLL)
	} else {
		b.nextRead = maxCycle(b.nextRead, now+p.TPD+p.TXP)
	}
	b.nextWrite = maxCycle(b.nextWrite, now+p.TPD+p.TXP)
	b.nextPrecharge = maxCycle(b.nextPrecharge, now+p.TPD+p.TXP)

	return true
}

// PowerUp leaves a power-down state, restoring BankOpen from PDA and
// BankClosed otherwise.
func (b *Bank) PowerUp(req *sim.Request) bool {
	now := b.now()
	p := b.p

	if now < b.nextPowerUp || !b.state.powerDown() {
		return false
	}

	b.nextPowerDown = maxCycle(b.nextPowerDown, now+p.TXP)
	b.nextActivate = maxCycle(b.nextActivate, now+p.TXP)
	if b.state == BankPDPS {
		b.nextRead = maxCycle(b.nextRead, now+p.TXPDLL)
	} else {
		b.nextRead = maxCycle(b.nextRead, now+p.TXP)
	}
	b.nextWrite = maxCycle(b.nextWrite, now+p.TXP)
	b.nextPrecharge = maxCycle(b.nextPrecharge, now+p.TXP)

	// The bank consumes background power throughout the transition, so
	// only the wake direction carries a wait.
	if b.state == BankPDA {
		b.state = BankOpen
	} else {
		b.state = BankClosed
	}

	b.startChain(req)

	return true
}

// IsIssuable reports whether the request could be accepted delay cycles
// from now. Any pending follow-on chain blocks external commands.
func (b *Bank) IsIssuable(req *sim.Request, delay sim.Cycle) bool {
	at := b.now() + delay

	if len(b.script) > 0 {
		return false
	}

	switch req.Type {
	case sim.Activate:
		ok := at >= b.nextActivate && b.state == BankClosed &&
			b.rank.CanActivate(at)
		if b.refreshUsed && (at >= b.nextRefresh || b.refreshPending) {
			ok = false
		}
		if !ok && at < b.nextActivate {
			b.actWaits++
			b.actWaitTime += uint64(b.nextActivate - at)
		}
		return ok

	case sim.Read:
		return at >= b.nextRead && at >= b.rank.NextRead() &&
			b.state == BankOpen && req.Address.Row == b.openRow &&
			!(b.refreshUsed && b.refreshPending)

	case sim.Write:
		return at >= b.nextWrite && at >= b.rank.NextWrite() &&
			b.state == BankOpen && req.Address.Row == b.openRow &&
			!(b.refreshUsed && b.refreshPending)

	case sim.Precharge:
		return at >= b.nextPrecharge && b.state == BankOpen

	case sim.PowerDownPDA, sim.PowerDownPDPF, sim.PowerDownPDPS:
		return at >= b.nextPowerDown &&
			(b.state == BankOpen || b.state == BankClosed) &&
			!(b.refreshUsed && b.refreshPending)

	case sim.PowerUp:
		return at >= b.nextPowerUp && b.state.powerDown() &&
			!(b.refreshUsed && b.refreshPending)

	case sim.Refresh:
		return at >= b.nextRefresh && b.state == BankClosed &&
			!b.refreshPending
	}

	fmt.Fprintf(os.Stderr, "%s: IsIssuable: unknown operation %s\n",
		b.name, req.Type)

	return false
}

// Idle reports whether the bank has no timing constraint outstanding.
func (b *Bank) Idle() bool {
	now := b.now()

	return b.nextPrecharge <= now &&
		b.nextActivate <= now &&
		b.nextRead <= now &&
		b.nextWrite <= now &&
		(b.state == BankClosed || b.state == BankOpen)
}

// WouldConflict reports whether accessing the row would require a
// precharge/activate turnaround.
func (b *Bank) WouldConflict(row uint64) bool {
	return !(b.state == BankOpen && row == b.openRow)
}

// Cycle advances the bank: issues pending follow-on commands, starts a due
// refresh or defers it, releases matured precharge completions, and counts
// utilization.
func (b *Bank) Cycle(steps sim.Cycle) {
	b.issueImplicit()
	b.drainCompletions()

	now := b.now()

	if b.refreshUsed && now >= b.nextRefresh {
		if b.state == BankClosed {
			b.Refresh()
		} else {
			b.refreshPending = true
		}
	}

	if !b.Idle() {
		b.activeCycles += steps

		switch b.state {
		case BankPDPF, BankPDA:
			b.feCycles += steps
		case BankPDPS:
			b.seCycles += steps
		default:
			b.powerCycles += steps
		}
	}

	b.energy.addBackground(b.p, b.state, steps)
}

// RequestComplete relays a completion to the parent domain.
func (b *Bank) RequestComplete(req *sim.Request) bool {
	return b.parent.RequestComplete(req)
}

func (b *Bank) drainCompletions() {
	now := b.now()
	if now < b.nextCompletion {
		return
	}

	next := sim.MaxCycle
	for req, cycle := range b.pendingCompletion {
		if cycle <= now {
			delete(b.pendingCompletion, req)
			b.parent.RequestComplete(req)
			continue
		}
		if cycle < next {
			next = cycle
		}
	}

	b.nextCompletion = next
}
