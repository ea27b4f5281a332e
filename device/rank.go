package device

import (
	"fmt"

	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/endurance"
	"github.com/sarchlab/nvmsim/sim"
	"github.com/sarchlab/nvmsim/stats"
)

// A Rank owns an ordered set of banks sharing one data bus and one
// constraint channel. It dispatches commands to banks, cycles them in a
// fixed order, and relays completions upward.
type Rank struct {
	sim.HookableBase

	name   string
	id     int
	parent sim.Domain
	queue  *sim.EventQueue
	p      *config.Params

	timing *RankTiming
	banks  []*Bank

	// rankwideRefresh drives refresh across all banks at once instead of
	// leaving each bank to refresh itself.
	rankwideRefresh bool
}

// NewRank creates a rank with its banks and constraint channel.
func NewRank(
	name string,
	id int,
	queue *sim.EventQueue,
	p *config.Params,
) *Rank {
	r := &Rank{
		name:   name,
		id:     id,
		queue:  queue,
		p:      p,
		timing: NewRankTiming(p),
	}

	for i := uint64(0); i < p.Banks; i++ {
		bankName := fmt.Sprintf("%s.bank%d", name, i)
		// One device per logical bank: every bank is its own leader.
		r.banks = append(r.banks,
			NewBank(bankName, 0, r, queue, p, r.timing))
	}

	return r
}

// Name returns the qualified name of the rank.
func (r *Rank) Name() string { return r.name }

// SetParent attaches the domain completions are relayed to.
func (r *Rank) SetParent(parent sim.Domain) { r.parent = parent }

// SetRankwideRefresh switches refresh to rank-wide mode.
func (r *Rank) SetRankwideRefresh(enable bool) {
	r.rankwideRefresh = enable
	for _, b := range r.banks {
		b.refreshUsed = r.p.UseRefresh && !enable
	}
}

// Bank returns the i-th bank.
func (r *Rank) Bank(i uint64) *Bank { return r.banks[i] }

// NumBanks returns the number of banks in the rank.
func (r *Rank) NumBanks() int { return len(r.banks) }

// Timing returns the rank's constraint channel.
func (r *Rank) Timing() *RankTiming { return r.timing }

// SetDataMirror attaches the data mirror to every bank.
func (r *Rank) SetDataMirror(m sim.DataMirror) {
	for _, b := range r.banks {
		b.SetDataMirror(m)
	}
}

// SetEnduranceModel replaces the endurance model of every bank.
func (r *Rank) SetEnduranceModel(m endurance.Model) {
	for _, b := range r.banks {
		b.SetEnduranceModel(m)
	}
}

// IssueCommand dispatches a device-level command to the addressed bank.
func (r *Rank) IssueCommand(req *sim.Request) bool {
	bank := r.banks[req.Address.Bank]

	r.InvokeHook(sim.HookCtx{
		Domain: r,
		Pos:    sim.HookPosBeforeIssue,
		Item:   req,
	})

	var accepted bool
	switch req.Type {
	case sim.Activate:
		accepted = bank.Activate(req)
	case sim.Read:
		accepted = bank.Read(req)
	case sim.Write:
		accepted = bank.Write(req)
	case sim.Precharge:
		accepted = bank.Precharge(req)
	case sim.Refresh:
		accepted = bank.Refresh()
	case sim.PowerDownPDA:
		accepted = bank.PowerDown(BankPDA)
	case sim.PowerDownPDPF:
		accepted = bank.PowerDown(BankPDPF)
	case sim.PowerDownPDPS:
		accepted = bank.PowerDown(BankPDPS)
	case sim.PowerUp:
		accepted = bank.PowerUp(req)
	default:
		accepted = false
	}

	r.InvokeHook(sim.HookCtx{
		Domain: r,
		Pos:    sim.HookPosAfterIssue,
		Item:   req,
	})

	return accepted
}

// IsIssuable reports whether the addressed bank could accept the command
// delay cycles from now.
func (r *Rank) IsIssuable(req *sim.Request, delay sim.Cycle) bool {
	return r.banks[req.Address.Bank].IsIssuable(req, delay)
}

// WouldConflict reports whether the access would miss the addressed bank's
// row buffer.
func (r *Rank) WouldConflict(bank, row uint64) bool {
	return r.banks[bank].WouldConflict(row)
}

// BankClosed reports whether the bank has no open row.
func (r *Rank) BankClosed(bank uint64) bool {
	return r.banks[bank].State() == BankClosed
}

// PoweredDown reports whether the bank is in a power-down state.
func (r *Rank) PoweredDown(bank uint64) bool {
	return r.banks[bank].State().powerDown()
}

// RefreshPending reports whether the bank has deferred a due refresh.
func (r *Rank) RefreshPending(bank uint64) bool {
	return r.banks[bank].refreshPending
}

// Idle reports whether every bank is idle.
func (r *Rank) Idle() bool {
	for _, b := range r.banks {
		if !b.Idle() {
			return false
		}
	}

	return true
}

// Cycle advances every bank in index order, then drives rank-wide refresh
// if configured.
func (r *Rank) Cycle(steps sim.Cycle) {
	for _, b := range r.banks {
		b.Cycle(steps)
	}

	if r.rankwideRefresh {
		r.cycleRefresh()
	}
}

// cycleRefresh refreshes every bank in lockstep once all banks are closed
// and due.
func (r *Rank) cycleRefresh() {
	now := r.queue.CurrentCycle()

	for _, b := range r.banks {
		if b.state != BankClosed || now < b.nextRefresh {
			return
		}
	}

	for _, b := range r.banks {
		b.Refresh()
	}
}

// RequestComplete relays a completion to the parent domain.
func (r *Rank) RequestComplete(req *sim.Request) bool {
	return r.parent.RequestComplete(req)
}

// Power returns the aggregate average power of the rank in watts.
func (r *Rank) Power() float64 {
	total := 0.0
	for _, b := range r.banks {
		total += b.energy.power(r.p, r.queue.CurrentCycle())
	}

	return total
}

// RegisterStats exposes the rank's and its banks' counters.
func (r *Rank) RegisterStats(reg *stats.Registry) {
	reg.RegisterFunc(r.name+".power", "W", func() any { return r.Power() })

	for _, b := range r.banks {
		b.RegisterStats(reg)
	}
}
