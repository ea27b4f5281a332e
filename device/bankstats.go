package device

import (
	"math"

	"github.com/sarchlab/nvmsim/stats"
)

// RegisterStats exposes the bank's counters under the given name prefix.
func (b *Bank) RegisterStats(reg *stats.Registry) {
	prefix := b.name + "."

	if b.p.EnergyModel == "current" {
		reg.RegisterFloat(prefix+"current", "mA", &b.energy.total)
		reg.RegisterFloat(prefix+"current.background", "mA",
			&b.energy.background)
		reg.RegisterFloat(prefix+"current.active", "mA", &b.energy.active)
		reg.RegisterFloat(prefix+"current.burst", "mA", &b.energy.burst)
		reg.RegisterFloat(prefix+"current.refresh", "mA", &b.energy.refresh)
	} else {
		reg.RegisterFloat(prefix+"energy", "nJ", &b.energy.total)
		reg.RegisterFloat(prefix+"energy.background", "nJ",
			&b.energy.background)
		reg.RegisterFloat(prefix+"energy.active", "nJ", &b.energy.active)
		reg.RegisterFloat(prefix+"energy.burst", "nJ", &b.energy.burst)
		reg.RegisterFloat(prefix+"energy.refresh", "nJ", &b.energy.refresh)
	}

	reg.RegisterFunc(prefix+"power", "W",
		func() any { return b.energy.power(b.p, b.now()) })
	reg.RegisterFunc(prefix+"bandwidth", "MB/s",
		func() any { return b.bandwidth() })
	reg.RegisterFunc(prefix+"utilization", "",
		func() any { return b.utilization() })

	reg.RegisterUint(prefix+"reads", "", &b.reads)
	reg.RegisterUint(prefix+"writes", "", &b.writes)
	reg.RegisterUint(prefix+"activates", "", &b.activates)
	reg.RegisterUint(prefix+"refreshes", "", &b.refreshes)

	reg.Register(prefix+"activeCycles", "",
		func() any { return uint64(b.powerCycles) },
		func() { b.powerCycles = 0 })
	reg.Register(prefix+"fastExitCycles", "",
		func() any { return uint64(b.feCycles) },
		func() { b.feCycles = 0 })
	reg.Register(prefix+"slowExitCycles", "",
		func() any { return uint64(b.seCycles) },
		func() { b.seCycles = 0 })

	reg.RegisterUint(prefix+"actWaits", "", &b.actWaits)
	reg.RegisterUint(prefix+"actWaits.totalTime", "", &b.actWaitTime)
	reg.RegisterFunc(prefix+"actWaits.averageTime", "", func() any {
		if b.actWaits == 0 {
			return 0.0
		}
		return float64(b.actWaitTime) / float64(b.actWaits)
	})

	if b.endr != nil {
		reg.RegisterFunc(prefix+"worstCaseEndurance", "", func() any {
			worst := b.endr.GetWorstLife()
			if worst == math.MaxUint64 {
				return "N/A"
			}
			return worst
		})
		reg.RegisterFunc(prefix+"averageEndurance", "", func() any {
			avg := b.endr.GetAverageLife()
			if avg == math.MaxUint64 {
				return "N/A"
			}
			return avg
		})
	}
}

func (b *Bank) utilization() float64 {
	if b.activeCycles == 0 {
		return 0
	}

	return float64(b.dataCycles) / float64(b.activeCycles)
}

func (b *Bank) bandwidth() float64 {
	ideal := float64(b.p.CLK * b.p.Mult * b.p.Rate * b.p.BPC)

	return b.utilization() * ideal
}
