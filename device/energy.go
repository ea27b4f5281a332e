package device

import (
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/sim"
)

// energyCounters accumulates consumed energy per bucket. Under the current
// model the unit is mA·cycle; under the flat model it is nJ.
type energyCounters struct {
	total      float64
	background float64
	active     float64
	burst      float64
	refresh    float64
}

func (e *energyCounters) addActivate(p *config.Params) {
	if p.EnergyModel == config.EnergyModelCurrent {
		tRC := float64(p.TRAS + p.TRCD)
		amount := p.EIDD0*tRC -
			(p.EIDD3N*float64(p.TRAS) + p.EIDD2N*float64(p.TRP))
		e.total += amount
		e.active += amount
		return
	}

	e.total += p.Erd
	e.active += p.Erd
}

func (e *energyCounters) addRead(p *config.Params) {
	if p.EnergyModel == config.EnergyModelCurrent {
		amount := (p.EIDD4R - p.EIDD3N) * float64(p.TBurst)
		e.total += amount
		e.burst += amount
		return
	}

	e.total += p.Eopenrd
	e.burst += p.Eopenrd
}

func (e *energyCounters) addWrite(p *config.Params) {
	if p.EnergyModel == config.EnergyModelCurrent {
		amount := (p.EIDD4W - p.EIDD3N) * float64(p.TBurst)
		e.total += amount
		e.burst += amount
		return
	}

	e.total += p.Ewr
	e.burst += p.Ewr
}

func (e *energyCounters) addRefresh(p *config.Params, rows uint64) {
	if p.EnergyModel == config.EnergyModelCurrent {
		amount := (p.EIDD5B - p.EIDD3N) * float64(p.TRFC) * float64(rows)
		e.total += amount
		e.refresh += amount
		return
	}

	e.total += p.Eref
	e.refresh += p.Eref
}

// addBackground accrues standby energy for the given number of cycles.
// Only the current model carries background energy; power-down states are
// approximated as consuming none.
func (e *energyCounters) addBackground(
	p *config.Params,
	state BankState,
	steps sim.Cycle,
) {
	if p.EnergyModel != config.EnergyModelCurrent || steps == 0 {
		return
	}

	var idd float64
	switch state {
	case BankOpen:
		idd = p.EIDD3N
	case BankClosed:
		idd = p.EIDD2N
	default:
		return
	}

	amount := idd * float64(steps)
	e.total += amount
	e.background += amount
}

// power returns the average power drawn so far, in watts, given the elapsed
// cycles.
func (e *energyCounters) power(p *config.Params, elapsed sim.Cycle) float64 {
	if elapsed == 0 {
		return 0
	}

	if p.EnergyModel == config.EnergyModelCurrent {
		return e.total / float64(elapsed) * p.Voltage / 1000.0
	}

	seconds := float64(elapsed) / (float64(p.CLK) * 1e6)

	return e.total / 1e9 / seconds
}
