package config

import "github.com/sarchlab/nvmsim/sim"

// Energy model selectors.
const (
	EnergyModelCurrent = "current"
	EnergyModelFlat    = "flat"
)

// Params is the typed view of a configuration: device geometry, timing
// constraints, and energy coefficients. Timing values are in device clock
// cycles, currents in mA, flat energies in nJ.
type Params struct {
	// Geometry.
	Cols      uint64
	Rows      uint64
	Banks     uint64
	Ranks     uint64
	Channels  uint64
	MATHeight uint64
	BusWidth  uint64
	Rate      uint64
	BPC       uint64
	CLK       uint64
	Mult      uint64

	// Timing.
	TBurst sim.Cycle
	TRCD   sim.Cycle
	TRAS   sim.Cycle
	TRP    sim.Cycle
	TCAS   sim.Cycle
	TCCD   sim.Cycle
	TWTR   sim.Cycle
	TWR    sim.Cycle
	TRTP   sim.Cycle
	TAL    sim.Cycle
	TCWD   sim.Cycle
	TRRDR  sim.Cycle
	TFAW   sim.Cycle
	TPD    sim.Cycle
	TXP    sim.Cycle
	TXPDLL sim.Cycle
	TRFI   sim.Cycle
	TRFC   sim.Cycle

	// Energy.
	EnergyModel string
	Voltage     float64
	EIDD0       float64
	EIDD2N      float64
	EIDD3N      float64
	EIDD4R      float64
	EIDD4W      float64
	EIDD5B      float64
	Erd         float64
	Eopenrd     float64
	Ewr         float64
	Eref        float64

	// Endurance.
	EnduranceModel  string
	EnduranceBudget uint64

	// Power management and refresh.
	InitPD      bool
	UseRefresh  bool
	RefreshRows uint64

	// Controller.
	ReadQueueSize       uint64
	WriteQueueSize      uint64
	StarvationThreshold uint64
	HighWaterMark       uint64
	LowWaterMark        uint64
}

// ParamsFrom builds the parameter set from a configuration, applying the
// documented defaults for unset keys.
func ParamsFrom(c *Config) *Params {
	p := &Params{
		Cols:     c.GetUint("COLS", 1024),
		Rows:     c.GetUint("ROWS", 65536),
		Banks:    c.GetUint("BANKS", 8),
		Ranks:    c.GetUint("RANKS", 2),
		Channels: c.GetUint("CHANNELS", 1),
		BusWidth: c.GetUint("BusWidth", 64),
		Rate:     c.GetUint("RATE", 2),
		BPC:      c.GetUint("BPC", 8),
		CLK:      c.GetUint("CLK", 666),
		Mult:     c.GetUint("MULT", 1),
		TBurst:   cycles(c, "tBURST", 4),
		TRCD:     cycles(c, "tRCD", 10),
		TRAS:     cycles(c, "tRAS", 25),
		TRP:      cycles(c, "tRP", 10),
		TCAS:     cycles(c, "tCAS", 10),
		TCCD:     cycles(c, "tCCD", 4),
		TWTR:     cycles(c, "tWTR", 5),
		TWR:      cycles(c, "tWR", 10),
		TRTP:     cycles(c, "tRTP", 5),
		TAL:      cycles(c, "tAL", 0),
		TCWD:     cycles(c, "tCWD", 7),
		TRRDR:    cycles(c, "tRRDR", 4),
		TFAW:     cycles(c, "tFAW", 20),
		TPD:      cycles(c, "tPD", 4),
		TXP:      cycles(c, "tXP", 4),
		TXPDLL:   cycles(c, "tXPDLL", 17),
		TRFI:     cycles(c, "tRFI", 5200000),
		TRFC:     cycles(c, "tRFC", 100),

		EnergyModel: c.GetString("EnergyModel", EnergyModelFlat),
		Voltage:     c.GetFloat("Voltage", 1.5),
		EIDD0:       c.GetFloat("EIDD0", 85),
		EIDD2N:      c.GetFloat("EIDD2N", 42),
		EIDD3N:      c.GetFloat("EIDD3N", 45),
		EIDD4R:      c.GetFloat("EIDD4R", 180),
		EIDD4W:      c.GetFloat("EIDD4W", 185),
		EIDD5B:      c.GetFloat("EIDD5B", 200),
		Erd:         c.GetFloat("Erd", 2.1),
		Eopenrd:     c.GetFloat("Eopenrd", 1.1),
		Ewr:         c.GetFloat("Ewr", 16.8),
		Eref:        c.GetFloat("Eref", 38.5),

		EnduranceModel:  c.GetString("EnduranceModel", ""),
		EnduranceBudget: c.GetUint("EnduranceBudget", 100000000),

		InitPD:      c.GetBool("InitPD", false),
		UseRefresh:  c.GetBool("UseRefresh", false),
		RefreshRows: c.GetUint("RefreshRows", 1024),

		ReadQueueSize:       c.GetUint("ReadQueueSize", 32),
		WriteQueueSize:      c.GetUint("WriteQueueSize", 8),
		StarvationThreshold: c.GetUint("StarvationThreshold", 4),
	}

	p.MATHeight = c.GetUint("MATHeight", p.Rows)
	if p.MATHeight == 0 {
		p.MATHeight = p.Rows
	}

	p.HighWaterMark = c.GetUint("HighWaterMark", p.WriteQueueSize)
	p.LowWaterMark = c.GetUint("LowWaterMark", 0)

	return p
}

// WordSize returns the number of bytes moved by one full burst.
func (p *Params) WordSize() uint64 {
	return p.BusWidth * uint64(p.TBurst) * p.Rate / 8
}

// Subarrays returns the number of subarrays per bank.
func (p *Params) Subarrays() uint64 {
	n := p.Rows / p.MATHeight
	if n == 0 {
		n = 1
	}

	return n
}

func cycles(c *Config, key string, def sim.Cycle) sim.Cycle {
	return sim.Cycle(c.GetUint(key, uint64(def)))
}
