package memsys

import (
	"fmt"

	"github.com/sarchlab/nvmsim/addrtrans"
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/device"
	"github.com/sarchlab/nvmsim/memctrl"
	"github.com/sarchlab/nvmsim/mirror"
	"github.com/sarchlab/nvmsim/sim"
	"github.com/sarchlab/nvmsim/stats"
)

// Builder can build memory systems.
type Builder struct {
	cfg      *config.Config
	mirror   sim.DataMirror
	registry *stats.Registry
	hooks    []sim.Hook
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.New(),
	}
}

// WithConfig sets the configuration the builder uses.
func (b Builder) WithConfig(cfg *config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithDataMirror sets the address-to-data map consulted by endurance
// modeling. Without one, a memory-backed mirror is created when an
// endurance model is configured.
func (b Builder) WithDataMirror(m sim.DataMirror) Builder {
	b.mirror = m
	return b
}

// WithStatsRegistry sets the registry components register their counters
// with.
func (b Builder) WithStatsRegistry(reg *stats.Registry) Builder {
	b.registry = reg
	return b
}

// WithAdditionalHooks adds the given hook to the controllers and ranks.
func (b Builder) WithAdditionalHooks(h sim.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// Build builds the memory system.
func (b Builder) Build(name string) *System {
	p := config.ParamsFrom(b.cfg)

	s := &System{
		name:       name,
		queue:      sim.NewEventQueue(),
		params:     p,
		translator: addrtrans.New(p),
		registry:   b.registry,
		mirror:     b.mirror,
	}

	if s.registry == nil {
		s.registry = stats.NewRegistry()
	}

	if s.mirror == nil && p.EnduranceModel != "" {
		s.mirror = mirror.NewMemory(p.WordSize())
	}

	for ch := uint64(0); ch < p.Channels; ch++ {
		mcName := fmt.Sprintf("%s.mc%d", name, ch)

		var ranks []*device.Rank
		var memories []memctrl.Memory
		for rk := uint64(0); rk < p.Ranks; rk++ {
			rank := device.NewRank(
				fmt.Sprintf("%s.rank%d", mcName, rk), int(rk), s.queue, p)

			if s.mirror != nil {
				rank.SetDataMirror(s.mirror)
			}

			b.attachHooks(rank)

			ranks = append(ranks, rank)
			memories = append(memories, rank)
		}

		mc := memctrl.NewController(
			mcName, int(ch), s.queue, p, s.translator, memories)
		mc.SetParent(s)
		b.attachHooks(mc)

		for _, rank := range ranks {
			rank.SetParent(mc)
		}

		mc.RegisterStats(s.registry)
		for _, rank := range ranks {
			rank.RegisterStats(s.registry)
		}

		s.controllers = append(s.controllers, mc)
		s.ranks = append(s.ranks, ranks)
	}

	s.registry.RegisterUint(name+".simulatedCycles", "", &s.simulatedCycles)

	return s
}

func (b Builder) attachHooks(hookable sim.Hookable) {
	for _, h := range b.hooks {
		hookable.AcceptHook(h)
	}
}
