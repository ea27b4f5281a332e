// Package endurance models per-partition write endurance. A partition is
// the smallest tracked unit, one bit by default; each write that flips a
// partition consumes one unit of its budget, and an exhausted partition is
// a permanent stuck-at fault.
package endurance

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/sim"
)

// Model is the interface the bank consults on every write when endurance
// modeling is enabled.
type Model interface {
	// Write compares the old and new block and consumes budget for every
	// flipped partition. It returns false if any partition reached a hard
	// error.
	Write(addr sim.Address, oldData, newData sim.DataBlock) bool

	// GetWorstLife returns the smallest remaining budget over all touched
	// partitions, or MaxUint64 if none were touched.
	GetWorstLife() uint64

	// GetAverageLife returns the mean remaining budget over all touched
	// partitions, or MaxUint64 if none were touched.
	GetAverageLife() uint64

	// SetGranularity sets the partition size in bits.
	SetGranularity(bits uint64)

	// DecrementLife consumes one unit of the partition's budget, reporting
	// the fault address on exhaustion. It returns false once the partition
	// is dead.
	DecrementLife(key uint64, faultAddr sim.Address) bool

	// PrintStats writes the model's counters.
	PrintStats(w io.Writer)
}

// New creates the endurance model selected by the configuration. An empty
// model name disables endurance modeling and returns nil.
func New(p *config.Params) Model {
	switch p.EnduranceModel {
	case "":
		return nil
	case "BitModel":
		return NewBitModel(p)
	}

	fmt.Fprintf(os.Stderr,
		"endurance: warning: unknown model %q, endurance disabled\n",
		p.EnduranceModel)

	return nil
}

// lifeMap is the sparse partition-to-remaining-writes map shared by
// endurance model implementations.
type lifeMap struct {
	life        map[uint64]uint64
	budget      uint64
	granularity uint64

	hardErrors uint64
	decrements uint64
}

func makeLifeMap(budget uint64) lifeMap {
	return lifeMap{
		life:        make(map[uint64]uint64),
		budget:      budget,
		granularity: 1,
	}
}

// SetGranularity sets the partition size in bits. Keys are scaled down so
// neighboring bits share a partition.
func (m *lifeMap) SetGranularity(bits uint64) {
	if bits == 0 {
		bits = 1
	}

	m.granularity = bits
}

// DecrementLife consumes one write from the partition. Exhausted partitions
// stay at zero and report a stuck-at fault with the bit index and physical
// byte offset.
func (m *lifeMap) DecrementLife(key uint64, faultAddr sim.Address) bool {
	key /= m.granularity
	m.decrements++

	remaining, ok := m.life[key]
	if !ok {
		remaining = m.budget
	}

	if remaining == 0 {
		return false
	}

	remaining--
	m.life[key] = remaining

	if remaining == 0 {
		m.hardErrors++
		fmt.Fprintf(os.Stderr,
			"endurance: stuck-at fault at 0x%x bit %d (partition %d)\n",
			faultAddr.Physical, faultAddr.Bit, key)
		return false
	}

	return true
}

// GetWorstLife returns the smallest remaining budget over touched
// partitions.
func (m *lifeMap) GetWorstLife() uint64 {
	if len(m.life) == 0 {
		return math.MaxUint64
	}

	worst := uint64(math.MaxUint64)
	for _, remaining := range m.life {
		if remaining < worst {
			worst = remaining
		}
	}

	return worst
}

// GetAverageLife returns the mean remaining budget over touched partitions.
func (m *lifeMap) GetAverageLife() uint64 {
	if len(m.life) == 0 {
		return math.MaxUint64
	}

	total := uint64(0)
	for _, remaining := range m.life {
		total += remaining
	}

	return total / uint64(len(m.life))
}

// PrintStats writes the shared counters.
func (m *lifeMap) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "endurance.bitsFlipped %d\n", m.decrements)
	fmt.Fprintf(w, "endurance.hardErrors %d\n", m.hardErrors)
	fmt.Fprintf(w, "endurance.partitionsTouched %d\n", len(m.life))
}

// HardErrors returns the number of stuck-at faults introduced so far.
func (m *lifeMap) HardErrors() uint64 {
	return m.hardErrors
}
