// Package mirror provides the address-to-data map the endurance model
// consults. The trace front end and the warm-up paths record blocks here;
// the device reads prior contents to find flipped bits.
package mirror

import "github.com/sarchlab/nvmsim/sim"

// Memory is an in-memory DataMirror backed by a sparse map keyed by
// word-aligned physical address.
type Memory struct {
	blockSize uint64
	blocks    map[uint64]sim.DataBlock
}

// NewMemory creates a mirror for blocks of the given size in bytes.
func NewMemory(blockSize uint64) *Memory {
	return &Memory{
		blockSize: blockSize,
		blocks:    make(map[uint64]sim.DataBlock),
	}
}

func (m *Memory) align(addr uint64) uint64 {
	return addr &^ (m.blockSize - 1)
}

// GetDataAtAddress fetches the block covering the address. It returns false
// if the block was never written.
func (m *Memory) GetDataAtAddress(addr uint64, data *sim.DataBlock) bool {
	block, ok := m.blocks[m.align(addr)]
	if !ok {
		return false
	}

	*data = block.Clone()

	return true
}

// SetDataAtAddress records the block covering the address.
func (m *Memory) SetDataAtAddress(addr uint64, data sim.DataBlock) {
	m.blocks[m.align(addr)] = data.Clone()
}
