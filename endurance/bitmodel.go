package endurance

import (
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/sim"
)

// BitModel tracks endurance per bit. Each row is partitioned into
// single-bit divisions; a write consumes budget only for the bits it
// actually flips.
type BitModel struct {
	lifeMap

	matHeight        uint64
	partitionsPerRow uint64
	wordSize         uint64
}

// NewBitModel creates a bit-granularity endurance model for the given
// device geometry.
func NewBitModel(p *config.Params) *BitModel {
	return &BitModel{
		lifeMap:          makeLifeMap(p.EnduranceBudget),
		matHeight:        p.MATHeight,
		partitionsPerRow: p.Cols * p.WordSize() * 8,
		wordSize:         p.WordSize(),
	}
}

// Write compares the blocks byte by byte and bit by bit, decrementing the
// life of every flipped partition. It returns false if any partition
// expired.
func (m *BitModel) Write(
	addr sim.Address,
	oldData, newData sim.DataBlock,
) bool {
	ok := true

	for i := uint64(0); i < m.wordSize; i++ {
		oldByte := oldData.Byte(int(i))
		newByte := newData.Byte(int(i))

		if oldByte == newByte {
			continue
		}

		for j := uint8(0); j < 8; j++ {
			oldBit := (oldByte >> j) & 0x1
			newBit := (newByte >> j) & 0x1

			if oldBit == newBit {
				continue
			}

			key := (addr.Row+m.matHeight*addr.Subarray)*m.partitionsPerRow +
				addr.Col*m.wordSize*8 + i*8 + uint64(j)

			faultAddr := addr
			faultAddr.Bit = j
			faultAddr.Physical = addr.Physical + i

			if !m.DecrementLife(key, faultAddr) {
				ok = false
			}
		}
	}

	return ok
}
