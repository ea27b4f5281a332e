// Package addrtrans maps physical addresses to device coordinates and back.
// The mapping is bijective for word-aligned addresses within the configured
// geometry, so the same translator serves decoding, re-encoding for fault
// reports, and endurance bookkeeping.
package addrtrans

import (
	"log"

	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/sim"
)

// Field indices for SetOrder.
const (
	fieldRow = iota
	fieldCol
	fieldBank
	fieldRank
	fieldChannel
	numFields
)

// Translator decodes a physical address into (channel, rank, bank, row,
// col, subarray) coordinates. The bit order of the fields is configurable;
// the default places columns lowest so consecutive addresses stay in the
// open row.
type Translator struct {
	cols      uint64
	rows      uint64
	banks     uint64
	ranks     uint64
	channels  uint64
	matHeight uint64
	wordBytes uint64

	// order[f] is the 1-based position of field f counted from the least
	// significant end.
	order [numFields]int
}

// New creates a translator for the given geometry with the default field
// order row:5 col:1 bank:4 rank:3 channel:2.
func New(p *config.Params) *Translator {
	t := &Translator{
		cols:      p.Cols,
		rows:      p.Rows,
		banks:     p.Banks,
		ranks:     p.Ranks,
		channels:  p.Channels,
		matHeight: p.MATHeight,
		wordBytes: p.BusWidth / 8,
	}

	t.SetOrder(5, 1, 4, 3, 2)

	return t
}

// SetOrder assigns the position of each address field, counted from the
// least significant end (1 = lowest). Each position 1..5 must appear
// exactly once.
func (t *Translator) SetOrder(row, col, bank, rank, channel int) {
	order := [numFields]int{row, col, bank, rank, channel}

	var seen [numFields + 1]bool
	for _, pos := range order {
		if pos < 1 || pos > numFields || seen[pos] {
			log.Panicf("addrtrans: invalid field order %v", order)
		}
		seen[pos] = true
	}

	t.order = order
}

func (t *Translator) fieldSize(f int) uint64 {
	switch f {
	case fieldRow:
		return t.rows
	case fieldCol:
		return t.cols
	case fieldBank:
		return t.banks
	case fieldRank:
		return t.ranks
	case fieldChannel:
		return t.channels
	}

	return 1
}

func (t *Translator) fieldAt(pos int) int {
	for f, p := range t.order {
		if p == pos {
			return f
		}
	}

	return -1
}

// Translate decodes a physical address.
func (t *Translator) Translate(physical uint64) sim.Address {
	a := sim.Address{Physical: physical}

	v := physical / t.wordBytes
	for pos := 1; pos <= numFields; pos++ {
		f := t.fieldAt(pos)
		size := t.fieldSize(f)
		val := v % size
		v /= size

		switch f {
		case fieldRow:
			a.Row = val
		case fieldCol:
			a.Col = val
		case fieldBank:
			a.Bank = val
		case fieldRank:
			a.Rank = val
		case fieldChannel:
			a.Channel = val
		}
	}

	a.Subarray = a.Row / t.matHeight

	return a
}

// Encode re-assembles the physical address of word-aligned coordinates.
// It is the inverse of Translate for in-range addresses.
func (t *Translator) Encode(a sim.Address) uint64 {
	v := uint64(0)
	for pos := numFields; pos >= 1; pos-- {
		f := t.fieldAt(pos)
		size := t.fieldSize(f)

		var val uint64
		switch f {
		case fieldRow:
			val = a.Row
		case fieldCol:
			val = a.Col
		case fieldBank:
			val = a.Bank
		case fieldRank:
			val = a.Rank
		case fieldChannel:
			val = a.Channel
		}

		v = v*size + val
	}

	return v * t.wordBytes
}
