package sim

// DataMirror is the address-to-data map the endurance model consults on
// writes. It is provided by the host simulator or the trace front end; the
// device only reads previously recorded blocks and records new ones.
type DataMirror interface {
	// GetDataAtAddress fetches the block recorded for the address. It
	// returns false if the address was never written.
	GetDataAtAddress(addr uint64, data *DataBlock) bool

	// SetDataAtAddress records the block for the address.
	SetDataAtAddress(addr uint64, data DataBlock)
}
