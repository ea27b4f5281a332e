package sim

import "github.com/rs/xid"

// OpType enumerates the memory operations that flow through the system,
// both host-visible transactions (Read, Write) and device-level commands.
type OpType int

// The supported operation types.
const (
	Nop OpType = iota
	Read
	Write
	Activate
	Precharge
	Refresh
	PowerDownPDA
	PowerDownPDPF
	PowerDownPDPS
	PowerUp
)

func (t OpType) String() string {
	switch t {
	case Nop:
		return "NOP"
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case Activate:
		return "ACTIVATE"
	case Precharge:
		return "PRECHARGE"
	case Refresh:
		return "REFRESH"
	case PowerDownPDA:
		return "POWERDOWN_PDA"
	case PowerDownPDPF:
		return "POWERDOWN_PDPF"
	case PowerDownPDPS:
		return "POWERDOWN_PDPS"
	case PowerUp:
		return "POWERUP"
	}

	return "UNKNOWN"
}

// BulkCmd tags a request with a compound command. The bank expands the tag
// into an ordered script of follow-on commands that it issues implicitly as
// timing permits.
type BulkCmd int

// The supported compound commands. The name spells the command sequence;
// PU-prefixed commands begin with a power-up.
const (
	BulkNone BulkCmd = iota
	BulkActReadPre
	BulkActRead2Pre
	BulkActRead3Pre
	BulkActRead4Pre
	BulkActWritePre
	BulkActWrite2Pre
	BulkActWrite3Pre
	BulkActWrite4Pre
	BulkActReadPrePD
	BulkActWritePrePD
	BulkPUActReadPre
	BulkPUActWritePre
	BulkPUActReadPrePD
	BulkPUActWritePrePD
)

// RequestStatus tracks the lifecycle of a request.
type RequestStatus int

// The request lifecycle states.
const (
	StatusNone RequestStatus = iota
	StatusQueued
	StatusIssued
	StatusComplete
)

// A Request is a memory transaction or device command traveling through the
// system. Requests are created by the front end or by a controller; the
// Owner domain absorbs the request on completion.
type Request struct {
	ID      string
	Type    OpType
	Address Address
	Data    DataBlock
	BulkCmd BulkCmd

	// Owner is the domain that frees the request on completion. Internally
	// generated commands are owned by the issuing controller.
	Owner Domain

	ArrivalCycle    Cycle
	IssueCycle      Cycle
	CompletionCycle Cycle
	Status          RequestStatus
}

// NewRequest creates a request of the given type to the given address.
func NewRequest(t OpType, addr Address) *Request {
	return &Request{
		ID:      xid.New().String(),
		Type:    t,
		Address: addr,
	}
}

// IsTransaction reports whether the request is a host-visible transaction
// rather than a device-level command.
func (r *Request) IsTransaction() bool {
	return r.Type == Read || r.Type == Write
}
