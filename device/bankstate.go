// Package device models the memory device proper: banks with their command
// timing state machines, ranks that aggregate banks, and the rank-level
// timing constraints shared among sibling banks.
package device

// BankState is the power/row-buffer state of a bank.
type BankState int

// The bank states. A row is associated with the bank only in BankOpen.
const (
	// BankClosed has no open row and accepts Activate and Refresh.
	BankClosed BankState = iota

	// BankOpen has one sensed row and accepts Read, Write, and Precharge.
	BankOpen

	// BankPDPF is fast-exit precharge power-down.
	BankPDPF

	// BankPDPS is slow-exit precharge power-down.
	BankPDPS

	// BankPDA is active power-down: the open row is retained.
	BankPDA
)

func (s BankState) String() string {
	switch s {
	case BankClosed:
		return "CLOSED"
	case BankOpen:
		return "OPEN"
	case BankPDPF:
		return "PDPF"
	case BankPDPS:
		return "PDPS"
	case BankPDA:
		return "PDA"
	}

	return "UNKNOWN"
}

// powerDown reports whether the state is one of the power-down states.
func (s BankState) powerDown() bool {
	return s == BankPDPF || s == BankPDPS || s == BankPDA
}
