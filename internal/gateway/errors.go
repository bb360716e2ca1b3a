package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for connection-phase failures.
var (
	// ErrNetworkUnavailable indicates no RPC endpoint was reachable.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrUnsupportedNetwork indicates no deployed contract address is
	// registered for the resolved chain ID.
	ErrUnsupportedNetwork = errors.New("unsupported network")

	// ErrConfirmTimeout indicates the confirmation wait elapsed before the
	// transaction was mined. The transaction may still land.
	ErrConfirmTimeout = errors.New("timed out waiting for confirmation")
)

// Coded is implemented by errors that carry a stable machine-readable code
// alongside their human-readable message.
type Coded interface {
	error
	Code() string
}

// ErrorCode extracts the machine-readable code from an error chain.
// Returns "unknown" when no Coded error is present.
func ErrorCode(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}
	switch {
	case errors.Is(err, ErrNetworkUnavailable):
		return "network_unavailable"
	case errors.Is(err, ErrUnsupportedNetwork):
		return "unsupported_network"
	case errors.Is(err, ErrConfirmTimeout):
		return "timed_out"
	}
	return "unknown"
}

// RPCError wraps a transport-level failure talking to the chain RPC.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// Code implements Coded.
func (e *RPCError) Code() string { return "rpc_error" }

// RevertError indicates the chain accepted the transaction but the contract
// rejected the mutation. The attempted value was not moved.
type RevertError struct {
	TxHash string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transaction %s reverted on chain", e.TxHash)
	}
	return fmt.Sprintf("transaction %s reverted on chain: %s", e.TxHash, e.Reason)
}

// Code implements Coded.
func (e *RevertError) Code() string { return "contract_reverted" }

// EstimationError indicates gas estimation was rejected. Some networks reject
// estimation pre-funding or pre-approval yet still accept the real call, so
// callers treat this as a warning rather than a blocker.
type EstimationError struct {
	Err error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("gas estimation failed: %v", e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

// Code implements Coded.
func (e *EstimationError) Code() string { return "estimation_failed" }
