package pipeline

import (
	"fmt"
	"math/big"

	"github.com/sendora-labs/sendora/internal/gateway"
)

// Status is the progressive state of a transfer outcome. Terminal states are
// confirmed, failed, and timed-out.
type Status string

const (
	StatusNegotiated Status = "negotiated"
	StatusSubmitted  Status = "submitted"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed-out"
)

// Stage names the pipeline's internal state machine transitions, emitted as
// structured events.
type Stage string

const (
	StageStart       Stage = "START"
	StageNegotiating Stage = "NEGOTIATING"
	StageNegotiated  Stage = "NEGOTIATED"
	StageSubmitting  Stage = "SUBMITTING"
	StageSubmitted   Stage = "SUBMITTED"
	StageConfirming  Stage = "CONFIRMING"
	StageConfirmed   Stage = "CONFIRMED"
	StageFailed      Stage = "FAILED"
	StageTimedOut    Stage = "TIMED_OUT"
)

// TransferRequest is one user-submitted transfer. Immutable once submitted.
type TransferRequest struct {
	Recipient    string
	Amount       string // decimal, chain-native display units
	Message      string
	Keyword      string // cosmetic image lookup only
	AccountLabel string
}

// BatchRequest is one user-submitted batch transfer. The batch is atomic at
// the chain-call level: the contract applies or reverts it entirely.
type BatchRequest struct {
	Recipients []string
	Amounts    []string
	Message    string
	Keyword    string
}

// Outcome is the progressive result of a transfer as it advances through the
// pipeline stages.
type Outcome struct {
	Status        Status
	TxHash        string // present once submitted
	BlockNumber   int64  // present once confirmed
	NegotiationID string
	Strategy      string // submission strategy that produced TxHash
	Err           error  // present on failure
}

// Indeterminate reports whether the transfer may still land on chain despite
// the pipeline having stopped waiting.
func (o *Outcome) Indeterminate() bool {
	return o != nil && o.Status == StatusTimedOut
}

// InvalidInputError rejects a malformed request field before any chain or
// channel interaction.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements gateway.Coded.
func (e *InvalidInputError) Code() string { return "invalid_input" }

// NegotiationRejectedError aborts the pipeline before any chain mutation when
// the intent phase does not confirm.
type NegotiationRejectedError struct {
	Status string // channel-reported status: "rejected" or "unavailable"
}

func (e *NegotiationRejectedError) Error() string {
	return fmt.Sprintf("negotiation %s", e.Status)
}

// Code implements gateway.Coded.
func (e *NegotiationRejectedError) Code() string { return "negotiation_rejected" }

// InsufficientFundsError reports the held versus required balance, in base
// units, before any chain mutation is attempted.
type InsufficientFundsError struct {
	Held     *big.Int
	Required *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: held %s, required %s (amount plus fee reserve)",
		gateway.FormatAmount(e.Held), gateway.FormatAmount(e.Required))
}

// Code implements gateway.Coded.
func (e *InsufficientFundsError) Code() string { return "insufficient_funds" }

// AttemptFailure records one failed submission strategy.
type AttemptFailure struct {
	Strategy string
	Err      error
}

// SubmissionError reports that every submission strategy failed. The first
// attempt's error is the primary cause: the default strategy's failure is
// the more diagnostic one.
type SubmissionError struct {
	Attempts []AttemptFailure
}

func (e *SubmissionError) Error() string {
	if len(e.Attempts) == 0 {
		return "submission failed"
	}
	msg := fmt.Sprintf("submission failed: %v", e.Attempts[0].Err)
	for _, a := range e.Attempts[1:] {
		msg += fmt.Sprintf(" (strategy %s also failed: %v)", a.Strategy, a.Err)
	}
	return msg
}

// Unwrap exposes the primary cause.
func (e *SubmissionError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[0].Err
}

// Code implements gateway.Coded.
func (e *SubmissionError) Code() string { return "submission_failed" }
