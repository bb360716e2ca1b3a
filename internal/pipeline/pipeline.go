// Package pipeline orchestrates transfer submission and confirmation: it
// validates a request, opens a negotiation, checks funding, submits the
// value-transfer call with tiered fallback strategies, waits for confirmation
// under a bounded timeout, and reconciles the outcome back through the
// negotiation channel.
package pipeline

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sendora-labs/sendora/internal/channel"
	"github.com/sendora-labs/sendora/internal/gateway"
)

const (
	// DefaultConfirmTimeout bounds the confirmation wait.
	DefaultConfirmTimeout = 60 * time.Second

	// defaultReserveWei is the fixed minimum balance held back for network
	// fees: 0.01 in display units.
	defaultReserveWei = 10_000_000_000_000_000
)

// Chain is the subset of the gateway the pipeline drives. All methods are
// suspend points honoring context cancellation.
type Chain interface {
	Balance(ctx context.Context) (*big.Int, error)
	EstimateTransfer(ctx context.Context, call gateway.TransferCall) (uint64, error)
	SubmitTransfer(ctx context.Context, call gateway.TransferCall, opts gateway.SubmitOpts) (string, error)
	WaitMined(ctx context.Context, txHash string, timeout time.Duration) (*gateway.Receipt, error)
}

// Negotiator is the channel surface the pipeline records intent and outcome
// through.
type Negotiator interface {
	Negotiate(ctx context.Context, recipient, amount, message string) (*channel.NegotiationResult, error)
	Send(ctx context.Context, to string, typ channel.Type, content map[string]any) (channel.Message, error)
	Identity() string
}

// Pipeline executes transfers. Gates run strictly sequentially per request;
// independent Submit calls may run concurrently against the same chain, which
// can race on nonce ordering (known limitation, not serialized here).
type Pipeline struct {
	chain          Chain
	negotiator     Negotiator
	logger         log.Logger
	reserve        *big.Int
	confirmTimeout time.Duration
	strategies     []Strategy
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured event logger.
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithReserve overrides the fee reserve, in base units.
func WithReserve(reserve *big.Int) Option {
	return func(p *Pipeline) { p.reserve = reserve }
}

// WithConfirmTimeout overrides the confirmation wait bound.
func WithConfirmTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.confirmTimeout = d }
}

// WithStrategies replaces the submission strategy ladder.
func WithStrategies(strategies []Strategy) Option {
	return func(p *Pipeline) { p.strategies = strategies }
}

// New builds a pipeline over a chain gateway and a negotiation channel.
func New(chain Chain, negotiator Negotiator, opts ...Option) *Pipeline {
	p := &Pipeline{
		chain:          chain,
		negotiator:     negotiator,
		logger:         log.NewNopLogger(),
		reserve:        big.NewInt(defaultReserveWei),
		confirmTimeout: DefaultConfirmTimeout,
		strategies:     DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs one transfer through every gate and returns its outcome. The
// returned error, when non-nil, equals Outcome.Err and carries a
// machine-readable code via gateway.ErrorCode.
func (p *Pipeline) Submit(ctx context.Context, req TransferRequest) (*Outcome, error) {
	p.stage(StageStart, "recipient", req.Recipient, "amount", req.Amount)

	// Gate 1: validate. No gateway or channel interaction on failure.
	if !common.IsHexAddress(req.Recipient) {
		return p.abort(&Outcome{}, &InvalidInputError{Field: "recipient", Reason: "not a well-formed address"})
	}
	amount, err := gateway.ParseAmount(req.Amount)
	if err != nil {
		return p.abort(&Outcome{}, &InvalidInputError{Field: "amount", Reason: err.Error()})
	}

	call := gateway.TransferCall{
		Receivers:    []common.Address{common.HexToAddress(req.Recipient)},
		Amounts:      []*big.Int{amount},
		Message:      req.Message,
		AccountLabel: req.AccountLabel,
		Keyword:      req.Keyword,
	}

	return p.run(ctx, call, req.Recipient, req.Amount, req.Message)
}

// SubmitBatch runs one atomic batch transfer: per-recipient validation, a
// single aggregate funds check, one transferBatch call, and one confirmation
// wait for the whole batch. There is no per-recipient partial success.
func (p *Pipeline) SubmitBatch(ctx context.Context, req BatchRequest) (*Outcome, error) {
	p.stage(StageStart, "recipients", len(req.Recipients))

	if len(req.Recipients) == 0 {
		return p.abort(&Outcome{}, &InvalidInputError{Field: "recipients", Reason: "batch is empty"})
	}
	if len(req.Recipients) != len(req.Amounts) {
		return p.abort(&Outcome{}, &InvalidInputError{Field: "amounts", Reason: "recipient and amount counts differ"})
	}

	call := gateway.TransferCall{
		Message: req.Message,
		Keyword: req.Keyword,
	}
	total := new(big.Int)
	for i, recipient := range req.Recipients {
		if !common.IsHexAddress(recipient) {
			return p.abort(&Outcome{}, &InvalidInputError{Field: "recipient", Reason: "not a well-formed address: " + recipient})
		}
		amount, err := gateway.ParseAmount(req.Amounts[i])
		if err != nil {
			return p.abort(&Outcome{}, &InvalidInputError{Field: "amount", Reason: err.Error()})
		}
		call.Receivers = append(call.Receivers, common.HexToAddress(recipient))
		call.Amounts = append(call.Amounts, amount)
		total.Add(total, amount)
	}

	return p.run(ctx, call, strings.Join(req.Recipients, ","), gateway.FormatAmount(total), req.Message)
}

// run executes gates 2-7 for an already-validated call.
func (p *Pipeline) run(ctx context.Context, call gateway.TransferCall, recipient, amount, message string) (*Outcome, error) {
	outcome := &Outcome{}

	// Gate 2: negotiate intent off-chain. No chain call has happened yet.
	p.stage(StageNegotiating, "recipient", recipient)
	negotiation, err := p.negotiator.Negotiate(ctx, recipient, amount, message)
	if negotiation != nil {
		outcome.NegotiationID = negotiation.MessageID
	}
	if err != nil || !negotiation.Negotiated() {
		status := "unavailable"
		if negotiation != nil {
			status = negotiation.Status
		}
		return p.abort(outcome, &NegotiationRejectedError{Status: status})
	}
	outcome.Status = StatusNegotiated
	p.stage(StageNegotiated, "negotiation_id", negotiation.MessageID)

	// Gate 3: funds check. Required = transfer value + fee reserve.
	balance, err := p.chain.Balance(ctx)
	if err != nil {
		return p.reconcileAbort(ctx, outcome, err)
	}
	required := new(big.Int).Add(call.Value(), p.reserve)
	if balance.Cmp(required) < 0 {
		return p.reconcileAbort(ctx, outcome, &InsufficientFundsError{Held: balance, Required: required})
	}

	// Gate 4: best-effort estimation. Some networks reject estimation yet
	// still accept the real call, so failure only warns.
	if gas, err := p.chain.EstimateTransfer(ctx, call); err != nil {
		p.logger.Warn("gas estimation failed, submitting anyway", "err", err)
	} else {
		p.logger.Debug("gas estimated", "gas", gas)
	}

	// Gate 5: submit, walking the strategy ladder.
	p.stage(StageSubmitting, "strategies", len(p.strategies))
	var attempts []AttemptFailure
	for _, strategy := range p.strategies {
		txHash, err := p.chain.SubmitTransfer(ctx, call, strategy.Opts)
		if err != nil {
			p.logger.Warn("submission attempt failed", "strategy", strategy.Name, "err", err)
			attempts = append(attempts, AttemptFailure{Strategy: strategy.Name, Err: err})
			continue
		}
		outcome.TxHash = txHash
		outcome.Strategy = strategy.Name
		break
	}
	if outcome.TxHash == "" {
		return p.reconcileAbort(ctx, outcome, &SubmissionError{Attempts: attempts})
	}
	outcome.Status = StatusSubmitted
	p.stage(StageSubmitted, "tx", outcome.TxHash, "strategy", outcome.Strategy)

	// Gate 6: confirmation wait under the timeout. A timeout is
	// indeterminate, not failure: the dispatch is already durable on-chain
	// and must not be retried.
	p.stage(StageConfirming, "tx", outcome.TxHash, "timeout", p.confirmTimeout)
	receipt, err := p.chain.WaitMined(ctx, outcome.TxHash, p.confirmTimeout)
	switch {
	case errors.Is(err, gateway.ErrConfirmTimeout):
		outcome.Status = StatusTimedOut
		p.stage(StageTimedOut, "tx", outcome.TxHash)
		p.reconcile(ctx, outcome)
		return outcome, nil
	case err != nil:
		if receipt != nil {
			outcome.BlockNumber = receipt.BlockNumber
		}
		return p.reconcileAbort(ctx, outcome, err)
	}

	outcome.Status = StatusConfirmed
	outcome.BlockNumber = receipt.BlockNumber
	p.stage(StageConfirmed, "tx", outcome.TxHash, "block", receipt.BlockNumber)
	p.reconcile(ctx, outcome)
	return outcome, nil
}

// abort finalizes a failed outcome without reconciliation (validation and
// negotiation failures never opened a chain interaction worth recording).
func (p *Pipeline) abort(outcome *Outcome, err error) (*Outcome, error) {
	outcome.Status = StatusFailed
	outcome.Err = err
	p.stage(StageFailed, "code", gateway.ErrorCode(err), "err", err)
	return outcome, err
}

// reconcileAbort finalizes a failed outcome and records it on the channel.
func (p *Pipeline) reconcileAbort(ctx context.Context, outcome *Outcome, err error) (*Outcome, error) {
	outcome.Status = StatusFailed
	outcome.Err = err
	p.stage(StageFailed, "code", gateway.ErrorCode(err), "err", err)
	p.reconcile(ctx, outcome)
	return outcome, err
}

// reconcile records the final status as an execution message, best effort.
// Its own failure is logged and swallowed: reconciliation never overrides the
// already-decided transfer outcome.
func (p *Pipeline) reconcile(ctx context.Context, outcome *Outcome) {
	content := map[string]any{
		channel.ContentStatus:            string(outcome.Status),
		channel.ContentOriginalMessageID: outcome.NegotiationID,
	}
	if outcome.TxHash != "" {
		content["transactionId"] = outcome.TxHash
	}
	if outcome.Err != nil {
		content["error"] = outcome.Err.Error()
	}
	if _, err := p.negotiator.Send(ctx, p.negotiator.Identity(), channel.TypeExecution, content); err != nil {
		p.logger.Warn("failed to record execution outcome", "err", err)
	}
}

// stage emits one structured state-machine transition event.
func (p *Pipeline) stage(stage Stage, kv ...any) {
	p.logger.Info("transfer "+string(stage), kv...)
}
