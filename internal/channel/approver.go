package channel

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ApprovalRequest carries the fields of a negotiation an approver decides on.
type ApprovalRequest struct {
	From      string
	Recipient string
	Amount    string
	Message   string
}

// Approver decides whether a negotiation is confirmed. The policy is
// injectable: the channel itself never hard-codes an approval decision.
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (bool, error)
}

// AutoApprover confirms every negotiation without a human in the loop.
type AutoApprover struct{}

// Approve implements Approver.
func (AutoApprover) Approve(context.Context, ApprovalRequest) (bool, error) {
	return true, nil
}

// ManualApprover gates each negotiation behind an interactive confirmation.
type ManualApprover struct{}

// Approve implements Approver.
func (ManualApprover) Approve(_ context.Context, req ApprovalRequest) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Approve transfer of %s to %s", req.Amount, req.Recipient),
		IsConfirm: true,
		Default:   "y",
	}
	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RejectApprover declines every negotiation. Useful as a policy placeholder
// and in tests exercising the rejection path.
type RejectApprover struct{}

// Approve implements Approver.
func (RejectApprover) Approve(context.Context, ApprovalRequest) (bool, error) {
	return false, nil
}

// ApproverForPolicy maps a configured policy name to an Approver.
func ApproverForPolicy(policy string) (Approver, error) {
	switch policy {
	case "", "auto":
		return AutoApprover{}, nil
	case "manual":
		return ManualApprover{}, nil
	case "reject":
		return RejectApprover{}, nil
	default:
		return nil, fmt.Errorf("unknown approval policy %q (want auto, manual, or reject)", policy)
	}
}
