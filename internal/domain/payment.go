package domain

import (
	"fmt"
	"strings"
)

// PaymentStatus is the review state of a payment attempt.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentUnderReview PaymentStatus = "under_review"
	PaymentAccepted    PaymentStatus = "accepted"
	PaymentRejected    PaymentStatus = "rejected"
)

// GatewayDeclinedReason is stored when the gateway reports a failed charge.
const GatewayDeclinedReason = "payment gateway declined the transaction"

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case PaymentPending, PaymentUnderReview, PaymentAccepted, PaymentRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrInvalidArgument, s)
}

// Terminal reports whether no further state change is possible.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentAccepted || s == PaymentRejected
}

// Blocks reports whether a latest payment in this state freezes quota use.
func (s PaymentStatus) Blocks() bool {
	return s == PaymentPending || s == PaymentUnderReview || s == PaymentRejected
}

// ReviewAction is the admin decision on a payment.
type ReviewAction string

const (
	ReviewAccept ReviewAction = "accept"
	ReviewReject ReviewAction = "reject"
)

func ParseReviewAction(s string) (ReviewAction, error) {
	switch a := ReviewAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ReviewAccept, ReviewReject:
		return a, nil
	}
	return "", fmt.Errorf("%w: review action must be accept or reject", ErrInvalidArgument)
}

// Target returns the payment state the action leads to.
func (a ReviewAction) Target() PaymentStatus {
	if a == ReviewAccept {
		return PaymentAccepted
	}
	return PaymentRejected
}

// ReviewPlan describes what a review does to a record currently in a given state.
type ReviewPlan struct {
	// Target is the status to persist.
	Target PaymentStatus
	// Grant is true when the accepted grant must be applied now.
	Grant bool
	// StampOnly is true for re-reviews of terminal records: only the
	// reviewer fields are overwritten.
	StampOnly bool
}

// PlanReview validates an admin review of a record in state current.
// Rejections need a non-empty reason whatever the current state. Only
// records under review can be decided; a pending checkout has no proof yet.
func PlanReview(current PaymentStatus, action ReviewAction, reason string) (ReviewPlan, error) {
	if action == ReviewReject && strings.TrimSpace(reason) == "" {
		return ReviewPlan{}, ErrRejectionReasonRequired
	}
	if current.Terminal() {
		return ReviewPlan{Target: current, StampOnly: true}, nil
	}
	if current == PaymentUnderReview {
		return ReviewPlan{Target: action.Target(), Grant: action == ReviewAccept}, nil
	}
	return ReviewPlan{}, &TransitionError{Kind: "payment", From: string(current), To: string(action.Target())}
}

// CheckPaymentSubmission validates pending -> under_review, used by the
// screenshot and gateway-success paths.
func CheckPaymentSubmission(current PaymentStatus) error {
	if current == PaymentPending || current == PaymentUnderReview {
		return nil
	}
	return &TransitionError{Kind: "payment", From: string(current), To: string(PaymentUnderReview)}
}
