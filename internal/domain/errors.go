package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSelfView      = errors.New("cannot view your own profile")
	ErrAlreadyViewed = errors.New("profile already viewed")
	ErrQuotaExceeded = errors.New("profile view quota exceeded")
	ErrNotFound      = errors.New("not found")

	ErrInvalidArgument         = errors.New("invalid argument")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
	ErrUnknownPackage          = errors.New("unknown package")
	ErrUnknownAddon            = errors.New("unknown add-on")
	ErrEmailTaken              = errors.New("email already registered")
)

// PaymentBlockedError is returned when the viewer's latest payment is unresolved.
type PaymentBlockedError struct {
	Status PaymentStatus
	// Reason is the admin's rejection reason, empty unless Status is rejected.
	Reason string
}

func (e *PaymentBlockedError) Error() string {
	switch e.Status {
	case PaymentPending:
		return "payment pending: profile views are paused until it completes"
	case PaymentUnderReview:
		return "payment under review: profile views are paused until it is approved"
	case PaymentRejected:
		if e.Reason != "" {
			return "payment rejected: " + e.Reason
		}
		return "payment rejected"
	}
	return "payment blocked"
}

// TransitionError reports a move the state table does not allow.
type TransitionError struct {
	Kind     string
	From, To string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Kind, e.From, e.To)
}

// StoreError marks a failure of the backing data store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError unless it is nil or already a domain error.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || isDomain(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func isDomain(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidArgument, ErrUnknownPackage, ErrUnknownAddon,
		ErrSelfView, ErrAlreadyViewed, ErrQuotaExceeded, ErrRejectionReasonRequired, ErrEmailTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var te *TransitionError
	var pb *PaymentBlockedError
	return errors.As(err, &te) || errors.As(err, &pb)
}

// IsPaymentBlocked unwraps a PaymentBlockedError.
func IsPaymentBlocked(err error) (*PaymentBlockedError, bool) {
	var pb *PaymentBlockedError
	if errors.As(err, &pb) {
		return pb, true
	}
	return nil, false
}
