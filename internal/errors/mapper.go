// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/domain"
	"github.com/oggyb/matrimony-core/internal/utils/pagination"
)

// ErrorDomain is the ErrorInfo domain attached to quota and payment errors.
const ErrorDomain = "matrimony.core"

// ErrorInfo reasons clients can switch on.
const (
	ReasonSelfView       = "SELF_VIEW"
	ReasonQuotaExceeded  = "QUOTA_EXCEEDED"
	ReasonPaymentBlocked = "PAYMENT_BLOCKED"
)

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		blocked    *domain.PaymentBlockedError
		transition *domain.TransitionError
		storeErr   *domain.StoreError
	)

	switch {
	case errors.As(err, &blocked):
		return withInfo(codes.FailedPrecondition, blocked.Error(), ReasonPaymentBlocked, map[string]string{
			"payment_status":   string(blocked.Status),
			"rejection_reason": blocked.Reason,
		})

	case errors.Is(err, domain.ErrQuotaExceeded):
		return withInfo(codes.ResourceExhausted, err.Error(), ReasonQuotaExceeded, nil)

	case errors.Is(err, domain.ErrSelfView):
		return withInfo(codes.InvalidArgument, err.Error(), ReasonSelfView, nil)

	case errors.Is(err, domain.ErrAlreadyViewed), errors.Is(err, domain.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, domain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.As(err, &transition), errors.Is(err, domain.ErrRejectionReasonRequired):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, pagination.ErrInvalidToken),
		errors.Is(err, domain.ErrUnknownPackage),
		errors.Is(err, domain.ErrUnknownAddon):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case errors.As(err, &storeErr):
		return status.Error(codes.Unavailable, err.Error())

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

func withInfo(code codes.Code, msg, reason string, meta map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   ErrorDomain,
		Metadata: meta,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// Reason extracts the ErrorInfo reason from a status error, if any.
func Reason(err error) (string, map[string]string) {
	st, ok := status.FromError(err)
	if !ok {
		return "", nil
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason(), info.GetMetadata()
		}
	}
	return "", nil
}
