package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	svcErr "github.com/oggyb/matrimony-core/internal/errors"
	"github.com/oggyb/matrimony-core/internal/repository"
	"github.com/oggyb/matrimony-core/internal/rpc"
	"github.com/oggyb/matrimony-core/internal/service/entitlement"
)

// Service implements the Payment gRPC API: checkout, the two submission
// paths (gateway callback and manual screenshot) and the admin review.
type Service struct {
	appCtx       *app.AppContext
	payments     *repository.PaymentRepository
	moderation   *repository.ModerationRepository
	entitlements *entitlement.Service
}

// NewPaymentService creates a new Payment service with dependencies from AppContext.
func NewPaymentService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		payments:     repository.NewPaymentRepository(appCtx.DB),
		moderation:   repository.NewModerationRepository(appCtx.DB),
		entitlements: entitlement.NewEntitlementService(appCtx),
	}
}

// Open creates a pending payment for a package or add-on.
// Price and views grant come from the catalog; the reference is a fresh uuid.
func (s *Service) Open(ctx context.Context, userID uint64, itemID string) (*db.Payment, error) {
	offer, err := domain.OfferFor(strings.ToLower(strings.TrimSpace(itemID)))
	if err != nil {
		return nil, err
	}
	if _, err := s.moderation.Get(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("member %d: %w", userID, domain.ErrNotFound)
		}
		return nil, domain.Store("load moderation", err)
	}

	p := &db.Payment{
		Reference:     uuid.NewString(),
		UserID:        userID,
		Amount:        offer.Amount,
		PackageType:   offer.ItemID,
		ViewsLimit:    offer.ViewsLimit,
		PaymentStatus: string(domain.PaymentPending),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, domain.Store("create payment", err)
	}
	s.appCtx.Logger.Info("payment opened", "user", userID, "item", offer.ItemID, "reference", p.Reference)
	return p, nil
}

// AttachScreenshot records manual-transfer proof and moves the payment to
// under_review.
func (s *Service) AttachScreenshot(ctx context.Context, reference, screenshotRef string) (*db.Payment, error) {
	if strings.TrimSpace(screenshotRef) == "" {
		return nil, fmt.Errorf("%w: screenshot_ref is required", domain.ErrInvalidArgument)
	}
	return s.byReference(ctx, reference, "submit screenshot", func(p *db.Payment) error {
		if err := domain.CheckPaymentSubmission(domain.PaymentStatus(p.PaymentStatus)); err != nil {
			return err
		}
		p.PaymentStatus = string(domain.PaymentUnderReview)
		p.ScreenshotRef = &screenshotRef
		return nil
	})
}

// Settle applies the gateway's verdict. Success moves the payment to
// under_review for admin confirmation; failure rejects it with
// domain.GatewayDeclinedReason.
func (s *Service) Settle(ctx context.Context, reference string, success bool, amount string) (*db.Payment, error) {
	s.appCtx.Logger.Info("gateway callback", "reference", reference, "success", success, "amount", amount)

	return s.byReference(ctx, reference, "gateway callback", func(p *db.Payment) error {
		current := domain.PaymentStatus(p.PaymentStatus)
		if err := domain.CheckPaymentSubmission(current); err != nil {
			return err
		}
		if success {
			p.PaymentStatus = string(domain.PaymentUnderReview)
			return nil
		}
		reason := domain.GatewayDeclinedReason
		p.PaymentStatus = string(domain.PaymentRejected)
		p.RejectionReason = &reason
		return nil
	})
}

// Review is the admin decision on a payment.
//
// Behavior:
//   - reject needs a non-empty reason; without one nothing changes.
//   - Only under_review records can be decided; accept grants the entitlement in
//     the same transaction as the status write.
//   - A terminal record is only re-stamped with reviewed_at/reviewed_by.
//   - Any storage failure rolls back and is returned; the record is never
//     marked reviewed on failure.
func (s *Service) Review(ctx context.Context, paymentID uint64, action domain.ReviewAction, reason string, reviewerID uint64) (*db.Payment, error) {
	var (
		out  *db.Payment
		plan domain.ReviewPlan
	)
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.payments.WithTx(tx)
		p, err := repo.Get(ctx, paymentID)
		if err != nil {
			return err
		}

		plan, err = domain.PlanReview(domain.PaymentStatus(p.PaymentStatus), action, reason)
		if err != nil {
			return err
		}

		now := s.appCtx.Now()
		p.ReviewedAt = &now
		p.ReviewedBy = &reviewerID
		if !plan.StampOnly {
			p.PaymentStatus = string(plan.Target)
			if action == domain.ReviewReject {
				r := strings.TrimSpace(reason)
				p.RejectionReason = &r
			}
		}
		if plan.Grant {
			if err := s.entitlements.ApplyPayment(ctx, tx, p); err != nil {
				return err
			}
		}
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("payment %d: %w", paymentID, domain.ErrNotFound)
		}
		return nil, domain.Store("review payment", err)
	}

	s.appCtx.Logger.Info("payment reviewed",
		"payment", paymentID, "action", action, "status", out.PaymentStatus,
		"reviewer", reviewerID, "stamp_only", plan.StampOnly)
	if plan.Grant && s.appCtx.RedisCache != nil {
		if err := s.appCtx.RedisCache.InvalidateFeatured(ctx); err != nil {
			s.appCtx.Logger.Warn("featured cache invalidation failed", "err", err)
		}
	}
	return out, nil
}

// byReference loads a payment by reference, applies fn and saves it.
func (s *Service) byReference(ctx context.Context, reference, op string, fn func(p *db.Payment) error) (*db.Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", domain.ErrInvalidArgument)
	}

	var out *db.Payment
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.payments.WithTx(tx)
		p, err := repo.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("payment %q: %w", reference, domain.ErrNotFound)
		}
		return nil, domain.Store(op, err)
	}
	return out, nil
}

// Checkout opens a pending payment for a package or add-on.
//
// Example:
//
//	svc.Checkout(ctx, &rpc.CheckoutRequest{UserID: "7", PackageType: "gold"})
func (s *Service) Checkout(ctx context.Context, req *rpc.CheckoutRequest) (*rpc.PaymentResponse, error) {
	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	p, err := s.Open(ctx, userID, req.PackageType)
	if err != nil {
		s.appCtx.Logger.Error("Checkout failed", "user", userID, "item", req.PackageType, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.PaymentResponse{Payment: rpc.PaymentFrom(p)}, nil
}

// SubmitScreenshot attaches manual-transfer proof to a pending payment.
func (s *Service) SubmitScreenshot(ctx context.Context, req *rpc.SubmitScreenshotRequest) (*rpc.PaymentResponse, error) {
	p, err := s.AttachScreenshot(ctx, req.Reference, req.ScreenshotRef)
	if err != nil {
		s.appCtx.Logger.Error("SubmitScreenshot failed", "reference", req.Reference, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.PaymentResponse{Payment: rpc.PaymentFrom(p)}, nil
}

// GatewayCallback receives the payment gateway's result for a reference.
// The payload is trusted as-is.
func (s *Service) GatewayCallback(ctx context.Context, req *rpc.GatewayCallbackRequest) (*rpc.PaymentResponse, error) {
	p, err := s.Settle(ctx, req.Reference, req.Success, req.Amount)
	if err != nil {
		s.appCtx.Logger.Error("GatewayCallback failed", "reference", req.Reference, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.PaymentResponse{Payment: rpc.PaymentFrom(p)}, nil
}

// ReviewPayment is the admin accept/reject action.
//
// Behavior:
//   - reject without reason → FailedPrecondition, record unchanged.
//   - storage failure → Unavailable, record unchanged; the admin may retry.
//
// Example:
//
//	svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{PaymentID: "3", Action: "accept", ReviewerUserID: "1"})
func (s *Service) ReviewPayment(ctx context.Context, req *rpc.ReviewPaymentRequest) (*rpc.PaymentResponse, error) {
	s.appCtx.Logger.Debug("ReviewPayment called", "payment", req.PaymentID, "action", req.Action)

	paymentID, err := rpc.ParseID("payment_id", req.PaymentID)
	if err != nil {
		return nil, err
	}
	reviewerID, err := rpc.ParseID("reviewer_user_id", req.ReviewerUserID)
	if err != nil {
		return nil, err
	}
	action, err := domain.ParseReviewAction(req.Action)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	p, err := s.Review(ctx, paymentID, action, req.Reason, reviewerID)
	if err != nil {
		s.appCtx.Logger.Error("ReviewPayment failed", "payment", paymentID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.PaymentResponse{Payment: rpc.PaymentFrom(p)}, nil
}

// ListPayments is the admin review queue, newest first, optionally filtered
// by status.
func (s *Service) ListPayments(ctx context.Context, req *rpc.ListPaymentsRequest) (*rpc.ListPaymentsResponse, error) {
	var filter *domain.PaymentStatus
	if strings.TrimSpace(req.Status) != "" {
		st, err := domain.ParsePaymentStatus(req.Status)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		filter = &st
	}

	rows, next, err := s.payments.List(ctx, filter, req.PageToken, s.appCtx.Config.PageSize)
	if err != nil {
		return nil, svcErr.Map(domain.Store("list payments", err))
	}

	resp := &rpc.ListPaymentsResponse{NextPageToken: next}
	for i := range rows {
		resp.Payments = append(resp.Payments, rpc.PaymentFrom(&rows[i]))
	}
	return resp, nil
}
