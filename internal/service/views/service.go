package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	svcErr "github.com/oggyb/matrimony-core/internal/errors"
	"github.com/oggyb/matrimony-core/internal/repository"
	"github.com/oggyb/matrimony-core/internal/rpc"
)

// GuestLabel is the subscription label reported for anonymous callers.
const GuestLabel = "guest"

// Service implements the View gRPC API: the quota ledger and the view
// recorder that consumes it.
//
// Remaining quota is never stored. It is derived on every call as
// views_limit - count(profile_views where viewer = user).
type Service struct {
	appCtx     *app.AppContext
	moderation *repository.ModerationRepository
	payments   *repository.PaymentRepository
	views      *repository.ViewRepository
}

// NewViewService creates a new View service with dependencies from AppContext.
func NewViewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		moderation: repository.NewModerationRepository(appCtx.DB),
		payments:   repository.NewPaymentRepository(appCtx.DB),
		views:      repository.NewViewRepository(appCtx.DB),
	}
}

// Stats is the derived quota of a member.
type Stats struct {
	Limit     int64
	Consumed  int64
	Remaining int64
	Label     domain.StatusLabel
}

// Record charges viewer one unit of quota for opening target.
//
// Checks run in this order:
//  1. viewer == target → domain.ErrSelfView.
//  2. target must have an approved profile → domain.ErrNotFound.
//  3. latest payment pending, under_review or rejected → *domain.PaymentBlockedError.
//  4. remaining <= 0 → domain.ErrQuotaExceeded.
//  5. pair already charged → domain.ErrAlreadyViewed (soft: the profile may render).
//  6. insert the consumption row; losing a concurrent insert is also
//     reported as domain.ErrAlreadyViewed.
//
// The returned remaining count is valid with both a nil error and
// domain.ErrAlreadyViewed.
func (s *Service) Record(ctx context.Context, viewerID, targetID uint64) (int64, error) {
	if viewerID == targetID {
		return 0, domain.ErrSelfView
	}

	target, err := s.moderation.Get(ctx, targetID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, fmt.Errorf("profile %d: %w", targetID, domain.ErrNotFound)
		}
		return 0, domain.Store("load target moderation", err)
	}
	if !domain.ProfileStatus(target.ProfileStatus).Visible() {
		return 0, fmt.Errorf("profile %d: %w", targetID, domain.ErrNotFound)
	}

	if err := s.checkPayment(ctx, viewerID); err != nil {
		return 0, err
	}

	mod, err := s.viewerModeration(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	consumed, err := s.views.CountByViewer(ctx, viewerID)
	if err != nil {
		return 0, domain.Store("count views", err)
	}
	remaining := int64(mod.ViewsLimit) - consumed
	if remaining <= 0 {
		return 0, domain.ErrQuotaExceeded
	}

	seen, err := s.views.Exists(ctx, viewerID, targetID)
	if err != nil {
		return 0, domain.Store("check view", err)
	}
	if seen {
		return remaining, domain.ErrAlreadyViewed
	}

	inserted, err := s.views.Insert(ctx, viewerID, targetID)
	if err != nil {
		return 0, domain.Store("insert view", err)
	}
	if !inserted {
		return remaining, domain.ErrAlreadyViewed
	}
	return remaining - 1, nil
}

// Stats derives the quota of userID from raw records.
// A nil userID (anonymous) yields zero stats labelled "guest".
func (s *Service) Stats(ctx context.Context, userID *uint64) (Stats, error) {
	if userID == nil {
		return Stats{Label: domain.StatusLabel{Base: GuestLabel}}, nil
	}

	mod, err := s.viewerModeration(ctx, *userID)
	if err != nil {
		return Stats{}, err
	}
	consumed, err := s.views.CountByViewer(ctx, *userID)
	if err != nil {
		return Stats{}, domain.Store("count views", err)
	}

	label := domain.StatusLabel{Base: mod.SubscriptionStatus}
	latest, err := s.payments.Latest(ctx, *userID)
	switch {
	case err == nil:
		label.Annotation = domain.AnnotationFor(domain.PaymentStatus(latest.PaymentStatus))
	case !repository.IsNotFound(err):
		return Stats{}, domain.Store("load latest payment", err)
	}

	return Stats{
		Limit:     int64(mod.ViewsLimit),
		Consumed:  consumed,
		Remaining: max(0, int64(mod.ViewsLimit)-consumed),
		Label:     label,
	}, nil
}

// HasViewed reports whether viewer already paid for target.
func (s *Service) HasViewed(ctx context.Context, viewerID, targetID uint64) (bool, error) {
	ok, err := s.views.Exists(ctx, viewerID, targetID)
	return ok, domain.Store("check view", err)
}

// checkPayment blocks the viewer while their latest payment is unresolved.
func (s *Service) checkPayment(ctx context.Context, viewerID uint64) error {
	latest, err := s.payments.Latest(ctx, viewerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return domain.Store("load latest payment", err)
	}
	st := domain.PaymentStatus(latest.PaymentStatus)
	if !st.Blocks() {
		return nil
	}
	blocked := &domain.PaymentBlockedError{Status: st}
	if st == domain.PaymentRejected && latest.RejectionReason != nil {
		blocked.Reason = *latest.RejectionReason
	}
	return blocked
}

func (s *Service) viewerModeration(ctx context.Context, userID uint64) (*db.Moderation, error) {
	mod, err := s.moderation.Get(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("moderation record of user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, domain.Store("load moderation", err)
	}
	return mod, nil
}

// RecordView consumes one unit of quota for viewer → target.
//
// Behavior:
//   - Charged = true when a new consumption row was written.
//   - AlreadyViewed = true when the pair was paid for before; no charge,
//     the profile may still be shown.
//   - Self views, payment blocks and exhausted quota fail with
//     InvalidArgument, FailedPrecondition and ResourceExhausted.
//
// Example:
//
//	svc.RecordView(ctx, &rpc.RecordViewRequest{ViewerUserID: "1", TargetUserID: "2"})
func (s *Service) RecordView(ctx context.Context, req *rpc.RecordViewRequest) (*rpc.RecordViewResponse, error) {
	s.appCtx.Logger.Debug("RecordView called", "viewer", req.ViewerUserID, "target", req.TargetUserID)

	viewerID, err := rpc.ParseID("viewer_user_id", req.ViewerUserID)
	if err != nil {
		return nil, err
	}
	targetID, err := rpc.ParseID("target_user_id", req.TargetUserID)
	if err != nil {
		return nil, err
	}

	remaining, err := s.Record(ctx, viewerID, targetID)
	switch {
	case err == nil:
		return &rpc.RecordViewResponse{Charged: true, Remaining: remaining}, nil
	case errors.Is(err, domain.ErrAlreadyViewed):
		return &rpc.RecordViewResponse{AlreadyViewed: true, Remaining: remaining}, nil
	}

	s.appCtx.Logger.Info("RecordView refused", "viewer", viewerID, "target", targetID, "err", err)
	return nil, svcErr.Map(err)
}

// GetViewStats reports grant, consumption and remaining quota together with
// the structured subscription label and its display form.
//
// Example:
//
//	svc.GetViewStats(ctx, &rpc.GetViewStatsRequest{UserID: "42"})
func (s *Service) GetViewStats(ctx context.Context, req *rpc.GetViewStatsRequest) (*rpc.GetViewStatsResponse, error) {
	userID, err := rpc.ParseOptionalID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}

	st, err := s.Stats(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("GetViewStats failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}

	return &rpc.GetViewStatsResponse{
		Limit:     st.Limit,
		Consumed:  st.Consumed,
		Remaining: st.Remaining,
		Label: rpc.StatusLabel{
			Base:       st.Label.Base,
			Annotation: string(st.Label.Annotation),
		},
		Display: st.Label.String(),
	}, nil
}

// ListViewedProfiles returns the viewer's consumption log, newest first.
func (s *Service) ListViewedProfiles(ctx context.Context, req *rpc.ListViewedProfilesRequest) (*rpc.ListViewedProfilesResponse, error) {
	viewerID, err := rpc.ParseID("viewer_user_id", req.ViewerUserID)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.views.ListByViewer(ctx, viewerID, req.PageToken, s.appCtx.Config.PageSize)
	if err != nil {
		return nil, svcErr.Map(domain.Store("list views", err))
	}

	resp := &rpc.ListViewedProfilesResponse{NextPageToken: next}
	for _, v := range rows {
		resp.Views = append(resp.Views, &rpc.ViewedProfile{
			ProfileUserID: rpc.FormatID(v.ViewedProfileUserID),
			ViewedAtUnix:  v.ViewedAt.Unix(),
		})
	}
	return resp, nil
}
