package entitlement

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	svcErr "github.com/oggyb/matrimony-core/internal/errors"
	"github.com/oggyb/matrimony-core/internal/repository"
	"github.com/oggyb/matrimony-core/internal/rpc"
)

// Service maps package and add-on purchases onto the moderation record:
// views_limit, subscription_status and the ranking flags.
//
// Two grant paths exist and keep different policies:
//   - Upgrade (admin or direct upgrade): subscription overwritten, views_limit
//     raised to the tier allowance but never lowered.
//   - ApplyPayment (accepted payment): subscription overwritten, the
//     payment's views_limit added on top of the current limit.
type Service struct {
	appCtx     *app.AppContext
	moderation *repository.ModerationRepository
}

// NewEntitlementService creates a new Entitlement service with dependencies from AppContext.
func NewEntitlementService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		moderation: repository.NewModerationRepository(appCtx.DB),
	}
}

// Upgrade applies the upgrade path for packageType.
func (s *Service) Upgrade(ctx context.Context, userID uint64, packageType string) (*db.Moderation, error) {
	pkg, err := domain.LookupPackage(packageType)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, "upgrade package", func(repo *repository.ModerationRepository, _ *db.Moderation) error {
		return repo.UpgradePackage(ctx, userID, pkg.ID, pkg.ViewsLimit)
	})
}

// ActivateAddon applies the add-on path for addonID.
//
// Behavior:
//   - verified_badge: badge on, permanent.
//   - boost_profile: boost on until now + BoostDays; a repeat purchase
//     restarts the window.
//   - extra_views_N: N views added to the current limit.
func (s *Service) ActivateAddon(ctx context.Context, userID uint64, addonID string) (*db.Moderation, error) {
	addon, err := domain.LookupAddon(addonID)
	if err != nil {
		return nil, err
	}
	m, err := s.mutate(ctx, userID, "activate addon", func(repo *repository.ModerationRepository, _ *db.Moderation) error {
		return s.activate(ctx, repo, userID, addon)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)
	return m, nil
}

// OverrideViewsLimit is the admin override; the only way views_limit can drop.
func (s *Service) OverrideViewsLimit(ctx context.Context, userID uint64, limit int) (*db.Moderation, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: views_limit must be >= 0", domain.ErrInvalidArgument)
	}
	return s.mutate(ctx, userID, "override views limit", func(repo *repository.ModerationRepository, current *db.Moderation) error {
		s.appCtx.Logger.Info("views_limit overridden", "user", userID, "from", current.ViewsLimit, "to", limit)
		return repo.SetViewsLimit(ctx, userID, limit)
	})
}

// ApplyPayment folds an accepted payment into its owner's moderation record.
// It runs inside the caller's transaction so a failure rolls back the review.
func (s *Service) ApplyPayment(ctx context.Context, tx *gorm.DB, p *db.Payment) error {
	repo := s.moderation.WithTx(tx)
	if _, err := repo.GetForUpdate(ctx, p.UserID); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("moderation record of user %d: %w", p.UserID, domain.ErrNotFound)
		}
		return domain.Store("load moderation", err)
	}

	if addon, err := domain.LookupAddon(p.PackageType); err == nil {
		return domain.Store("apply addon payment", s.activate(ctx, repo, p.UserID, addon))
	}
	pkg, err := domain.LookupPackage(p.PackageType)
	if err != nil {
		return err
	}
	return domain.Store("apply package payment", repo.AssignPackage(ctx, p.UserID, pkg.ID, p.ViewsLimit))
}

func (s *Service) activate(ctx context.Context, repo *repository.ModerationRepository, userID uint64, addon domain.Addon) error {
	switch addon.Effect {
	case domain.EffectVerifiedBadge:
		return repo.SetVerified(ctx, userID)
	case domain.EffectBoost:
		days := s.appCtx.Config.Entitlement.BoostDays
		return repo.SetBoost(ctx, userID, s.appCtx.Now().Add(time.Duration(days)*24*time.Hour))
	case domain.EffectExtraViews:
		return repo.AddViews(ctx, userID, addon.Views)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownAddon, addon.ID)
}

// mutate loads the record under lock, applies fn and returns the fresh row.
func (s *Service) mutate(
	ctx context.Context,
	userID uint64,
	op string,
	fn func(repo *repository.ModerationRepository, current *db.Moderation) error,
) (*db.Moderation, error) {
	var out *db.Moderation
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.moderation.WithTx(tx)
		current, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(repo, current); err != nil {
			return err
		}
		out, err = repo.Get(ctx, userID)
		return err
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("moderation record of user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, domain.Store(op, err)
	}
	return out, nil
}

func (s *Service) invalidateListings(ctx context.Context) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateFeatured(ctx); err != nil {
		s.appCtx.Logger.Warn("featured cache invalidation failed", "err", err)
	}
}

// GrantPackage is the gRPC entry point for the upgrade path.
func (s *Service) GrantPackage(ctx context.Context, req *rpc.GrantPackageRequest) (*rpc.ModerationResponse, error) {
	s.appCtx.Logger.Debug("GrantPackage called", "user", req.UserID, "package", req.PackageType)

	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	m, err := s.Upgrade(ctx, userID, req.PackageType)
	if err != nil {
		s.appCtx.Logger.Error("GrantPackage failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.ModerationResponse{Moderation: rpc.ModerationRecordFrom(m)}, nil
}

// GrantAddon is the gRPC entry point for the add-on path.
func (s *Service) GrantAddon(ctx context.Context, req *rpc.GrantAddonRequest) (*rpc.ModerationResponse, error) {
	s.appCtx.Logger.Debug("GrantAddon called", "user", req.UserID, "addon", req.AddonID)

	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	m, err := s.ActivateAddon(ctx, userID, req.AddonID)
	if err != nil {
		s.appCtx.Logger.Error("GrantAddon failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.ModerationResponse{Moderation: rpc.ModerationRecordFrom(m)}, nil
}

// SetViewsLimit is the gRPC entry point for the admin override.
func (s *Service) SetViewsLimit(ctx context.Context, req *rpc.SetViewsLimitRequest) (*rpc.ModerationResponse, error) {
	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	m, err := s.OverrideViewsLimit(ctx, userID, int(req.ViewsLimit))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &rpc.ModerationResponse{Moderation: rpc.ModerationRecordFrom(m)}, nil
}
