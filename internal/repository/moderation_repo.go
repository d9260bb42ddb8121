package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	"github.com/oggyb/matrimony-core/internal/utils/pagination"
)

// ModerationRepository provides data access for moderation records: the
// approval state of a profile and the entitlements read by quota checks.
type ModerationRepository struct {
	db *gorm.DB
}

// NewModerationRepository creates a new repository bound to the given DB connection.
func NewModerationRepository(database *gorm.DB) *ModerationRepository {
	return &ModerationRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ModerationRepository) WithTx(tx *gorm.DB) *ModerationRepository {
	return &ModerationRepository{db: tx}
}

// Get loads the moderation record of a profile.
// Returns gorm.ErrRecordNotFound when missing.
func (r *ModerationRepository) Get(ctx context.Context, userID uint64) (*db.Moderation, error) {
	var m db.Moderation
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetForUpdate loads the record with a row lock. Intended for use inside a
// transaction; SQLite ignores the locking clause.
func (r *ModerationRepository) GetForUpdate(ctx context.Context, userID uint64) (*db.Moderation, error) {
	var m db.Moderation
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMany loads moderation records keyed by user id.
func (r *ModerationRepository) GetMany(ctx context.Context, ids []uint64) (map[uint64]db.Moderation, error) {
	out := make(map[uint64]db.Moderation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []db.Moderation
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.UserID] = m
	}
	return out, nil
}

// ApprovedUserIDs returns the ids of approved profiles.
//
// Behavior:
//   - Only profile_status = approved qualifies; every other state is excluded.
//   - excludeID, when set, is removed from the result (self exclusion).
//   - limit > 0 caps the result before any profile data is loaded.
//   - Ordered by most recently moderated first, user_id DESC as tie-break.
//
// Example:
//
//	repo.ApprovedUserIDs(ctx, &viewerID, 10)
func (r *ModerationRepository) ApprovedUserIDs(ctx context.Context, excludeID *uint64, limit int) ([]uint64, error) {
	var ids []uint64
	q := r.db.WithContext(ctx).
		Model(&db.Moderation{}).
		Where("profile_status = ?", string(domain.ProfileApproved))
	if excludeID != nil {
		q = q.Where("user_id <> ?", *excludeID)
	}
	q = q.Order("updated_at DESC, user_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SetStatus writes a new profile_status and stamps updated_at.
func (r *ModerationRepository) SetStatus(ctx context.Context, userID uint64, status domain.ProfileStatus, at time.Time) error {
	return r.update(ctx, userID, map[string]any{
		"profile_status": string(status),
		"updated_at":     at,
	})
}

// ListByStatus returns moderation records in the given state, most recently
// updated first, with cursor-based pagination.
func (r *ModerationRepository) ListByStatus(
	ctx context.Context,
	status domain.ProfileStatus,
	paginationToken *string,
	limit int,
) ([]db.Moderation, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Where("profile_status = ?", string(status)).
		Order("updated_at DESC, user_id DESC").
		Limit(limit + 1)
	if !cursor.IsZero() {
		ts := cursor.Time()
		q = q.Where("(updated_at < ? OR (updated_at = ? AND user_id < ?))", ts, ts, cursor.ID)
	}

	var rows []db.Moderation
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	rows, next := pagination.Page(rows, limit, func(m db.Moderation) pagination.Cursor {
		return pagination.After(m.UserID, m.UpdatedAt)
	})
	return rows, next, nil
}

// AssignPackage is the payment-acceptance fold: overwrite the subscription
// and add the accepted grant on top of the current limit.
func (r *ModerationRepository) AssignPackage(ctx context.Context, userID uint64, pkg string, addViews int) error {
	return r.update(ctx, userID, map[string]any{
		"subscription_status": pkg,
		"views_limit":         gorm.Expr("views_limit + ?", addViews),
	})
}

// UpgradePackage is the direct upgrade path: overwrite the subscription and
// raise views_limit to the tier allowance when it is below it.
func (r *ModerationRepository) UpgradePackage(ctx context.Context, userID uint64, pkg string, tierViews int) error {
	return r.update(ctx, userID, map[string]any{
		"subscription_status": pkg,
		"views_limit":         gorm.Expr("CASE WHEN views_limit < ? THEN ? ELSE views_limit END", tierViews, tierViews),
	})
}

// AddViews increments views_limit by n.
func (r *ModerationRepository) AddViews(ctx context.Context, userID uint64, n int) error {
	return r.update(ctx, userID, map[string]any{
		"views_limit": gorm.Expr("views_limit + ?", n),
	})
}

// SetViewsLimit overwrites views_limit. Admin override only.
func (r *ModerationRepository) SetViewsLimit(ctx context.Context, userID uint64, n int) error {
	return r.update(ctx, userID, map[string]any{"views_limit": n})
}

// SetVerified turns the verified badge on.
func (r *ModerationRepository) SetVerified(ctx context.Context, userID uint64) error {
	return r.update(ctx, userID, map[string]any{"verified_badge": true})
}

// SetBoost turns the boost flag on until expiresAt.
func (r *ModerationRepository) SetBoost(ctx context.Context, userID uint64, expiresAt time.Time) error {
	return r.update(ctx, userID, map[string]any{
		"boost_profile":    true,
		"boost_expires_at": expiresAt,
	})
}

func (r *ModerationRepository) update(ctx context.Context, userID uint64, values map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&db.Moderation{}).
		Where("user_id = ?", userID).
		Updates(values).Error
}
