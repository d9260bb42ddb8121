package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/utils/pagination"
)

// ViewRepository provides data access for the append-only view-consumption
// log. Remaining quota is always derived from it, never stored.
type ViewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a new repository bound to the given DB connection.
func NewViewRepository(database *gorm.DB) *ViewRepository {
	return &ViewRepository{db: database}
}

// Insert records that viewer opened target.
//
// Behavior:
//   - The composite PK (viewer_user_id, viewed_profile_user_id) makes the
//     insert a no-op if the pair exists, including under concurrent calls.
//   - Returns inserted = false when the row was already there.
//
// Example:
//
//	repo.Insert(ctx, 1, 2) // -> true the first time, false afterwards
func (r *ViewRepository) Insert(ctx context.Context, viewerID, targetID uint64) (bool, error) {
	view := db.ProfileView{
		ViewerUserID:        viewerID,
		ViewedProfileUserID: targetID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_user_id"}, {Name: "viewed_profile_user_id"}},
			DoNothing: true,
		}).
		Create(&view)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists checks whether viewer has already been charged for target.
func (r *ViewRepository) Exists(ctx context.Context, viewerID, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ProfileView{}).
		Where("viewer_user_id = ? AND viewed_profile_user_id = ?", viewerID, targetID).
		Count(&count).Error
	return count > 0, err
}

// CountByViewer returns how many distinct profiles viewer has consumed quota on.
func (r *ViewRepository) CountByViewer(ctx context.Context, viewerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ProfileView{}).
		Where("viewer_user_id = ?", viewerID).
		Count(&count).Error
	return count, err
}

// ListByViewer returns the viewer's consumption log, newest first, with
// cursor-based pagination.
func (r *ViewRepository) ListByViewer(
	ctx context.Context,
	viewerID uint64,
	paginationToken *string,
	limit int,
) ([]db.ProfileView, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Where("viewer_user_id = ?", viewerID).
		Order("viewed_at DESC, viewed_profile_user_id DESC").
		Limit(limit + 1)
	if !cursor.IsZero() {
		ts := cursor.Time()
		q = q.Where(
			"(viewed_at < ? OR (viewed_at = ? AND viewed_profile_user_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var views []db.ProfileView
	if err := q.Find(&views).Error; err != nil {
		return nil, nil, err
	}
	views, next := pagination.Page(views, limit, func(v db.ProfileView) pagination.Cursor {
		return pagination.After(v.ViewedProfileUserID, v.ViewedAt)
	})
	return views, next, nil
}
