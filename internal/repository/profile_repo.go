package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
)

// ProfileRepository provides data access for member profiles and their photos.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Register creates a profile together with its moderation record.
//
// Behavior:
//   - Both rows are written in one transaction.
//   - The moderation record starts as pending, free, with views_limit = 0.
//
// Example:
//
//	repo.Register(ctx, &db.Profile{Name: "Asha", Email: "asha@example.com"})
func (r *ProfileRepository) Register(ctx context.Context, p *db.Profile) (*db.Moderation, error) {
	mod := &db.Moderation{
		ProfileStatus:      string(domain.ProfilePending),
		SubscriptionStatus: domain.PackageFree,
		ViewsLimit:         0,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		mod.UserID = p.UserID
		return tx.Create(mod).Error
	})
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// Get loads a single profile. Returns gorm.ErrRecordNotFound when missing.
func (r *ProfileRepository) Get(ctx context.Context, userID uint64) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// EmailTaken reports whether a profile already uses email.
func (r *ProfileRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// FindByIDs loads the profiles for ids. Missing ids are silently skipped.
func (r *ProfileRepository) FindByIDs(ctx context.Context, ids []uint64) ([]db.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []db.Profile
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&profiles).Error
	return profiles, err
}

// MainPhotos returns the main photo URL per user for the given ids.
// Users without a main photo are absent from the map.
func (r *ProfileRepository) MainPhotos(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var photos []db.Photo
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND is_main = ?", ids, true).
		Order("id DESC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	for _, ph := range photos {
		if _, ok := out[ph.UserID]; !ok {
			out[ph.UserID] = ph.URL
		}
	}
	return out, nil
}

// AddPhoto stores an image reference. Setting IsMain demotes the previous
// main photo.
func (r *ProfileRepository) AddPhoto(ctx context.Context, photo *db.Photo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if photo.IsMain {
			if err := tx.Model(&db.Photo{}).
				Where("user_id = ? AND is_main = ?", photo.UserID, true).
				Update("is_main", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(photo).Error
	})
}

// Erase removes a member and everything hanging off it.
//
// Behavior:
//   - Deletes inbound and outbound view records, payments, photos, the
//     moderation record and the profile in one transaction.
//   - Returns gorm.ErrRecordNotFound when the profile does not exist.
func (r *ProfileRepository) Erase(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p db.Profile
		if err := tx.Select("user_id").First(&p, "user_id = ?", userID).Error; err != nil {
			return err
		}
		steps := []struct {
			model any
			where string
			args  []any
		}{
			{&db.ProfileView{}, "viewer_user_id = ? OR viewed_profile_user_id = ?", []any{userID, userID}},
			{&db.Payment{}, "user_id = ?", []any{userID}},
			{&db.Photo{}, "user_id = ?", []any{userID}},
			{&db.Moderation{}, "user_id = ?", []any{userID}},
			{&db.Profile{}, "user_id = ?", []any{userID}},
		}
		for _, s := range steps {
			if err := tx.Where(s.where, s.args...).Delete(s.model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
