package db

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Profile is a member's identity and demographic attributes.
//
// Optional attributes are nullable; the fourteen returned by TrackedValues
// drive the completion score shown in listings.
type Profile struct {
	UserID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name          string    `gorm:"size:128;not null"`
	Email         string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash  string    `gorm:"size:255;not null"`
	Gender        *string   `gorm:"size:16"`
	Age           *int      `gorm:"default:null"`
	City          *string   `gorm:"size:64"`
	State         *string   `gorm:"size:64"`
	Country       *string   `gorm:"size:64"`
	Religion      *string   `gorm:"size:64"`
	Caste         *string   `gorm:"size:64"`
	MotherTongue  *string   `gorm:"size:64"`
	Education     *string   `gorm:"size:128"`
	Occupation    *string   `gorm:"size:128"`
	AnnualIncome  *string   `gorm:"size:64"`
	Height        *string   `gorm:"size:16"`
	MaritalStatus *string   `gorm:"size:32"`
	About         *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TrackedValues returns the completion-relevant attributes as strings.
// Missing values come back empty.
func (p *Profile) TrackedValues() []string {
	age := ""
	if p.Age != nil && *p.Age > 0 {
		age = strconv.Itoa(*p.Age)
	}
	return []string{
		deref(p.Gender), age, deref(p.City), deref(p.State), deref(p.Country),
		deref(p.Religion), deref(p.Caste), deref(p.MotherTongue), deref(p.Education),
		deref(p.Occupation), deref(p.AnnualIncome), deref(p.Height),
		deref(p.MaritalStatus), deref(p.About),
	}
}

// Photo is a reference to an image held by the external media store.
type Photo struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index:idx_photo_user_main,priority:1"`
	URL       string    `gorm:"size:512;not null"`
	IsMain    bool      `gorm:"not null;default:false;index:idx_photo_user_main,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Moderation is the 1:1 moderation and entitlement record of a profile.
//
// Indexes:
//   - uniq user_id: exactly one record per profile.
//   - idx_moderation_status(profile_status): the approved-ID scan in listings.
type Moderation struct {
	ID                 uint64     `gorm:"primaryKey;autoIncrement"`
	UserID             uint64     `gorm:"uniqueIndex;not null"`
	ProfileStatus      string     `gorm:"size:16;not null;default:pending;index:idx_moderation_status"`
	SubscriptionStatus string     `gorm:"size:32;not null;default:free"`
	ViewsLimit         int        `gorm:"not null;default:0"`
	VerifiedBadge      bool       `gorm:"not null;default:false"`
	BoostProfile       bool       `gorm:"not null;default:false"`
	BoostExpiresAt     *time.Time `gorm:"default:null"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

// Boosted reports whether the boost flag is set and not yet expired at now.
// A nil expiry means the boost was granted without a time box.
func (m *Moderation) Boosted(now time.Time) bool {
	if !m.BoostProfile {
		return false
	}
	return m.BoostExpiresAt == nil || m.BoostExpiresAt.After(now)
}

// Payment is one payment attempt and its review state.
//
// Indexes:
//   - uniq reference: handed to the gateway and used by its callback.
//   - idx_payment_user_created(user_id, created_at): latest payment lookup.
//   - idx_payment_status_created(payment_status, created_at, id): admin queue.
type Payment struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement;index:idx_payment_status_created,priority:3"`
	Reference       string          `gorm:"uniqueIndex;size:36;not null"`
	UserID          uint64          `gorm:"not null;index:idx_payment_user_created,priority:1"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PackageType     string          `gorm:"size:32;not null"`
	ViewsLimit      int             `gorm:"not null;default:0"`
	PaymentStatus   string          `gorm:"size:16;not null;default:pending;index:idx_payment_status_created,priority:1"`
	RejectionReason *string         `gorm:"size:512"`
	ScreenshotRef   *string         `gorm:"size:512"`
	ReviewedAt      *time.Time      `gorm:"default:null"`
	ReviewedBy      *uint64         `gorm:"default:null"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index:idx_payment_user_created,priority:2;index:idx_payment_status_created,priority:2"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

// ProfileView is a view-consumption record: viewer opened target's profile.
//
// Composite PK: (ViewerUserID, ViewedProfileUserID)
//   - A viewer is charged at most once per target, even under concurrent
//     inserts.
//
// Indexes:
//   - idx_viewed_profile(viewed_profile_user_id): inbound views and erasure.
type ProfileView struct {
	ViewerUserID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	ViewedProfileUserID uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_viewed_profile"`
	ViewedAt            time.Time `gorm:"autoCreateTime;not null"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&Profile{}, &Photo{}, &Moderation{}, &Payment{}, &ProfileView{}}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
