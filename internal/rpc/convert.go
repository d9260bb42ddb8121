package rpc

import (
	"github.com/oggyb/matrimony-core/internal/db"
)

func ModerationRecordFrom(m *db.Moderation) *ModerationRecord {
	if m == nil {
		return nil
	}
	return &ModerationRecord{
		UserID:             FormatID(m.UserID),
		ProfileStatus:      m.ProfileStatus,
		SubscriptionStatus: m.SubscriptionStatus,
		ViewsLimit:         int64(m.ViewsLimit),
		VerifiedBadge:      m.VerifiedBadge,
		BoostProfile:       m.BoostProfile,
		BoostExpiresAtUnix: Unix(m.BoostExpiresAt),
		UpdatedAtUnix:      m.UpdatedAt.Unix(),
	}
}

func PaymentFrom(p *db.Payment) *Payment {
	if p == nil {
		return nil
	}
	out := &Payment{
		ID:             FormatID(p.ID),
		Reference:      p.Reference,
		UserID:         FormatID(p.UserID),
		Amount:         p.Amount.StringFixed(2),
		PackageType:    p.PackageType,
		ViewsLimit:     int64(p.ViewsLimit),
		Status:         p.PaymentStatus,
		ReviewedAtUnix: Unix(p.ReviewedAt),
		CreatedAtUnix:  p.CreatedAt.Unix(),
	}
	if p.RejectionReason != nil {
		out.RejectionReason = *p.RejectionReason
	}
	if p.ScreenshotRef != nil {
		out.ScreenshotRef = *p.ScreenshotRef
	}
	if p.ReviewedBy != nil {
		out.ReviewedBy = FormatID(*p.ReviewedBy)
	}
	return out
}
