package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	"github.com/oggyb/matrimony-core/internal/utils/pagination"
)

// PaymentRepository provides data access for the payment ledger.
// Rows are appended per attempt and only their review fields change.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new repository bound to the given DB connection.
func NewPaymentRepository(database *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create appends a payment attempt.
func (r *PaymentRepository) Create(ctx context.Context, p *db.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Get loads a payment by id. Returns gorm.ErrRecordNotFound when missing.
func (r *PaymentRepository) Get(ctx context.Context, id uint64) (*db.Payment, error) {
	var p db.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByReference loads a payment by its gateway reference.
func (r *PaymentRepository) GetByReference(ctx context.Context, ref string) (*db.Payment, error) {
	var p db.Payment
	if err := r.db.WithContext(ctx).First(&p, "reference = ?", ref).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Latest returns the user's most recent payment attempt.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC so same-instant inserts resolve to
//     the later row.
//   - Returns gorm.ErrRecordNotFound when the user never paid. Most members
//     never do, so the lookup goes through Find and stays out of the SQL
//     error log.
func (r *PaymentRepository) Latest(ctx context.Context, userID uint64) (*db.Payment, error) {
	var p db.Payment
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

// Save writes the mutable fields of an existing payment.
func (r *PaymentRepository) Save(ctx context.Context, p *db.Payment) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("payment_status", "rejection_reason", "screenshot_ref", "reviewed_at", "reviewed_by", "updated_at").
		Updates(p).Error
}

// List returns payments for the admin review queue, newest first.
// A nil status lists every payment.
func (r *PaymentRepository) List(
	ctx context.Context,
	status *domain.PaymentStatus,
	paginationToken *string,
	limit int,
) ([]db.Payment, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if status != nil {
		q = q.Where("payment_status = ?", string(*status))
	}
	if !cursor.IsZero() {
		ts := cursor.Time()
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", ts, ts, cursor.ID)
	}

	var rows []db.Payment
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	rows, next := pagination.Page(rows, limit, func(p db.Payment) pagination.Cursor {
		return pagination.After(p.ID, p.CreatedAt)
	})
	return rows, next, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
