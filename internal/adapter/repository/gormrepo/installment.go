package gormrepo

import (
	"context"
	"time"

	instDomain "flexemi-backend/internal/domain/installment"

	"gorm.io/gorm"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, items []instDomain.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *InstallmentRepository) GetByInstallmentID(ctx context.Context, installmentID string) (*instDomain.Installment, error) {
	var out instDomain.Installment
	if err := r.db.WithContext(ctx).Where("installment_id = ?", installmentID).First(&out).Error; err != nil {
		return nil, notFound(err, instDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]instDomain.Installment, error) {
	var out []instDomain.Installment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC, sequence ASC").
		Find(&out)
	return out, res.Error
}

// Transition only touches the row while it is still in `from`, so of two
// racing writers exactly one sees RowsAffected == 1.
func (r *InstallmentRepository) Transition(ctx context.Context, id uint64, from, to instDomain.Status, paidAt *time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&instDomain.Installment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"paid_at":    paidAt,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *InstallmentRepository) CountNotPaid(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&instDomain.Installment{}).
		Where("loan_id = ? AND status <> ?", loanID, instDomain.StatusPaid).
		Count(&n)
	return n, res.Error
}
