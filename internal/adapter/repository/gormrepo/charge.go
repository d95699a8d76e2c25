package gormrepo

import (
	"context"

	chargeDomain "flexemi-backend/internal/domain/charge"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChargeRepository struct{ db *gorm.DB }

func NewChargeRepository(db *gorm.DB) *ChargeRepository { return &ChargeRepository{db: db} }

func (r *ChargeRepository) Create(ctx context.Context, c *chargeDomain.Charge) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// CreateIfAbsent leans on ux_charges_loan_kind_due: a concurrent insert for the
// same (loan, kind, due date) is dropped by the database, not by a pre-read.
func (r *ChargeRepository) CreateIfAbsent(ctx context.Context, c *chargeDomain.Charge) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	return res.RowsAffected > 0, res.Error
}

func (r *ChargeRepository) ListByLoan(ctx context.Context, loanID uint64) ([]chargeDomain.Charge, error) {
	var out []chargeDomain.Charge
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("charged_on ASC, id ASC").
		Find(&out)
	return out, res.Error
}
