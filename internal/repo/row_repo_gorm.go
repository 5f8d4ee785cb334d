package repo

import (
	"gorm.io/gorm"

	"memorial-records-api/internal/domain"
)

type RowRepo struct{ db *gorm.DB }

func NewRowRepo(db *gorm.DB) *RowRepo { return &RowRepo{db: db} }

func (r *RowRepo) List(offset, limit int) ([]domain.Row, error) {
	var rows []domain.Row
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *RowRepo) ReplaceAll(rows []domain.Row) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Row{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 1000).Error
	})
}
