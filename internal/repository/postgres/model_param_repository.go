package postgres

import (
	"context"
	"fmt"
	"rehabDose/business/modelparams"
	"rehabDose/domain"

	"gorm.io/gorm"
)

type ModelParamRepository struct {
	DB *gorm.DB
}

var _ modelparams.ParamRepository = (*ModelParamRepository)(nil)

func NewModelParamRepository(db *gorm.DB) *ModelParamRepository {
	return &ModelParamRepository{DB: db}
}

func (r *ModelParamRepository) FindByPatient(ctx context.Context, patientID string) ([]domain.ModelParamSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var sets []domain.ModelParamSet
	err := r.DB.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("iteration ASC").
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query model_param_sets: %w", err)
	}

	return sets, nil
}

// ReplaceForPatient swaps the patient's iterations in one transaction.
func (r *ModelParamRepository) ReplaceForPatient(ctx context.Context, patientID string, sets []domain.ModelParamSet) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ?", patientID).Delete(&domain.ModelParamSet{}).Error; err != nil {
			return fmt.Errorf("failed to clear model params: %w", err)
		}
		if len(sets) == 0 {
			return nil
		}
		if err := tx.Create(&sets).Error; err != nil {
			return fmt.Errorf("failed to insert model params: %w", err)
		}
		return nil
	})
}
