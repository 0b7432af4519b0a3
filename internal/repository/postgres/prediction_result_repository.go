package postgres

import (
	"context"
	"errors"
	"fmt"
	"rehabDose/business/patient"
	"rehabDose/business/prediction"
	"rehabDose/domain"

	"gorm.io/gorm"
)

type PredictionResultRepository struct {
	DB *gorm.DB
}

var (
	_ prediction.ResultRepository = (*PredictionResultRepository)(nil)
	_ patient.PatientDataCleaner  = (*PredictionResultRepository)(nil)
)

func NewPredictionResultRepository(db *gorm.DB) *PredictionResultRepository {
	return &PredictionResultRepository{DB: db}
}

func (r *PredictionResultRepository) Save(ctx context.Context, result *domain.PredictionResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to save prediction result: %w", err)
	}

	return nil
}

func (r *PredictionResultRepository) Latest(ctx context.Context, patientID, scheduleType string) (*domain.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var result domain.PredictionResult
	err := r.DB.WithContext(ctx).
		Where("patient_id = ? AND schedule_type = ?", patientID, scheduleType).
		Order("created_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction_results: %w", err)
	}

	return &result, nil
}

// DeleteForPatient removes every stored result of a patient.
func (r *PredictionResultRepository) DeleteForPatient(ctx context.Context, patientID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Where("patient_id = ?", patientID).Delete(&domain.PredictionResult{}).Error; err != nil {
		return fmt.Errorf("failed to delete prediction results: %w", err)
	}

	return nil
}
