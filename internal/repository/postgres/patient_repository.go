package postgres

import (
	"context"
	"errors"
	"fmt"
	"rehabDose/business/patient"
	"rehabDose/domain"
	"strconv"

	"gorm.io/gorm"
)

type PatientRepository struct {
	DB *gorm.DB
}

var _ patient.PatientRepository = (*PatientRepository)(nil)

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{
		DB: db,
	}
}

// NextID returns the first free numeric id after the current patient count.
func (r *PatientRepository) NextID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(&domain.Patient{}).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count patients: %w", err)
	}

	for n := count + 1; ; n++ {
		id := strconv.FormatInt(n, 10)

		var exists int64
		if err := r.DB.WithContext(ctx).Model(&domain.Patient{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return "", fmt.Errorf("failed to check patient id: %w", err)
		}
		if exists == 0 {
			return id, nil
		}
	}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}

	return nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id string) (domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return domain.Patient{}, fmt.Errorf("context error: %w", err)
	}

	var p domain.Patient

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Patient{}, domain.ErrPatientNotFound
		}
		return domain.Patient{}, fmt.Errorf("failed to find patient: %w", err)
	}

	return p, nil
}

func (r *PatientRepository) FindAll(ctx context.Context) ([]domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var patients []domain.Patient
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find patients: %w", err)
	}

	return patients, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"name":               p.Name,
		"budget":             p.Budget,
		"max_dose":           p.MaxDose,
		"age":                p.Age,
		"weeks_since_stroke": p.WeeksSinceStroke,
		"left_stroke":        p.LeftStroke,
		"male":               p.Male,
		"horizon":            p.Horizon,
		"past":               p.Past,
		"outcomes":           p.Outcomes,
		"actions":            p.Actions,
		"bayesian_alias":     p.BayesianAlias,
		"bayesian_uri":       p.BayesianURI,
		"sgld_alias":         p.SGLDAlias,
		"sgld_uri":           p.SGLDURI,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Patient{}).Where("id = ?", p.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update patient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPatientNotFound
	}

	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Patient{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete patient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPatientNotFound
	}

	return nil
}
