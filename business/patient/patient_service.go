package patient

import (
	"context"
	"fmt"
	"math"
	"rehabDose/domain"
	"rehabDose/pkg/logger"
	"strings"
)

const (
	modelKindBayes = "bayes"
	modelKindSGLD  = "SGLD"
)

// PatientRepository contract interface
type PatientRepository interface {
	NextID(ctx context.Context) (string, error)
	Create(ctx context.Context, patient *domain.Patient) error
	FindByID(ctx context.Context, id string) (domain.Patient, error)
	FindAll(ctx context.Context) ([]domain.Patient, error)
	Update(ctx context.Context, patient *domain.Patient) error
	Delete(ctx context.Context, id string) error
}

// ParamSeeder creates and refreshes the parameter iterations tied to a model alias.
type ParamSeeder interface {
	SeedDefaults(ctx context.Context, patientID, modelID string) error
	Regenerate(ctx context.Context, patientID, modelID string, base *domain.ModelParameters) ([]domain.ModelParamSet, error)
}

// RecommendationInvalidator drops cached recommendations that a patient change made stale.
type RecommendationInvalidator interface {
	Invalidate(ctx context.Context, patientID string) error
}

// PatientDataCleaner removes rows keyed by a deleted patient.
type PatientDataCleaner interface {
	DeleteForPatient(ctx context.Context, patientID string) error
}

// PatientUpdate carries the editable fields of a full patient update.
type PatientUpdate struct {
	Name             string
	Budget           float64
	MaxDose          float64
	Age              int
	WeeksSinceStroke int
	LeftStroke       bool
	Male             bool
	Horizon          int
	Outcomes         []float64
	Actions          []float64
	SGLD             bool
}

type patientService struct {
	patientRepo PatientRepository
	paramSeeder ParamSeeder
	invalidator RecommendationInvalidator
	cleaners    []PatientDataCleaner
}

func NewPatientService(patientRepo PatientRepository, paramSeeder ParamSeeder) *patientService {
	return &patientService{
		patientRepo: patientRepo,
		paramSeeder: paramSeeder,
	}
}

// WithInvalidator enables cache invalidation on update and delete.
func (s *patientService) WithInvalidator(invalidator RecommendationInvalidator) *patientService {
	s.invalidator = invalidator
	return s
}

// WithCleaners registers stores whose patient rows go away on delete.
func (s *patientService) WithCleaners(cleaners ...PatientDataCleaner) *patientService {
	s.cleaners = append(s.cleaners, cleaners...)
	return s
}

func (s *patientService) invalidate(ctx context.Context, id string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, id); err != nil {
		logger.Warn("failed to invalidate cached recommendation", "patient_id", id, "error", err)
	}
}

func (s *patientService) GetAllPatients(ctx context.Context) ([]domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	patients, err := s.patientRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all patients", "error", err)
		return nil, err
	}

	return patients, nil
}

func (s *patientService) GetPatientByID(ctx context.Context, id string) (domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return domain.Patient{}, fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(id) == "" {
		return domain.Patient{}, fmt.Errorf("%w: id is required", domain.ErrInvalidPatient)
	}

	patient, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find patient", "patient_id", id, "error", err)
		return domain.Patient{}, err
	}

	return patient, nil
}

func (s *patientService) CreatePatient(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validatePatient(patient); err != nil {
		logger.Error("Invalid patient data", "error", err)
		return nil, err
	}

	id, err := s.patientRepo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate patient id: %w", err)
	}

	patient.ID = id
	patient.BayesianAlias = domain.ModelAlias(id, patient.Name, modelKindBayes, 1)
	patient.SGLDAlias = domain.ModelAlias(id, patient.Name, modelKindSGLD, 1)

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		logger.Error("failed to create new patient", "error", err)
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if s.paramSeeder != nil {
		if err := s.paramSeeder.SeedDefaults(ctx, id, patient.BayesianAlias); err != nil {
			// predictions fall back to default parameters
			logger.Warn("failed to seed model parameters", "patient_id", id, "error", err)
		}
	}

	logger.Info("patient created successfully", "patient_id", id, "alias", patient.BayesianAlias)

	return patient, nil
}

// UpdatePatient applies a full update and rolls the model alias forward, standing in
// for a retrain: the parameter iterations are re-perturbed under the new alias.
func (s *patientService) UpdatePatient(ctx context.Context, id string, update PatientUpdate) (*domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	patient, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("patient not found", "patient_id", id, "error", err)
		return nil, err
	}

	if update.Name != "" {
		patient.Name = update.Name
	}
	patient.Budget = update.Budget
	patient.MaxDose = update.MaxDose
	patient.Age = update.Age
	patient.WeeksSinceStroke = update.WeeksSinceStroke
	patient.LeftStroke = update.LeftStroke
	patient.Male = update.Male
	patient.Horizon = update.Horizon
	if update.Outcomes != nil {
		patient.Outcomes = update.Outcomes
	}
	if update.Actions != nil {
		patient.Actions = update.Actions
	}

	if err := validatePatient(&patient); err != nil {
		return nil, err
	}

	if update.SGLD {
		patient.SGLDAlias = domain.NextAliasVersion(patient.SGLDAlias)
	}
	patient.BayesianAlias = domain.NextAliasVersion(patient.BayesianAlias)

	if err := s.patientRepo.Update(ctx, &patient); err != nil {
		logger.Error("failed to update patient", "patient_id", id, "error", err)
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	if s.paramSeeder != nil {
		if _, err := s.paramSeeder.Regenerate(ctx, id, patient.BayesianAlias, nil); err != nil {
			logger.Warn("failed to regenerate model parameters", "patient_id", id, "error", err)
		}
	}

	s.invalidate(ctx, id)

	logger.Info("patient updated successfully", "patient_id", id, "alias", patient.BayesianAlias)

	return &patient, nil
}

// UpdateHorizon changes the prediction horizon without touching the model.
func (s *patientService) UpdateHorizon(ctx context.Context, id string, horizon int) (*domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("%w: horizon must not be negative", domain.ErrInvalidPatient)
	}

	patient, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient.Horizon = horizon
	if err := s.patientRepo.Update(ctx, &patient); err != nil {
		return nil, fmt.Errorf("failed to update patient info: %w", err)
	}

	s.invalidate(ctx, id)

	return &patient, nil
}

// UpdateHistory replaces the observed outcome and dose history.
func (s *patientService) UpdateHistory(ctx context.Context, id string, outcomes, actions []float64) (*domain.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	patient, err := s.patientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient.Outcomes = outcomes
	patient.Actions = actions
	if err := validatePatient(&patient); err != nil {
		return nil, err
	}

	if err := s.patientRepo.Update(ctx, &patient); err != nil {
		return nil, fmt.Errorf("failed to update patient history: %w", err)
	}

	s.invalidate(ctx, id)

	return &patient, nil
}

func (s *patientService) DeletePatient(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.patientRepo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.patientRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete patient", "patient_id", id, "error", err)
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.invalidate(ctx, id)

	for _, cleaner := range s.cleaners {
		if err := cleaner.DeleteForPatient(ctx, id); err != nil {
			logger.Warn("failed to delete patient data", "patient_id", id, "error", err)
		}
	}

	logger.Info("patient deleted successfully", "patient_id", id)

	return nil
}

func validatePatient(p *domain.Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidPatient)
	}
	if p.Budget < 0 || p.MaxDose < 0 {
		return fmt.Errorf("%w: budget and max dose must not be negative", domain.ErrInvalidPatient)
	}
	if p.Horizon < 0 {
		return fmt.Errorf("%w: horizon must not be negative", domain.ErrInvalidPatient)
	}
	for _, y := range p.Outcomes {
		if math.IsNaN(y) || y < 0 || y > 5 {
			return fmt.Errorf("%w: outcomes must lie in [0, 5]", domain.ErrInvalidPatient)
		}
	}
	for _, d := range p.Actions {
		if math.IsNaN(d) || d < 0 {
			return fmt.Errorf("%w: actions must not be negative", domain.ErrInvalidPatient)
		}
	}
	return nil
}
