package modelparams

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"rehabDose/domain"
	"rehabDose/pkg/logger"
	"sync"
)

const (
	defaultIterations = 5
	defaultMaxDiff    = 0.05
)

// ParamRepository contract interface
type ParamRepository interface {
	FindByPatient(ctx context.Context, patientID string) ([]domain.ModelParamSet, error)
	ReplaceForPatient(ctx context.Context, patientID string, sets []domain.ModelParamSet) error
}

// PatientLookup reports whether a patient exists. FindByID returns
// domain.ErrPatientNotFound for unknown ids.
type PatientLookup interface {
	FindByID(ctx context.Context, id string) (domain.Patient, error)
}

// RecommendationInvalidator drops cached recommendations built on replaced params.
type RecommendationInvalidator interface {
	Invalidate(ctx context.Context, patientID string) error
}

type Option func(*ParamService)

// WithPatients makes writes fail for unknown patients.
func WithPatients(patients PatientLookup) Option {
	return func(s *ParamService) {
		s.patients = patients
	}
}

// WithInvalidator drops the patient's cached recommendation after every write.
func WithInvalidator(invalidator RecommendationInvalidator) Option {
	return func(s *ParamService) {
		s.invalidator = invalidator
	}
}

// WithRand fixes the perturbation source.
func WithRand(rng *rand.Rand) Option {
	return func(s *ParamService) {
		s.rng = rng
	}
}

// WithMaxDiff sets the half-width of the uniform perturbation applied to a, b and c.
func WithMaxDiff(maxDiff float64) Option {
	return func(s *ParamService) {
		if maxDiff >= 0 {
			s.maxDiff = maxDiff
		}
	}
}

// ParamService keeps the per-patient parameter iterations that stand in for
// posterior draws of a fitted model.
type ParamService struct {
	repo        ParamRepository
	patients    PatientLookup
	invalidator RecommendationInvalidator
	iterations  int
	maxDiff     float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewParamService(repo ParamRepository, iterations int, opts ...Option) *ParamService {
	if iterations <= 0 {
		iterations = defaultIterations
	}

	s := &ParamService{
		repo:       repo,
		iterations: iterations,
		maxDiff:    defaultMaxDiff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return s
}

// GetParamSets returns every stored iteration, or the defaults when none exist.
func (s *ParamService) GetParamSets(ctx context.Context, patientID string) ([]domain.ModelParameters, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	sets, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load model params: %w", err)
	}

	if len(sets) == 0 {
		return []domain.ModelParameters{domain.DefaultModelParameters()}, nil
	}

	params := make([]domain.ModelParameters, 0, len(sets))
	for _, set := range sets {
		params = append(params, set.Params.Data())
	}

	return params, nil
}

// GetRandomParams picks one stored iteration at random. ok is false when the
// patient has no iterations yet.
func (s *ParamService) GetRandomParams(ctx context.Context, patientID string) (domain.ModelParameters, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModelParameters{}, false, fmt.Errorf("context error: %w", err)
	}

	sets, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return domain.ModelParameters{}, false, fmt.Errorf("failed to load model params: %w", err)
	}

	if len(sets) == 0 {
		return domain.ModelParameters{}, false, nil
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(sets))
	s.mu.Unlock()

	return sets[idx].Params.Data(), true, nil
}

// GetStoredSets returns the raw iterations, failing with ErrNoParams when empty.
func (s *ParamService) GetStoredSets(ctx context.Context, patientID string) ([]domain.ModelParamSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	sets, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load model params: %w", err)
	}
	if len(sets) == 0 {
		return nil, domain.ErrNoParams
	}

	return sets, nil
}

// SetParams overwrites every iteration with the same parameters. A patient
// without iterations gets a single one.
func (s *ParamService) SetParams(ctx context.Context, patientID string, params domain.ModelParameters) ([]domain.ModelParamSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load model params: %w", err)
	}

	modelID := ""
	count := 1
	if len(existing) > 0 {
		modelID = existing[0].ModelID
		count = len(existing)
	}

	sets := make([]domain.ModelParamSet, count)
	for i := range sets {
		sets[i] = domain.NewModelParamSet(patientID, modelID, i, params)
	}

	if err := s.repo.ReplaceForPatient(ctx, patientID, sets); err != nil {
		logger.Error("failed to store model params", "patient_id", patientID, "error", err)
		return nil, fmt.Errorf("failed to store model params: %w", err)
	}

	s.invalidate(ctx, patientID)

	return sets, nil
}

// SeedDefaults writes a fresh set of iterations around the default parameters.
func (s *ParamService) SeedDefaults(ctx context.Context, patientID, modelID string) error {
	base := domain.DefaultModelParameters()
	_, err := s.Regenerate(ctx, patientID, modelID, &base)
	return err
}

// Regenerate replaces the iterations with perturbed copies of base. A nil base
// reuses the first stored iteration, or the defaults; an empty modelID keeps the
// stored one. Iteration 0 is base itself.
func (s *ParamService) Regenerate(ctx context.Context, patientID, modelID string, base *domain.ModelParameters) ([]domain.ModelParamSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load model params: %w", err)
	}

	center := domain.DefaultModelParameters()
	switch {
	case base != nil:
		center = *base
	case len(existing) > 0:
		center = existing[0].Params.Data()
	}
	if modelID == "" && len(existing) > 0 {
		modelID = existing[0].ModelID
	}

	sets := make([]domain.ModelParamSet, s.iterations)
	sets[0] = domain.NewModelParamSet(patientID, modelID, 0, center)
	for i := 1; i < s.iterations; i++ {
		sets[i] = domain.NewModelParamSet(patientID, modelID, i, s.perturb(center))
	}

	if err := s.repo.ReplaceForPatient(ctx, patientID, sets); err != nil {
		logger.Error("failed to store model params", "patient_id", patientID, "error", err)
		return nil, fmt.Errorf("failed to store model params: %w", err)
	}

	s.invalidate(ctx, patientID)

	logger.Debug("model params regenerated", "patient_id", patientID, "model_id", modelID, "iterations", s.iterations)

	return sets, nil
}

// DeleteForPatient removes every iteration of a deleted patient.
func (s *ParamService) DeleteForPatient(ctx context.Context, patientID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.repo.ReplaceForPatient(ctx, patientID, nil); err != nil {
		return fmt.Errorf("failed to delete model params: %w", err)
	}

	return nil
}

func (s *ParamService) checkPatient(ctx context.Context, patientID string) error {
	if s.patients == nil {
		return nil
	}
	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		return err
	}
	return nil
}

func (s *ParamService) invalidate(ctx context.Context, patientID string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, patientID); err != nil {
		logger.Warn("failed to invalidate cached recommendation", "patient_id", patientID, "error", err)
	}
}

func (s *ParamService) perturb(p domain.ModelParameters) domain.ModelParameters {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.A = round3(p.A + s.uniform())
	p.B = round3(p.B + s.uniform())
	p.C = round3(p.C + s.uniform())
	return p
}

func (s *ParamService) uniform() float64 {
	return (s.rng.Float64()*2 - 1) * s.maxDiff
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
