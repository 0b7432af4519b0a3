//go:build !integration

package prediction

import (
	"context"
	"time"

	"rehabDose/domain"
)

type mockPatientRepo struct {
	FindByIDFunc func(ctx context.Context, id string) (domain.Patient, error)
}

func (m *mockPatientRepo) FindByID(ctx context.Context, id string) (domain.Patient, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return domain.Patient{}, domain.ErrPatientNotFound
}

type mockParamStore struct {
	GetRandomParamsFunc func(ctx context.Context, patientID string) (domain.ModelParameters, bool, error)
	GetParamSetsFunc    func(ctx context.Context, patientID string) ([]domain.ModelParameters, error)
}

func (m *mockParamStore) GetRandomParams(ctx context.Context, patientID string) (domain.ModelParameters, bool, error) {
	if m.GetRandomParamsFunc != nil {
		return m.GetRandomParamsFunc(ctx, patientID)
	}
	return domain.ModelParameters{}, false, nil
}

func (m *mockParamStore) GetParamSets(ctx context.Context, patientID string) ([]domain.ModelParameters, error) {
	if m.GetParamSetsFunc != nil {
		return m.GetParamSetsFunc(ctx, patientID)
	}
	return []domain.ModelParameters{domain.DefaultModelParameters()}, nil
}

type mockResultRepo struct {
	SaveFunc   func(ctx context.Context, result *domain.PredictionResult) error
	LatestFunc func(ctx context.Context, patientID, scheduleType string) (*domain.PredictionResult, error)

	saved []*domain.PredictionResult
}

func (m *mockResultRepo) Save(ctx context.Context, result *domain.PredictionResult) error {
	m.saved = append(m.saved, result)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, result)
	}
	return nil
}

func (m *mockResultRepo) Latest(ctx context.Context, patientID, scheduleType string) (*domain.PredictionResult, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, patientID, scheduleType)
	}
	return nil, nil
}

type mockCache struct {
	GetRecommendedFunc func(ctx context.Context, patientID string) (*domain.Prediction, error)
	SetRecommendedFunc func(ctx context.Context, patientID string, pred domain.Prediction, ttl time.Duration) error
}

func (m *mockCache) GetRecommended(ctx context.Context, patientID string) (*domain.Prediction, error) {
	if m.GetRecommendedFunc != nil {
		return m.GetRecommendedFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *mockCache) SetRecommended(ctx context.Context, patientID string, pred domain.Prediction, ttl time.Duration) error {
	if m.SetRecommendedFunc != nil {
		return m.SetRecommendedFunc(ctx, patientID, pred, ttl)
	}
	return nil
}

type mockSimulator struct {
	PredictRecommendedFunc func(ctx context.Context, yInit, budget float64, horizon int, maxDose float64, params domain.ModelParameters) (domain.Prediction, error)
	PredictManualFunc      func(ctx context.Context, yInit float64, futureDoses []float64, params []domain.ModelParameters, recommended *domain.Prediction) (domain.ManualPrediction, error)
}

func (m *mockSimulator) PredictRecommended(ctx context.Context, yInit, budget float64, horizon int, maxDose float64, params domain.ModelParameters) (domain.Prediction, error) {
	if m.PredictRecommendedFunc != nil {
		return m.PredictRecommendedFunc(ctx, yInit, budget, horizon, maxDose, params)
	}
	return domain.Prediction{}, nil
}

func (m *mockSimulator) PredictManual(ctx context.Context, yInit float64, futureDoses []float64, params []domain.ModelParameters, recommended *domain.Prediction) (domain.ManualPrediction, error) {
	if m.PredictManualFunc != nil {
		return m.PredictManualFunc(ctx, yInit, futureDoses, params, recommended)
	}
	return domain.ManualPrediction{}, nil
}
