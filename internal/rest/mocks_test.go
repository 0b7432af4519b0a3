//go:build !integration

package rest

import (
	"context"

	"rehabDose/business/patient"
	"rehabDose/business/prediction"
	"rehabDose/domain"
)

type mockPatientService struct {
	GetAllPatientsFunc func(ctx context.Context) ([]domain.Patient, error)
	GetPatientByIDFunc func(ctx context.Context, id string) (domain.Patient, error)
	CreatePatientFunc  func(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	UpdatePatientFunc  func(ctx context.Context, id string, update patient.PatientUpdate) (*domain.Patient, error)
	UpdateHorizonFunc  func(ctx context.Context, id string, horizon int) (*domain.Patient, error)
	UpdateHistoryFunc  func(ctx context.Context, id string, outcomes, actions []float64) (*domain.Patient, error)
	DeletePatientFunc  func(ctx context.Context, id string) error
}

func (m *mockPatientService) GetAllPatients(ctx context.Context) ([]domain.Patient, error) {
	if m.GetAllPatientsFunc != nil {
		return m.GetAllPatientsFunc(ctx)
	}
	return nil, nil
}

func (m *mockPatientService) GetPatientByID(ctx context.Context, id string) (domain.Patient, error) {
	if m.GetPatientByIDFunc != nil {
		return m.GetPatientByIDFunc(ctx, id)
	}
	return domain.Patient{}, domain.ErrPatientNotFound
}

func (m *mockPatientService) CreatePatient(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	if m.CreatePatientFunc != nil {
		return m.CreatePatientFunc(ctx, p)
	}
	return p, nil
}

func (m *mockPatientService) UpdatePatient(ctx context.Context, id string, update patient.PatientUpdate) (*domain.Patient, error) {
	if m.UpdatePatientFunc != nil {
		return m.UpdatePatientFunc(ctx, id, update)
	}
	return &domain.Patient{ID: id}, nil
}

func (m *mockPatientService) UpdateHorizon(ctx context.Context, id string, horizon int) (*domain.Patient, error) {
	if m.UpdateHorizonFunc != nil {
		return m.UpdateHorizonFunc(ctx, id, horizon)
	}
	return &domain.Patient{ID: id, Horizon: horizon}, nil
}

func (m *mockPatientService) UpdateHistory(ctx context.Context, id string, outcomes, actions []float64) (*domain.Patient, error) {
	if m.UpdateHistoryFunc != nil {
		return m.UpdateHistoryFunc(ctx, id, outcomes, actions)
	}
	return &domain.Patient{ID: id}, nil
}

func (m *mockPatientService) DeletePatient(ctx context.Context, id string) error {
	if m.DeletePatientFunc != nil {
		return m.DeletePatientFunc(ctx, id)
	}
	return nil
}

type mockPredictionService struct {
	RecommendFunc  func(ctx context.Context, req prediction.RecommendRequest) (domain.Prediction, error)
	ManualFunc     func(ctx context.Context, req prediction.ManualRequest) (domain.ManualPrediction, error)
	GetResultsFunc func(ctx context.Context, patientID string) (domain.PredictionResults, error)
}

func (m *mockPredictionService) Recommend(ctx context.Context, req prediction.RecommendRequest) (domain.Prediction, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, req)
	}
	return domain.Prediction{}, nil
}

func (m *mockPredictionService) Manual(ctx context.Context, req prediction.ManualRequest) (domain.ManualPrediction, error) {
	if m.ManualFunc != nil {
		return m.ManualFunc(ctx, req)
	}
	return domain.ManualPrediction{}, nil
}

func (m *mockPredictionService) GetResults(ctx context.Context, patientID string) (domain.PredictionResults, error) {
	if m.GetResultsFunc != nil {
		return m.GetResultsFunc(ctx, patientID)
	}
	return domain.PredictionResults{}, domain.ErrNoResults
}

type mockModelParamService struct {
	GetRandomParamsFunc func(ctx context.Context, patientID string) (domain.ModelParameters, bool, error)
	GetStoredSetsFunc   func(ctx context.Context, patientID string) ([]domain.ModelParamSet, error)
	SetParamsFunc       func(ctx context.Context, patientID string, params domain.ModelParameters) ([]domain.ModelParamSet, error)
	RegenerateFunc      func(ctx context.Context, patientID, modelID string, base *domain.ModelParameters) ([]domain.ModelParamSet, error)
}

func (m *mockModelParamService) GetRandomParams(ctx context.Context, patientID string) (domain.ModelParameters, bool, error) {
	if m.GetRandomParamsFunc != nil {
		return m.GetRandomParamsFunc(ctx, patientID)
	}
	return domain.ModelParameters{}, false, nil
}

func (m *mockModelParamService) GetStoredSets(ctx context.Context, patientID string) ([]domain.ModelParamSet, error) {
	if m.GetStoredSetsFunc != nil {
		return m.GetStoredSetsFunc(ctx, patientID)
	}
	return nil, domain.ErrNoParams
}

func (m *mockModelParamService) SetParams(ctx context.Context, patientID string, params domain.ModelParameters) ([]domain.ModelParamSet, error) {
	if m.SetParamsFunc != nil {
		return m.SetParamsFunc(ctx, patientID, params)
	}
	return nil, nil
}

func (m *mockModelParamService) Regenerate(ctx context.Context, patientID, modelID string, base *domain.ModelParameters) ([]domain.ModelParamSet, error) {
	if m.RegenerateFunc != nil {
		return m.RegenerateFunc(ctx, patientID, modelID, base)
	}
	return nil, nil
}
