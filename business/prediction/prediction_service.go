package prediction

import (
	"context"
	"errors"
	"fmt"
	"rehabDose/business/simulator"
	"rehabDose/domain"
	"rehabDose/pkg/logger"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
)

const tracerName = "rehabDose/business/prediction"

type PatientRepository interface {
	FindByID(ctx context.Context, id string) (domain.Patient, error)
}

type ParameterStore interface {
	GetRandomParams(ctx context.Context, patientID string) (domain.ModelParameters, bool, error)
	GetParamSets(ctx context.Context, patientID string) ([]domain.ModelParameters, error)
}

// ResultRepository persists prediction results. Latest returns nil, nil when
// the patient has no result of that schedule type.
type ResultRepository interface {
	Save(ctx context.Context, result *domain.PredictionResult) error
	Latest(ctx context.Context, patientID, scheduleType string) (*domain.PredictionResult, error)
}

// RecommendationCache holds the last recommended prediction per patient.
// GetRecommended returns nil, nil on a miss.
type RecommendationCache interface {
	GetRecommended(ctx context.Context, patientID string) (*domain.Prediction, error)
	SetRecommended(ctx context.Context, patientID string, pred domain.Prediction, ttl time.Duration) error
}

type Simulator interface {
	PredictRecommended(ctx context.Context, yInit, budget float64, horizon int, maxDose float64, params domain.ModelParameters) (domain.Prediction, error)
	PredictManual(ctx context.Context, yInit float64, futureDoses []float64, params []domain.ModelParameters, recommended *domain.Prediction) (domain.ManualPrediction, error)
}

// RecommendRequest overrides patient fields for a single recommended run.
// Nil fields fall back to the stored patient.
type RecommendRequest struct {
	PatientID string
	YInit     *float64
	Budget    *float64
	Horizon   *int
	MaxDose   *float64
	Params    *domain.ModelParameters
}

type ManualRequest struct {
	PatientID     string
	YInit         *float64
	FutureActions []float64
	Params        []domain.ModelParameters
}

type PredictionService struct {
	patients PatientRepository
	params   ParameterStore
	results  ResultRepository
	cache    RecommendationCache
	sim      Simulator
	cacheTTL time.Duration
	newID    func() string
	tracer   trace.Tracer
}

func NewPredictionService(
	patients PatientRepository,
	params ParameterStore,
	results ResultRepository,
	cache RecommendationCache,
	sim Simulator,
	cacheTTL time.Duration,
) *PredictionService {
	return &PredictionService{
		patients: patients,
		params:   params,
		results:  results,
		cache:    cache,
		sim:      sim,
		cacheTTL: cacheTTL,
		newID:    uuid.NewString,
		tracer:   otel.Tracer(tracerName),
	}
}

// Recommend runs the analytic ensemble over the auto-allocated schedule, stores
// the result and refreshes the recommendation cache.
func (s *PredictionService) Recommend(ctx context.Context, req RecommendRequest) (domain.Prediction, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.Recommend",
		trace.WithAttributes(attribute.String("patient_id", req.PatientID)))
	defer span.End()

	patient, err := s.patients.FindByID(ctx, req.PatientID)
	if err != nil {
		recordError(span, err)
		return domain.Prediction{}, err
	}

	yInit := patient.LastOutcome()
	if req.YInit != nil {
		yInit = *req.YInit
	}
	budget := patient.Budget
	if req.Budget != nil {
		budget = *req.Budget
	}
	horizon := patient.Horizon
	if req.Horizon != nil {
		horizon = *req.Horizon
	}
	maxDose := patient.MaxDose
	if req.MaxDose != nil {
		maxDose = *req.MaxDose
	}

	params, err := s.recommendParams(ctx, req)
	if err != nil {
		recordError(span, err)
		return domain.Prediction{}, err
	}

	span.SetAttributes(
		attribute.Int("horizon", horizon),
		attribute.Float64("budget", budget),
		attribute.Float64("y_init", yInit),
	)

	traceID := TraceIDFromContext(ctx)
	logger.Debug("running recommended prediction",
		"trace_id", traceID,
		"patient_id", patient.ID,
		"y_init", yInit,
		"budget", budget,
		"horizon", horizon,
		"max_dose", maxDose,
	)

	pred, err := s.sim.PredictRecommended(ctx, yInit, budget, horizon, maxDose, params)
	if err != nil {
		recordError(span, err)
		return domain.Prediction{}, fmt.Errorf("recommended prediction failed: %w", err)
	}

	result := &domain.PredictionResult{
		ID:            s.newID(),
		PatientID:     patient.ID,
		ScheduleType:  domain.ScheduleRecommended,
		LastParam:     datatypes.NewJSONType(params),
		YInit:         yInit,
		PastOutcomes:  patient.Outcomes,
		PastActions:   patient.Actions,
		FutureActions: datatypes.JSONSlice[float64](pred.Dosage),
		Mean:          datatypes.JSONSlice[float64](pred.Mean),
		Lower:         datatypes.JSONSlice[float64](pred.Lower),
		Upper:         datatypes.JSONSlice[float64](pred.Upper),
		Dosage:        datatypes.JSONSlice[float64](pred.Dosage),
	}
	if err := s.results.Save(ctx, result); err != nil {
		logger.Error("failed to save prediction result", "trace_id", traceID, "patient_id", patient.ID, "error", err)
		recordError(span, err)
		return domain.Prediction{}, fmt.Errorf("failed to save prediction result: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetRecommended(ctx, patient.ID, pred, s.cacheTTL); err != nil {
			logger.Warn("failed to cache recommended prediction", "trace_id", traceID, "patient_id", patient.ID, "error", err)
		}
	}

	return pred, nil
}

// Manual evaluates a user-entered schedule against the patient's parameter
// iterations. The doses are clamped to the patient's budget and max dose first,
// the same limits the recommended schedule is allocated under.
func (s *PredictionService) Manual(ctx context.Context, req ManualRequest) (domain.ManualPrediction, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.Manual",
		trace.WithAttributes(
			attribute.String("patient_id", req.PatientID),
			attribute.Int("doses", len(req.FutureActions)),
		))
	defer span.End()

	patient, err := s.patients.FindByID(ctx, req.PatientID)
	if err != nil {
		recordError(span, err)
		return domain.ManualPrediction{}, err
	}

	yInit := patient.LastOutcome()
	if req.YInit != nil {
		yInit = *req.YInit
	}

	params := req.Params
	if len(params) == 0 {
		params, err = s.params.GetParamSets(ctx, patient.ID)
		if err != nil {
			recordError(span, err)
			return domain.ManualPrediction{}, err
		}
	}
	if len(params) == 0 {
		params = []domain.ModelParameters{domain.DefaultModelParameters()}
	}

	doses := simulator.AllocateDoses(req.FutureActions, patient.Budget, patient.MaxDose)
	recommended := s.recommendedFor(ctx, patient.ID)

	traceID := TraceIDFromContext(ctx)
	logger.Debug("running manual prediction",
		"trace_id", traceID,
		"patient_id", patient.ID,
		"y_init", yInit,
		"doses", doses,
		"param_sets", len(params),
		"has_recommended", recommended != nil,
	)

	pred, err := s.sim.PredictManual(ctx, yInit, doses, params, recommended)
	if err != nil {
		recordError(span, err)
		return domain.ManualPrediction{}, fmt.Errorf("manual prediction failed: %w", err)
	}

	result := &domain.PredictionResult{
		ID:            s.newID(),
		PatientID:     patient.ID,
		ScheduleType:  domain.ScheduleManual,
		LastParam:     datatypes.NewJSONType(params[0]),
		YInit:         yInit,
		PastOutcomes:  patient.Outcomes,
		PastActions:   patient.Actions,
		FutureActions: datatypes.JSONSlice[float64](doses),
		Mean:          datatypes.JSONSlice[float64](pred.Median),
		Lower:         datatypes.JSONSlice[float64](pred.Lower),
		Upper:         datatypes.JSONSlice[float64](pred.Upper),
		Dosage:        datatypes.JSONSlice[float64](pred.Dosage),
	}
	if err := s.results.Save(ctx, result); err != nil {
		logger.Error("failed to save prediction result", "trace_id", traceID, "patient_id", patient.ID, "error", err)
		recordError(span, err)
		return domain.ManualPrediction{}, fmt.Errorf("failed to save prediction result: %w", err)
	}

	return pred, nil
}

// GetResults returns the latest recommended and manual results for a patient.
func (s *PredictionService) GetResults(ctx context.Context, patientID string) (domain.PredictionResults, error) {
	if err := ctx.Err(); err != nil {
		return domain.PredictionResults{}, fmt.Errorf("context error: %w", err)
	}

	recommended, err := s.results.Latest(ctx, patientID, domain.ScheduleRecommended)
	if err != nil {
		return domain.PredictionResults{}, fmt.Errorf("failed to load recommended result: %w", err)
	}
	manual, err := s.results.Latest(ctx, patientID, domain.ScheduleManual)
	if err != nil {
		return domain.PredictionResults{}, fmt.Errorf("failed to load manual result: %w", err)
	}

	if recommended == nil && manual == nil {
		return domain.PredictionResults{}, domain.ErrNoResults
	}

	return domain.PredictionResults{Recommended: recommended, Manual: manual}, nil
}

func (s *PredictionService) recommendParams(ctx context.Context, req RecommendRequest) (domain.ModelParameters, error) {
	if req.Params != nil {
		return *req.Params, nil
	}

	params, ok, err := s.params.GetRandomParams(ctx, req.PatientID)
	if err != nil {
		return domain.ModelParameters{}, err
	}
	if !ok {
		logger.Debug("no stored model params, using defaults", "trace_id", TraceIDFromContext(ctx), "patient_id", req.PatientID)
		return domain.DefaultModelParameters(), nil
	}

	return params, nil
}

// recommendedFor looks up the cached recommendation, falling back to the
// latest stored recommended result. Lookup failures are logged and treated as
// a miss.
func (s *PredictionService) recommendedFor(ctx context.Context, patientID string) *domain.Prediction {
	traceID := TraceIDFromContext(ctx)

	if s.cache != nil {
		pred, err := s.cache.GetRecommended(ctx, patientID)
		if err != nil {
			logger.Warn("recommendation cache lookup failed", "trace_id", traceID, "patient_id", patientID, "error", err)
		} else if pred != nil {
			return pred
		}
	}

	stored, err := s.results.Latest(ctx, patientID, domain.ScheduleRecommended)
	if err != nil {
		logger.Warn("stored recommendation lookup failed", "trace_id", traceID, "patient_id", patientID, "error", err)
		return nil
	}
	if stored == nil {
		return nil
	}

	pred := stored.AsPrediction()
	return &pred
}

func recordError(span trace.Span, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
