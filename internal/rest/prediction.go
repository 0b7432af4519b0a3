package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"rehabDose/business/prediction"
	"rehabDose/domain"
	"rehabDose/pkg/logger"
	"rehabDose/pkg/metrics"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	PredictionHandler struct {
		validate          *validator.Validate
		predictionService PredictionService
		timeout           time.Duration
	}

	PredictionService interface {
		Recommend(ctx context.Context, req prediction.RecommendRequest) (domain.Prediction, error)
		Manual(ctx context.Context, req prediction.ManualRequest) (domain.ManualPrediction, error)
		GetResults(ctx context.Context, patientID string) (domain.PredictionResults, error)
	}

	RecommendedPredictionRequest struct {
		PatientID string          `json:"patient_id" validate:"required"`
		YInit     *float64        `json:"y_init" validate:"omitempty,gte=0,lte=5"`
		Budget    *float64        `json:"budget" validate:"omitempty,gte=0"`
		Horizon   *int            `json:"horizon" validate:"omitempty,gte=0,lte=520"`
		MaxDose   *float64        `json:"max_dose" validate:"omitempty,gte=0"`
		Params    json.RawMessage `json:"params"`
	}

	ManualPredictionRequest struct {
		PatientID     string          `json:"patient_id" validate:"required"`
		YInit         *float64        `json:"y_init" validate:"omitempty,gte=0,lte=5"`
		FutureActions []float64       `json:"future_actions" validate:"required,max=520"`
		Params        json.RawMessage `json:"params"`
	}
)

func NewPredictionHandler(svc PredictionService) *PredictionHandler {
	return &PredictionHandler{
		validate:          validator.New(),
		predictionService: svc,
		timeout:           30 * time.Second,
	}
}

func (h *PredictionHandler) Recommended(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.PredictionLatency.WithLabelValues(domain.ScheduleRecommended))
	defer timer.ObserveDuration()

	var req RecommendedPredictionRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, domain.ScheduleRecommended, http.StatusBadRequest, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return h.fail(c, domain.ScheduleRecommended, http.StatusBadRequest, err)
	}

	params, err := parseParams(req.Params)
	if err != nil {
		return h.fail(c, domain.ScheduleRecommended, http.StatusBadRequest, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	pred, err := h.predictionService.Recommend(ctx, prediction.RecommendRequest{
		PatientID: req.PatientID,
		YInit:     req.YInit,
		Budget:    req.Budget,
		Horizon:   req.Horizon,
		MaxDose:   req.MaxDose,
		Params:    params,
	})
	if err != nil {
		return h.fail(c, domain.ScheduleRecommended, errorStatus(err), err)
	}

	metrics.PredictionRequests.WithLabelValues(domain.ScheduleRecommended, "ok").Inc()
	return c.JSON(http.StatusOK, fres.Response.StatusOK(pred))
}

func (h *PredictionHandler) Manual(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.PredictionLatency.WithLabelValues(domain.ScheduleManual))
	defer timer.ObserveDuration()

	var req ManualPredictionRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, domain.ScheduleManual, http.StatusBadRequest, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return h.fail(c, domain.ScheduleManual, http.StatusBadRequest, err)
	}

	params, err := parseParamList(req.Params)
	if err != nil {
		return h.fail(c, domain.ScheduleManual, http.StatusBadRequest, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	pred, err := h.predictionService.Manual(ctx, prediction.ManualRequest{
		PatientID:     req.PatientID,
		YInit:         req.YInit,
		FutureActions: req.FutureActions,
		Params:        params,
	})
	if err != nil {
		return h.fail(c, domain.ScheduleManual, errorStatus(err), err)
	}

	metrics.PredictionRequests.WithLabelValues(domain.ScheduleManual, "ok").Inc()
	return c.JSON(http.StatusOK, fres.Response.StatusOK(pred))
}

func (h *PredictionHandler) GetResults(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.predictionService.GetResults(ctx, c.Param("patientId"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}

func (h *PredictionHandler) fail(c echo.Context, schedule string, status int, err error) error {
	metrics.PredictionRequests.WithLabelValues(schedule, "error").Inc()
	if status >= http.StatusInternalServerError {
		logger.Error("prediction failed",
			"trace_id", prediction.TraceIDFromContext(c.Request().Context()),
			"schedule", schedule,
			"error", err,
		)
	}
	return c.JSON(status, ResponseError{Message: err.Error()})
}
