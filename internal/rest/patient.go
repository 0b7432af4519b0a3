package rest

import (
	"context"
	"net/http"
	"rehabDose/business/patient"
	"rehabDose/domain"
	"rehabDose/pkg/logger"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PatientService interface {
	GetAllPatients(ctx context.Context) ([]domain.Patient, error)
	GetPatientByID(ctx context.Context, id string) (domain.Patient, error)
	CreatePatient(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, id string, update patient.PatientUpdate) (*domain.Patient, error)
	UpdateHorizon(ctx context.Context, id string, horizon int) (*domain.Patient, error)
	UpdateHistory(ctx context.Context, id string, outcomes, actions []float64) (*domain.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

type PatientHandler struct {
	patientService PatientService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewPatientHandler(patientService PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type PatientRequest struct {
	Name             string     `json:"name" validate:"required"`
	Budget           float64    `json:"budget" validate:"gte=0"`
	MaxDose          float64    `json:"maxDose" validate:"gte=0"`
	Age              int        `json:"age" validate:"gte=0"`
	WeeksSinceStroke int        `json:"weeksSinceStroke" validate:"gte=0"`
	LeftStroke       bool       `json:"leftStroke"`
	Male             bool       `json:"male"`
	Horizon          int        `json:"horizon" validate:"gte=0,lte=520"`
	Past             bool       `json:"past"`
	Outcomes         []float64  `json:"outcomes" validate:"dive,gte=0,lte=5"`
	Actions          []*float64 `json:"actions"`
	SGLD             bool       `json:"sgld"`
}

type UpdateHorizonRequest struct {
	Horizon int `json:"horizon" validate:"gte=0,lte=520"`
}

type UpdateHistoryRequest struct {
	Outcomes []float64  `json:"outcomes" validate:"dive,gte=0,lte=5"`
	Actions  []*float64 `json:"actions"`
}

func (h *PatientHandler) GetAllPatients(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	patients, err := h.patientService.GetAllPatients(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(patients))
}

func (h *PatientHandler) GetPatientByID(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.patientService.GetPatientByID(ctx, c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

func (h *PatientHandler) CreatePatient(c echo.Context) error {
	var req PatientRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate patient request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	actions, err := trimActions(req.Actions)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newPatient, err := h.patientService.CreatePatient(ctx, &domain.Patient{
		Name:             req.Name,
		Budget:           req.Budget,
		MaxDose:          req.MaxDose,
		Age:              req.Age,
		WeeksSinceStroke: req.WeeksSinceStroke,
		LeftStroke:       req.LeftStroke,
		Male:             req.Male,
		Horizon:          req.Horizon,
		Past:             req.Past,
		Outcomes:         req.Outcomes,
		Actions:          actions,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(newPatient))
}

func (h *PatientHandler) UpdatePatient(c echo.Context) error {
	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate patient request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	actions, err := trimActions(req.Actions)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.patientService.UpdatePatient(ctx, c.Param("id"), patient.PatientUpdate{
		Name:             req.Name,
		Budget:           req.Budget,
		MaxDose:          req.MaxDose,
		Age:              req.Age,
		WeeksSinceStroke: req.WeeksSinceStroke,
		LeftStroke:       req.LeftStroke,
		Male:             req.Male,
		Horizon:          req.Horizon,
		Outcomes:         req.Outcomes,
		Actions:          actions,
		SGLD:             req.SGLD,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *PatientHandler) UpdateHorizon(c echo.Context) error {
	var req UpdateHorizonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.patientService.UpdateHorizon(ctx, c.Param("id"), req.Horizon)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *PatientHandler) UpdateHistory(c echo.Context) error {
	var req UpdateHistoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	actions, err := trimActions(req.Actions)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.patientService.UpdateHistory(ctx, c.Param("id"), req.Outcomes, actions)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *PatientHandler) DeletePatient(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	id := c.Param("id")
	if err := h.patientService.DeletePatient(ctx, id); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"message":    "patient successfully deleted",
		"patient_id": id,
	}))
}
