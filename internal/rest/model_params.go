package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"rehabDose/domain"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type ModelParamService interface {
	GetRandomParams(ctx context.Context, patientID string) (domain.ModelParameters, bool, error)
	GetStoredSets(ctx context.Context, patientID string) ([]domain.ModelParamSet, error)
	SetParams(ctx context.Context, patientID string, params domain.ModelParameters) ([]domain.ModelParamSet, error)
	Regenerate(ctx context.Context, patientID, modelID string, base *domain.ModelParameters) ([]domain.ModelParamSet, error)
}

type ModelParamHandler struct {
	paramService ModelParamService
	timeout      time.Duration
}

func NewModelParamHandler(paramService ModelParamService) *ModelParamHandler {
	return &ModelParamHandler{
		paramService: paramService,
		timeout:      10 * time.Second,
	}
}

type RegenerateParamsRequest struct {
	ModelID string          `json:"model_id"`
	Base    json.RawMessage `json:"base"`
}

// GetParams returns one randomly chosen iteration, or all of them with ?all=true.
func (h *ModelParamHandler) GetParams(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	patientID := c.Param("patientId")

	if c.QueryParam("all") == "true" {
		sets, err := h.paramService.GetStoredSets(ctx, patientID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, fres.Response.StatusOK(sets))
	}

	params, ok, err := h.paramService.GetRandomParams(ctx, patientID)
	if err != nil {
		return errorResponse(c, err)
	}
	if !ok {
		return errorResponse(c, domain.ErrNoParams)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(params))
}

func (h *ModelParamHandler) SetParams(c echo.Context) error {
	var raw json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	params, err := parseParams(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if params == nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "params are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	sets, err := h.paramService.SetParams(ctx, c.Param("patientId"), *params)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sets))
}

func (h *ModelParamHandler) RegenerateIterations(c echo.Context) error {
	var req RegenerateParamsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	base, err := parseParams(req.Base)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	sets, err := h.paramService.Regenerate(ctx, c.Param("patientId"), req.ModelID, base)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(sets))
}
