package router

import (
	"net/http"
	"rehabDose/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupPatientRoutes(api *echo.Group, handler *rest.PatientHandler) {
	patients := api.Group("/patients")

	patients.GET("", handler.GetAllPatients)
	patients.GET("/:id", handler.GetPatientByID)
	patients.POST("", handler.CreatePatient)
	patients.PUT("/:id", handler.UpdatePatient)
	patients.PUT("/:id/info", handler.UpdateHorizon)
	patients.PUT("/:id/history", handler.UpdateHistory)
	patients.DELETE("/:id", handler.DeletePatient)
}

func SetPredictionRoutes(api *echo.Group, handler *rest.PredictionHandler) {
	predictions := api.Group("/predictions")
	predictions.POST("/recommended", handler.Recommended)
	predictions.POST("/manual", handler.Manual)

	api.GET("/prediction-results/:patientId", handler.GetResults)
}

func SetModelParamRoutes(api *echo.Group, handler *rest.ModelParamHandler) {
	params := api.Group("/model-params")
	params.GET("/:patientId", handler.GetParams)
	params.PUT("/:patientId", handler.SetParams)
	params.POST("/:patientId/iterations", handler.RegenerateIterations)
}

func SetOpsRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
