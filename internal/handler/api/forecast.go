package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	"StockCast/pkg/logger"
)

// ForecastHandler exposes the forecast API over echo.
type ForecastHandler struct {
	orchestrator *usecase.Orchestrator
	log          *logger.Logger
}

func NewForecastHandler(o *usecase.Orchestrator, log *logger.Logger) *ForecastHandler {
	return &ForecastHandler{orchestrator: o, log: log}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.GET("/status/:request_id", h.Status)
}

// Predict accepts a forecast request and answers 202 with the request
// id before any processing starts.
func (h *ForecastHandler) Predict(c echo.Context) error {
	req := new(models.SubmitForecastRequest)
	if details := xhttp.ReadAndValidateRequest(c, req); details != nil {
		return xhttp.BadRequestResponse(c, details)
	}

	resp, err := h.orchestrator.Submit(c.Request().Context(), req)
	if err != nil {
		if models.IsValidation(err) {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_VALIDATION",
				Message: err.Error(),
			}})
		}
		h.log.Error("submit failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.AcceptedResponse(c, resp)
}

// Status reports the current state of a job, with the result payload
// once the job completed.
func (h *ForecastHandler) Status(c echo.Context) error {
	requestID := c.Param("request_id")
	job, err := h.orchestrator.Status(c.Request().Context(), requestID)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no job for request id %s", requestID))
		}
		h.log.Error("status read failed",
			logger.String("request_id", requestID),
			logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return xhttp.SuccessResponse(c, &models.JobStatusResponse{
		RequestID: job.RequestID,
		Ticker:    job.Ticker,
		Status:    job.Status,
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	})
}
