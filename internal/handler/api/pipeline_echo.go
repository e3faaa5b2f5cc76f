package api

import (
	"errors"
	"net/http"

	models "wellpulse/internal/domain/models"
	domrepo "wellpulse/internal/domain/repository"
	"wellpulse/internal/usecase"
	"wellpulse/pkg/cache"
	"wellpulse/pkg/config"
	xhttp "wellpulse/pkg/http"
	xlogger "wellpulse/pkg/logger"
	"wellpulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// PipelineEchoHandler exposes the batch trigger and per-user read endpoints.
type PipelineEchoHandler struct {
	logger *xlogger.Logger
	batch  *usecase.BatchRunner
	store  domrepo.PredictionStore
	cache  cache.Service
	cfg    *config.Config
}

func NewPipelineEchoHandler(
	logger *xlogger.Logger,
	batch *usecase.BatchRunner,
	store domrepo.PredictionStore,
	cacheSvc cache.Service,
	cfg *config.Config,
) *PipelineEchoHandler {
	return &PipelineEchoHandler{
		logger: logger,
		batch:  batch,
		store:  store,
		cache:  cacheSvc,
		cfg:    cfg,
	}
}

func (h *PipelineEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.POST("/run", h.Run)
	g.GET("/users/:id/prediction", h.Prediction)
	g.GET("/users/:id/status", h.Status)
}

// Health is a liveness probe with no downstream checks.
func (h *PipelineEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Run triggers a batch pass. The target date defaults to today in the
// configured location; a run already in flight yields 409.
func (h *PipelineEchoHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	dateKey := req.Date
	if dateKey == "" {
		loc, err := h.cfg.Location()
		if err != nil {
			h.logger.Error("scheduler location invalid", xlogger.Error(err))
			return xhttp.InternalServerErrorResponse(c)
		}
		dateKey = util.TodayKey(loc)
	}

	res, err := h.batch.Run(c.Request().Context(), dateKey)
	if err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			return xhttp.AppErrorResponse(c,
				xhttp.NewAppError("conflict", "", "a batch run is already in progress", http.StatusConflict))
		}
		h.logger.Error("batch run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()))
	}

	return xhttp.SuccessResponse(c, &models.RunResponse{
		Date:      res.DateKey,
		Active:    res.ActiveUsers,
		Processed: res.Processed,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
		Duration:  res.Duration.Seconds(),
	})
}

// Prediction returns the latest prediction bundle, cache first.
func (h *PipelineEchoHandler) Prediction(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return xhttp.BadRequestResponse(c, "user id required")
	}
	ctx := c.Request().Context()

	if h.cache != nil {
		var cached models.Prediction
		if err := h.cache.Get(ctx, cache.Key("prediction", userID), &cached); err == nil {
			return xhttp.SuccessResponse(c, models.PredictionResponseFrom(&cached))
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("prediction cache read failed",
				xlogger.String("user_id", userID), xlogger.Error(err))
		}
	}

	pred, err := h.store.GetLatestPrediction(ctx, userID)
	if err != nil {
		h.logger.Error("get prediction error",
			xlogger.String("user_id", userID), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if pred == nil {
		return xhttp.NotFoundResponse(c, "no prediction yet")
	}
	return xhttp.SuccessResponse(c, models.PredictionResponseFrom(pred))
}

// Status returns the user's current model state.
func (h *PipelineEchoHandler) Status(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return xhttp.BadRequestResponse(c, "user id required")
	}

	status, err := h.store.GetStatus(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("get status error",
			xlogger.String("user_id", userID), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if status == nil {
		return xhttp.NotFoundResponse(c, "no model status yet")
	}
	return xhttp.SuccessResponse(c, models.ModelStatusResponseFrom(status))
}
