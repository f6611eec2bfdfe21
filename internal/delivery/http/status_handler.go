package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/usecase"
)

// StatusHandler reports job records.
type StatusHandler struct {
	getJobUC *usecase.GetJobUsecase
	logger   *zap.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(getJobUC *usecase.GetJobUsecase, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{getJobUC: getJobUC, logger: logger}
}

// GetByID handles GET /API/status/:id
func (h *StatusHandler) GetByID(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	job, err := h.getJobUC.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "Get job", err)
		return
	}

	c.JSON(http.StatusOK, job)
}
