package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/csvflag/internal/domain"
	"github.com/Harsh-BH/csvflag/internal/usecase"
)

const uploadField = "file"

// FileHandler handles uploads and artifact downloads.
type FileHandler struct {
	submitUC *usecase.SubmitJobUsecase
	fetchUC  *usecase.FetchArtifactUsecase
	logger   *zap.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(submitUC *usecase.SubmitJobUsecase, fetchUC *usecase.FetchArtifactUsecase, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		submitUC: submitUC,
		fetchUC:  fetchUC,
		logger:   logger,
	}
}

// Upload handles POST /API/upload
func (h *FileHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(c, h.logger, "Upload", domain.ErrPayloadTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, "Upload", err)
		return
	}
	defer f.Close()

	resp, err := h.submitUC.Execute(c.Request.Context(), f, fh.Filename)
	if err != nil {
		writeError(c, h.logger, "Upload", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Download handles GET /API/download/:id
func (h *FileHandler) Download(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	artifact, err := h.fetchUC.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "Download", err)
		return
	}
	defer artifact.Body.Close()

	c.DataFromReader(http.StatusOK, artifact.Size, "application/octet-stream", artifact.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + artifact.Name + `"`,
	})
}

// parseJobID validates the :id path parameter and writes a 400 when it is
// not a UUID. Such an ID can never name a job.
func parseJobID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrJobNotFound.Error()})
		return "", false
	}
	return id.String(), true
}
