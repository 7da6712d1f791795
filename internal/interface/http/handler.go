package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/aq-predictor/internal/domain/features"
	"github.com/yanqian/aq-predictor/internal/domain/predictor"
	apperrors "github.com/yanqian/aq-predictor/pkg/errors"
)

const (
	appName         = "Air Quality Prediction API"
	maxRequestBytes = 1 << 20

	msgInvalidRequest = "Missing or invalid required parameters"
)

// requiredFields must be present in every prediction request body.
var requiredFields = []string{
	features.KeyLocationID,
	features.KeyParameter,
	features.KeyUnit,
	features.KeyLatitude,
	features.KeyLongitude,
	features.KeyDatetimeUTC,
}

// Handler wires the HTTP transport to the prediction service.
type Handler struct {
	svc    predictor.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc predictor.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Predict runs one prediction for the JSON object in the request body.
func (h *Handler) Predict(c *gin.Context) {
	req, err := decodeRequest(c.Writer, c.Request)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", msgInvalidRequest, err))
		return
	}
	for _, field := range requiredFields {
		if !req.Has(field) {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", msgInvalidRequest, nil))
			return
		}
	}

	result, err := h.svc.Predict(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "prediction_failed"
		message := err.Error()
		switch {
		case apperrors.IsCode(err, predictor.CodeModelNotLoaded):
			code = predictor.CodeModelNotLoaded
			message = apperrors.MessageOf(err)
		case apperrors.IsCode(err, predictor.CodeInvalidInput):
			status = http.StatusBadRequest
			code = "invalid_request"
			message = msgInvalidRequest
		}
		abortWithError(c, NewHTTPError(status, code, message, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": result})
}

// Index describes the API.
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "online",
		"app_name": appName,
		"endpoints": gin.H{
			"/api/predict":       "POST - Make predictions with the model",
			"/api/labels/unseen": "GET - Categorical values the encoders did not know",
			"/health":            "GET - Model load state",
		},
		"documentation": "Send a POST request to /api/predict with JSON data containing location_id, parameter, unit, latitude, longitude, and datetimeUTC",
	})
}

// Health reports whether the model is loaded.
func (h *Handler) Health(c *gin.Context) {
	if h.svc.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "model_loaded": true})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "model_loaded": false})
}

// UnseenLabels lists the most frequently requested unknown categorical values.
func (h *Handler) UnseenLabels(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}

	items, err := h.svc.UnseenLabels(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "drift_store_error", apperrors.MessageOf(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"unseen": items})
}

// decodeRequest accepts only a single JSON object. Numbers keep their literal
// form so numeric identifiers become labels verbatim.
func decodeRequest(w http.ResponseWriter, r *http.Request) (features.Request, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, apperrors.New(predictor.CodeInvalidInput, "request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, apperrors.New(predictor.CodeInvalidInput, "request body must contain a single JSON object")
	}
	return features.Request(body), nil
}
