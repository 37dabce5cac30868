package handlers

import (
	"errors"
	"net/http"

	"recycling-helper/config"
	"recycling-helper/llm"
	"recycling-helper/metrics"
	"recycling-helper/models"
	"recycling-helper/utils"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const (
	errNoAPIKey       = "Server mis-configuration: no API key."
	errMissingField   = "Missing 'imageData' or 'prompt' field."
	errUpstreamFailed = "Gemini API 연결 실패"
	errInternal       = "Internal server error."
)

type AnalyzeHandler struct {
	cfg    *config.Config
	client llm.Client
}

func NewAnalyzeHandler(cfg *config.Config, client llm.Client) *AnalyzeHandler {
	return &AnalyzeHandler{
		cfg:    cfg,
		client: client,
	}
}

// HealthCheck returns a fixed status and never touches configuration
func (h *AnalyzeHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// AnalyzeImage relays an image and a prompt to the model and returns the generated text
func (h *AnalyzeHandler) AnalyzeImage(c *gin.Context) {
	if !h.cfg.HasAPIKey() {
		log.Error("Rejecting analyze request: GEMINI_API_KEY is not configured")
		h.fail(c, http.StatusInternalServerError, metrics.OutcomeNoAPIKey, models.ErrorResponse{Error: errNoAPIKey})
		return
	}

	// A body that does not decode is handled like an empty one.
	var req models.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("Failed to bind analyze request")
		req = models.AnalyzeImageRequest{}
	}

	if req.ImageData == "" || req.Prompt == "" {
		log.WithFields(log.Fields{
			"has_image":  req.ImageData != "",
			"has_prompt": req.Prompt != "",
		}).Warn("Analyze request is missing a required field")
		h.fail(c, http.StatusBadRequest, metrics.OutcomeBadRequest, models.ErrorResponse{Error: errMissingField})
		return
	}

	text, err := h.client.AnalyzeImage(c.Request.Context(), req.Prompt, utils.ExtractBase64(req.ImageData))
	if err != nil {
		h.handleClientError(c, err)
		return
	}

	outcome := metrics.OutcomeOK
	if text == llm.FallbackText {
		outcome = metrics.OutcomeFallback
	}
	metrics.AnalyzeResultsTotal.WithLabelValues(outcome).Inc()
	c.JSON(http.StatusOK, models.AnalyzeImageResponse{Text: text})
}

// handleClientError maps each failure category to its response. Only
// upstream status errors expose detail to the caller.
func (h *AnalyzeHandler) handleClientError(c *gin.Context, err error) {
	entry := log.WithError(err).WithField("source", h.client.SourceName())

	var apiErr *llm.APIError
	switch {
	case errors.As(err, &apiErr):
		entry.WithField("status", apiErr.StatusCode).Error("Upstream API returned an error status")
		h.fail(c, http.StatusBadGateway, metrics.OutcomeUpstreamError, models.ErrorResponse{
			Error:  errUpstreamFailed,
			Detail: apiErr.Error(),
		})
		return
	case errors.Is(err, llm.ErrTransport):
		entry.Error("Upstream request failed")
	case errors.Is(err, llm.ErrDecode):
		entry.Error("Upstream response could not be decoded")
	case errors.Is(err, llm.ErrEncode):
		entry.Error("Upstream request could not be encoded")
	default:
		entry.Error("Unexpected error while analyzing image")
	}
	h.fail(c, http.StatusInternalServerError, metrics.OutcomeInternalError, models.ErrorResponse{Error: errInternal})
}

func (h *AnalyzeHandler) fail(c *gin.Context, status int, outcome string, body models.ErrorResponse) {
	metrics.AnalyzeResultsTotal.WithLabelValues(outcome).Inc()
	c.JSON(status, body)
}
