package handler

import (
	"context"
	"errors"
	"net/http"

	"mediarelay/internal/model"
	"mediarelay/internal/service"
	"mediarelay/internal/ytdlp"
	"mediarelay/pkg/logger"
	"mediarelay/pkg/validator"

	"github.com/gin-gonic/gin"
	playgroundvalidator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// downloadFilename is sent for every download; the real name is not known
// until the stream completes.
const downloadFilename = "video.mp4"

// MediaHandler serves the info, download and subtitles endpoints
type MediaHandler struct {
	mediaService *service.MediaService
	cfg          *model.Config
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(ms *service.MediaService, cfg *model.Config) *MediaHandler {
	return &MediaHandler{
		mediaService: ms,
		cfg:          cfg,
	}
}

// Root handles GET /
func (h *MediaHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "media relay is running; use /info, /download or /subtitles with ?url=",
	})
}

// HealthCheck handles GET /health
func (h *MediaHandler) HealthCheck(c *gin.Context) {
	version, err := h.mediaService.ToolVersion(c.Request.Context())
	if err != nil {
		logger.LogWarn("yt-dlp version probe failed", zap.String("details", ytdlp.Diagnostic(err)))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": "media-relay",
			"details": ytdlp.Diagnostic(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "media-relay",
		"ytdlp_version": version,
	})
}

// bindMediaRequest extracts the query parameters, writing a 400 and
// returning false when url is missing or implausible.
func (h *MediaHandler) bindMediaRequest(c *gin.Context) (*model.MediaRequest, bool) {
	var req model.MediaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var verrs playgroundvalidator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "URL" && fe.Tag() == "required" {
					logger.LogWarn("Missing url parameter", zap.String("path", c.FullPath()))
					c.JSON(http.StatusBadRequest, model.ErrorResponse{
						Error:   "missing_url",
						Message: "url query parameter is required",
						Code:    http.StatusBadRequest,
					})
					return nil, false
				}
			}
		}
		logger.LogWarn("Invalid query parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters",
			Code:    http.StatusBadRequest,
			Details: err.Error(),
		})
		return nil, false
	}

	if !validator.ValidateURL(req.URL, h.cfg.Security.AllowedDomains) {
		logger.LogWarn("Invalid media URL",
			zap.String("url", req.URL),
			zap.Strings("allowed_domains", h.cfg.Security.AllowedDomains))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_url",
			Message: "url must be an http(s) URL on an allowed domain",
			Code:    http.StatusBadRequest,
		})
		return nil, false
	}

	return &req, true
}

// GetInfo handles GET /info
func (h *MediaHandler) GetInfo(c *gin.Context) {
	req, ok := h.bindMediaRequest(c)
	if !ok {
		return
	}

	info, err := h.mediaService.GetInfo(c.Request.Context(), req.URL)
	if err != nil {
		logger.LogError("Failed to get media info", err,
			zap.String("url", req.URL),
			zap.String("details", ytdlp.Diagnostic(err)))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "tool_failed",
			Message: "Failed to fetch media information",
			Code:    http.StatusInternalServerError,
			Details: ytdlp.Diagnostic(err),
		})
		return
	}

	c.JSON(http.StatusOK, info)
}

// Download handles GET /download
func (h *MediaHandler) Download(c *gin.Context) {
	req, ok := h.bindMediaRequest(c)
	if !ok {
		return
	}

	stream, err := h.mediaService.StartDownload(streamContext(c), req)
	if err != nil {
		h.streamStartFailed(c, req, err)
		return
	}

	relay(c, stream, buildContentDispositionHeader(downloadFilename), req.URL)
}

// GetSubtitles handles GET /subtitles
func (h *MediaHandler) GetSubtitles(c *gin.Context) {
	req, ok := h.bindMediaRequest(c)
	if !ok {
		return
	}
	// format means the subtitle text format on this endpoint
	req.SubtitleFormat = req.FormatID
	req.FormatID = ""

	sel, err := h.mediaService.ResolveSubtitles(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNoSubtitles) {
			logger.LogInfo("No subtitles available", zap.String("url", req.URL))
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "no_subtitles",
				Message: "No subtitles found for this media",
				Code:    http.StatusNotFound,
			})
			return
		}
		logger.LogError("Failed to resolve subtitles", err, zap.String("url", req.URL))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "tool_failed",
			Message: "Failed to resolve subtitles",
			Code:    http.StatusInternalServerError,
			Details: ytdlp.Diagnostic(err),
		})
		return
	}

	stream, err := h.mediaService.StartSubtitles(streamContext(c), req.URL, sel)
	if err != nil {
		h.streamStartFailed(c, req, err)
		return
	}

	filename := validator.SanitizeFilename("subs." + sel.Format)
	relay(c, stream, buildContentDispositionHeader(filename), req.URL)
}

func (h *MediaHandler) streamStartFailed(c *gin.Context, req *model.MediaRequest, err error) {
	logger.LogError("Failed to start yt-dlp stream", err,
		zap.String("url", req.URL),
		zap.String("details", ytdlp.Diagnostic(err)))
	c.String(http.StatusInternalServerError, "failed to start download: %s", ytdlp.Diagnostic(err))
}

// streamContext detaches the subprocess from request cancellation; a client
// that goes away is noticed through the next failed write instead.
func streamContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
