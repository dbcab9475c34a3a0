package handler

import "github.com/gin-gonic/gin"

// Register mounts the media endpoints on r
func (h *MediaHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.HealthCheck)
	r.GET("/info", h.GetInfo)
	r.GET("/download", h.Download)
	r.GET("/subtitles", h.GetSubtitles)
}
