package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"playerauction/internal/notify"
)

type StreamHandler struct {
	Hub *notify.Hub
}

func (h *StreamHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/auction/stream", h.stream)
}

func (h *StreamHandler) stream(c *gin.Context) {
	if h.Hub == nil {
		Error(c, http.StatusServiceUnavailable, "stream disabled", nil)
		return
	}
	// The hub owns the connection from here on.
	_ = h.Hub.Serve(c.Writer, c.Request)
}
