package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"playerauction/internal/repository"
	"playerauction/internal/service"
)

type DeviceHandler struct {
	Repo      repository.Repository
	Registrar *service.Registrar
}

func (h *DeviceHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/devices")
	group.POST("/register", h.register)
	group.GET("", h.list)
}

type registerRequest struct {
	Fingerprint string `json:"fingerprint"`
}

func (h *DeviceHandler) register(c *gin.Context) {
	if h.Registrar == nil {
		Error(c, http.StatusInternalServerError, "registrar unavailable", nil)
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.Fingerprint = strings.TrimSpace(req.Fingerprint)
	if req.Fingerprint == "" {
		Error(c, http.StatusBadRequest, "fingerprint required", nil)
		return
	}
	reg, err := h.Registrar.Register(c.Request.Context(), req.Fingerprint)
	if err != nil {
		fail(c, err)
		return
	}
	if !reg.Allowed {
		Error(c, http.StatusForbidden, reg.Reason, nil)
		return
	}
	Ok(c, reg.Device, nil)
}

// list is admin-only: device ids double as command credentials, so the
// roster is never exposed to other roles.
func (h *DeviceHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	if err := requireAdminDevice(c, h.Repo, c.Query("device_id")); err != nil {
		fail(c, err)
		return
	}
	devices, err := h.Repo.ListDevices(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, devices, nil)
}
