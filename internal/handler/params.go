package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"playerauction/internal/auction"
	"playerauction/internal/models"
	"playerauction/internal/repository"
)

// requireAdminDevice gates an operation on a known, active admin device.
// Commands carry the device id in the body; queries pass it as the
// device_id query parameter.
func requireAdminDevice(c *gin.Context, repo repository.Repository, deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return auction.NewAuthError("admin device id required")
	}
	device, err := repo.GetDeviceByID(c.Request.Context(), deviceID)
	if err != nil {
		return err
	}
	if device == nil || !device.Active {
		return auction.NewAuthError("unknown or inactive device")
	}
	if device.Role != models.DeviceRoleAdmin {
		return auction.NewAuthError("admin role required for this action")
	}
	return nil
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}

// statusForCategory maps a core-operation error onto an HTTP status so the
// response code tells the caller whether to fix the request, retry, or give up.
func statusForCategory(err error) int {
	switch auction.CategoryOf(err) {
	case auction.CategoryValidation:
		return http.StatusBadRequest
	case auction.CategoryAuthorization:
		return http.StatusForbidden
	case auction.CategoryNotFound:
		return http.StatusNotFound
	case auction.CategoryStateConflict, auction.CategoryResource:
		return http.StatusConflict
	case auction.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func fail(c *gin.Context, err error) {
	Error(c, statusForCategory(err), err.Error(), nil)
}
