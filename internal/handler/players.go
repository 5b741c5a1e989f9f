package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"playerauction/internal/repository"
	"playerauction/internal/service"
)

type PlayerHandler struct {
	Repo     repository.Repository
	Importer *service.Importer
	CSVPath  string
	Logger   *zap.Logger
}

func (h *PlayerHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/players")
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.POST("/import", h.importCSV)
	r.GET("/api/v1/teams", h.listTeams)
	r.GET("/api/v1/squads", h.listSquads)
}

func (h *PlayerHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)
	players, err := h.Repo.ListPlayers(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total := int64(len(players))
	if offset < 0 {
		offset = 0
	}
	if offset > len(players) {
		offset = len(players)
	}
	end := len(players)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	meta := paginationMeta(limit, offset, total)
	Ok(c, players[offset:end], meta)
}

func (h *PlayerHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "player id required", nil)
		return
	}
	player, err := h.Repo.GetPlayerByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if player == nil {
		Error(c, http.StatusNotFound, "player not found", nil)
		return
	}
	Ok(c, player, nil)
}

type importRequest struct {
	Path string `json:"path"`
}

func (h *PlayerHandler) importCSV(c *gin.Context) {
	if h.Importer == nil {
		Error(c, http.StatusServiceUnavailable, "importer disabled", nil)
		return
	}
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = h.CSVPath
	}
	if path == "" {
		Error(c, http.StatusBadRequest, "csv path required", nil)
		return
	}
	result, err := h.Importer.ImportCSV(c.Request.Context(), path)
	if err != nil {
		fail(c, err)
		return
	}
	OkMessage(c, "Import completed.", result)
}

func (h *PlayerHandler) listTeams(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	teams, err := h.Repo.ListTeams(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, teams, nil)
}

func (h *PlayerHandler) listSquads(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	squads, err := h.Repo.ListSquadPlayers(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, squads, nil)
}
