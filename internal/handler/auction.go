package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playerauction/internal/auction"
	"playerauction/internal/evaluation"
	"playerauction/internal/models"
	"playerauction/internal/notify"
	"playerauction/internal/repository"
)

type AuctionHandler struct {
	Repo    repository.Repository
	Machine *auction.Machine
	Engine  *evaluation.Engine
	Hub     *notify.Hub
	Logger  *zap.Logger
	Now     func() time.Time
}

func (h *AuctionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/auction")
	group.POST("", h.command)
	group.GET("/state", h.state)
	group.GET("/bids/:playerID", h.bidsByPlayer)
	group.GET("/evaluation", h.evaluationResults)
}

type commandRequest struct {
	Action   string           `json:"action"`
	DeviceID string           `json:"device_id"`
	Amount   *decimal.Decimal `json:"amount"`
}

func (h *AuctionHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *AuctionHandler) command(c *gin.Context) {
	if h.Machine == nil || h.Repo == nil {
		Error(c, http.StatusInternalServerError, "auction unavailable", nil)
		return
	}
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	action := strings.TrimSpace(strings.ToLower(req.Action))
	if action == "" {
		Error(c, http.StatusBadRequest, "action required", nil)
		return
	}

	ctx := c.Request.Context()
	if action != "placebid" {
		if err := requireAdminDevice(c, h.Repo, req.DeviceID); err != nil {
			fail(c, err)
			return
		}
	}

	var (
		res *auction.Result
		err error
	)
	switch action {
	case "start":
		res, err = h.Machine.Start(ctx)
	case "pause":
		res, err = h.Machine.Pause(ctx)
	case "resume":
		res, err = h.Machine.Resume(ctx)
	case "assign", "stop":
		res, err = h.Machine.Finalize(ctx)
	case "next":
		res, err = h.Machine.Advance(ctx)
	case "reset":
		res, err = h.Machine.Reset(ctx)
	case "evaluate":
		h.evaluate(c)
		return
	case "placebid":
		if req.Amount == nil {
			Error(c, http.StatusBadRequest, "amount required", nil)
			return
		}
		res, err = h.Machine.PlaceBid(ctx, strings.TrimSpace(req.DeviceID), *req.Amount)
	default:
		Error(c, http.StatusBadRequest, "unknown action: "+action, nil)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	if h.Hub != nil {
		h.Hub.Broadcast("state_changed")
	}
	OkMessage(c, res.Message, h.stateView(res.State, nil))
}

func (h *AuctionHandler) evaluate(c *gin.Context) {
	if h.Engine == nil {
		Error(c, http.StatusServiceUnavailable, "evaluation disabled", nil)
		return
	}
	results, err := h.Engine.Compute(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if h.Hub != nil {
		h.Hub.Broadcast("evaluation_changed")
	}
	OkMessage(c, "Evaluation completed.", results)
}

func (h *AuctionHandler) state(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	snap, err := h.Repo.Snapshot(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, h.snapshotView(snap), nil)
}

func (h *AuctionHandler) stateView(state *models.AuctionState, current *models.Player) map[string]any {
	now := h.now()
	view := map[string]any{
		"status":            "",
		"current_bid":       decimal.Zero,
		"remaining_seconds": int64(0),
		"server_now":        now,
	}
	if state == nil {
		return view
	}
	view["status"] = state.Status
	view["current_bid"] = state.CurrentBid
	view["remaining_seconds"] = auction.RemainingSeconds(state, now)
	if state.CurrentPlayerID != nil {
		view["current_player_id"] = *state.CurrentPlayerID
	}
	if state.CurrentLeaderDeviceID != nil {
		view["current_leader_device_id"] = *state.CurrentLeaderDeviceID
	}
	if state.TimerEnd != nil {
		view["timer_end"] = state.TimerEnd.UTC()
	}
	if current != nil {
		view["current_player"] = current
	}
	return view
}

func (h *AuctionHandler) snapshotView(snap repository.Snapshot) map[string]any {
	sold := make(map[string]struct{}, len(snap.Squads))
	squadsByFranchise := map[string][]models.SquadPlayer{}
	for _, sp := range snap.Squads {
		sold[sp.PlayerID] = struct{}{}
		squadsByFranchise[sp.Franchise] = append(squadsByFranchise[sp.Franchise], sp)
	}
	unsold := 0
	var current *models.Player
	for i := range snap.Players {
		p := snap.Players[i]
		if _, ok := sold[p.ID]; !ok {
			unsold++
		}
		if snap.State != nil && snap.State.CurrentPlayerID != nil && p.ID == *snap.State.CurrentPlayerID {
			current = &snap.Players[i]
		}
	}
	// A player on the block is unsold until assignment lands, so the count
	// already includes the current one.
	return map[string]any{
		"auction":      h.stateView(snap.State, current),
		"players":      snap.Players,
		"teams":        snap.Teams,
		"squads":       squadsByFranchise,
		"evaluation":   snap.Evals,
		"player_count": len(snap.Players),
		"unsold_count": unsold,
	}
}

func (h *AuctionHandler) bidsByPlayer(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	playerID := strings.TrimSpace(c.Param("playerID"))
	if playerID == "" {
		Error(c, http.StatusBadRequest, "player id required", nil)
		return
	}
	bids, err := h.Repo.ListBidsByPlayer(c.Request.Context(), playerID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, bids, nil)
}

func (h *AuctionHandler) evaluationResults(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	results, err := h.Repo.ListEvaluationResults(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, results, nil)
}
