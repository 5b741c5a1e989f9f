package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

type Config struct {
	Franchises  []string
	TeamPurse   decimal.Decimal
	StartWindow time.Duration
	BidWindow   time.Duration
}

// Machine owns every transition of the live auction row. All mutating
// operations read the current snapshot, validate, and write the new snapshot
// conditioned on the version read; a lost race surfaces as a conflict error
// the caller may retry. Deadlines are plain timestamps, never enforced by a
// background job: a running lot past its deadline stays running until an
// admin finalizes or advances it.
type Machine struct {
	Repo   repository.Repository
	Queue  *Queue
	Ledger *Ledger
	Logger *zap.Logger
	Config Config

	// Now is replaceable in tests; defaults to UTC wall clock.
	Now func() time.Time
}

// Result is the outcome of a successful operation.
type Result struct {
	State   *models.AuctionState
	Message string
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// State returns the live auction row, creating the initial waiting row on
// first use.
func (m *Machine) State(ctx context.Context) (*models.AuctionState, error) {
	state, err := m.Repo.GetAuctionState(ctx)
	if err != nil {
		return nil, persistence("load auction state", err)
	}
	if state != nil {
		return state, nil
	}
	created := &models.AuctionState{
		Status:     models.StatusWaiting,
		CurrentBid: decimal.Zero,
	}
	if err := m.Repo.CreateAuctionState(ctx, created); err != nil {
		return nil, persistence("create auction state", err)
	}
	return created, nil
}

// save commits the mutated state inside tx, conditioned on the version the
// operation read.
func (m *Machine) save(ctx context.Context, tx *gorm.DB, state *models.AuctionState) error {
	ok, err := m.Repo.SaveAuctionStateTx(ctx, tx, state)
	if err != nil {
		return persistence("save auction state", err)
	}
	if !ok {
		return conflictf("auction state changed concurrently, retry")
	}
	return nil
}

// Start offers the next unsold player. Valid from waiting, assigned or
// completed; a leftover assigned player is cleared first. Exhausting the
// catalog completes the auction, which is a normal end state.
func (m *Machine) Start(ctx context.Context) (*Result, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.Status == models.StatusRunning || state.Status == models.StatusPaused {
		return nil, statef("auction is already in progress")
	}

	playerID := state.CurrentPlayerID
	bid := state.CurrentBid
	if playerID != nil {
		sold, err := m.Repo.GetSquadPlayerByPlayerID(ctx, *playerID)
		if err != nil {
			return nil, persistence("check sold player", err)
		}
		if state.Status == models.StatusAssigned || sold != nil {
			playerID = nil
			bid = decimal.Zero
		}
	}

	message := "Auction started."
	if playerID == nil {
		next, err := m.Queue.NextUnsold(ctx, nil)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return m.complete(ctx, state)
		}
		playerID = &next.ID
		bid = next.BasePrice
	}

	deadline := m.now().Add(m.Config.StartWindow)
	state.Status = models.StatusRunning
	state.CurrentPlayerID = playerID
	state.CurrentBid = money(bid)
	state.CurrentLeaderDeviceID = nil
	state.TimerEnd = &deadline

	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: message}, nil
}

// PlaceBid validates an actor's bid and commits it. Each precondition fails
// distinctly; a rejected bid changes nothing. Equal amounts never replace
// the leader, so the first committed bid of a given amount wins ties.
func (m *Machine) PlaceBid(ctx context.Context, deviceID string, amount decimal.Decimal) (*Result, error) {
	if deviceID == "" {
		return nil, validationf("device id is required")
	}
	if !amount.IsPositive() {
		return nil, validationf("bid amount must be a positive number")
	}
	amount = money(amount)

	device, err := m.Repo.GetDeviceByID(ctx, deviceID)
	if err != nil {
		return nil, persistence("load device", err)
	}
	if device == nil {
		return nil, notFoundf("device not found")
	}
	if !device.Active {
		return nil, authf("device is inactive")
	}
	if device.Role != models.DeviceRoleAuction {
		return nil, authf("only auction devices can place bids")
	}
	if device.Franchise == nil {
		return nil, authf("auction device has no franchise assigned")
	}

	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.Status != models.StatusRunning {
		return nil, statef("auction is not currently running")
	}
	if state.CurrentPlayerID == nil {
		return nil, statef("no active player to bid on")
	}
	if !amount.GreaterThan(state.CurrentBid) {
		return nil, validationf("bid must be greater than current bid")
	}

	team, err := m.Repo.GetTeamByFranchise(ctx, *device.Franchise)
	if err != nil {
		return nil, persistence("load team", err)
	}
	if team == nil {
		return nil, notFoundf("team not found for franchise %s", *device.Franchise)
	}
	if team.Purse.LessThan(amount) {
		return nil, resourcef("insufficient purse for this bid")
	}

	deadline := m.now().Add(m.Config.BidWindow)
	state.CurrentBid = amount
	state.CurrentLeaderDeviceID = &device.ID
	state.TimerEnd = &deadline

	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := m.Repo.InsertBidTx(ctx, tx, &models.Bid{
			PlayerID:  *state.CurrentPlayerID,
			DeviceID:  device.ID,
			Franchise: *device.Franchise,
			Amount:    amount,
		}); err != nil {
			return persistence("record bid", err)
		}
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: "Bid placed successfully."}, nil
}

// Pause freezes a running auction. The deadline stays as-is but is not
// honored on resume: resuming grants a fresh bidding window.
func (m *Machine) Pause(ctx context.Context) (*Result, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.Status != models.StatusRunning {
		return nil, statef("auction can only be paused from running state")
	}
	state.Status = models.StatusPaused
	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: "Auction paused."}, nil
}

// Resume restarts bidding with a full bid window.
func (m *Machine) Resume(ctx context.Context) (*Result, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.Status != models.StatusPaused {
		return nil, statef("auction is not paused")
	}
	deadline := m.now().Add(m.Config.BidWindow)
	state.Status = models.StatusRunning
	state.TimerEnd = &deadline
	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: "Auction resumed."}, nil
}

// Finalize settles the current lot. Without a leader the player is marked
// unsold and the auction returns to waiting. With a leader, the squad write
// and the purse debit commit in one transaction; the leader's purse is
// re-checked first so an intervening debit fails the call rather than
// driving the purse negative.
func (m *Machine) Finalize(ctx context.Context) (*Result, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.Status != models.StatusRunning && state.Status != models.StatusPaused {
		return nil, statef("auction is not running or paused")
	}
	if state.CurrentPlayerID == nil {
		return nil, statef("no current player available")
	}

	if state.CurrentLeaderDeviceID == nil {
		state.Status = models.StatusWaiting
		state.CurrentPlayerID = nil
		state.CurrentBid = decimal.Zero
		state.TimerEnd = nil
		if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
			return m.save(ctx, tx, state)
		}); err != nil {
			return nil, err
		}
		return &Result{State: state, Message: "No bids. Player marked unsold."}, nil
	}

	leader, err := m.Repo.GetDeviceByID(ctx, *state.CurrentLeaderDeviceID)
	if err != nil {
		return nil, persistence("load winning device", err)
	}
	if leader == nil {
		return nil, notFoundf("winning device not found")
	}
	if leader.Franchise == nil {
		return nil, authf("winning device has no franchise")
	}
	team, err := m.Repo.GetTeamByFranchise(ctx, *leader.Franchise)
	if err != nil {
		return nil, persistence("load winning team", err)
	}
	if team == nil {
		return nil, notFoundf("winning team not found")
	}
	price := money(state.CurrentBid)
	if team.Purse.LessThan(price) {
		return nil, resourcef("winning team purse is insufficient for assignment")
	}

	state.Status = models.StatusAssigned
	state.TimerEnd = nil
	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := m.Repo.InsertSquadPlayerTx(ctx, tx, &models.SquadPlayer{
			Franchise: *leader.Franchise,
			PlayerID:  *state.CurrentPlayerID,
			Price:     price,
		}); err != nil {
			return persistence("record squad player", err)
		}
		if err := m.Ledger.Debit(ctx, tx, *leader.Franchise, price); err != nil {
			return err
		}
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}

	if m.Logger != nil {
		m.Logger.Info("player assigned",
			zap.String("franchise", *leader.Franchise),
			zap.String("player_id", *state.CurrentPlayerID),
			zap.String("price", price.String()),
		)
	}
	return &Result{
		State:   state,
		Message: fmt.Sprintf("Player assigned to %s for %s Cr.", *leader.Franchise, price.String()),
	}, nil
}

// Advance moves past the current player regardless of whether it sold. When
// the catalog is exhausted the auction completes, same as Start.
func (m *Machine) Advance(ctx context.Context) (*Result, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	next, err := m.Queue.NextUnsold(ctx, state.CurrentPlayerID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return m.complete(ctx, state)
	}

	deadline := m.now().Add(m.Config.StartWindow)
	state.Status = models.StatusRunning
	state.CurrentPlayerID = &next.ID
	state.CurrentBid = money(next.BasePrice)
	state.CurrentLeaderDeviceID = nil
	state.TimerEnd = &deadline
	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: fmt.Sprintf("Next player: %s", next.Name)}, nil
}

// Reset wipes bids, squads and evaluation results, restores every purse and
// returns to waiting, all in a single transaction.
func (m *Machine) Reset(ctx context.Context) (*Result, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	state.Status = models.StatusWaiting
	state.CurrentPlayerID = nil
	state.CurrentBid = decimal.Zero
	state.CurrentLeaderDeviceID = nil
	state.TimerEnd = nil

	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		if err := m.Repo.DeleteAllBidsTx(ctx, tx); err != nil {
			return persistence("clear bids", err)
		}
		if err := m.Repo.DeleteAllSquadPlayersTx(ctx, tx); err != nil {
			return persistence("clear squads", err)
		}
		if err := m.Repo.DeleteAllEvaluationResultsTx(ctx, tx); err != nil {
			return persistence("clear evaluation results", err)
		}
		if err := m.Ledger.ResetAll(ctx, tx, m.Config.Franchises, m.Config.TeamPurse); err != nil {
			return err
		}
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: "Auction reset completed."}, nil
}

func (m *Machine) complete(ctx context.Context, state *models.AuctionState) (*Result, error) {
	state.Status = models.StatusCompleted
	state.CurrentPlayerID = nil
	state.CurrentBid = decimal.Zero
	state.CurrentLeaderDeviceID = nil
	state.TimerEnd = nil
	if err := m.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return m.save(ctx, tx, state)
	}); err != nil {
		return nil, err
	}
	return &Result{State: state, Message: "Auction completed. No players left."}, nil
}

// RemainingSeconds derives the advisory countdown at read time.
func RemainingSeconds(state *models.AuctionState, now time.Time) int64 {
	if state == nil || state.TimerEnd == nil {
		return 0
	}
	d := state.TimerEnd.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d.Seconds())
}
