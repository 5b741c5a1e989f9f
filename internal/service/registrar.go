package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

// Registrar assigns roles to devices by arrival slot: the first device is
// admin, the second the shared view screen, the next ten are bidding devices
// bound to one franchise each, and anything beyond that is a backup.
type Registrar struct {
	Repo        repository.Repository
	Logger      *zap.Logger
	Franchises  []string
	DeviceLimit int

	Now func() time.Time
}

type Registration struct {
	Allowed bool
	Reason  string
	Device  *models.Device
}

func (r *Registrar) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Registrar) roleBySlot(slot int) string {
	switch {
	case slot == 1:
		return models.DeviceRoleAdmin
	case slot == 2:
		return models.DeviceRoleView
	case slot >= 3 && slot <= 2+len(r.Franchises):
		return models.DeviceRoleAuction
	default:
		return models.DeviceRoleBackup
	}
}

// Register upserts a device by fingerprint. Re-registration refreshes the
// connection timestamp and reactivates; a new fingerprint claims the next
// slot, subject to the active-device limit.
func (r *Registrar) Register(ctx context.Context, fingerprint string) (Registration, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return Registration{Allowed: false, Reason: "missing fingerprint"}, nil
	}

	existing, err := r.Repo.GetDeviceByFingerprint(ctx, fingerprint)
	if err != nil {
		return Registration{}, err
	}
	if existing != nil {
		if err := r.Repo.TouchDevice(ctx, existing.ID, r.now()); err != nil {
			return Registration{}, err
		}
		existing.Active = true
		return Registration{Allowed: true, Device: existing}, nil
	}

	active, err := r.Repo.CountActiveDevices(ctx)
	if err != nil {
		return Registration{}, err
	}
	slot := int(active) + 1
	if slot > r.DeviceLimit {
		return Registration{
			Allowed: false,
			Reason:  fmt.Sprintf("device limit reached (max %d)", r.DeviceLimit),
		}, nil
	}

	role := r.roleBySlot(slot)
	var franchise *string
	if role == models.DeviceRoleAuction {
		assigned, err := r.Repo.ListAssignedFranchises(ctx)
		if err != nil {
			return Registration{}, err
		}
		used := make(map[string]struct{}, len(assigned))
		for _, f := range assigned {
			used[f] = struct{}{}
		}
		var available []string
		for _, f := range r.Franchises {
			if _, ok := used[f]; !ok {
				available = append(available, f)
			}
		}
		if len(available) == 0 {
			return Registration{
				Allowed: false,
				Reason:  "no franchise available for this auction device",
			}, nil
		}
		pick := available[rand.Intn(len(available))]
		franchise = &pick
	}

	device := &models.Device{
		ID:          uuid.NewString(),
		Fingerprint: fingerprint,
		Role:        role,
		Franchise:   franchise,
		Active:      true,
		ConnectedAt: r.now(),
	}
	if err := r.Repo.CreateDevice(ctx, device); err != nil {
		return Registration{}, err
	}
	if role == models.DeviceRoleAuction && franchise != nil {
		if err := r.Repo.LinkTeamDevice(ctx, *franchise, device.ID); err != nil {
			return Registration{}, err
		}
	}

	if r.Logger != nil {
		r.Logger.Info("device registered",
			zap.String("device_id", device.ID),
			zap.String("role", device.Role),
			zap.Int("slot", slot),
		)
	}
	return Registration{Allowed: true, Device: device}, nil
}
