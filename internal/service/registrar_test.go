package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

type deviceStore struct {
	repository.Repository

	devices []models.Device
	links   map[string]string
}

func (s *deviceStore) GetDeviceByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error) {
	for i := range s.devices {
		if s.devices[i].Fingerprint == fingerprint {
			copied := s.devices[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *deviceStore) CreateDevice(ctx context.Context, item *models.Device) error {
	s.devices = append(s.devices, *item)
	return nil
}

func (s *deviceStore) TouchDevice(ctx context.Context, id string, at time.Time) error {
	for i := range s.devices {
		if s.devices[i].ID == id {
			s.devices[i].ConnectedAt = at
			s.devices[i].Active = true
		}
	}
	return nil
}

func (s *deviceStore) CountActiveDevices(ctx context.Context) (int64, error) {
	var n int64
	for i := range s.devices {
		if s.devices[i].Active {
			n++
		}
	}
	return n, nil
}

func (s *deviceStore) ListAssignedFranchises(ctx context.Context) ([]string, error) {
	var out []string
	for i := range s.devices {
		if s.devices[i].Franchise != nil {
			out = append(out, *s.devices[i].Franchise)
		}
	}
	return out, nil
}

func (s *deviceStore) LinkTeamDevice(ctx context.Context, franchise string, deviceID string) error {
	if s.links == nil {
		s.links = map[string]string{}
	}
	s.links[franchise] = deviceID
	return nil
}

func newTestRegistrar(store *deviceStore) *Registrar {
	return &Registrar{
		Repo:        store,
		Franchises:  []string{"MI", "CSK", "RCB"},
		DeviceLimit: 6,
		Now:         func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) },
	}
}

func TestRegisterAssignsRolesBySlot(t *testing.T) {
	store := &deviceStore{}
	r := newTestRegistrar(store)
	ctx := context.Background()

	wantRoles := []string{
		models.DeviceRoleAdmin,
		models.DeviceRoleView,
		models.DeviceRoleAuction,
		models.DeviceRoleAuction,
		models.DeviceRoleAuction,
		models.DeviceRoleBackup,
	}
	seen := map[string]bool{}
	for slot, want := range wantRoles {
		reg, err := r.Register(ctx, fmt.Sprintf("fp-%d", slot))
		if err != nil {
			t.Fatalf("register slot %d failed: %v", slot+1, err)
		}
		if !reg.Allowed {
			t.Fatalf("slot %d rejected: %s", slot+1, reg.Reason)
		}
		if reg.Device.Role != want {
			t.Fatalf("slot %d: expected role %s, got %s", slot+1, want, reg.Device.Role)
		}
		if want == models.DeviceRoleAuction {
			if reg.Device.Franchise == nil {
				t.Fatalf("auction device must get a franchise")
			}
			if seen[*reg.Device.Franchise] {
				t.Fatalf("franchise %s assigned twice", *reg.Device.Franchise)
			}
			seen[*reg.Device.Franchise] = true
			if store.links[*reg.Device.Franchise] != reg.Device.ID {
				t.Fatalf("team not linked to device")
			}
		} else if reg.Device.Franchise != nil {
			t.Fatalf("%s device must not get a franchise", want)
		}
	}

	// Seventh device exceeds the limit.
	reg, err := r.Register(ctx, "fp-over")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if reg.Allowed {
		t.Fatalf("expected device limit rejection")
	}
}

func TestRegisterKnownFingerprintReconnects(t *testing.T) {
	store := &deviceStore{}
	r := newTestRegistrar(store)
	ctx := context.Background()

	first, err := r.Register(ctx, "fp-1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	store.devices[0].Active = false

	again, err := r.Register(ctx, "fp-1")
	if err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if !again.Allowed {
		t.Fatalf("reconnect rejected: %s", again.Reason)
	}
	if again.Device.ID != first.Device.ID {
		t.Fatalf("reconnect must keep the device identity")
	}
	if !store.devices[0].Active {
		t.Fatalf("reconnect must reactivate the device")
	}
	if len(store.devices) != 1 {
		t.Fatalf("reconnect must not create a new device")
	}
}

func TestRegisterEmptyFingerprint(t *testing.T) {
	r := newTestRegistrar(&deviceStore{})
	reg, err := r.Register(context.Background(), "   ")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if reg.Allowed {
		t.Fatalf("empty fingerprint must be rejected")
	}
}
