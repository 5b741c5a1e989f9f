package models

import "time"

const (
	DeviceRoleAdmin   = "admin"
	DeviceRoleView    = "view"
	DeviceRoleAuction = "auction"
	DeviceRoleBackup  = "backup"
)

// Device is a registered actor. Slot 1 is admin, slot 2 view, slots 3-12
// bidding devices each bound to one franchise, anything past that backup.
// The fingerprint is the registration credential and never leaves the
// server in any response.
type Device struct {
	ID          string    `gorm:"primaryKey;type:text"`
	Fingerprint string    `gorm:"type:text;uniqueIndex;not null" json:"-"`
	Role        string    `gorm:"type:varchar(20);not null;index"`
	Franchise   *string   `gorm:"type:varchar(20)"`
	Active      bool      `gorm:"not null;default:true;index"`
	ConnectedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (Device) TableName() string {
	return "devices"
}
