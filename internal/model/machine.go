package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Machine statuses.
const (
	MachineActive      = "active"
	MachineIdle        = "idle"
	MachineMaintenance = "maintenance"
)

// DefaultMachineModel is stored when a machine is created without a model.
const DefaultMachineModel = "Unknown"

// Machine is a monitored piece of equipment owned by a user.
type Machine struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	Name        string              `json:"name" gorm:"size:255;not null;uniqueIndex:idx_machines_owner_name,priority:2"`
	Model       string              `json:"model" gorm:"size:255;not null;default:'Unknown'"`
	Type        *string             `json:"type" gorm:"size:100"`
	Location    *string             `json:"location" gorm:"size:255"`
	RatedPower  decimal.NullDecimal `json:"rated_power" gorm:"type:decimal(10,2)"`
	Description *string             `json:"description" gorm:"type:text"`
	Status      string              `json:"status" gorm:"size:20;not null;default:'active';index"`
	UserID      uint                `json:"user_id" gorm:"not null;uniqueIndex:idx_machines_owner_name,priority:1"`
	CreatedAt   time.Time           `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
