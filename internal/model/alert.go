package model

import "time"

// Alert severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
)

// Alert is a condition raised against a machine.
type Alert struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MachineID uint      `json:"machine_id" gorm:"not null;index"`
	AlertType string    `json:"alert_type" gorm:"size:100;not null"`
	Severity  string    `json:"severity" gorm:"size:20;not null;default:'medium'"`
	Message   string    `json:"message" gorm:"type:text"`
	Resolved  bool      `json:"resolved" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Relations
	Machine *Machine `json:"-" gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE"`
}

// AlertWithMachine is an alert joined with the name of its machine.
// Machine duplicates MachineName under the key the dashboard reads.
type AlertWithMachine struct {
	ID          uint      `json:"id"`
	MachineID   uint      `json:"machine_id"`
	AlertType   string    `json:"alert_type"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
	MachineName string    `json:"machine_name"`
	Machine     string    `json:"machine" gorm:"-"`
}
