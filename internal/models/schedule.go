package models

import (
	"time"
)

// Schedule is the explicit configuration record for the periodic
// ingestion trigger. A single row holds the current cadence; the
// scheduler re-reads it whenever it is updated through the API.
type Schedule struct {
	ID              int64     `gorm:"primaryKey;autoIncrement;column:id"`
	IntervalMinutes int       `gorm:"not null;default:30;column:interval_minutes"`
	Enabled         bool      `gorm:"not null;default:true;column:enabled"`
	UpdatedAt       time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Schedule
func (Schedule) TableName() string {
	return "perch_schedule"
}
