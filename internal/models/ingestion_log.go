package models

import (
	"time"
)

// RunStatus is the outcome recorded for one ingestion run
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
	RunStatusPartial RunStatus = "partial"
)

// IngestionLog is the append-only audit row written once per
// ingestion run for one account
type IngestionLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement;column:id"`

	AccountID int64    `gorm:"not null;index:perch_logs_ix1;column:account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE"`

	Status         RunStatus `gorm:"type:varchar(20);not null;column:status"`
	PostsFetched   int       `gorm:"not null;default:0;column:posts_fetched"`
	RepliesFetched int       `gorm:"not null;default:0;column:replies_fetched"`
	ErrorMessage   string    `gorm:"type:text;not null;default:'';column:error_message"`

	CreatedAt time.Time `gorm:"not null;index:perch_logs_ix2;column:created_at"`
}

// TableName specifies the table name for IngestionLog
func (IngestionLog) TableName() string {
	return "perch_ingestion_logs"
}
