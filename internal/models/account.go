package models

import (
	"database/sql"
	"time"
)

// Account represents a monitored upstream account
type Account struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Username   string `gorm:"type:varchar(100);not null;uniqueIndex:perch_accounts_ux1;column:username"`
	UpstreamID string `gorm:"type:varchar(100);not null;uniqueIndex:perch_accounts_ux2;column:upstream_id"`

	// Profile fields
	DisplayName string `gorm:"type:varchar(200);not null;default:'';column:display_name"`
	AvatarURL   string `gorm:"type:varchar(1024);not null;default:'';column:avatar_url"`

	// Monitoring state
	Active        bool         `gorm:"not null;default:true;column:active"`
	CreatedAt     time.Time    `gorm:"not null;column:created_at"`
	UpdatedAt     time.Time    `gorm:"not null;column:updated_at"`
	LastCheckedAt sql.NullTime `gorm:"column:last_checked_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "perch_accounts"
}
