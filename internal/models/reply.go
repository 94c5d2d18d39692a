package models

import (
	"time"
)

// Reply represents a reply under a captured post. Replies are only
// stored when their author is itself a monitored account.
type Reply struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UpstreamID string `gorm:"type:varchar(100);not null;uniqueIndex:perch_replies_ux1;column:upstream_id"`

	PostID int64 `gorm:"not null;index:perch_replies_ix1;column:post_id"`
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`

	AuthorID int64    `gorm:"not null;index:perch_replies_ix2;column:author_id"`
	Author   *Account `gorm:"foreignKey:AuthorID;references:ID"`

	Text        string    `gorm:"type:text;not null;column:text"`
	PublishedAt time.Time `gorm:"not null;column:published_at"`

	// Counter snapshots from the latest fetch
	LikeCount  int64 `gorm:"not null;default:0;column:like_count"`
	ReplyCount int64 `gorm:"not null;default:0;column:reply_count"`

	FetchedAt time.Time `gorm:"not null;column:fetched_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Reply
func (Reply) TableName() string {
	return "perch_replies"
}
