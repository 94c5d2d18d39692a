package models

import (
	"encoding/json"
	"time"
)

// PostKind classifies a post. A post is exactly one of original,
// repost, or quote; ReferencedID is populated only for the latter two.
type PostKind string

const (
	PostKindOriginal PostKind = "original"
	PostKindRepost   PostKind = "repost"
	PostKindQuote    PostKind = "quote"
)

// Post represents one upstream post captured for a monitored account
type Post struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UpstreamID string `gorm:"type:varchar(100);not null;uniqueIndex:perch_posts_ux1;column:upstream_id"`

	AccountID int64    `gorm:"not null;index:perch_posts_ix1;column:account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE"`

	Kind        PostKind  `gorm:"type:varchar(20);not null;default:'original';column:kind"`
	Text        string    `gorm:"type:text;not null;column:text"`
	PublishedAt time.Time `gorm:"not null;index:perch_posts_ix2,sort:desc;column:published_at"`

	// Counter snapshots from the latest fetch
	RepostCount int64 `gorm:"not null;default:0;column:repost_count"`
	ReplyCount  int64 `gorm:"not null;default:0;column:reply_count"`
	LikeCount   int64 `gorm:"not null;default:0;column:like_count"`
	QuoteCount  int64 `gorm:"not null;default:0;column:quote_count"`

	// Upstream id of the reposted or quoted post; empty for originals
	ReferencedID string `gorm:"type:varchar(100);not null;default:'';column:referenced_id"`

	HasMedia  bool   `gorm:"not null;default:false;column:has_media"`
	MediaURLs string `gorm:"type:text;not null;default:'[]';column:media_urls"`

	FetchedAt time.Time `gorm:"not null;column:fetched_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "perch_posts"
}

// SetMediaURLs stores the media URL list as JSON
func (p *Post) SetMediaURLs(urls []string) {
	if len(urls) == 0 {
		p.MediaURLs = "[]"
		return
	}
	data, err := json.Marshal(urls)
	if err != nil {
		p.MediaURLs = "[]"
		return
	}
	p.MediaURLs = string(data)
}

// GetMediaURLs decodes the stored media URL list
func (p *Post) GetMediaURLs() []string {
	var urls []string
	if err := json.Unmarshal([]byte(p.MediaURLs), &urls); err != nil {
		return nil
	}
	return urls
}
