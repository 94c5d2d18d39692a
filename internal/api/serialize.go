package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/perchlabs/perch/internal/models"
)

func accountJSON(a *models.Account) gin.H {
	var lastChecked *time.Time
	if a.LastCheckedAt.Valid {
		t := a.LastCheckedAt.Time
		lastChecked = &t
	}
	return gin.H{
		"id":              a.ID,
		"username":        a.Username,
		"upstream_id":     a.UpstreamID,
		"display_name":    a.DisplayName,
		"avatar_url":      a.AvatarURL,
		"active":          a.Active,
		"created_at":      a.CreatedAt,
		"updated_at":      a.UpdatedAt,
		"last_checked_at": lastChecked,
	}
}

func postJSON(p *models.Post) gin.H {
	return gin.H{
		"id":            p.ID,
		"upstream_id":   p.UpstreamID,
		"account_id":    p.AccountID,
		"kind":          p.Kind,
		"text":          p.Text,
		"published_at":  p.PublishedAt,
		"repost_count":  p.RepostCount,
		"reply_count":   p.ReplyCount,
		"like_count":    p.LikeCount,
		"quote_count":   p.QuoteCount,
		"referenced_id": p.ReferencedID,
		"has_media":     p.HasMedia,
		"media_urls":    p.GetMediaURLs(),
		"fetched_at":    p.FetchedAt,
		"updated_at":    p.UpdatedAt,
	}
}

func replyJSON(r *models.Reply) gin.H {
	return gin.H{
		"id":           r.ID,
		"upstream_id":  r.UpstreamID,
		"post_id":      r.PostID,
		"author_id":    r.AuthorID,
		"text":         r.Text,
		"published_at": r.PublishedAt,
		"like_count":   r.LikeCount,
		"reply_count":  r.ReplyCount,
		"fetched_at":   r.FetchedAt,
		"updated_at":   r.UpdatedAt,
	}
}

func logJSON(l *models.IngestionLog) gin.H {
	return gin.H{
		"id":              l.ID,
		"account_id":      l.AccountID,
		"status":          l.Status,
		"posts_fetched":   l.PostsFetched,
		"replies_fetched": l.RepliesFetched,
		"error_message":   l.ErrorMessage,
		"created_at":      l.CreatedAt,
	}
}

func scheduleJSON(s *models.Schedule) gin.H {
	return gin.H{
		"interval_minutes": s.IntervalMinutes,
		"enabled":          s.Enabled,
		"updated_at":       s.UpdatedAt,
	}
}
