package monitor

import (
	"context"
	"time"

	"github.com/perchlabs/perch/internal/models"
	"github.com/perchlabs/perch/internal/twitter"
)

// UpstreamClient is the slice of the upstream API the monitor consumes
type UpstreamClient interface {
	ResolveAccount(ctx context.Context, username string) (*twitter.Profile, error)
	FetchPosts(ctx context.Context, accountID string, max int, sinceID string) ([]twitter.Post, error)
	FetchReplies(ctx context.Context, postID string, max int) ([]twitter.Reply, error)
}

// Store is the slice of the record store the monitor consumes
type Store interface {
	AccountByUpstreamID(ctx context.Context, upstreamID string) (*models.Account, error)
	UpsertAccount(ctx context.Context, account *models.Account) (bool, error)
	ListActiveAccounts(ctx context.Context) ([]models.Account, error)
	TouchLastChecked(ctx context.Context, accountID int64, t time.Time) error

	LatestPost(ctx context.Context, accountID int64) (*models.Post, error)
	UpsertPost(ctx context.Context, post *models.Post) (bool, error)
	UpsertReply(ctx context.Context, reply *models.Reply) (bool, error)

	AppendLog(ctx context.Context, log *models.IngestionLog) error

	DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteRepliesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
