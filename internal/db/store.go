package db

import (
	"context"
	"time"

	"github.com/perchlabs/perch/internal/models"
)

// Store bundles the per-entity repositories behind the narrow surface
// the monitor service consumes.
type Store struct {
	accounts *AccountRepository
	posts    *PostRepository
	replies  *ReplyRepository
	logs     *LogRepository
}

// NewStore creates a store over the given repository
func NewStore(repo *Repository) *Store {
	return &Store{
		accounts: NewAccountRepository(repo),
		posts:    NewPostRepository(repo),
		replies:  NewReplyRepository(repo),
		logs:     NewLogRepository(repo),
	}
}

// AccountByUpstreamID retrieves an account by its upstream id
func (s *Store) AccountByUpstreamID(ctx context.Context, upstreamID string) (*models.Account, error) {
	return s.accounts.GetByUpstreamID(ctx, upstreamID)
}

// UpsertAccount inserts or updates an account keyed on username
func (s *Store) UpsertAccount(ctx context.Context, account *models.Account) (bool, error) {
	return s.accounts.Upsert(ctx, account)
}

// ListActiveAccounts retrieves all accounts with monitoring enabled
func (s *Store) ListActiveAccounts(ctx context.Context) ([]models.Account, error) {
	return s.accounts.ListActive(ctx)
}

// TouchLastChecked sets the last-checked timestamp for an account
func (s *Store) TouchLastChecked(ctx context.Context, accountID int64, t time.Time) error {
	return s.accounts.TouchLastChecked(ctx, accountID, t)
}

// LatestPost retrieves the most recently published post for an account
func (s *Store) LatestPost(ctx context.Context, accountID int64) (*models.Post, error) {
	return s.posts.LatestByAccount(ctx, accountID)
}

// UpsertPost inserts or updates a post keyed on its upstream id
func (s *Store) UpsertPost(ctx context.Context, post *models.Post) (bool, error) {
	return s.posts.Upsert(ctx, post)
}

// UpsertReply inserts or updates a reply keyed on its upstream id
func (s *Store) UpsertReply(ctx context.Context, reply *models.Reply) (bool, error) {
	return s.replies.Upsert(ctx, reply)
}

// AppendLog writes one ingestion log row
func (s *Store) AppendLog(ctx context.Context, log *models.IngestionLog) error {
	return s.logs.Create(ctx, log)
}

// DeletePostsBefore removes posts published before the cutoff
func (s *Store) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.posts.DeletePublishedBefore(ctx, cutoff)
}

// DeleteRepliesBefore removes replies published before the cutoff
func (s *Store) DeleteRepliesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.replies.DeletePublishedBefore(ctx, cutoff)
}

// DeleteLogsBefore removes log rows created before the cutoff
func (s *Store) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.logs.DeleteCreatedBefore(ctx, cutoff)
}
