package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/perchlabs/perch/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AccountRepository provides account-related database operations
type AccountRepository struct {
	*Repository
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(repo *Repository) *AccountRepository {
	return &AccountRepository{Repository: repo}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByUpstreamID retrieves an account by its upstream account id
func (r *AccountRepository) GetByUpstreamID(ctx context.Context, upstreamID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("upstream_id = ?", upstreamID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Upsert inserts or updates an account keyed on username.
// Returns true when a new row was created.
func (r *AccountRepository) Upsert(ctx context.Context, account *models.Account) (bool, error) {
	existing, err := r.GetByUsername(ctx, account.Username)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	existing.UpstreamID = account.UpstreamID
	existing.DisplayName = account.DisplayName
	existing.AvatarURL = account.AvatarURL
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return false, err
	}
	*account = *existing
	return false, nil
}

// ListActive retrieves all accounts with monitoring enabled
func (r *AccountRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// List retrieves all accounts, newest first
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// SetActive toggles the monitoring flag for an account
func (r *AccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// TouchLastChecked sets the last-checked timestamp for an account
func (r *AccountRepository) TouchLastChecked(ctx context.Context, id int64, t time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_checked_at", t).Error
}

// Count returns total and active account counts
func (r *AccountRepository) Count(ctx context.Context) (total int64, active int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.Account{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&models.Account{}).Where("active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// PostFilter narrows post list queries
type PostFilter struct {
	AccountID int64
	Kind      models.PostKind
	HasMedia  *bool
	Limit     int
	Offset    int
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetByUpstreamID retrieves a post by its upstream post id
func (r *PostRepository) GetByUpstreamID(ctx context.Context, upstreamID string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("upstream_id = ?", upstreamID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// LatestByAccount retrieves the most recently published post for an
// account, or nil when the account has no stored posts
func (r *PostRepository) LatestByAccount(ctx context.Context, accountID int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("published_at DESC").
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Upsert inserts or updates a post keyed on its upstream id.
// Returns true when a new row was created; on update all mutable
// fields including counters are overwritten.
func (r *PostRepository) Upsert(ctx context.Context, post *models.Post) (bool, error) {
	existing, err := r.GetByUpstreamID(ctx, post.UpstreamID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	existing.Kind = post.Kind
	existing.Text = post.Text
	existing.PublishedAt = post.PublishedAt
	existing.RepostCount = post.RepostCount
	existing.ReplyCount = post.ReplyCount
	existing.LikeCount = post.LikeCount
	existing.QuoteCount = post.QuoteCount
	existing.ReferencedID = post.ReferencedID
	existing.HasMedia = post.HasMedia
	existing.MediaURLs = post.MediaURLs
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return false, err
	}
	*post = *existing
	return false, nil
}

// List retrieves posts matching the filter, newest first
func (r *PostRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AccountID != 0 {
		query = query.Where("account_id = ?", filter.AccountID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.HasMedia != nil {
		query = query.Where("has_media = ?", *filter.HasMedia)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var posts []models.Post
	if err := query.Order("published_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountSince counts posts published at or after the given time
func (r *PostRepository) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("published_at >= ?", t).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeletePublishedBefore removes posts published before the cutoff.
// Replies under deleted posts go with them via the FK cascade.
func (r *PostRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("published_at < ?", cutoff).
		Delete(&models.Post{})
	return result.RowsAffected, result.Error
}

// ReplyRepository provides reply-related database operations
type ReplyRepository struct {
	*Repository
}

// NewReplyRepository creates a new reply repository
func NewReplyRepository(repo *Repository) *ReplyRepository {
	return &ReplyRepository{Repository: repo}
}

// GetByUpstreamID retrieves a reply by its upstream reply id
func (r *ReplyRepository) GetByUpstreamID(ctx context.Context, upstreamID string) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Where("upstream_id = ?", upstreamID).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

// Upsert inserts or updates a reply keyed on its upstream id.
// Returns true when a new row was created.
func (r *ReplyRepository) Upsert(ctx context.Context, reply *models.Reply) (bool, error) {
	existing, err := r.GetByUpstreamID(ctx, reply.UpstreamID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	existing.Text = reply.Text
	existing.PublishedAt = reply.PublishedAt
	existing.LikeCount = reply.LikeCount
	existing.ReplyCount = reply.ReplyCount
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return false, err
	}
	*reply = *existing
	return false, nil
}

// ListByPost retrieves all replies under a post, newest first
func (r *ReplyRepository) ListByPost(ctx context.Context, postID int64) ([]models.Reply, error) {
	var replies []models.Reply
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("published_at DESC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// List retrieves replies, newest first
func (r *ReplyRepository) List(ctx context.Context, limit, offset int) ([]models.Reply, error) {
	query := r.db.WithContext(ctx).Model(&models.Reply{})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var replies []models.Reply
	if err := query.Order("published_at DESC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// CountSince counts replies published at or after the given time
func (r *ReplyRepository) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Reply{}).
		Where("published_at >= ?", t).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeletePublishedBefore removes replies published before the cutoff
func (r *ReplyRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("published_at < ?", cutoff).
		Delete(&models.Reply{})
	return result.RowsAffected, result.Error
}

// LogFilter narrows ingestion log list queries
type LogFilter struct {
	AccountID int64
	Status    models.RunStatus
	Limit     int
	Offset    int
}

// LogRepository provides ingestion log database operations
type LogRepository struct {
	*Repository
}

// NewLogRepository creates a new ingestion log repository
func NewLogRepository(repo *Repository) *LogRepository {
	return &LogRepository{Repository: repo}
}

// Create appends one ingestion log row
func (r *LogRepository) Create(ctx context.Context, log *models.IngestionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List retrieves ingestion logs matching the filter, newest first
func (r *LogRepository) List(ctx context.Context, filter LogFilter) ([]models.IngestionLog, error) {
	query := r.db.WithContext(ctx).Model(&models.IngestionLog{})
	if filter.AccountID != 0 {
		query = query.Where("account_id = ?", filter.AccountID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var logs []models.IngestionLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Latest retrieves the most recent ingestion log row
func (r *LogRepository) Latest(ctx context.Context) (*models.IngestionLog, error) {
	var log models.IngestionLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// Count returns the total number of ingestion log rows
func (r *LogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.IngestionLog{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteCreatedBefore removes log rows created before the cutoff
func (r *LogRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.IngestionLog{})
	return result.RowsAffected, result.Error
}

// ScheduleRepository provides schedule configuration operations
type ScheduleRepository struct {
	*Repository
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(repo *Repository) *ScheduleRepository {
	return &ScheduleRepository{Repository: repo}
}

// Get retrieves the schedule record, creating the default row on
// first access
func (r *ScheduleRepository) Get(ctx context.Context) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := r.db.WithContext(ctx).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			schedule = models.Schedule{IntervalMinutes: 30, Enabled: true}
			if err := r.db.WithContext(ctx).Create(&schedule).Error; err != nil {
				return nil, err
			}
			return &schedule, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// Update updates the schedule record
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}
