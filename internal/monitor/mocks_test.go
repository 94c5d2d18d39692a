package monitor

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/perchlabs/perch/internal/models"
	"github.com/perchlabs/perch/internal/twitter"
)

// MockStore is a mock implementing the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) AccountByUpstreamID(ctx context.Context, upstreamID string) (*models.Account, error) {
	args := m.Called(ctx, upstreamID)
	if account, ok := args.Get(0).(*models.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpsertAccount(ctx context.Context, account *models.Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ListActiveAccounts(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if accounts, ok := args.Get(0).([]models.Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) TouchLastChecked(ctx context.Context, accountID int64, t time.Time) error {
	args := m.Called(ctx, accountID, t)
	return args.Error(0)
}

func (m *MockStore) LatestPost(ctx context.Context, accountID int64) (*models.Post, error) {
	args := m.Called(ctx, accountID)
	if post, ok := args.Get(0).(*models.Post); ok {
		return post, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpsertPost(ctx context.Context, post *models.Post) (bool, error) {
	args := m.Called(ctx, post)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) UpsertReply(ctx context.Context, reply *models.Reply) (bool, error) {
	args := m.Called(ctx, reply)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) AppendLog(ctx context.Context, log *models.IngestionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockStore) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteRepliesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockClient is a mock implementing the UpstreamClient interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ResolveAccount(ctx context.Context, username string) (*twitter.Profile, error) {
	args := m.Called(ctx, username)
	if profile, ok := args.Get(0).(*twitter.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) FetchPosts(ctx context.Context, accountID string, max int, sinceID string) ([]twitter.Post, error) {
	args := m.Called(ctx, accountID, max, sinceID)
	if posts, ok := args.Get(0).([]twitter.Post); ok {
		return posts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) FetchReplies(ctx context.Context, postID string, max int) ([]twitter.Reply, error) {
	args := m.Called(ctx, postID, max)
	if replies, ok := args.Get(0).([]twitter.Reply); ok {
		return replies, args.Error(1)
	}
	return nil, args.Error(1)
}
