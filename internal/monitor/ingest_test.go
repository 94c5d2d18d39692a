package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perchlabs/perch/internal/models"
	"github.com/perchlabs/perch/internal/twitter"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *MockStore, client *MockClient) *Service {
	return New(store, client, 100, 50, func() time.Time { return testNow })
}

func testAccount() *models.Account {
	return &models.Account{
		ID:         1,
		Username:   "alice",
		UpstreamID: "u1",
		Active:     true,
	}
}

func TestIngest_DisabledAccountIsNoOp(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	account := testAccount()
	account.Active = false

	res := svc.Ingest(context.Background(), account)

	assert.Equal(t, OutcomeDisabled, res.Outcome)
	assert.Zero(t, res.PostsInserted)
	assert.Zero(t, res.RepliesInserted)
	// No store or upstream calls at all, and in particular no log row
	store.AssertNotCalled(t, "AppendLog", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestIngest_WatermarkFromLatestStoredPost(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	account := testAccount()

	store.On("LatestPost", mock.Anything, int64(1)).
		Return(&models.Post{UpstreamID: "900"}, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "900").
		Return([]twitter.Post{}, nil)
	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusSuccess &&
			row.PostsFetched == 0 && row.RepliesFetched == 0
	})).Return(nil)

	res := svc.Ingest(context.Background(), account)

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestIngest_FirstRunFetchesWithoutWatermark(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").
		Return([]twitter.Post{}, nil)
	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.Anything).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	client.AssertExpectations(t)
}

func TestIngest_RepliesFetchedOnlyForNewPosts(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").Return([]twitter.Post{
		{ID: "p-new", Kind: models.PostKindOriginal, Text: "fresh", PublishedAt: testNow},
		{ID: "p-seen", Kind: models.PostKindOriginal, Text: "seen before", PublishedAt: testNow},
	}, nil)

	store.On("UpsertPost", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.UpstreamID == "p-new"
	})).Return(true, nil)
	store.On("UpsertPost", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.UpstreamID == "p-seen"
	})).Return(false, nil)

	// Only the newly created post triggers a reply fetch
	client.On("FetchReplies", mock.Anything, "p-new", 50).Return([]twitter.Reply{}, nil)

	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusSuccess && row.PostsFetched == 1
	})).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 1, res.PostsInserted)
	client.AssertNotCalled(t, "FetchReplies", mock.Anything, "p-seen", mock.Anything)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestIngest_RepliesFromUnmonitoredAuthorsDiscarded(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").Return([]twitter.Post{
		{ID: "p1", Kind: models.PostKindOriginal, PublishedAt: testNow},
	}, nil)
	store.On("UpsertPost", mock.Anything, mock.Anything).Return(true, nil)

	client.On("FetchReplies", mock.Anything, "p1", 50).Return([]twitter.Reply{
		{ID: "r1", AuthorID: "u2", Text: "from a monitored account", PublishedAt: testNow},
		{ID: "r2", AuthorID: "stranger", Text: "from nobody we know", PublishedAt: testNow},
	}, nil)

	store.On("AccountByUpstreamID", mock.Anything, "u2").
		Return(&models.Account{ID: 2, Username: "bob", UpstreamID: "u2"}, nil)
	store.On("AccountByUpstreamID", mock.Anything, "stranger").Return(nil, nil)

	store.On("UpsertReply", mock.Anything, mock.MatchedBy(func(r *models.Reply) bool {
		return r.UpstreamID == "r1" && r.AuthorID == 2
	})).Return(true, nil)

	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusSuccess &&
			row.PostsFetched == 1 && row.RepliesFetched == 1
	})).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 1, res.RepliesInserted)
	store.AssertNotCalled(t, "UpsertReply", mock.Anything, mock.MatchedBy(func(r *models.Reply) bool {
		return r.UpstreamID == "r2"
	}))
	store.AssertExpectations(t)
}

func TestIngest_ReObservedReplyNotCounted(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").Return([]twitter.Post{
		{ID: "p1", Kind: models.PostKindOriginal, PublishedAt: testNow},
	}, nil)
	store.On("UpsertPost", mock.Anything, mock.Anything).Return(true, nil)
	client.On("FetchReplies", mock.Anything, "p1", 50).Return([]twitter.Reply{
		{ID: "r1", AuthorID: "u2", PublishedAt: testNow},
	}, nil)
	store.On("AccountByUpstreamID", mock.Anything, "u2").
		Return(&models.Account{ID: 2, UpstreamID: "u2"}, nil)
	store.On("UpsertReply", mock.Anything, mock.Anything).Return(false, nil)
	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.Anything).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 0, res.RepliesInserted)
}

func TestIngest_UpstreamFailureWritesFailedLog(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").
		Return(nil, errors.New("upstream timeout"))
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusFailed &&
			row.ErrorMessage == "upstream timeout" &&
			row.AccountID == 1
	})).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "upstream timeout", res.Err)
	store.AssertNotCalled(t, "TouchLastChecked", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestIngest_MidRunFailureKeepsPartialCounts(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").Return([]twitter.Post{
		{ID: "p1", Kind: models.PostKindOriginal, PublishedAt: testNow},
		{ID: "p2", Kind: models.PostKindOriginal, PublishedAt: testNow},
	}, nil)
	store.On("UpsertPost", mock.Anything, mock.Anything).Return(true, nil)
	client.On("FetchReplies", mock.Anything, "p1", 50).Return([]twitter.Reply{}, nil)
	client.On("FetchReplies", mock.Anything, "p2", 50).
		Return(nil, errors.New("rate limited"))
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusFailed && row.PostsFetched == 2
	})).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 2, res.PostsInserted)
	store.AssertExpectations(t)
}

func TestIngest_SuccessLogWriteFailureFailsTheRun(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").Return([]twitter.Post{}, nil)
	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusSuccess
	})).Return(errors.New("db gone")).Once()
	store.On("AppendLog", mock.Anything, mock.MatchedBy(func(row *models.IngestionLog) bool {
		return row.Status == models.RunStatusFailed
	})).Return(nil).Once()

	res := svc.Ingest(context.Background(), testAccount())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	store.AssertExpectations(t)
}

func TestIngest_PostFieldsMappedFromUpstream(t *testing.T) {
	store := new(MockStore)
	client := new(MockClient)
	svc := newTestService(store, client)

	published := testNow.Add(-time.Hour)
	store.On("LatestPost", mock.Anything, int64(1)).Return(nil, nil)
	client.On("FetchPosts", mock.Anything, "u1", 100, "").Return([]twitter.Post{
		{
			ID:           "p1",
			Kind:         models.PostKindQuote,
			Text:         "quoting something",
			PublishedAt:  published,
			RepostCount:  3,
			LikeCount:    7,
			ReferencedID: "p0",
			MediaURLs:    []string{"https://img.example/one.jpg"},
		},
	}, nil)

	var saved *models.Post
	store.On("UpsertPost", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Post) }).
		Return(true, nil)
	client.On("FetchReplies", mock.Anything, "p1", 50).Return([]twitter.Reply{}, nil)
	store.On("TouchLastChecked", mock.Anything, int64(1), testNow).Return(nil)
	store.On("AppendLog", mock.Anything, mock.Anything).Return(nil)

	res := svc.Ingest(context.Background(), testAccount())
	require.Equal(t, OutcomeSuccess, res.Outcome)

	require.NotNil(t, saved)
	assert.Equal(t, "p1", saved.UpstreamID)
	assert.Equal(t, int64(1), saved.AccountID)
	assert.Equal(t, models.PostKindQuote, saved.Kind)
	assert.Equal(t, "p0", saved.ReferencedID)
	assert.Equal(t, published, saved.PublishedAt)
	assert.True(t, saved.HasMedia)
	assert.Equal(t, []string{"https://img.example/one.jpg"}, saved.GetMediaURLs())
	assert.Equal(t, testNow, saved.FetchedAt)
}

func TestAddAccount(t *testing.T) {
	t.Run("new account is registered active", func(t *testing.T) {
		store := new(MockStore)
		client := new(MockClient)
		svc := newTestService(store, client)

		client.On("ResolveAccount", mock.Anything, "alice").Return(&twitter.Profile{
			UpstreamID:  "u1",
			Username:    "alice",
			DisplayName: "Alice",
		}, nil)
		store.On("UpsertAccount", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
			return a.Username == "alice" && a.UpstreamID == "u1" && a.Active
		})).Return(true, nil)

		account, created, err := svc.AddAccount(context.Background(), "alice")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "alice", account.Username)
	})

	t.Run("resolution failure passes through", func(t *testing.T) {
		store := new(MockStore)
		client := new(MockClient)
		svc := newTestService(store, client)

		client.On("ResolveAccount", mock.Anything, "ghost").
			Return(nil, twitter.ErrNotFound)

		_, _, err := svc.AddAccount(context.Background(), "ghost")
		assert.ErrorIs(t, err, twitter.ErrNotFound)
		store.AssertNotCalled(t, "UpsertAccount", mock.Anything, mock.Anything)
	})
}
