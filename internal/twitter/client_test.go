package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perchlabs/perch/internal/models"
	"github.com/perchlabs/perch/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(&config.TwitterConfig{
		BaseURL:        srv.URL,
		BearerToken:    "test-token",
		RequestsPerSec: 1000,
		Burst:          1000,
	})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBearerToken(t *testing.T) {
	_, err := New(&config.TwitterConfig{BaseURL: "https://api.example.com"})
	assert.Error(t, err)
}

func TestResolveAccount(t *testing.T) {
	t.Run("returns profile attributes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/by/username/alice", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Write([]byte(`{"data":{"id":"u1","name":"Alice","username":"alice","profile_image_url":"https://img.example/a.jpg"}}`))
		})

		profile, err := client.ResolveAccount(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "u1", profile.UpstreamID)
		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, "Alice", profile.DisplayName)
		assert.Equal(t, "https://img.example/a.jpg", profile.AvatarURL)
	})

	t.Run("empty data means not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"title":"Not Found Error"}]}`))
		})

		_, err := client.ResolveAccount(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFetchPosts(t *testing.T) {
	t.Run("classifies post kinds and maps media", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/u1/tweets", r.URL.Path)
			w.Write([]byte(`{
				"data": [
					{"id":"p1","text":"plain","created_at":"2025-06-01T10:00:00Z",
					 "public_metrics":{"retweet_count":2,"reply_count":1,"like_count":9,"quote_count":0}},
					{"id":"p2","text":"RT @someone","created_at":"2025-06-01T11:00:00Z",
					 "referenced_tweets":[{"type":"retweeted","id":"orig-1"}]},
					{"id":"p3","text":"hot take","created_at":"2025-06-01T12:00:00Z",
					 "referenced_tweets":[{"type":"quoted","id":"orig-2"}],
					 "attachments":{"media_keys":["m1","m2"]}}
				],
				"includes": {
					"media": [
						{"media_key":"m1","url":"https://img.example/m1.jpg"},
						{"media_key":"m2","preview_image_url":"https://img.example/m2-preview.jpg"}
					]
				}
			}`))
		})

		posts, err := client.FetchPosts(context.Background(), "u1", 100, "")
		require.NoError(t, err)
		require.Len(t, posts, 3)

		assert.Equal(t, models.PostKindOriginal, posts[0].Kind)
		assert.Empty(t, posts[0].ReferencedID)
		assert.Equal(t, int64(9), posts[0].LikeCount)

		assert.Equal(t, models.PostKindRepost, posts[1].Kind)
		assert.Equal(t, "orig-1", posts[1].ReferencedID)

		assert.Equal(t, models.PostKindQuote, posts[2].Kind)
		assert.Equal(t, "orig-2", posts[2].ReferencedID)
		assert.Equal(t, []string{
			"https://img.example/m1.jpg",
			"https://img.example/m2-preview.jpg",
		}, posts[2].MediaURLs)
	})

	t.Run("propagates the since_id watermark", func(t *testing.T) {
		var gotSince string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotSince = r.URL.Query().Get("since_id")
			w.Write([]byte(`{"data":[]}`))
		})

		_, err := client.FetchPosts(context.Background(), "u1", 100, "900")
		require.NoError(t, err)
		assert.Equal(t, "900", gotSince)
	})

	t.Run("omits since_id on first fetch", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, present := r.URL.Query()["since_id"]
			assert.False(t, present)
			w.Write([]byte(`{"data":[]}`))
		})

		_, err := client.FetchPosts(context.Background(), "u1", 100, "")
		require.NoError(t, err)
	})

	t.Run("clamps max_results to the API range", func(t *testing.T) {
		var gotMax string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMax = r.URL.Query().Get("max_results")
			w.Write([]byte(`{"data":[]}`))
		})

		_, err := client.FetchPosts(context.Background(), "u1", 500, "")
		require.NoError(t, err)
		assert.Equal(t, "100", gotMax)
	})
}

func TestFetchReplies(t *testing.T) {
	t.Run("excludes the conversation root", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/tweets/search/recent", r.URL.Path)
			assert.Equal(t, "conversation_id:p1", r.URL.Query().Get("query"))
			w.Write([]byte(`{
				"data": [
					{"id":"p1","author_id":"u1","text":"the root post","created_at":"2025-06-01T10:00:00Z"},
					{"id":"r1","author_id":"u2","text":"nice","created_at":"2025-06-01T10:05:00Z",
					 "public_metrics":{"like_count":3,"reply_count":0}}
				]
			}`))
		})

		replies, err := client.FetchReplies(context.Background(), "p1", 50)
		require.NoError(t, err)
		require.Len(t, replies, 1)
		assert.Equal(t, "r1", replies[0].ID)
		assert.Equal(t, "u2", replies[0].AuthorID)
		assert.Equal(t, int64(3), replies[0].LikeCount)
	})

	t.Run("empty conversation", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		replies, err := client.FetchReplies(context.Background(), "p1", 50)
		require.NoError(t, err)
		assert.Empty(t, replies)
	})
}

func TestStatusErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			})

			_, err := client.FetchPosts(context.Background(), "u1", 100, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("other statuses are plain errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.FetchPosts(context.Background(), "u1", 100, "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
