package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/perchlabs/perch/internal/models"
	"github.com/perchlabs/perch/pkg/config"
	"github.com/perchlabs/perch/pkg/logging"
	"github.com/perchlabs/perch/pkg/telemetry"
)

// Sentinel errors distinguishing upstream failure classes
var (
	ErrNotFound     = errors.New("upstream resource not found")
	ErrRateLimited  = errors.New("upstream rate limit exceeded")
	ErrUnauthorized = errors.New("upstream authentication failed")
)

// Profile holds resolved account attributes
type Profile struct {
	UpstreamID  string
	Username    string
	DisplayName string
	AvatarURL   string
}

// Post is one fetched post record
type Post struct {
	ID           string
	Kind         models.PostKind
	Text         string
	PublishedAt  time.Time
	RepostCount  int64
	ReplyCount   int64
	LikeCount    int64
	QuoteCount   int64
	ReferencedID string
	MediaURLs    []string
}

// Reply is one fetched reply record
type Reply struct {
	ID          string
	AuthorID    string
	Text        string
	PublishedAt time.Time
	LikeCount   int64
	ReplyCount  int64
}

// Client is a bearer-token HTTP client for the upstream v2 API
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// New creates a new upstream API client
func New(cfg *config.TwitterConfig) (*Client, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("twitter_bearer_token is required")
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2.0
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}

	logger := logging.WithComponent("twitter-client")

	client := &Client{
		baseURL:     cfg.BaseURL,
		bearerToken: cfg.BearerToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		logger:      logger,
	}

	logger.Info("Twitter client initialized", zap.String("base_url", cfg.BaseURL))

	return client, nil
}

// ResolveAccount looks up profile attributes for a username.
// Returns ErrNotFound when no such account exists upstream.
func (c *Client) ResolveAccount(ctx context.Context, username string) (*Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.resolve_account")
	defer span.End()

	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	u := fmt.Sprintf("%s/users/by/username/%s?user.fields=name,username,profile_image_url",
		c.baseURL, url.PathEscape(username))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %s: %w", username, err)
	}

	var raw struct {
		Data *struct {
			ID              string `json:"id"`
			Name            string `json:"name"`
			Username        string `json:"username"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account response: %w", err)
	}

	// The API reports unknown usernames inside an errors array with a
	// 200 status, so an empty data object also means not found
	if raw.Data == nil {
		return nil, fmt.Errorf("account %s: %w", username, ErrNotFound)
	}

	return &Profile{
		UpstreamID:  raw.Data.ID,
		Username:    raw.Data.Username,
		DisplayName: raw.Data.Name,
		AvatarURL:   raw.Data.ProfileImageURL,
	}, nil
}

// FetchPosts retrieves up to max posts for an account, newest first.
// When sinceID is non-empty only posts newer than it are returned.
func (c *Client) FetchPosts(ctx context.Context, accountID string, max int, sinceID string) ([]Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.fetch_posts")
	defer span.End()

	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}

	u := fmt.Sprintf("%s/users/%s/tweets?max_results=%d"+
		"&tweet.fields=created_at,public_metrics,referenced_tweets,attachments"+
		"&expansions=attachments.media_keys&media.fields=url,preview_image_url",
		c.baseURL, url.PathEscape(accountID), clamp(max, 5, 100))
	if sinceID != "" {
		u += "&since_id=" + url.QueryEscape(sinceID)
	}

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts for %s: %w", accountID, err)
	}

	var raw struct {
		Data     []rawPost `json:"data"`
		Includes struct {
			Media []struct {
				MediaKey        string `json:"media_key"`
				URL             string `json:"url"`
				PreviewImageURL string `json:"preview_image_url"`
			} `json:"media"`
		} `json:"includes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal posts response: %w", err)
	}

	mediaURLs := make(map[string]string, len(raw.Includes.Media))
	for _, m := range raw.Includes.Media {
		if m.URL != "" {
			mediaURLs[m.MediaKey] = m.URL
		} else {
			mediaURLs[m.MediaKey] = m.PreviewImageURL
		}
	}

	posts := make([]Post, 0, len(raw.Data))
	for _, d := range raw.Data {
		posts = append(posts, parsePost(d, mediaURLs))
	}

	return posts, nil
}

// FetchReplies retrieves up to max replies under a post via the
// recent-search conversation query. The root post is excluded.
func (c *Client) FetchReplies(ctx context.Context, postID string, max int) ([]Reply, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.fetch_replies")
	defer span.End()

	if postID == "" {
		return nil, fmt.Errorf("post id is required")
	}

	query := "conversation_id:" + postID
	u := fmt.Sprintf("%s/tweets/search/recent?query=%s&max_results=%d"+
		"&tweet.fields=created_at,public_metrics,author_id",
		c.baseURL, url.QueryEscape(query), clamp(max, 10, 100))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies for %s: %w", postID, err)
	}

	var raw struct {
		Data []struct {
			ID            string    `json:"id"`
			AuthorID      string    `json:"author_id"`
			Text          string    `json:"text"`
			CreatedAt     time.Time `json:"created_at"`
			PublicMetrics struct {
				LikeCount  int64 `json:"like_count"`
				ReplyCount int64 `json:"reply_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replies response: %w", err)
	}

	replies := make([]Reply, 0, len(raw.Data))
	for _, d := range raw.Data {
		if d.ID == postID {
			continue
		}
		replies = append(replies, Reply{
			ID:          d.ID,
			AuthorID:    d.AuthorID,
			Text:        d.Text,
			PublishedAt: d.CreatedAt,
			LikeCount:   d.PublicMetrics.LikeCount,
			ReplyCount:  d.PublicMetrics.ReplyCount,
		})
	}

	return replies, nil
}

// rawPost is the wire shape of one post record
type rawPost struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int64 `json:"retweet_count"`
		ReplyCount   int64 `json:"reply_count"`
		LikeCount    int64 `json:"like_count"`
		QuoteCount   int64 `json:"quote_count"`
	} `json:"public_metrics"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

// parsePost classifies a raw post and resolves its media URLs
func parsePost(d rawPost, mediaURLs map[string]string) Post {
	post := Post{
		ID:          d.ID,
		Kind:        models.PostKindOriginal,
		Text:        d.Text,
		PublishedAt: d.CreatedAt,
		RepostCount: d.PublicMetrics.RetweetCount,
		ReplyCount:  d.PublicMetrics.ReplyCount,
		LikeCount:   d.PublicMetrics.LikeCount,
		QuoteCount:  d.PublicMetrics.QuoteCount,
	}

	if len(d.ReferencedTweets) > 0 {
		ref := d.ReferencedTweets[0]
		switch ref.Type {
		case "retweeted":
			post.Kind = models.PostKindRepost
			post.ReferencedID = ref.ID
		case "quoted":
			post.Kind = models.PostKindQuote
			post.ReferencedID = ref.ID
		}
	}

	for _, key := range d.Attachments.MediaKeys {
		if u, ok := mediaURLs[key]; ok && u != "" {
			post.MediaURLs = append(post.MediaURLs, u)
		}
	}

	return post
}

// get performs a rate-limited GET and maps error statuses to the
// sentinel error taxonomy
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func statusError(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("status %d: %w", code, ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("status %d: %w", code, ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("status %d: %w", code, ErrRateLimited)
	default:
		return fmt.Errorf("upstream status %d", code)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
