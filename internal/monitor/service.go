package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/models"
	"github.com/perchlabs/perch/pkg/logging"
)

// Service runs account ingestion, batch coordination, and retention
// sweeps against a record store and an upstream client.
type Service struct {
	store         Store
	client        UpstreamClient
	postPageSize  int
	replyPageSize int
	now           func() time.Time
	logger        *zap.Logger
}

// New creates a new monitor service. A nil now func defaults to
// time.Now.
func New(store Store, client UpstreamClient, postPageSize, replyPageSize int, now func() time.Time) *Service {
	if postPageSize <= 0 {
		postPageSize = 100
	}
	if replyPageSize <= 0 {
		replyPageSize = 50
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:         store,
		client:        client,
		postPageSize:  postPageSize,
		replyPageSize: replyPageSize,
		now:           now,
		logger:        logging.WithComponent("monitor"),
	}
}

// AddAccount resolves a username upstream and registers it for
// monitoring. Returns the account and whether it was newly created.
// A twitter.ErrNotFound from resolution passes through unwrapped so
// callers can surface a clean "no such account".
func (s *Service) AddAccount(ctx context.Context, username string) (*models.Account, bool, error) {
	profile, err := s.client.ResolveAccount(ctx, username)
	if err != nil {
		return nil, false, err
	}

	account := &models.Account{
		Username:    profile.Username,
		UpstreamID:  profile.UpstreamID,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		Active:      true,
	}

	created, err := s.store.UpsertAccount(ctx, account)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save account %s: %w", username, err)
	}

	if created {
		s.logger.Info("Registered account for monitoring", zap.String("username", account.Username))
	} else {
		s.logger.Info("Refreshed monitored account", zap.String("username", account.Username))
	}

	return account, created, nil
}
