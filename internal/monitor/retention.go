package monitor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/perchlabs/perch/pkg/telemetry"
)

// Purge deletes posts, replies, and ingestion logs older than the
// retention window. Posts are removed first so their replies go with
// them through the cascade; the reply pass then catches stale replies
// under posts that remain.
func (s *Service) Purge(ctx context.Context, olderThanDays int) (PurgeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "monitor.purge")
	defer span.End()

	var result PurgeResult
	if olderThanDays <= 0 {
		return result, fmt.Errorf("retention window must be positive, got %d", olderThanDays)
	}

	cutoff := s.now().AddDate(0, 0, -olderThanDays)

	postsDeleted, err := s.store.DeletePostsBefore(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to delete old posts: %w", err)
	}
	result.PostsDeleted = postsDeleted

	repliesDeleted, err := s.store.DeleteRepliesBefore(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to delete old replies: %w", err)
	}
	result.RepliesDeleted = repliesDeleted

	logsDeleted, err := s.store.DeleteLogsBefore(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to delete old logs: %w", err)
	}
	result.LogsDeleted = logsDeleted

	s.logger.Info("Retention sweep complete",
		zap.Time("cutoff", cutoff),
		zap.Int64("posts_deleted", result.PostsDeleted),
		zap.Int64("replies_deleted", result.RepliesDeleted),
		zap.Int64("logs_deleted", result.LogsDeleted))

	return result, nil
}
