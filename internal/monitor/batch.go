package monitor

import (
	"context"

	"go.uber.org/zap"

	"github.com/perchlabs/perch/pkg/telemetry"
)

// IngestAll runs the ingestion engine over every active account,
// sequentially. A failed account increments the failure count and
// does not stop iteration; this method itself never fails.
func (s *Service) IngestAll(ctx context.Context) BatchResult {
	ctx, span := telemetry.StartSpan(ctx, "monitor.ingest_all")
	defer span.End()

	var result BatchResult

	accounts, err := s.store.ListActiveAccounts(ctx)
	if err != nil {
		s.logger.Error("Failed to list active accounts", zap.Error(err))
		return result
	}
	result.TotalAccounts = len(accounts)

	for i := range accounts {
		res := s.Ingest(ctx, &accounts[i])
		result.TotalPosts += res.PostsInserted
		result.TotalReplies += res.RepliesInserted

		if res.Outcome == OutcomeSuccess {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}

	s.logger.Info("Batch ingestion complete",
		zap.Int("accounts", result.TotalAccounts),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("posts", result.TotalPosts),
		zap.Int("replies", result.TotalReplies))

	return result
}
