package monitor

// Outcome tags the result of one ingestion run
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeDisabled Outcome = "disabled"
)

// Result is the structured outcome of one ingestion run for one
// account. On failure Err carries the captured error text and the
// counts reflect what was committed before the failure.
type Result struct {
	Outcome         Outcome `json:"status"`
	PostsInserted   int     `json:"posts_inserted"`
	RepliesInserted int     `json:"replies_inserted"`
	Err             string  `json:"error,omitempty"`
}

// BatchResult aggregates one batch run over all active accounts
type BatchResult struct {
	TotalAccounts int `json:"total_accounts"`
	SuccessCount  int `json:"success_count"`
	FailedCount   int `json:"failed_count"`
	TotalPosts    int `json:"total_posts"`
	TotalReplies  int `json:"total_replies"`
}

// PurgeResult reports what one retention sweep removed
type PurgeResult struct {
	PostsDeleted   int64 `json:"posts_deleted"`
	RepliesDeleted int64 `json:"replies_deleted"`
	LogsDeleted    int64 `json:"logs_deleted"`
}
