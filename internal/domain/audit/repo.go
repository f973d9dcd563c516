package audit

import (
	"context"
)

// SearchParams narrows an audit log listing. Zero values mean no filter.
type SearchParams struct {
	UserID   string
	RecordID string
	// Query matches action names case-insensitively.
	Query string
}

type LogRepository interface {
	Create(ctx context.Context, l *Log) error
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error)
}
