package audit

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Recorder is the write side of the audit trail. Other domain services depend
// on this interface so a failed audit write never aborts the business
// operation it accompanies.
type Recorder interface {
	Record(ctx context.Context, userID, recordID, action string, details interface{})
}

type Service struct {
	repo LogRepository
}

func NewService(repo LogRepository) *Service {
	return &Service{repo: repo}
}

// Record writes an audit entry. Failures are logged and swallowed; the
// operation being audited has already happened.
func (s *Service) Record(ctx context.Context, userID, recordID, action string, details interface{}) {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			log.Warn().Err(err).Str("action", action).Msg("audit details not serializable")
		} else {
			raw = b
		}
	}

	l := &Log{
		UserID:   userID,
		RecordID: recordID,
		Action:   action,
		Details:  raw,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		log.Error().Err(err).Str("action", action).Str("user_id", userID).Msg("audit log write failed")
	}
}

// List returns audit entries matching the filters, newest first.
func (s *Service) List(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
