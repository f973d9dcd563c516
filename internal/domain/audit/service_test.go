package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockLogRepo struct {
	logs      []*Log
	createErr error
}

func (m *mockLogRepo) Create(_ context.Context, l *Log) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockLogRepo) Search(_ context.Context, params SearchParams, limit, offset int) ([]*Log, int, error) {
	var matched []*Log
	for _, l := range m.logs {
		if params.UserID != "" && l.UserID != params.UserID {
			continue
		}
		if params.RecordID != "" && l.RecordID != params.RecordID {
			continue
		}
		if params.Query != "" && !strings.Contains(strings.ToLower(l.Action), strings.ToLower(params.Query)) {
			continue
		}
		matched = append(matched, l)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func TestRecord_StoresEntry(t *testing.T) {
	repo := &mockLogRepo{}
	svc := NewService(repo)

	svc.Record(context.Background(), "user_1", "appt_1", ActionAppointmentBooked, map[string]string{"status": "PENDING"})

	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(repo.logs))
	}
	l := repo.logs[0]
	if l.UserID != "user_1" || l.Action != ActionAppointmentBooked {
		t.Errorf("unexpected log entry: %+v", l)
	}
	if len(l.Details) == 0 {
		t.Error("expected details to be serialized")
	}
}

func TestRecord_SwallowsRepoError(t *testing.T) {
	repo := &mockLogRepo{createErr: errors.New("db down")}
	svc := NewService(repo)

	// Must not panic or propagate.
	svc.Record(context.Background(), "user_1", "appt_1", ActionBillGenerated, nil)

	if len(repo.logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(repo.logs))
	}
}

func TestList_FiltersByActionQuery(t *testing.T) {
	repo := &mockLogRepo{}
	svc := NewService(repo)

	svc.Record(context.Background(), "user_1", "a1", ActionAppointmentBooked, nil)
	svc.Record(context.Background(), "user_2", "a2", ActionBillGenerated, nil)
	svc.Record(context.Background(), "user_1", "a3", ActionAppointmentApproved, nil)

	items, total, err := svc.List(context.Background(), SearchParams{Query: "appointment"}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 appointment entries, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(context.Background(), SearchParams{UserID: "user_2"}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].Action != ActionBillGenerated {
		t.Errorf("expected the billing entry for user_2, got %+v", items)
	}
}
