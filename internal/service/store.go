package service

import (
	"context"

	"github.com/postloop/postloop/internal/model"
)

// EntryStore is the persistence boundary for the import/export engine.
// *repo.EntryRepo implements it; tests swap in an in-memory fake.
type EntryStore interface {
	FindByMatch(ctx context.Context, tenantID string, match map[string]string) (*model.Entry, error)
	CreateBatch(ctx context.Context, entries []*model.Entry) []error
	Update(ctx context.Context, entry *model.Entry) error
	List(ctx context.Context, tenantID string, filter model.Filter) ([]model.Entry, error)
	DeleteByFilter(ctx context.Context, tenantID string, filter model.Filter) (int64, error)
	ListDue(ctx context.Context, date, timeSlot string) ([]model.Entry, error)
	UpdateStatus(ctx context.Context, tenantID, id, status string, mtime int64) error
}

// Scheduler receives identifiers of committed entries marked for
// auto-scheduling. The publish cron picks them up later; this hook only
// exists so a real publishing collaborator can be slotted in.
type Scheduler interface {
	Schedule(ctx context.Context, tenantID string, entryIDs []string)
}

type NoopScheduler struct{}

func (NoopScheduler) Schedule(ctx context.Context, tenantID string, entryIDs []string) {}
