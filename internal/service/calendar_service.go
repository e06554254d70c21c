package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/postloop/postloop/internal/model"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
)

type CalendarService struct {
	store EntryStore
}

func NewCalendarService(store EntryStore) *CalendarService {
	return &CalendarService{store: store}
}

// BulkDelete removes every entry the filter matches. It refuses to run
// without explicit confirmation or with an unscoped filter: there is no
// "delete everything" path.
func (s *CalendarService) BulkDelete(ctx context.Context, tenantID string, filter model.Filter, confirm bool) (int64, error) {
	if !confirm {
		return 0, fmt.Errorf("%w: confirmation required", appErr.ErrPrecondition)
	}
	if filter.IsEmpty() {
		return 0, fmt.Errorf("%w: at least one filter criterion required", appErr.ErrPrecondition)
	}
	deleted, err := s.store.DeleteByFilter(ctx, tenantID, filter)
	if err != nil {
		return 0, err
	}
	logutil.GetLogger(ctx).Info("bulk delete done",
		zap.String("tenant_id", tenantID),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}

// PublishDue flips scheduled entries whose instant has passed to
// published. The publish cron calls this.
func (s *CalendarService) PublishDue(ctx context.Context, now time.Time) (int, error) {
	date := now.Format("2006-01-02")
	timeSlot := now.Format("15:04")
	due, err := s.store.ListDue(ctx, date, timeSlot)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, entry := range due {
		if err := s.store.UpdateStatus(ctx, entry.TenantID, entry.ID, "published", now.Unix()); err != nil {
			logutil.GetLogger(ctx).Error("publish transition failed",
				zap.String("tenant_id", entry.TenantID),
				zap.String("entry_id", entry.ID),
				zap.Error(err),
			)
			continue
		}
		published += 1
	}
	if published > 0 {
		logutil.GetLogger(ctx).Info("published due entries", zap.Int("count", published))
	}
	return published, nil
}
