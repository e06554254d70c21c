package job

import (
	"context"
	"time"

	"github.com/postloop/postloop/internal/service"
)

// PublishDueJob walks scheduled entries whose instant has passed and
// marks them published.
type PublishDueJob struct {
	calendar *service.CalendarService
}

func NewPublishDueJob(calendar *service.CalendarService) *PublishDueJob {
	return &PublishDueJob{calendar: calendar}
}

func (j *PublishDueJob) Name() string {
	return "publish_due"
}

func (j *PublishDueJob) Run(ctx context.Context) error {
	if j.calendar == nil {
		return nil
	}
	_, err := j.calendar.PublishDue(ctx, time.Now())
	return err
}
