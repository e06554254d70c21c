package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/postloop/postloop/internal/model"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
)

// fakeStore is an in-memory EntryStore for service tests.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]*model.Entry

	// titles whose creation should fail
	failCreate map[string]bool
	failUpdate map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:    map[string]*model.Entry{},
		failCreate: map[string]bool{},
		failUpdate: map[string]bool{},
	}
}

func (f *fakeStore) FindByMatch(ctx context.Context, tenantID string, match map[string]string) (*model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.TenantID != tenantID {
			continue
		}
		ok := true
		for field, value := range match {
			if entryField(e, field) != value {
				ok = false
				break
			}
		}
		if ok {
			clone := *e
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (f *fakeStore) CreateBatch(ctx context.Context, entries []*model.Entry) []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs := make([]error, len(entries))
	for i, e := range entries {
		if f.failCreate[e.Title] {
			errs[i] = fmt.Errorf("write failed")
			continue
		}
		clone := *e
		f.entries[e.ID] = &clone
	}
	return errs
}

func (f *fakeStore) Update(ctx context.Context, entry *model.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate[entry.Title] {
		return fmt.Errorf("write failed")
	}
	if _, ok := f.entries[entry.ID]; !ok {
		return appErr.ErrNotFound
	}
	clone := *entry
	f.entries[entry.ID] = &clone
	return nil
}

func (f *fakeStore) List(ctx context.Context, tenantID string, filter model.Filter) ([]model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Entry
	for _, e := range f.entries {
		if e.TenantID != tenantID {
			continue
		}
		if !matchesFilter(e, filter) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CalendarDate != out[j].CalendarDate {
			return out[i].CalendarDate < out[j].CalendarDate
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func matchesFilter(e *model.Entry, filter model.Filter) bool {
	if filter.DateStart != "" && e.CalendarDate < filter.DateStart {
		return false
	}
	if filter.DateEnd != "" && e.CalendarDate > filter.DateEnd {
		return false
	}
	if filter.CampaignID != "" && e.CampaignID != filter.CampaignID {
		return false
	}
	if len(filter.Status) > 0 && !contains(filter.Status, e.Status) {
		return false
	}
	if len(filter.Priority) > 0 && !contains(filter.Priority, e.Priority) {
		return false
	}
	if len(filter.Platforms) > 0 {
		hit := false
		for _, p := range e.Platforms {
			if contains(filter.Platforms, p) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

func (f *fakeStore) DeleteByFilter(ctx context.Context, tenantID string, filter model.Filter) (int64, error) {
	matched, err := f.List(ctx, tenantID, filter)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range matched {
		delete(f.entries, e.ID)
	}
	return int64(len(matched)), nil
}

func (f *fakeStore) ListDue(ctx context.Context, date, timeSlot string) ([]model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Entry
	for _, e := range f.entries {
		if e.Status != "scheduled" {
			continue
		}
		if e.CalendarDate < date || (e.CalendarDate == date && e.TimeSlot <= timeSlot) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, tenantID, id, status string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.TenantID != tenantID {
		return appErr.ErrNotFound
	}
	e.Status = status
	e.Mtime = mtime
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeStore) byTitle(title string) *model.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.Title == title {
			clone := *e
			return &clone
		}
	}
	return nil
}

// fakeEnhancer delegates to fn so each test can script behavior.
type fakeEnhancer struct {
	fn    func(entries []*model.Entry) ([]*model.Entry, error)
	calls int
}

func (f *fakeEnhancer) Enhance(ctx context.Context, entries []*model.Entry) ([]*model.Entry, error) {
	f.calls++
	if f.fn == nil {
		return entries, nil
	}
	return f.fn(entries)
}

// fakeFileStore parks artifacts in a map.
type fakeFileStore struct {
	saved map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: map[string][]byte{}}
}

func (f *fakeFileStore) Type() string { return "fake" }

func (f *fakeFileStore) Save(ctx context.Context, key string, data []byte) error {
	f.saved[key] = data
	return nil
}

func (f *fakeFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not supported")
}

type recordingScheduler struct {
	tenantID string
	ids      []string
}

func (r *recordingScheduler) Schedule(ctx context.Context, tenantID string, entryIDs []string) {
	r.tenantID = tenantID
	r.ids = append(r.ids, entryIDs...)
}
