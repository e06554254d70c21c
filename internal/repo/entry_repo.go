package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/postloop/postloop/internal/model"
	"github.com/postloop/postloop/internal/pkg/dbutil"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
	"github.com/postloop/postloop/internal/schema"
)

const entryTable = "calendar_entries"

var entryColumns = []string{
	"id", "tenant_id", "title", "description", "calendar_date", "time_slot",
	"platforms", "hashtags", "mentions", "media_urls", "priority", "status",
	"campaign_id", "content_type", "target_audience", "call_to_action",
	"tracking_parameters", "ctime", "mtime",
}

type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

func entryRow(e *model.Entry) map[string]interface{} {
	return map[string]interface{}{
		"id":                  e.ID,
		"tenant_id":           e.TenantID,
		"title":               e.Title,
		"description":         e.Description,
		"calendar_date":       e.CalendarDate,
		"time_slot":           e.TimeSlot,
		"platforms":           joinList(e.Platforms),
		"hashtags":            joinList(e.Hashtags),
		"mentions":            joinList(e.Mentions),
		"media_urls":          joinList(e.MediaURLs),
		"priority":            e.Priority,
		"status":              e.Status,
		"campaign_id":         e.CampaignID,
		"content_type":        e.ContentType,
		"target_audience":     e.TargetAudience,
		"call_to_action":      e.CallToAction,
		"tracking_parameters": e.TrackingParameters,
		"ctime":               e.Ctime,
		"mtime":               e.Mtime,
	}
}

func scanEntry(rows *sql.Rows) (*model.Entry, error) {
	var e model.Entry
	var platforms, hashtags, mentions, mediaURLs string
	if err := rows.Scan(&e.ID, &e.TenantID, &e.Title, &e.Description, &e.CalendarDate, &e.TimeSlot,
		&platforms, &hashtags, &mentions, &mediaURLs, &e.Priority, &e.Status,
		&e.CampaignID, &e.ContentType, &e.TargetAudience, &e.CallToAction,
		&e.TrackingParameters, &e.Ctime, &e.Mtime); err != nil {
		return nil, err
	}
	e.Platforms = splitList(platforms)
	e.Hashtags = splitList(hashtags)
	e.Mentions = splitList(mentions)
	e.MediaURLs = splitList(mediaURLs)
	return &e, nil
}

// CreateBatch inserts a batch in one statement; if that fails it retries
// row by row so one broken row does not sink its batch mates. The
// returned slice holds a per-entry error (nil on success), index-aligned
// with the input.
func (r *EntryRepo) CreateBatch(ctx context.Context, entries []*model.Entry) []error {
	results := make([]error, len(entries))
	if len(entries) == 0 {
		return results
	}
	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entryRow(e))
	}
	sqlStr, args, err := builder.BuildInsert(entryTable, rows)
	if err == nil {
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		if _, execErr := r.db.ExecContext(ctx, sqlStr, args...); execErr == nil {
			return results
		}
	}
	for i, e := range entries {
		results[i] = r.create(ctx, e)
	}
	return results
}

func (r *EntryRepo) create(ctx context.Context, e *model.Entry) error {
	sqlStr, args, err := builder.BuildInsert(entryTable, []map[string]interface{}{entryRow(e)})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

// Update overwrites a stored entry by id within its tenant.
func (r *EntryRepo) Update(ctx context.Context, e *model.Entry) error {
	where := map[string]interface{}{
		"id":        e.ID,
		"tenant_id": e.TenantID,
	}
	update := entryRow(e)
	delete(update, "id")
	delete(update, "tenant_id")
	delete(update, "ctime")
	sqlStr, args, err := builder.BuildUpdate(entryTable, where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// matchColumn maps a schema column name onto its table column. Only
// target_platforms differs; list-valued cells compare against their
// stored |-joined form.
func matchColumn(field string) string {
	if field == schema.ColTargetPlatforms {
		return "platforms"
	}
	return field
}

func buildFindByMatch(tenantID string, match map[string]string) (string, []interface{}, error) {
	where := map[string]interface{}{
		"tenant_id": tenantID,
		"_orderby":  "mtime desc",
		"_limit":    []uint{0, 1},
	}
	for col, value := range match {
		where[matchColumn(col)] = value
	}
	sqlStr, args, err := builder.BuildSelect(entryTable, where, entryColumns)
	if err != nil {
		return "", nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return sqlStr, args, nil
}

// FindByMatch probes for an existing entry by identity key. Match keys
// are schema column names with exact values.
func (r *EntryRepo) FindByMatch(ctx context.Context, tenantID string, match map[string]string) (*model.Entry, error) {
	sqlStr, args, err := buildFindByMatch(tenantID, match)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanEntry(rows)
}

// List queries entries for a tenant with the export filter applied.
// Date range, status, priority and campaign go to SQL; platform
// membership is checked here since platforms live in one joined column.
func (r *EntryRepo) List(ctx context.Context, tenantID string, filter model.Filter) ([]model.Entry, error) {
	where := map[string]interface{}{
		"tenant_id": tenantID,
		"_orderby":  "calendar_date asc, time_slot asc, title asc",
	}
	if filter.DateStart != "" {
		where["calendar_date >="] = filter.DateStart
	}
	if filter.DateEnd != "" {
		where["calendar_date <="] = filter.DateEnd
	}
	if len(filter.Status) > 0 {
		where["status in"] = filter.Status
	}
	if len(filter.Priority) > 0 {
		where["priority in"] = filter.Priority
	}
	if filter.CampaignID != "" {
		where["campaign_id"] = filter.CampaignID
	}
	sqlStr, args, err := builder.BuildSelect(entryTable, where, entryColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if len(filter.Platforms) > 0 && !hasAnyPlatform(e.Platforms, filter.Platforms) {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteByFilter removes every entry the filter matches and reports the
// count. Scope checks (non-empty filter, confirmation) belong to the
// service layer.
func (r *EntryRepo) DeleteByFilter(ctx context.Context, tenantID string, filter model.Filter) (int64, error) {
	entries, err := r.List(ctx, tenantID, filter)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	where := map[string]interface{}{
		"tenant_id": tenantID,
		"id in":     ids,
	}
	sqlStr, args, err := builder.BuildDelete(entryTable, where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListDue returns scheduled entries across all tenants whose instant is
// at or before the given date and time.
func (r *EntryRepo) ListDue(ctx context.Context, date, timeSlot string) ([]model.Entry, error) {
	query := "SELECT " + strings.Join(entryColumns, ", ") + " FROM " + entryTable +
		" WHERE status = $1 AND (calendar_date < $2 OR (calendar_date = $2 AND time_slot <= $3))" +
		" ORDER BY calendar_date ASC, time_slot ASC"
	rows, err := r.db.QueryContext(ctx, query, "scheduled", date, timeSlot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *EntryRepo) UpdateStatus(ctx context.Context, tenantID, id, status string, mtime int64) error {
	where := map[string]interface{}{
		"id":        id,
		"tenant_id": tenantID,
	}
	update := map[string]interface{}{
		"status": status,
		"mtime":  mtime,
	}
	sqlStr, args, err := builder.BuildUpdate(entryTable, where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func joinList(values []string) string {
	return strings.Join(values, schema.ListDelimiter)
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, schema.ListDelimiter)
}

func hasAnyPlatform(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
