package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/postloop/postloop/internal/ai"
	"github.com/postloop/postloop/internal/csvio"
	"github.com/postloop/postloop/internal/model"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
	"github.com/postloop/postloop/internal/schema"
)

const (
	DefaultBatchSize = 50
	MaxBatchSize     = 1000

	UpdateModeMerge   = "merge"
	UpdateModeReplace = "replace"
)

// SchemaError invalidates a payload before any row work happens. It
// carries the structured header report so callers can fix their file.
type SchemaError struct {
	Header model.HeaderReport
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid header: missing %s", strings.Join(e.Header.Missing, ", "))
}

type ImportOptions struct {
	EnableAIEnhancement bool   `json:"enable_ai_enhancement"`
	SkipDuplicates      bool   `json:"skip_duplicates"`
	ValidateOnly        bool   `json:"validate_only"`
	BatchSize           int    `json:"batch_size"`
	AutoSchedule        bool   `json:"auto_schedule"`
	CampaignID          string `json:"campaign_id"`
	UpdateMode          string `json:"update_mode"`
}

type BulkUpdateOptions struct {
	UpdateMode          string   `json:"update_mode"`
	MatchFields         []string `json:"match_fields"`
	EnableAIEnhancement bool     `json:"enable_ai_enhancement"`
}

type ImportService struct {
	store     EntryStore
	enhancer  ai.Enhancer
	scheduler Scheduler
}

func NewImportService(store EntryStore, enhancer ai.Enhancer, scheduler Scheduler) *ImportService {
	if scheduler == nil {
		scheduler = NoopScheduler{}
	}
	return &ImportService{store: store, enhancer: enhancer, scheduler: scheduler}
}

// duplicate classification outcomes
const (
	classNew = iota
	classSkip
	classMerge
	classReplace
)

type classified struct {
	cand     csvio.Candidate
	class    int
	existing *model.Entry
}

var defaultMatchFields = []string{schema.ColTitle, schema.ColCalendarDate}

// Validate runs the import pipeline up to (and including) duplicate
// classification without touching the store for writes.
func (s *ImportService) Validate(ctx context.Context, tenantID, csvText string) (*model.ValidationReport, error) {
	outcome, err := s.parse(csvText)
	if err != nil {
		return nil, err
	}
	classifieds, err := s.classify(ctx, tenantID, outcome.Candidates, defaultMatchFields, UpdateModeReplace)
	if err != nil {
		return nil, err
	}
	report := buildReport(outcome, classifieds)
	return &report, nil
}

// Import runs the full pipeline. With opts.ValidateOnly the result is
// nil and only the report comes back; nothing is written.
func (s *ImportService) Import(ctx context.Context, tenantID, csvText string, opts ImportOptions) (*model.ImportResult, *model.ValidationReport, error) {
	mode := UpdateModeReplace
	if opts.SkipDuplicates {
		mode = ""
	} else if opts.UpdateMode != "" {
		mode = opts.UpdateMode
	}
	return s.run(ctx, tenantID, csvText, runOptions{
		mode:         mode,
		matchFields:  defaultMatchFields,
		enhance:      opts.EnableAIEnhancement,
		validateOnly: opts.ValidateOnly,
		batchSize:    opts.BatchSize,
		autoSchedule: opts.AutoSchedule,
		campaignID:   opts.CampaignID,
	})
}

// BulkUpdate is the same pipeline with merge as the default duplicate
// mode and caller-chosen match fields.
func (s *ImportService) BulkUpdate(ctx context.Context, tenantID, csvText string, opts BulkUpdateOptions) (*model.ImportResult, *model.ValidationReport, error) {
	mode := opts.UpdateMode
	if mode == "" {
		mode = UpdateModeMerge
	}
	if mode != UpdateModeMerge && mode != UpdateModeReplace {
		return nil, nil, fmt.Errorf("%w: update_mode must be merge or replace", appErr.ErrInvalid)
	}
	matchFields := opts.MatchFields
	if len(matchFields) == 0 {
		matchFields = defaultMatchFields
	}
	for i, field := range matchFields {
		matchFields[i] = schema.Normalize(field)
		if !schema.IsKnownColumn(matchFields[i]) {
			return nil, nil, fmt.Errorf("%w: unknown match field %q", appErr.ErrInvalid, field)
		}
	}
	return s.run(ctx, tenantID, csvText, runOptions{
		mode:        mode,
		matchFields: matchFields,
		enhance:     opts.EnableAIEnhancement,
	})
}

type runOptions struct {
	// mode is "" for skip-duplicates, otherwise merge or replace.
	mode         string
	matchFields  []string
	enhance      bool
	validateOnly bool
	batchSize    int
	autoSchedule bool
	campaignID   string
}

func (s *ImportService) run(ctx context.Context, tenantID, csvText string, opts runOptions) (*model.ImportResult, *model.ValidationReport, error) {
	start := time.Now()
	logger := logutil.GetLogger(ctx).With(zap.String("tenant_id", tenantID))

	outcome, err := s.parse(csvText)
	if err != nil {
		return nil, nil, err
	}
	classifieds, err := s.classify(ctx, tenantID, outcome.Candidates, opts.matchFields, opts.mode)
	if err != nil {
		return nil, nil, err
	}
	report := buildReport(outcome, classifieds)

	if opts.validateOnly {
		return nil, &report, nil
	}

	result := &model.ImportResult{RowErrors: append([]model.RowError{}, outcome.Errors...)}

	actionable := make([]classified, 0, len(classifieds))
	for _, c := range classifieds {
		if c.class == classSkip {
			result.Skipped += 1
			continue
		}
		if opts.campaignID != "" && c.cand.Entry.CampaignID == "" {
			c.cand.Entry.CampaignID = opts.campaignID
		}
		if opts.autoSchedule && c.cand.Entry.Status == schema.DefaultStatus {
			c.cand.Entry.Status = "scheduled"
		}
		actionable = append(actionable, c)
	}

	batchSize := opts.batchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	committedIDs := make([]string, 0, len(actionable))
	// Batches commit strictly one after another: classification was a
	// snapshot of the store, and sequential writes keep the counters
	// deterministic for a given input.
	for offset := 0; offset < len(actionable); offset += batchSize {
		end := offset + batchSize
		if end > len(actionable) {
			end = len(actionable)
		}
		ids := s.commitBatch(ctx, tenantID, actionable[offset:end], opts.enhance, result)
		committedIDs = append(committedIDs, ids...)
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	result.Success = result.Failed == 0 && report.InvalidRows == 0
	logger.Info("import finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int64("elapsed_ms", result.ProcessingTimeMs),
	)

	if opts.autoSchedule && len(committedIDs) > 0 {
		s.scheduler.Schedule(ctx, tenantID, committedIDs)
	}
	return result, &report, nil
}

// parse normalizes the payload and gates it on the header check before
// any row work.
func (s *ImportService) parse(csvText string) (csvio.ParseOutcome, error) {
	text := csvio.Normalize(csvText)
	header, rows, err := csvio.ReadRecords(text)
	if err != nil {
		return csvio.ParseOutcome{}, fmt.Errorf("%w: %s", appErr.ErrInvalid, err.Error())
	}
	headerReport := csvio.ValidateHeader(header)
	if !headerReport.Valid {
		return csvio.ParseOutcome{}, &SchemaError{Header: headerReport}
	}
	return csvio.ParseEntries(header, rows), nil
}

// classify probes the store once per distinct identity key. It never
// writes; the batch writer later acts on the classes alone.
func (s *ImportService) classify(ctx context.Context, tenantID string, candidates []csvio.Candidate, matchFields []string, mode string) ([]classified, error) {
	probes := make(map[string]*model.Entry)
	out := make([]classified, 0, len(candidates))
	for _, cand := range candidates {
		match := make(map[string]string, len(matchFields))
		keyParts := make([]string, 0, len(matchFields))
		for _, field := range matchFields {
			value := entryField(&cand.Entry, field)
			match[field] = value
			keyParts = append(keyParts, value)
		}
		key := strings.Join(keyParts, "\x00")
		existing, seen := probes[key]
		if !seen {
			found, err := s.store.FindByMatch(ctx, tenantID, match)
			if err != nil && !appErr.IsNotFound(err) {
				return nil, err
			}
			existing = found
			probes[key] = existing
		}
		c := classified{cand: cand, existing: existing}
		switch {
		case existing == nil:
			c.class = classNew
		case mode == UpdateModeMerge:
			c.class = classMerge
		case mode == UpdateModeReplace:
			c.class = classReplace
		default:
			c.class = classSkip
		}
		out = append(out, c)
	}
	return out, nil
}

// commitBatch enhances (best effort) and writes one batch. Failures are
// row-scoped: a bad row is counted and its batch mates still commit.
// Returns the IDs that reached the store.
func (s *ImportService) commitBatch(ctx context.Context, tenantID string, batch []classified, enhance bool, result *model.ImportResult) []string {
	entries := make([]*model.Entry, 0, len(batch))
	for i := range batch {
		entries = append(entries, &batch[i].cand.Entry)
	}
	if enhance && s.enhancer != nil {
		enhanced, err := s.enhancer.Enhance(ctx, entries)
		if err != nil {
			logutil.GetLogger(ctx).Warn("enhancement unavailable, continuing with original values",
				zap.String("tenant_id", tenantID),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
		} else if len(enhanced) == len(entries) {
			entries = enhanced
		}
	}

	now := time.Now().Unix()
	ids := make([]string, 0, len(batch))
	creates := make([]*model.Entry, 0, len(batch))
	createRows := make([]int, 0, len(batch))

	for i, c := range batch {
		entry := entries[i]
		entry.TenantID = tenantID
		entry.Mtime = now
		switch c.class {
		case classNew:
			entry.ID = newID()
			entry.Ctime = now
			creates = append(creates, entry)
			createRows = append(createRows, c.cand.Row)
		case classMerge:
			merged := mergeEntries(c.existing, entry, c.cand)
			merged.Mtime = now
			if err := s.store.Update(ctx, merged); err != nil {
				result.Failed += 1
				result.RowErrors = append(result.RowErrors, model.RowError{Row: c.cand.Row, Message: err.Error()})
				continue
			}
			result.Updated += 1
			ids = append(ids, merged.ID)
		case classReplace:
			entry.ID = c.existing.ID
			entry.Ctime = c.existing.Ctime
			if err := s.store.Update(ctx, entry); err != nil {
				result.Failed += 1
				result.RowErrors = append(result.RowErrors, model.RowError{Row: c.cand.Row, Message: err.Error()})
				continue
			}
			result.Updated += 1
			ids = append(ids, entry.ID)
		}
	}

	for i, err := range s.store.CreateBatch(ctx, creates) {
		if err != nil {
			result.Failed += 1
			result.RowErrors = append(result.RowErrors, model.RowError{Row: createRows[i], Message: err.Error()})
			continue
		}
		result.Created += 1
		ids = append(ids, creates[i].ID)
	}
	return ids
}

// mergeEntries overlays non-empty candidate fields on the stored entry.
// Enum fields only move when the author wrote them, since parsing fills
// defaults for absent cells.
func mergeEntries(existing *model.Entry, candidate *model.Entry, cand csvio.Candidate) *model.Entry {
	merged := *existing
	merged.Title = candidate.Title
	merged.CalendarDate = candidate.CalendarDate
	merged.TimeSlot = candidate.TimeSlot
	if len(candidate.Platforms) > 0 {
		merged.Platforms = candidate.Platforms
	}
	if candidate.Description != "" {
		merged.Description = candidate.Description
	}
	if len(candidate.Hashtags) > 0 {
		merged.Hashtags = candidate.Hashtags
	}
	if len(candidate.Mentions) > 0 {
		merged.Mentions = candidate.Mentions
	}
	if len(candidate.MediaURLs) > 0 {
		merged.MediaURLs = candidate.MediaURLs
	}
	if cand.HasPriority {
		merged.Priority = candidate.Priority
	}
	if cand.HasStatus {
		merged.Status = candidate.Status
	}
	if cand.HasContentType {
		merged.ContentType = candidate.ContentType
	}
	if candidate.CampaignID != "" {
		merged.CampaignID = candidate.CampaignID
	}
	if candidate.TargetAudience != "" {
		merged.TargetAudience = candidate.TargetAudience
	}
	if candidate.CallToAction != "" {
		merged.CallToAction = candidate.CallToAction
	}
	if candidate.TrackingParameters != "" {
		merged.TrackingParameters = candidate.TrackingParameters
	}
	return &merged
}

func buildReport(outcome csvio.ParseOutcome, classifieds []classified) model.ValidationReport {
	duplicates := 0
	for _, c := range classifieds {
		if c.existing != nil {
			duplicates += 1
		}
	}
	invalid := outcome.Total - len(outcome.Candidates)
	return model.ValidationReport{
		IsValid:       invalid == 0,
		TotalRows:     outcome.Total,
		ValidRows:     len(outcome.Candidates),
		InvalidRows:   invalid,
		DuplicateRows: duplicates,
		Errors:        outcome.Errors,
	}
}
