package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/postloop/postloop/internal/filestore"
	"github.com/postloop/postloop/internal/model"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
	"github.com/postloop/postloop/internal/schema"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatJSON  = "json"
)

type ExportOptions struct {
	Format            string   `json:"format"`
	IncludeMetrics    bool     `json:"include_metrics"`
	IncludeAIInsights bool     `json:"include_ai_insights"`
	CustomFields      []string `json:"custom_fields"`
	DeliverToStore    bool     `json:"deliver_to_store"`
}

// MetricsProvider and InsightsProvider enrich JSON exports with opaque
// per-entry objects. Nil providers simply leave entries bare.
type MetricsProvider interface {
	Metrics(ctx context.Context, tenantID string, entryIDs []string) (map[string]json.RawMessage, error)
}

type InsightsProvider interface {
	Insights(ctx context.Context, tenantID string, entryIDs []string) (map[string]json.RawMessage, error)
}

type ExportService struct {
	store    EntryStore
	files    filestore.Store
	metrics  MetricsProvider
	insights InsightsProvider
}

func NewExportService(store EntryStore, files filestore.Store, metrics MetricsProvider, insights InsightsProvider) *ExportService {
	return &ExportService{store: store, files: files, metrics: metrics, insights: insights}
}

// Export translates the filter into a store query and renders whatever
// matches. Zero matches is ErrNoData, not a processing failure, and the
// store is never written.
func (s *ExportService) Export(ctx context.Context, tenantID string, filter model.Filter, opts ExportOptions) (*model.ExportResult, error) {
	entries, err := s.store.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, appErr.ErrNoData
	}

	format := opts.Format
	if format == "" {
		format = FormatCSV
	}
	var artifact []byte
	var contentType, ext string
	switch format {
	case FormatCSV:
		artifact, err = renderCSV(entries, opts.CustomFields)
		contentType, ext = "text/csv", "csv"
	case FormatExcel:
		artifact, err = renderXLSX(entries, opts.CustomFields)
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case FormatJSON:
		artifact, err = s.renderJSON(ctx, tenantID, entries, opts)
		contentType, ext = "application/json", "json"
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", appErr.ErrInvalid, opts.Format)
	}
	if err != nil {
		return nil, err
	}

	result := &model.ExportResult{
		Success:        true,
		Format:         format,
		RowCount:       len(entries),
		Artifact:       artifact,
		ContentType:    contentType,
		Filename:       fmt.Sprintf("calendar-export-%s.%s", time.Now().Format("20060102-150405"), ext),
		FiltersApplied: filter,
	}

	if opts.DeliverToStore && s.files != nil {
		key := fmt.Sprintf("%s-%s", tenantID, result.Filename)
		if err := s.files.Save(ctx, key, artifact); err != nil {
			return nil, fmt.Errorf("store export artifact: %w", err)
		}
		result.StoreKey = key
		result.Artifact = nil
		logutil.GetLogger(ctx).Info("export parked in file store",
			zap.String("tenant_id", tenantID),
			zap.String("key", key),
			zap.Int("rows", result.RowCount),
		)
	}
	return result, nil
}

func exportColumns(customFields []string) []string {
	columns := schema.Columns()
	for _, field := range customFields {
		name := schema.Normalize(field)
		if name != "" && !schema.IsKnownColumn(name) {
			columns = append(columns, name)
		}
	}
	return columns
}

func renderCSV(entries []model.Entry, customFields []string) ([]byte, error) {
	columns := exportColumns(customFields)
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(columns); err != nil {
		return nil, err
	}
	for i := range entries {
		record := make([]string, 0, len(columns))
		for _, col := range columns {
			record = append(record, entryField(&entries[i], col))
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(entries []model.Entry, customFields []string) ([]byte, error) {
	columns := exportColumns(customFields)
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()
	const sheet = "Calendar"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		header = append(header, col)
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i := range entries {
		row := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			row = append(row, entryField(&entries[i], col))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonExportItem struct {
	model.Entry
	Metrics  json.RawMessage `json:"metrics,omitempty"`
	Insights json.RawMessage `json:"insights,omitempty"`
}

func (s *ExportService) renderJSON(ctx context.Context, tenantID string, entries []model.Entry, opts ExportOptions) ([]byte, error) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	var metrics, insights map[string]json.RawMessage
	var err error
	if opts.IncludeMetrics && s.metrics != nil {
		if metrics, err = s.metrics.Metrics(ctx, tenantID, ids); err != nil {
			logutil.GetLogger(ctx).Warn("metrics enrichment unavailable", zap.Error(err))
			metrics = nil
		}
	}
	if opts.IncludeAIInsights && s.insights != nil {
		if insights, err = s.insights.Insights(ctx, tenantID, ids); err != nil {
			logutil.GetLogger(ctx).Warn("insights enrichment unavailable", zap.Error(err))
			insights = nil
		}
	}
	items := make([]jsonExportItem, 0, len(entries))
	for _, e := range entries {
		item := jsonExportItem{Entry: e}
		if metrics != nil {
			item.Metrics = metrics[e.ID]
		}
		if insights != nil {
			item.Insights = insights[e.ID]
		}
		items = append(items, item)
	}
	return json.MarshalIndent(items, "", "  ")
}
