package csvio

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/postloop/postloop/internal/model"
	"github.com/postloop/postloop/internal/schema"
)

// Candidate is a row that survived field validation. Row keeps the
// 1-indexed position in the submitted payload so later stages can
// report against the caller's file.
type Candidate struct {
	Row   int
	Entry model.Entry

	// Enum fields default when the cell is empty; merge-mode updates
	// need to know whether the author actually wrote a value.
	HasPriority    bool
	HasStatus      bool
	HasContentType bool
}

type ParseOutcome struct {
	Candidates []Candidate
	Errors     []model.RowError
	Total      int
}

// ReadRecords splits normalized text into a header and data rows.
// Fully empty rows are dropped, not counted.
func ReadRecords(text string) ([]string, [][]string, error) {
	if text == "" {
		return nil, nil, nil
	}
	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(firstLine)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	header := make([]string, 0, len(records[0]))
	for _, col := range records[0] {
		header = append(header, schema.Normalize(col))
	}
	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

// ParseEntries validates every data row and is exhaustive: a bad row is
// recorded and the pass continues, so one report covers the whole file.
func ParseEntries(header []string, rows [][]string) ParseOutcome {
	outcome := ParseOutcome{
		Candidates: []Candidate{},
		Errors:     []model.RowError{},
		Total:      len(rows),
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for i, row := range rows {
		rowNum := i + 1
		var rowErrs []model.RowError
		fail := func(field, message string) {
			rowErrs = append(rowErrs, model.RowError{Row: rowNum, Field: field, Message: message})
		}

		entry := model.Entry{
			Title:              cell(row, schema.ColTitle),
			Description:        cell(row, schema.ColDescription),
			CalendarDate:       cell(row, schema.ColCalendarDate),
			TimeSlot:           cell(row, schema.ColTimeSlot),
			CampaignID:         cell(row, schema.ColCampaignID),
			TargetAudience:     cell(row, schema.ColTargetAudience),
			CallToAction:       cell(row, schema.ColCallToAction),
			TrackingParameters: cell(row, schema.ColTrackingParameters),
		}

		if entry.Title == "" {
			fail(schema.ColTitle, "required")
		} else if len([]rune(entry.Title)) > schema.MaxTitleLen {
			fail(schema.ColTitle, fmt.Sprintf("exceeds %d characters", schema.MaxTitleLen))
		}

		for _, text := range []struct {
			col   string
			value string
		}{
			{schema.ColDescription, entry.Description},
			{schema.ColTargetAudience, entry.TargetAudience},
			{schema.ColCallToAction, entry.CallToAction},
			{schema.ColTrackingParameters, entry.TrackingParameters},
		} {
			if len([]rune(text.value)) > schema.MaxFieldLen {
				fail(text.col, fmt.Sprintf("exceeds %d characters", schema.MaxFieldLen))
			}
		}

		if entry.CalendarDate == "" {
			fail(schema.ColCalendarDate, "required")
		} else if _, err := time.Parse("2006-01-02", entry.CalendarDate); err != nil {
			fail(schema.ColCalendarDate, "must be YYYY-MM-DD")
		}

		if entry.TimeSlot == "" {
			fail(schema.ColTimeSlot, "required")
		} else if _, err := time.Parse("15:04", entry.TimeSlot); err != nil {
			fail(schema.ColTimeSlot, "must be HH:MM")
		}

		platforms := SplitList(cell(row, schema.ColTargetPlatforms))
		if len(platforms) == 0 {
			fail(schema.ColTargetPlatforms, "required")
		}
		for j, platform := range platforms {
			platforms[j] = strings.ToLower(platform)
			if !schema.IsPlatform(platforms[j]) {
				fail(schema.ColTargetPlatforms, fmt.Sprintf("unknown platform %q", platform))
			}
		}
		entry.Platforms = platforms

		entry.Hashtags = SplitList(cell(row, schema.ColHashtags))
		entry.Mentions = SplitList(cell(row, schema.ColMentions))
		entry.MediaURLs = SplitList(cell(row, schema.ColMediaURLs))

		hasPriority := false
		entry.Priority = strings.ToLower(cell(row, schema.ColPriority))
		if entry.Priority == "" {
			entry.Priority = schema.DefaultPriority
		} else if !schema.IsPriority(entry.Priority) {
			fail(schema.ColPriority, fmt.Sprintf("must be one of %s", strings.Join(schema.Priorities, ", ")))
		} else {
			hasPriority = true
		}

		hasStatus := false
		entry.Status = strings.ToLower(cell(row, schema.ColStatus))
		if entry.Status == "" {
			entry.Status = schema.DefaultStatus
		} else if !schema.IsStatus(entry.Status) {
			fail(schema.ColStatus, fmt.Sprintf("must be one of %s", strings.Join(schema.Statuses, ", ")))
		} else {
			hasStatus = true
		}

		hasContentType := false
		entry.ContentType = strings.ToLower(cell(row, schema.ColContentType))
		if entry.ContentType != "" && !schema.IsContentType(entry.ContentType) {
			fail(schema.ColContentType, fmt.Sprintf("must be one of %s", strings.Join(schema.ContentTypes, ", ")))
		} else if entry.ContentType != "" {
			hasContentType = true
		}

		if len(rowErrs) > 0 {
			outcome.Errors = append(outcome.Errors, rowErrs...)
			continue
		}
		outcome.Candidates = append(outcome.Candidates, Candidate{
			Row:            rowNum,
			Entry:          entry,
			HasPriority:    hasPriority,
			HasStatus:      hasStatus,
			HasContentType: hasContentType,
		})
	}
	return outcome
}

// SplitList breaks a multi-value cell apart. Exports join with "|" but
// imports also tolerate comma and semicolon separated values.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == '|' || r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList is the inverse of SplitList for rendering.
func JoinList(values []string) string {
	return strings.Join(values, "|")
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
