package model

// RowError points at one problem in a submitted payload. Row is
// 1-indexed over data rows, header excluded. Field is empty for
// row-level problems.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type HeaderReport struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
	Extra   []string `json:"extra"`
}

type ValidationReport struct {
	IsValid       bool       `json:"is_valid"`
	TotalRows     int        `json:"total_rows"`
	ValidRows     int        `json:"valid_rows"`
	InvalidRows   int        `json:"invalid_rows"`
	DuplicateRows int        `json:"duplicate_rows"`
	Errors        []RowError `json:"errors"`
}

type ImportResult struct {
	Success          bool       `json:"success"`
	Created          int        `json:"created"`
	Updated          int        `json:"updated"`
	Skipped          int        `json:"skipped"`
	Failed           int        `json:"failed"`
	RowErrors        []RowError `json:"row_errors"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
}

type ExportResult struct {
	Success        bool   `json:"success"`
	Format         string `json:"format"`
	RowCount       int    `json:"row_count"`
	Artifact       []byte `json:"artifact,omitempty"`
	ContentType    string `json:"content_type"`
	Filename       string `json:"filename"`
	StoreKey       string `json:"store_key,omitempty"`
	FiltersApplied Filter `json:"filters_applied"`
}

// Filter narrows export, bulk-update and bulk-delete scopes. Zero
// value means unscoped.
type Filter struct {
	DateStart  string   `json:"date_start,omitempty"`
	DateEnd    string   `json:"date_end,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
	Status     []string `json:"status,omitempty"`
	Priority   []string `json:"priority,omitempty"`
	CampaignID string   `json:"campaign_id,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.DateStart == "" && f.DateEnd == "" &&
		len(f.Platforms) == 0 && len(f.Status) == 0 && len(f.Priority) == 0 &&
		f.CampaignID == ""
}
