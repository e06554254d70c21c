package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/postloop/postloop/internal/model"
	"github.com/postloop/postloop/internal/pkg/errcode"
	"github.com/postloop/postloop/internal/pkg/response"
	"github.com/postloop/postloop/internal/service"
)

type CalendarHandler struct {
	imports  *service.ImportService
	exports  *service.ExportService
	calendar *service.CalendarService
}

func NewCalendarHandler(imports *service.ImportService, exports *service.ExportService, calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{imports: imports, exports: exports, calendar: calendar}
}

type importOptionsRequest struct {
	EnableAIEnhancement bool   `json:"enable_ai_enhancement"`
	SkipDuplicates      *bool  `json:"skip_duplicates"`
	ValidateOnly        bool   `json:"validate_only"`
	BatchSize           int    `json:"batch_size"`
	AutoSchedule        bool   `json:"auto_schedule"`
	CampaignID          string `json:"campaign_id"`
	UpdateMode          string `json:"update_mode"`
}

type importRequest struct {
	CSVText string               `json:"csv_text"`
	Options importOptionsRequest `json:"options"`
}

func (h *CalendarHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.CSVText == "" {
		response.Error(c, errcode.ErrInvalid, "csv_text is required")
		return
	}
	// imports skip duplicates unless the caller opts out
	skip := true
	if req.Options.SkipDuplicates != nil {
		skip = *req.Options.SkipDuplicates
	}
	opts := service.ImportOptions{
		EnableAIEnhancement: req.Options.EnableAIEnhancement,
		SkipDuplicates:      skip,
		ValidateOnly:        req.Options.ValidateOnly,
		BatchSize:           req.Options.BatchSize,
		AutoSchedule:        req.Options.AutoSchedule,
		CampaignID:          req.Options.CampaignID,
		UpdateMode:          req.Options.UpdateMode,
	}
	result, report, err := h.imports.Import(c.Request.Context(), getTenantID(c), req.CSVText, opts)
	if err != nil {
		handleError(c, err)
		return
	}
	if opts.ValidateOnly {
		response.Success(c, gin.H{"report": report})
		return
	}
	response.Success(c, gin.H{"result": result, "report": report})
}

type validateRequest struct {
	CSVText string `json:"csv_text"`
}

func (h *CalendarHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.CSVText == "" {
		response.Error(c, errcode.ErrInvalid, "csv_text is required")
		return
	}
	report, err := h.imports.Validate(c.Request.Context(), getTenantID(c), req.CSVText)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

type bulkUpdateRequest struct {
	CSVText string                    `json:"csv_text"`
	Options service.BulkUpdateOptions `json:"options"`
}

func (h *CalendarHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.CSVText == "" {
		response.Error(c, errcode.ErrInvalid, "csv_text is required")
		return
	}
	result, report, err := h.imports.BulkUpdate(c.Request.Context(), getTenantID(c), req.CSVText, req.Options)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"result": result, "report": report})
}

type exportRequest struct {
	Filter  model.Filter          `json:"filter"`
	Options service.ExportOptions `json:"options"`
}

func (h *CalendarHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.exports.Export(c.Request.Context(), getTenantID(c), req.Filter, req.Options)
	if err != nil {
		handleError(c, err)
		return
	}
	if result.StoreKey != "" || result.Format == service.FormatJSON {
		response.Success(c, result)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Artifact)
}

type bulkDeleteRequest struct {
	Filter  model.Filter `json:"filter"`
	Confirm bool         `json:"confirm"`
}

func (h *CalendarHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	deleted, err := h.calendar.BulkDelete(c.Request.Context(), getTenantID(c), req.Filter, req.Confirm)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted_count": deleted})
}
