package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/postloop/postloop/internal/pkg/errcode"
	"github.com/postloop/postloop/internal/pkg/response"
	"github.com/postloop/postloop/internal/service"
)

type TemplateHandler struct {
	templates *service.TemplateService
}

func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

func (h *TemplateHandler) Template(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = "csv"
	}
	includeExamples := c.Query("include_examples") == "true"

	switch format {
	case "csv":
		content, err := h.templates.TemplateCSV(includeExamples)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="content-calendar-template.csv"`)
		c.Data(200, "text/csv", content)
	case "json":
		doc, err := h.templates.TemplateJSON(includeExamples)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, doc)
	case "markdown":
		c.Data(200, "text/markdown; charset=utf-8", []byte(h.templates.ReferenceMarkdown()))
	case "html":
		rendered, err := h.templates.ReferenceHTML()
		if err != nil {
			handleError(c, err)
			return
		}
		c.Data(200, "text/html; charset=utf-8", []byte(rendered))
	default:
		response.Error(c, errcode.ErrInvalid, "format must be csv, json, markdown or html")
	}
}
