package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/postloop/postloop/internal/schema"
)

// TemplateService teaches callers the import shape. It never touches
// the store.
type TemplateService struct {
	md goldmark.Markdown
}

func NewTemplateService() *TemplateService {
	return &TemplateService{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// TemplateCSV emits the canonical header, optionally followed by
// worked example rows ready to edit.
func (s *TemplateService) TemplateCSV(includeExamples bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(schema.Columns()); err != nil {
		return nil, err
	}
	if includeExamples {
		for _, row := range exampleRows() {
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type SchemaDocument struct {
	Fields          []schema.Field      `json:"fields"`
	RequiredColumns []string            `json:"required_columns"`
	ListDelimiter   string              `json:"list_delimiter"`
	Examples        []map[string]string `json:"examples,omitempty"`
}

// TemplateJSON enumerates every field with type, requiredness and, for
// enum fields, the legal value set.
func (s *TemplateService) TemplateJSON(includeExamples bool) (*SchemaDocument, error) {
	doc := &SchemaDocument{
		Fields:          schema.Fields(),
		RequiredColumns: schema.RequiredColumns(),
		ListDelimiter:   schema.ListDelimiter,
	}
	if includeExamples {
		for _, row := range exampleRows() {
			example := make(map[string]string, len(row))
			for i, col := range schema.Columns() {
				if i < len(row) && row[i] != "" {
					example[col] = row[i]
				}
			}
			doc.Examples = append(doc.Examples, example)
		}
	}
	return doc, nil
}

// ReferenceMarkdown renders the schema as a human-readable document.
func (s *TemplateService) ReferenceMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Content Calendar Import Format\n\n")
	sb.WriteString("Upload a CSV with the columns below. Required columns: `")
	sb.WriteString(strings.Join(schema.RequiredColumns(), "`, `"))
	sb.WriteString("`. Multi-value cells are `|` separated.\n\n")
	sb.WriteString("| column | type | required | values | example |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, f := range schema.Fields() {
		required := "no"
		if f.Required {
			required = "yes"
		}
		values := "-"
		if len(f.Enum) > 0 {
			values = strings.Join(f.Enum, ", ")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n", f.Name, f.Type, required, values, f.Example))
	}
	return sb.String()
}

// ReferenceHTML is ReferenceMarkdown pushed through goldmark.
func (s *TemplateService) ReferenceHTML() (string, error) {
	var out bytes.Buffer
	if err := s.md.Convert([]byte(s.ReferenceMarkdown()), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func exampleRows() [][]string {
	columns := schema.Columns()
	byName := make(map[string]schema.Field)
	for _, f := range schema.Fields() {
		byName[f.Name] = f
	}
	first := make([]string, 0, len(columns))
	for _, col := range columns {
		first = append(first, byName[col].Example)
	}
	second := []string{
		"Weekly tips thread", "Five quick wins for new users", "2024-12-30", "15:30",
		"twitter", "tips|howto", "", "", "medium", "ready", "", "educational",
		"new customers", "Read the full guide", "",
	}
	return [][]string{first, second}
}
