package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

func formatMissingFieldsSection(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing contact fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.JSONPointer, field.Description)
	}
	_ = table.Render()
	return buf.String()
}

func formatValidationErrorsSection(errors []FieldInfo) string {
	if len(errors) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Validation errors:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Pointer", "Error")
	for _, err := range errors {
		_ = table.Append(err.JSONPointer, err.Description)
	}
	_ = table.Render()
	return buf.String()
}

// PromptContext is everything the classifier prompt is rendered from.
type PromptContext struct {
	Request          *ClassifyRequest
	FormSchema       string
	MissingFields    []FieldInfo
	ValidationErrors []FieldInfo
}

// FormatClassifyRequest renders the per-turn user prompt for the classifier.
func FormatClassifyRequest(pc *PromptContext) (string, error) {
	req := pc.Request
	if req == nil {
		return "", fmt.Errorf("classify request is nil")
	}
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# User says:\n%s", req.Message),
	}
	if req.LastQuestion != "" {
		sections = append(sections, fmt.Sprintf("# Agent previously asked:\n%s", req.LastQuestion))
	}
	if req.CurrentFormState != nil {
		stateJSON, err := json.Marshal(req.CurrentFormState)
		if err != nil {
			return "", err
		}
		sections = append(sections, fmt.Sprintf("# Current form state JSON:\n```json\n%s\n```", string(stateJSON)))
	}
	if pc.FormSchema != "" {
		sections = append(sections, fmt.Sprintf("# formData schema JSON:\n```json\n%s\n```", pc.FormSchema))
	}
	if s := formatMissingFieldsSection(pc.MissingFields); s != "" {
		sections = append(sections, s)
	}
	if s := formatValidationErrorsSection(pc.ValidationErrors); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n"), nil
}
