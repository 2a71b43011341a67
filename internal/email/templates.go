package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	subjectAssignment = "New request assigned to you"
	subjectReminder   = "Follow-up reminder"
	subjectMerge      = "Duplicate requests merged"
)

type baseEmailData struct {
	Title   string
	Heading string
}

type assignmentEmailData struct {
	baseEmailData
	AgentName string
	Product   string
	Priority  string
	RequestID string
}

type reminderEmailData struct {
	baseEmailData
	AgentName    string
	FollowUpType string
	DueAt        string
	RequestID    string
}

type mergeEmailData struct {
	baseEmailData
	PrimaryID      string
	DuplicateCount int
	ConflictCount  int
}

func renderEmailTemplate(name string, data interface{}) (string, error) {
	tpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
