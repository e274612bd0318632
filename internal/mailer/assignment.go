package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// DueDateLayout renders due dates as e.g. "Friday, March 15, 2024".
const DueDateLayout = "Monday, January 2, 2006"

var priorityColors = map[string]string{
	"low":    "#10B981",
	"medium": "#F59E0B",
	"high":   "#EF4444",
}

// PriorityColor returns the accent color for a priority, medium when unknown.
func PriorityColor(priority string) string {
	if color, ok := priorityColors[strings.ToLower(priority)]; ok {
		return color
	}
	return priorityColors["medium"]
}

// TaskAssignment is the data of a new-task notification.
type TaskAssignment struct {
	EmployeeName    string
	EmployeeEmail   string
	TaskTitle       string
	TaskDescription string
	Priority        string
	DueDate         *time.Time
	AssignedBy      string
	AdminNote       string
}

type assignmentView struct {
	TaskAssignment
	PriorityLabel string
	PriorityColor htmltemplate.CSS
	DueDateText   string
	DashboardURL  string
}

var assignmentHTML = htmltemplate.Must(htmltemplate.New("assignment.html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Task Assignment</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
    <h1 style="color: white; margin: 0; font-size: 28px;">📋 New Task Assigned</h1>
  </div>
  <div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; border: 1px solid #e9ecef;">
    <p style="font-size: 18px; margin-bottom: 20px;">Hello <strong>{{.EmployeeName}}</strong>,</p>
    <p style="font-size: 16px; margin-bottom: 25px;">You have been assigned a new task by <strong>{{.AssignedBy}}</strong>.</p>
    <div style="background: white; padding: 25px; border-radius: 8px; border-left: 4px solid {{.PriorityColor}}; margin: 25px 0;">
      <h2 style="color: #2d3748; margin-top: 0; font-size: 22px;">{{.TaskTitle}}</h2>
      <div style="margin: 15px 0;">
        <span style="background: {{.PriorityColor}}; color: white; padding: 4px 12px; border-radius: 20px; font-size: 12px; font-weight: bold; text-transform: uppercase;">{{.PriorityLabel}} Priority</span>
      </div>
      <p style="color: #4a5568; font-size: 16px; margin: 15px 0;"><strong>Description:</strong></p>
      <p style="color: #718096; font-size: 15px; line-height: 1.6;">{{.TaskDescription}}</p>
      {{- if .DueDateText}}
      <p style="color: #4a5568; font-size: 16px; margin: 15px 0 5px 0;"><strong>Due Date:</strong></p>
      <p style="color: #e53e3e; font-size: 15px; font-weight: bold;">{{.DueDateText}}</p>
      {{- end}}
      {{- if .AdminNote}}
      <div style="background: #edf2f7; padding: 15px; border-radius: 6px; margin-top: 20px;">
        <p style="color: #4a5568; font-size: 14px; margin: 0 0 8px 0;"><strong>📝 Admin Note:</strong></p>
        <p style="color: #718096; font-size: 14px; margin: 0; font-style: italic;">{{.AdminNote}}</p>
      </div>
      {{- end}}
    </div>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.DashboardURL}}" style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; font-weight: bold; display: inline-block;">View Task Dashboard</a>
    </div>
    <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 30px 0;">
    <p style="color: #718096; font-size: 14px; text-align: center; margin: 0;">
      This is an automated notification from TaskFlow Management System.<br>
      Please log in to your dashboard to view full task details and update status.
    </p>
  </div>
</body>
</html>
`))

var assignmentText = texttemplate.Must(texttemplate.New("assignment.txt").Parse(`New Task Assigned: {{.TaskTitle}}

Hello {{.EmployeeName}},

You have been assigned a new task by {{.AssignedBy}}.

Task: {{.TaskTitle}}
Priority: {{.PriorityLabel}}
Description: {{.TaskDescription}}
{{- if .DueDateText}}
Due Date: {{.DueDateText}}
{{- end}}
{{- if .AdminNote}}
Admin Note: {{.AdminNote}}
{{- end}}

Please log in to your dashboard to view full details and update the task status.

Dashboard: {{.DashboardURL}}
`))

// RenderTaskAssignment builds the notification for data. appURL is the
// public base URL of the front end.
func RenderTaskAssignment(data TaskAssignment, appURL string) (Message, error) {
	view := assignmentView{
		TaskAssignment: data,
		PriorityLabel:  strings.ToUpper(data.Priority),
		PriorityColor:  htmltemplate.CSS(PriorityColor(data.Priority)),
		DashboardURL:   strings.TrimSuffix(appURL, "/") + "/employee",
	}
	if data.DueDate != nil {
		view.DueDateText = data.DueDate.Format(DueDateLayout)
	}

	var html, text bytes.Buffer
	if err := assignmentHTML.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("failed to render html body: %w", err)
	}
	if err := assignmentText.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("failed to render text body: %w", err)
	}

	return Message{
		To:      data.EmployeeEmail,
		Subject: "📋 New Task Assigned: " + data.TaskTitle,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
