package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"go-recruiter-backend/internal/domain"
)

const statusEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        .container { max-width: 600px; margin: 20px auto; font-family: Arial, sans-serif; }
        .header { background-color: #1a82e2; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .status { font-weight: bold; color: {{.Color}}; }
        .footer { margin-top: 20px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>Application Status Update</h2>
        </div>
        <div class="content">
            <p>Hello,</p>
            <p>Your application for <strong>{{.JobTitle}}</strong> has been updated to:
            <span class="status">{{.Status}}</span>.</p>
            <p>{{.Message}}</p>
        </div>
        <div class="footer">
            <p>&copy; {{.Year}} {{.CompanyName}}. All rights reserved.</p>
            <p><a href="{{.UnsubscribeURL}}">Unsubscribe</a> from these notifications</p>
        </div>
    </div>
</body>
</html>`

var statusEmail = template.Must(template.New("status").Parse(statusEmailTemplate))

type tone struct {
	color   template.CSS
	message string
}

var tones = map[domain.ApplicationStatus]tone{
	domain.StatusAccepted: {"#4CAF50", "Congratulations! Our team will contact you shortly to discuss next steps."},
	domain.StatusRejected: {"#F44336", "We appreciate your interest and encourage you to apply for future opportunities."},
}

var reviewingTone = tone{"#FFC107", "We're currently reviewing your application and will update you as we progress."}

type emailData struct {
	JobTitle       string
	Status         string
	Color          template.CSS
	Message        string
	Year           int
	CompanyName    string
	UnsubscribeURL string
}

// Subject returns the status e-mail subject line.
func Subject(jobTitle string) string {
	return "Application Update: " + jobTitle
}

// Render produces the status e-mail body. Accepted and rejected get their
// own wording; every other status reads as still under review.
func Render(status domain.ApplicationStatus, jobTitle, unsubscribeURL string, year int, companyName string) (string, error) {
	t, ok := tones[status]
	if !ok {
		t = reviewingTone
	}

	var body bytes.Buffer
	err := statusEmail.Execute(&body, emailData{
		JobTitle:       jobTitle,
		Status:         strings.ToUpper(string(status)),
		Color:          t.color,
		Message:        t.message,
		Year:           year,
		CompanyName:    companyName,
		UnsubscribeURL: unsubscribeURL,
	})
	if err != nil {
		return "", fmt.Errorf("notification: render: %w", err)
	}
	return body.String(), nil
}
