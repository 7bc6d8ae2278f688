package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/hirelane/job-board/internal/domain"
)

// TemplateKind selects one of the three status-change emails.
type TemplateKind string

const (
	TemplateAccepted  TemplateKind = "accepted"
	TemplateRejected  TemplateKind = "rejected"
	TemplateInProcess TemplateKind = "in_process"
)

const subjectFormat = "Application Update: %s at %s"

var bodyTemplates = map[TemplateKind]*template.Template{
	TemplateAccepted: template.Must(template.New("accepted").Parse(`Dear {{.RecipientName}},

We're writing to inform you about the status of your application for the {{.JobTitle}} position at {{.Company}}.

Current Status: {{.Status}}

Congratulations! We appreciate your interest in joining our team.

Our team will contact you shortly with next steps.

For any questions, please don't hesitate to reach out.

Best regards,
The {{.Company}} Recruitment Team
`)),
	TemplateRejected: template.Must(template.New("rejected").Parse(`Dear {{.RecipientName}},

We're writing to inform you about the status of your application for the {{.JobTitle}} position at {{.Company}}.

Current Status: {{.Status}}

Thank you for your patience throughout our selection process. We appreciate your interest in joining our team.

We encourage you to apply for future opportunities that match your skills.

For any questions, please don't hesitate to reach out.

Best regards,
The {{.Company}} Recruitment Team
`)),
	TemplateInProcess: template.Must(template.New("in_process").Parse(`Dear {{.RecipientName}},

We're writing to inform you about the status of your application for the {{.JobTitle}} position at {{.Company}}.

Current Status: {{.Status}}

Thank you for your patience throughout our selection process. We appreciate your interest in joining our team.

Our team will contact you shortly with next steps.

For any questions, please don't hesitate to reach out.

Best regards,
The {{.Company}} Recruitment Team
`)),
}

// TemplateFor picks the template for a new status.
func TemplateFor(status domain.ApplicationStatus) TemplateKind {
	switch status {
	case domain.StatusAccepted:
		return TemplateAccepted
	case domain.StatusRejected:
		return TemplateRejected
	default:
		return TemplateInProcess
	}
}

// Render builds the email for msg.
func Render(from string, msg Message) (Email, error) {
	tmpl := bodyTemplates[TemplateFor(msg.Status)]
	var body bytes.Buffer
	if err := tmpl.Execute(&body, msg); err != nil {
		return Email{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return Email{
		From:    from,
		To:      msg.Recipient,
		Subject: fmt.Sprintf(subjectFormat, msg.JobTitle, msg.Company),
		Body:    body.String(),
	}, nil
}
