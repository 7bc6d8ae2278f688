package notification

import (
	"strings"
	"testing"

	"github.com/hirelane/job-board/internal/domain"
)

func TestRender_PicksTemplateByStatus(t *testing.T) {
	base := Message{
		Recipient:     "ada@example.com",
		RecipientName: "Ada",
		JobTitle:      "Backend Engineer",
		Company:       "Acme",
	}
	tests := []struct {
		status domain.ApplicationStatus
		want   string
		absent string
	}{
		{domain.StatusAccepted, "Congratulations!", "future opportunities"},
		{domain.StatusRejected, "future opportunities", "Congratulations!"},
		{domain.StatusInterview, "contact you shortly", "Congratulations!"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			msg := base
			msg.Status = tt.status
			email, err := Render("jobs@acme.test", msg)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if email.Subject != "Application Update: Backend Engineer at Acme" {
				t.Errorf("subject = %q", email.Subject)
			}
			if email.To != "ada@example.com" || email.From != "jobs@acme.test" {
				t.Errorf("addresses = %q -> %q", email.From, email.To)
			}
			if !strings.Contains(email.Body, tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, email.Body)
			}
			if strings.Contains(email.Body, tt.absent) {
				t.Errorf("body should not contain %q", tt.absent)
			}
			if !strings.Contains(email.Body, "Current Status: "+string(tt.status)) {
				t.Errorf("body should state the status")
			}
		})
	}
}
