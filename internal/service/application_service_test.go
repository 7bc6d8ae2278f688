package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/notification"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

func TestApplicationService_HiringScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	job := env.postJob(t, acme, "Backend Engineer")
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)

	app := env.apply(t, jane, job.ID)
	if app.Status != domain.StatusPending {
		t.Fatalf("new application status = %q, want pending", app.Status)
	}

	result, err := env.apps.UpdateStatus(ctx, acme, app.ID, "Accepted for interview")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if !result.Updated || result.Notified != NotifyQueued || result.NotificationID == "" {
		t.Fatalf("result = %+v, want updated and queued", result)
	}

	dashboard, err := env.dashboards.CandidateDashboard(ctx, jane)
	if err != nil {
		t.Fatalf("CandidateDashboard: %v", err)
	}
	if len(dashboard) != 1 || dashboard[0].Application.Status != domain.StatusInterview {
		t.Fatalf("dashboard = %+v", dashboard)
	}

	attempts, err := env.apps.ListNotifications(ctx, acme, app.ID)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(attempts) != 1 || attempts[0].ID != result.NotificationID || attempts[0].State != domain.NotificationQueued {
		t.Fatalf("attempts = %+v", attempts)
	}

	msg, err := env.queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if msg.Recipient != "jane@example.com" || msg.JobTitle != "Backend Engineer" || msg.Status != domain.StatusInterview {
		t.Fatalf("queued message = %+v", msg)
	}

	history, err := env.apps.ListHistory(ctx, acme, app.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 1 || history[0].OldStatus != domain.StatusPending || history[0].ChangedBy != acme.UserID {
		t.Fatalf("history = %+v", history)
	}
}

func TestApplicationService_RejectsBadResume(t *testing.T) {
	tests := []struct {
		name   string
		upload ResumeUpload
	}{
		{"too large", pdfUpload(6 * 1024 * 1024)},
		{"text file", ResumeUpload{FileName: "resume.txt", ContentType: "text/plain", Size: 10, Content: bytes.NewReader(make([]byte, 10))}},
		{"empty", pdfUpload(0)},
		{"missing", ResumeUpload{}},
		{"type mismatch", ResumeUpload{FileName: "resume.pdf", ContentType: "image/png", Size: 10, Content: bytes.NewReader(make([]byte, 10))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			employer := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
			job := env.postJob(t, employer, "Backend Engineer")
			jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)

			_, err := env.apps.Submit(context.Background(), jane, job.ID, tt.upload)
			requireCode(t, err, apperrors.CodeValidation)
			if env.store.ApplicationCount() != 0 {
				t.Error("no application row should exist")
			}
			if env.resumes.Count() != 0 {
				t.Error("no resume should be stored")
			}
		})
	}
}

func TestApplicationService_AcceptsDocxAndOctetStream(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	job := env.postJob(t, employer, "Backend Engineer")
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)

	app, err := env.apps.Submit(context.Background(), jane, job.ID, ResumeUpload{
		FileName:    "CV.DOCX",
		ContentType: "application/octet-stream",
		Size:        128,
		Content:     bytes.NewReader(make([]byte, 128)),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.ResumeName != "CV.DOCX" || app.ResumeSize != 128 {
		t.Errorf("resume metadata = %+v", app)
	}
}

func TestApplicationService_SubmitUnknownJob(t *testing.T) {
	env := newTestEnv(t)
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)

	_, err := env.apps.Submit(context.Background(), jane, uuid.NewString(), pdfUpload(10))
	requireCode(t, err, apperrors.CodeNotFound)
	if env.resumes.Count() != 0 {
		t.Error("resume stored for a missing job")
	}
}

func TestApplicationService_FailedInsertRemovesResume(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	job := env.postJob(t, employer, "Backend Engineer")
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)

	env.store.SetFailWrites(true)
	_, err := env.apps.Submit(context.Background(), jane, job.ID, pdfUpload(10))
	requireCode(t, err, apperrors.CodePersistence)
	if env.resumes.Count() != 0 {
		t.Error("resume left behind after failed insert")
	}
}

func TestApplicationService_RoleSeparation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employer := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	candidate := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
	job := env.postJob(t, employer, "Backend Engineer")
	app := env.apply(t, candidate, job.ID)

	candidateOnly := map[string]func(domain.Identity) error{
		"submit": func(id domain.Identity) error {
			_, err := env.apps.Submit(ctx, id, job.ID, pdfUpload(10))
			return err
		},
		"candidate dashboard": func(id domain.Identity) error {
			_, err := env.dashboards.CandidateDashboard(ctx, id)
			return err
		},
	}
	employerOnly := map[string]func(domain.Identity) error{
		"create job": func(id domain.Identity) error {
			_, err := env.jobs.CreateJob(ctx, id, JobInput{})
			return err
		},
		"employer dashboard": func(id domain.Identity) error {
			_, err := env.dashboards.EmployerDashboard(ctx, id)
			return err
		},
		"update status": func(id domain.Identity) error {
			_, err := env.apps.UpdateStatus(ctx, id, app.ID, "Accepted")
			return err
		},
		"list notifications": func(id domain.Identity) error {
			_, err := env.apps.ListNotifications(ctx, id, app.ID)
			return err
		},
	}

	for name, op := range candidateOnly {
		if err := op(employer); !apperrors.IsCode(err, apperrors.CodeForbidden) {
			t.Errorf("%s with employer token = %v, want Forbidden", name, err)
		}
	}
	for name, op := range employerOnly {
		if err := op(candidate); !apperrors.IsCode(err, apperrors.CodeForbidden) {
			t.Errorf("%s with candidate token = %v, want Forbidden", name, err)
		}
	}

	stored, _ := env.store.ApplicationRepo().GetDetail(ctx, app.ID)
	if stored.Status != domain.StatusPending {
		t.Errorf("status changed by rejected calls: %q", stored.Status)
	}
}

func TestApplicationService_NonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	rival := env.signUp(t, "Rival HR", "hr@rival.test", domain.RoleEmployer)
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
	job := env.postJob(t, acme, "Backend Engineer")
	app := env.apply(t, jane, job.ID)

	_, err := env.apps.UpdateStatus(ctx, rival, app.ID, "Rejected")
	requireCode(t, err, apperrors.CodeForbidden)
	_, _, err = env.apps.OpenResume(ctx, rival, app.ResumeKey)
	requireCode(t, err, apperrors.CodeForbidden)

	stored, _ := env.store.ApplicationRepo().GetDetail(ctx, app.ID)
	if stored.Status != domain.StatusPending {
		t.Fatalf("status = %q, want unchanged", stored.Status)
	}
	if env.store.HistoryCount() != 0 || env.store.NotificationCount() != 0 {
		t.Fatal("rejected update must not leave history or notifications")
	}

	rc, detail, err := env.apps.OpenResume(ctx, acme, app.ResumeKey)
	if err != nil {
		t.Fatalf("owner OpenResume: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if int64(len(data)) != app.ResumeSize || detail.ID != app.ID {
		t.Errorf("resume = %d bytes for %s", len(data), detail.ID)
	}
}

func TestApplicationService_UpdateStatusIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
	app := env.apply(t, jane, env.postJob(t, acme, "Backend Engineer").ID)

	first, err := env.apps.UpdateStatus(ctx, acme, app.ID, "accepted")
	if err != nil || !first.Updated {
		t.Fatalf("first update = %+v, %v", first, err)
	}
	second, err := env.apps.UpdateStatus(ctx, acme, app.ID, "Accepted")
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if second.Updated || second.Notified != NotifySkipped {
		t.Fatalf("second update = %+v, want no-op", second)
	}
	if second.Application.Status != domain.StatusAccepted {
		t.Errorf("status = %q", second.Application.Status)
	}
	if env.store.ApplicationCount() != 1 || env.store.HistoryCount() != 1 || env.store.NotificationCount() != 1 {
		t.Fatalf("rows: applications=%d history=%d notifications=%d",
			env.store.ApplicationCount(), env.store.HistoryCount(), env.store.NotificationCount())
	}
}

func TestApplicationService_TransitionTable(t *testing.T) {
	tests := []struct {
		name  string
		path  []string
		final string
		code  string
	}{
		{"pending to interview to accepted", []string{"Accepted for interview"}, "Accepted", ""},
		{"interview to rejected", []string{"interview"}, "Rejected", ""},
		{"accepted is terminal", []string{"Accepted"}, "Rejected", apperrors.CodeInvalidTransition},
		{"rejected is terminal", []string{"Rejected"}, "Accepted for interview", apperrors.CodeInvalidTransition},
		{"interview cannot go back", []string{"Accepted for interview"}, "pending", apperrors.CodeInvalidTransition},
		{"unknown status", nil, "Hired?", apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
			jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
			app := env.apply(t, jane, env.postJob(t, acme, "Backend Engineer").ID)

			for _, step := range tt.path {
				if _, err := env.apps.UpdateStatus(ctx, acme, app.ID, step); err != nil {
					t.Fatalf("step %q: %v", step, err)
				}
			}
			result, err := env.apps.UpdateStatus(ctx, acme, app.ID, tt.final)
			if tt.code != "" {
				requireCode(t, err, tt.code)
				return
			}
			if err != nil || !result.Updated {
				t.Fatalf("final step = %+v, %v", result, err)
			}
		})
	}
}

func TestApplicationService_UpdateMissingApplication(t *testing.T) {
	env := newTestEnv(t)
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)

	_, err := env.apps.UpdateStatus(context.Background(), acme, uuid.NewString(), "Accepted")
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = env.apps.UpdateStatus(context.Background(), acme, "42", "Accepted")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestApplicationService_ConcurrentUpdatesSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
	app := env.apply(t, jane, env.postJob(t, acme, "Backend Engineer").ID)

	targets := []string{"Accepted", "Rejected", "Accepted", "Rejected", "Accepted", "Rejected", "Accepted", "Rejected"}
	results := make([]*StatusUpdateResult, len(targets))
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			results[i], errs[i] = env.apps.UpdateStatus(ctx, acme, app.ID, target)
		}(i, target)
	}
	wg.Wait()

	winners := 0
	for i := range targets {
		if errs[i] != nil {
			if !apperrors.IsCode(errs[i], apperrors.CodeInvalidTransition) {
				t.Errorf("call %d: unexpected error %v", i, errs[i])
			}
			continue
		}
		if results[i].Updated {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	if env.store.HistoryCount() != 1 {
		t.Fatalf("history rows = %d, want 1", env.store.HistoryCount())
	}
}

func TestApplicationService_QueueFullDoesNotUndoWrite(t *testing.T) {
	env := newTestEnvWithQueue(t, 1)
	ctx := context.Background()
	if err := env.queue.Enqueue(ctx, notification.Message{ID: "filler"}); err != nil {
		t.Fatal(err)
	}
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
	app := env.apply(t, jane, env.postJob(t, acme, "Backend Engineer").ID)

	result, err := env.apps.UpdateStatus(ctx, acme, app.ID, "Rejected")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if !result.Updated || result.Notified != NotifyError {
		t.Fatalf("result = %+v, want updated with notification error", result)
	}
	stored, _ := env.store.ApplicationRepo().GetDetail(ctx, app.ID)
	if stored.Status != domain.StatusRejected {
		t.Fatalf("status = %q, want Rejected", stored.Status)
	}
	attempt, _ := env.store.Notification(result.NotificationID)
	if attempt.State != domain.NotificationFailed || attempt.LastError == "" {
		t.Fatalf("attempt = %+v, want failed", attempt)
	}
}

func TestApplicationService_OpenResumeAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	rival := env.signUp(t, "Rival HR", "hr@rival.test", domain.RoleEmployer)
	jane := env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)
	john := env.signUp(t, "John", "john@example.com", domain.RoleCandidate)
	job := env.postJob(t, acme, "Backend Engineer")
	app := env.apply(t, jane, job.ID)

	tests := []struct {
		name     string
		identity domain.Identity
		wantCode string
	}{
		{"job owner", acme, ""},
		{"applicant", jane, ""},
		{"other employer", rival, apperrors.CodeForbidden},
		{"other candidate", john, apperrors.CodeForbidden},
		{"anonymous", domain.Identity{}, apperrors.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, _, err := env.apps.OpenResume(ctx, tt.identity, app.ResumeKey)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("OpenResume: %v", err)
			}
			rc.Close()
		})
	}
}
