package service

import (
	"bytes"
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirelane/job-board/internal/config"
	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/events"
	"github.com/hirelane/job-board/internal/notification"
	"github.com/hirelane/job-board/internal/repository/memory"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

const testMaxResume = 5 * 1024 * 1024

type testEnv struct {
	store      *memory.Store
	resumes    *memory.ResumeStore
	queue      *notification.MemoryQueue
	auth       *AuthService
	jobs       *JobService
	apps       *ApplicationService
	dashboards *DashboardService
	notifier   *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithQueue(t, 64)
}

func newTestEnvWithQueue(t *testing.T, queueSize int) *testEnv {
	t.Helper()
	store := memory.NewStore()
	resumes := memory.NewResumeStore()
	queue := notification.NewMemoryQueue(queueSize)
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}}

	env := &testEnv{
		store:   store,
		resumes: resumes,
		queue:   queue,
		auth:    NewAuthService(cfg, AuthDependencies{UserRepo: store.UserRepo(), Logger: logger}),
		jobs:    NewJobService(JobDependencies{JobRepo: store.JobRepo(), Dispatcher: dispatcher, Logger: logger}),
		apps: NewApplicationService(ApplicationDependencies{
			ApplicationRepo:  store.ApplicationRepo(),
			JobRepo:          store.JobRepo(),
			HistoryRepo:      store.HistoryRepo(),
			NotificationRepo: store.NotificationRepo(),
			Resumes:          resumes,
			Dispatcher:       dispatcher,
			Logger:           logger,
			MaxResumeBytes:   testMaxResume,
		}),
		dashboards: NewDashboardService(store.JobRepo(), store.ApplicationRepo()),
		notifier: NewNotificationService(NotificationDependencies{
			Dispatcher:       dispatcher,
			NotificationRepo: store.NotificationRepo(),
			Queue:            queue,
			Logger:           logger,
		}),
	}
	env.notifier.RegisterHandlers()
	t.Cleanup(queue.Close)
	return env
}

// signUp registers a user and returns the identity carried by its token.
func (e *testEnv) signUp(t *testing.T, name, email string, role domain.Role) domain.Identity {
	t.Helper()
	ctx := context.Background()
	if _, err := e.auth.Register(ctx, RegisterInput{Name: name, Email: email, Password: "pa55word", Role: string(role)}); err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	login, err := e.auth.Authenticate(ctx, email, "pa55word")
	if err != nil {
		t.Fatalf("Authenticate %s: %v", email, err)
	}
	identity, err := e.auth.VerifyToken(login.Token.Value)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	return identity
}

func (e *testEnv) postJob(t *testing.T, employer domain.Identity, title string) *domain.Job {
	t.Helper()
	job, err := e.jobs.CreateJob(context.Background(), employer, JobInput{
		Title:        title,
		Company:      "Acme",
		Description:  "Build services",
		Location:     "Remote",
		Salary:       "100k",
		Requirements: "Go",
		Type:         "Full-time",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return job
}

func (e *testEnv) apply(t *testing.T, candidate domain.Identity, jobID string) *domain.Application {
	t.Helper()
	app, err := e.apps.Submit(context.Background(), candidate, jobID, pdfUpload(2*1024*1024))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return app
}

func pdfUpload(size int64) ResumeUpload {
	return ResumeUpload{
		FileName:    "resume.pdf",
		ContentType: "application/pdf",
		Size:        size,
		Content:     bytes.NewReader(make([]byte, size)),
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.IsCode(err, code) {
		t.Fatalf("error = %v, want %s", err, code)
	}
}
