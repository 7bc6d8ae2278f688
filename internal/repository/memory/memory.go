// Package memory holds in-process repositories and resume storage with the
// same semantics as the Postgres and disk implementations. Tests use it in
// place of a database.
package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hirelane/job-board/internal/domain"
	"github.com/hirelane/job-board/internal/repository"
	"github.com/hirelane/job-board/internal/storage"
)

// clock hands out strictly increasing timestamps so ordering is stable.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	c.now = c.now.Add(time.Second)
	return c.now
}

// Store is a mutex-guarded set of tables.
type Store struct {
	mu            sync.Mutex
	clock         clock
	users         map[string]domain.User
	jobs          map[string]domain.Job
	applications  map[string]domain.Application
	history       []domain.ApplicationStatusChange
	notifications map[string]domain.NotificationAttempt
	failWrites    bool
}

// UserRepo returns a UserRepository over the store.
func (s *Store) UserRepo() repository.UserRepository { return userRepo{s} }

// JobRepo returns a JobRepository over the store.
func (s *Store) JobRepo() repository.JobRepository { return jobRepo{s} }

// ApplicationRepo returns an ApplicationRepository over the store.
func (s *Store) ApplicationRepo() repository.ApplicationRepository { return applicationRepo{s} }

// HistoryRepo returns a StatusHistoryRepository over the store.
func (s *Store) HistoryRepo() repository.StatusHistoryRepository { return historyRepo{s} }

// NotificationRepo returns a NotificationRepository over the store.
func (s *Store) NotificationRepo() repository.NotificationRepository { return notificationRepo{s} }

// SetFailWrites makes every insert and update fail with ErrUnavailable.
func (s *Store) SetFailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// DeleteJob removes a job row, leaving its applications in place.
func (s *Store) DeleteJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// UserCount reports stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// ApplicationCount reports stored applications.
func (s *Store) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applications)
}

// HistoryCount reports stored status changes.
func (s *Store) HistoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// NotificationCount reports stored notification attempts.
func (s *Store) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

// Notification returns one notification attempt.
func (s *Store) Notification(id string) (domain.NotificationAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.notifications[id]
	return attempt, ok
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         map[string]domain.User{},
		jobs:          map[string]domain.Job{},
		applications:  map[string]domain.Application{},
		notifications: map[string]domain.NotificationAttempt{},
	}
}

// ErrUnavailable is returned by writes while SetFailWrites is on.
var ErrUnavailable = errors.New("connection refused")

type userRepo struct{ db *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failWrites {
		return ErrUnavailable
	}
	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.db.clock.next()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, user := range r.db.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type jobRepo struct{ db *Store }

func (r jobRepo) Create(_ context.Context, job *domain.Job) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failWrites {
		return ErrUnavailable
	}
	job.ID = uuid.NewString()
	job.CreatedAt = r.db.clock.next()
	r.db.jobs[job.ID] = *job
	return nil
}

func (r jobRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	job, ok := r.db.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &job, nil
}

func (r jobRepo) List(_ context.Context) ([]domain.Job, error) {
	return r.filter(func(domain.Job) bool { return true }), nil
}

func (r jobRepo) ListByPoster(_ context.Context, employerID string) ([]domain.Job, error) {
	return r.filter(func(j domain.Job) bool { return j.PostedBy == employerID }), nil
}

func (r jobRepo) filter(keep func(domain.Job) bool) []domain.Job {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	jobs := []domain.Job{}
	for _, job := range r.db.jobs {
		if keep(job) {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs
}

type applicationRepo struct{ db *Store }

func (r applicationRepo) Create(_ context.Context, app *domain.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failWrites {
		return ErrUnavailable
	}
	app.ID = uuid.NewString()
	app.CreatedAt = r.db.clock.next()
	app.UpdatedAt = app.CreatedAt
	// Rows own their strings, as they do once written to Postgres.
	app.JobID = strings.Clone(app.JobID)
	app.UserID = strings.Clone(app.UserID)
	app.ResumeKey = strings.Clone(app.ResumeKey)
	app.ResumeName = strings.Clone(app.ResumeName)
	app.ResumeMIME = strings.Clone(app.ResumeMIME)
	r.db.applications[app.ID] = *app
	return nil
}

func (r applicationRepo) GetDetail(_ context.Context, id string) (*domain.ApplicationDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.applications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.detailLocked(app), nil
}

func (r applicationRepo) GetDetailByResumeKey(_ context.Context, key string) (*domain.ApplicationDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, app := range r.db.applications {
		if app.ResumeKey == key {
			return r.detailLocked(app), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r applicationRepo) detailLocked(app domain.Application) *domain.ApplicationDetail {
	detail := &domain.ApplicationDetail{Application: app}
	if job, ok := r.db.jobs[app.JobID]; ok {
		detail.JobTitle = job.Title
		detail.JobCompany = job.Company
		detail.JobPostedBy = job.PostedBy
	}
	if user, ok := r.db.users[app.UserID]; ok {
		detail.ApplicantName = user.Name
		detail.ApplicantEmail = user.Email
	}
	return detail
}

func (r applicationRepo) CompareAndSetStatus(_ context.Context, id string, expected, next domain.ApplicationStatus) (bool, time.Time, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failWrites {
		return false, time.Time{}, ErrUnavailable
	}
	app, ok := r.db.applications[id]
	if !ok || app.Status != expected {
		return false, time.Time{}, nil
	}
	app.Status = next
	app.UpdatedAt = r.db.clock.next()
	r.db.applications[id] = app
	return true, app.UpdatedAt, nil
}

func (r applicationRepo) ListApplicantsByEmployer(_ context.Context, employerID string) ([]domain.Applicant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []domain.Applicant{}
	for _, app := range r.sortedLocked() {
		job, ok := r.db.jobs[app.JobID]
		if !ok || job.PostedBy != employerID {
			continue
		}
		applicant := domain.Applicant{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			UserID:        app.UserID,
			ResumeKey:     app.ResumeKey,
			Status:        app.Status,
			AppliedAt:     app.CreatedAt,
		}
		if user, ok := r.db.users[app.UserID]; ok {
			name, email := user.Name, user.Email
			applicant.Name = &name
			applicant.Email = &email
		}
		result = append(result, applicant)
	}
	return result, nil
}

func (r applicationRepo) ListByCandidate(_ context.Context, userID string) ([]domain.CandidateApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []domain.CandidateApplication{}
	apps := r.sortedLocked()
	for i := len(apps) - 1; i >= 0; i-- {
		app := apps[i]
		if app.UserID != userID {
			continue
		}
		entry := domain.CandidateApplication{Application: app}
		if job, ok := r.db.jobs[app.JobID]; ok {
			id, title, company, location := job.ID, job.Title, job.Company, job.Location
			entry.Job = domain.JobSummary{ID: &id, Title: &title, Company: &company, Location: &location}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (r applicationRepo) sortedLocked() []domain.Application {
	apps := make([]domain.Application, 0, len(r.db.applications))
	for _, app := range r.db.applications {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })
	return apps
}

type historyRepo struct{ db *Store }

func (r historyRepo) Create(_ context.Context, change *domain.ApplicationStatusChange) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	change.ID = uuid.NewString()
	change.CreatedAt = r.db.clock.next()
	r.db.history = append(r.db.history, *change)
	return nil
}

func (r historyRepo) ListByApplication(_ context.Context, applicationID string) ([]domain.ApplicationStatusChange, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []domain.ApplicationStatusChange{}
	for _, change := range r.db.history {
		if change.ApplicationID == applicationID {
			result = append(result, change)
		}
	}
	return result, nil
}

type notificationRepo struct{ db *Store }

func (r notificationRepo) Create(_ context.Context, attempt *domain.NotificationAttempt) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	attempt.CreatedAt = r.db.clock.next()
	attempt.UpdatedAt = attempt.CreatedAt
	r.db.notifications[attempt.ID] = *attempt
	return nil
}

func (r notificationRepo) MarkResult(_ context.Context, id string, state domain.NotificationState, attempts int, lastError string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	attempt, ok := r.db.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	attempt.State = state
	attempt.Attempts = attempts
	attempt.LastError = lastError
	r.db.notifications[id] = attempt
	return nil
}

func (r notificationRepo) ListByApplication(_ context.Context, applicationID string) ([]domain.NotificationAttempt, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []domain.NotificationAttempt{}
	for _, attempt := range r.db.notifications {
		if attempt.ApplicationID == applicationID {
			result = append(result, attempt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ResumeStore keeps resumes in memory.
type ResumeStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewResumeStore returns an empty resume store.
func NewResumeStore() *ResumeStore {
	return &ResumeStore{files: map[string][]byte{}}
}

func (s *ResumeStore) Save(_ context.Context, fileName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	s.files[key] = data
	return key, nil
}

func (s *ResumeStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *ResumeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

// Count reports stored resumes.
func (s *ResumeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
