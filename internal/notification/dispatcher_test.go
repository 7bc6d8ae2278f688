package notification

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/domain"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

type scriptedTransport struct {
	mu    sync.Mutex
	errs  []error
	sent  []Email
	calls int
}

func (s *scriptedTransport) Send(_ context.Context, email Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	s.sent = append(s.sent, email)
	return nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

type smtpTempErr struct{ temp bool }

func (e smtpTempErr) Error() string { return "smtp reply" }
func (e smtpTempErr) IsTemp() bool  { return e.temp }

func testMessage() Message {
	return Message{
		ID:            "n-1",
		ApplicationID: "a-1",
		Recipient:     "ada@example.com",
		RecipientName: "Ada",
		JobTitle:      "Engineer",
		Company:       "Acme",
		Status:        domain.StatusAccepted,
	}
}

func TestDispatcher_Send(t *testing.T) {
	tests := []struct {
		name         string
		errs         []error
		wantAttempts int
		wantErr      bool
	}{
		{"first try", nil, 1, false},
		{"transient then success", []error{Transient(errors.New("421 busy"))}, 2, false},
		{"timeout then success", []error{timeoutErr{}}, 2, false},
		{"transient twice", []error{Transient(errors.New("busy")), Transient(errors.New("busy"))}, 2, true},
		{"permanent", []error{Permanent(errors.New("550 no such user"))}, 1, true},
		{"unclassified", []error{errors.New("boom")}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &scriptedTransport{errs: tt.errs}
			d := NewDispatcher(transport, "jobs@acme.test", time.Second, zap.NewNop())

			attempts, err := d.Send(context.Background(), testMessage())
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if tt.wantErr {
				if !apperrors.IsCode(err, apperrors.CodeNotification) {
					t.Fatalf("err = %v, want notification error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if len(transport.sent) != 1 {
				t.Fatalf("sent %d emails, want 1", len(transport.sent))
			}
		})
	}
}

func TestDispatcher_NoRetryAfterCancel(t *testing.T) {
	transport := &scriptedTransport{errs: []error{Transient(errors.New("busy"))}}
	d := NewDispatcher(transport, "jobs@acme.test", 0, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := d.Send(ctx, testMessage())
	if err == nil || attempts != 1 {
		t.Fatalf("attempts = %d err = %v, want a single failed attempt", attempts, err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"marked transient", Transient(errors.New("x")), true},
		{"marked permanent", Permanent(timeoutErr{}), false},
		{"net timeout", timeoutErr{}, true},
		{"smtp temporary", smtpTempErr{temp: true}, true},
		{"smtp permanent", smtpTempErr{temp: false}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
