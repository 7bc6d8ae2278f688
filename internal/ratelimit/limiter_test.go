package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

func TestLocalLimiter_PerKeyBudget(t *testing.T) {
	l := NewLocalLimiter(2, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	if !l.Allow(ctx, "a") || !l.Allow(ctx, "a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow(ctx, "a") {
		t.Fatal("third request inside the window should be rejected")
	}
	if !l.Allow(ctx, "b") {
		t.Fatal("another key has its own budget")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
}

func TestLocalLimiter_SweepDropsIdle(t *testing.T) {
	l := NewLocalLimiter(1, time.Minute)
	defer l.Stop()
	l.Allow(context.Background(), "idle")

	l.sweep(time.Now().Add(3 * time.Minute))
	if l.Len() != 0 {
		t.Fatalf("Len = %d after sweep, want 0", l.Len())
	}
}

func TestRedisLimiter_NilClientFailsOpen(t *testing.T) {
	l := NewRedisLimiter(nil, "rl:", 1, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), "k") {
			t.Fatal("limiter without a client must allow")
		}
	}
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	l := NewLocalLimiter(1, time.Minute)
	defer l.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	app.Post("/login", Middleware(l, time.Minute, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first request: %v %v", resp, err)
	}
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get(fiber.HeaderRetryAfter) != "60" {
		t.Errorf("Retry-After = %q", resp.Header.Get(fiber.HeaderRetryAfter))
	}
}
