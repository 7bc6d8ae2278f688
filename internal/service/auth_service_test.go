package service

import (
	"context"
	"strings"
	"testing"

	"github.com/hirelane/job-board/internal/domain"
	apperrors "github.com/hirelane/job-board/pkg/util/errorutil"
)

func TestAuthService_RegisterNormalizesAndHashes(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.auth.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "  Jane@Example.com ",
		Password: "secret-1",
		Role:     "Candidate",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.Role != domain.RoleCandidate {
		t.Errorf("role = %q", user.Role)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret-1" {
		t.Errorf("password must be stored hashed, got %q", user.PasswordHash)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "x", Role: "employer"}, "name"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "x", Role: "employer"}, "email"},
		{"missing password", RegisterInput{Name: "A", Email: "a@b.co", Role: "employer"}, "password"},
		{"unknown role", RegisterInput{Name: "A", Email: "a@b.co", Password: "x", Role: "admin"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.auth.Register(context.Background(), tt.input)
			requireCode(t, err, apperrors.CodeValidation)
			if _, ok := apperrors.ToDomainError(err).Details[tt.field]; !ok {
				t.Errorf("details %v missing %q", apperrors.ToDomainError(err).Details, tt.field)
			}
			if env.store.UserCount() != 0 {
				t.Error("no user should be stored")
			}
		})
	}
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	input := RegisterInput{Name: "A", Email: "a@b.co", Password: "x", Role: "employer"}
	if _, err := env.auth.Register(ctx, input); err != nil {
		t.Fatal(err)
	}
	input.Email = "A@B.CO"
	_, err := env.auth.Register(ctx, input)
	requireCode(t, err, apperrors.CodeEmailTaken)
}

func TestAuthService_AuthenticateIffPasswordMatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	passwords := map[string]string{
		"one@example.com":   "correct horse",
		"two@example.com":   "p",
		"three@example.com": "ünïcødé-pässwörd",
	}
	for email, password := range passwords {
		if _, err := env.auth.Register(ctx, RegisterInput{Name: "U", Email: email, Password: password, Role: "candidate"}); err != nil {
			t.Fatal(err)
		}
	}

	for email, password := range passwords {
		for _, candidate := range []string{"correct horse", "p", "ünïcødé-pässwörd", "", password + " "} {
			result, err := env.auth.Authenticate(ctx, email, candidate)
			if candidate == password {
				if err != nil {
					t.Errorf("%s with correct password: %v", email, err)
					continue
				}
				if result.Token.Value == "" || result.User.Email != email {
					t.Errorf("unexpected login result %+v", result)
				}
				continue
			}
			if err == nil {
				t.Errorf("%s accepted wrong password %q", email, candidate)
			}
		}
	}
}

func TestAuthService_UnknownEmailMatchesWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "Jane", "jane@example.com", domain.RoleCandidate)

	_, unknown := env.auth.Authenticate(context.Background(), "nobody@example.com", "pa55word")
	_, wrong := env.auth.Authenticate(context.Background(), "jane@example.com", "nope")
	requireCode(t, unknown, apperrors.CodeInvalidCredentials)
	requireCode(t, wrong, apperrors.CodeInvalidCredentials)
	if unknown.Error() != wrong.Error() {
		t.Errorf("failures differ: %q vs %q", unknown, wrong)
	}
}

func TestAuthService_TokenCarriesIdentity(t *testing.T) {
	env := newTestEnv(t)
	identity := env.signUp(t, "Acme HR", "hr@acme.test", domain.RoleEmployer)
	if identity.Role != domain.RoleEmployer || identity.UserID == "" {
		t.Fatalf("identity = %+v", identity)
	}

	user, err := env.auth.CurrentUser(context.Background(), identity)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Email != "hr@acme.test" {
		t.Errorf("CurrentUser email = %q", user.Email)
	}

	_, err = env.auth.VerifyToken("not.a.token")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, err = env.auth.CurrentUser(context.Background(), domain.Identity{})
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestAuthService_PersistenceFailureIsOpaque(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetFailWrites(true)
	_, err := env.auth.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "x", Role: "employer"})
	requireCode(t, err, apperrors.CodePersistence)
	if msg := apperrors.ToDomainError(err).Message; strings.Contains(msg, "refused") {
		t.Errorf("message leaks cause: %q", msg)
	}
}
