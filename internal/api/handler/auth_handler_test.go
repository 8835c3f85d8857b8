package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type stubAuthService struct {
	requestFn  func(ctx context.Context, username, email string) (*ports.SignupResult, error)
	exchangeFn func(ctx context.Context, username, code string) (string, error)
}

func (s *stubAuthService) RequestCode(ctx context.Context, username, email string) (*ports.SignupResult, error) {
	return s.requestFn(ctx, username, email)
}

func (s *stubAuthService) ExchangeCode(ctx context.Context, username, code string) (string, error) {
	return s.exchangeFn(ctx, username, code)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		requestFn: func(ctx context.Context, username, email string) (*ports.SignupResult, error) {
			if username != "alice" || email != "alice@example.com" {
				t.Fatalf("unexpected args: %s %s", username, email)
			}
			return &ports.SignupResult{Username: username, Email: email}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/signup", `{"username":"alice","email":"alice@example.com"}`)
	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["confirmation_code"]; ok {
		t.Fatalf("code must never be echoed")
	}
}

func TestAuthHandler_Signup_PropagatesValidation(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		requestFn: func(ctx context.Context, username, email string) (*ports.SignupResult, error) {
			return nil, domain.NewValidationError("username", "bad")
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/signup", `{"username":"me","email":"a@example.com"}`)
	err := handler.Signup(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Signup_MalformedEmail(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		requestFn: func(ctx context.Context, username, email string) (*ports.SignupResult, error) {
			t.Fatalf("service must not be called with a malformed email")
			return nil, nil
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/signup", `{"username":"alice","email":"not-an-email"}`)
	err := handler.Signup(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := verr.Fields["email"]; len(got) != 1 || got[0] != "enter a valid email address" {
		t.Fatalf("unexpected email errors: %v", verr.Fields)
	}
}

func TestAuthHandler_Signup_BadJSON(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/signup", `{"username":`)
	err := handler.Signup(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Token_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		exchangeFn: func(ctx context.Context, username, code string) (string, error) {
			if username != "alice" || code != "abc123" {
				t.Fatalf("unexpected args: %s %s", username, code)
			}
			return "signed.jwt.token", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/token", `{"username":"alice","confirmation_code":"abc123"}`)
	if err := handler.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt.token" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestAuthHandler_Token_MissingFields(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		exchangeFn: func(ctx context.Context, username, code string) (string, error) {
			t.Fatalf("service must not be called")
			return "", nil
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/token", `{"username":"alice"}`)
	err := handler.Token(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["confirmation_code"]; !ok {
		t.Fatalf("expected confirmation_code key, got %+v", verr.Fields)
	}
	if _, ok := verr.Fields["username"]; ok {
		t.Fatalf("username was present, got %+v", verr.Fields)
	}
}

func TestAuthHandler_Token_InvalidCode(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		exchangeFn: func(ctx context.Context, username, code string) (string, error) {
			return "", domain.ErrInvalidConfirmation
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/token", `{"username":"alice","confirmation_code":"nope"}`)
	err := handler.Token(c)
	if !errors.Is(err, domain.ErrInvalidConfirmation) {
		t.Fatalf("expected ErrInvalidConfirmation, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("handler must leave rendering to the error handler")
	}
}

func TestExchangeResult(t *testing.T) {
	tests := map[string]error{
		"invalid_code": domain.ErrInvalidConfirmation,
		"not_found":    domain.ErrAccountNotFound,
		"rate_limited": domain.ErrTooManyAttempts,
		"error":        errors.New("boom"),
	}
	for want, err := range tests {
		if got := exchangeResult(err); got != want {
			t.Fatalf("exchangeResult(%v) = %q, want %q", err, got, want)
		}
	}
}
