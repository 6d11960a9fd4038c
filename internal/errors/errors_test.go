package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{"not found", NotFound("missing"), ErrCodeNotFound, "missing"},
		{"not found formatted", NotFoundf("event %d", 7), ErrCodeNotFound, "event 7"},
		{"conflict", Conflict("exists"), ErrCodeConflict, "exists"},
		{"validation", Validation("bad"), ErrCodeValidation, "bad"},
		{"validation formatted", Validationf("bad %s", "key"), ErrCodeValidation, "bad key"},
		{"unauthorized", Unauthorized("login"), ErrCodeUnauthorized, "login"},
		{"forbidden", Forbidden("nope"), ErrCodeForbidden, "nope"},
		{"forbidden formatted", Forbiddenf("role %q", "user"), ErrCodeForbidden, `role "user"`},
		{"internal", Internal("boom"), ErrCodeInternal, "boom"},
		{"internal formatted", Internalf("boom %d", 2), ErrCodeInternal, "boom 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.msg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "email is required")
	if err.Field != "email" {
		t.Errorf("ValidationField().Field = %v, want email", err.Field)
	}
	if GetField(fmt.Errorf("create: %w", err)) != "email" {
		t.Error("GetField should see through wrapping")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Fatal("Wrap(nil) should return nil")
	}

	cause := errors.New("dial tcp: refused")
	err := Wrapf(cause, ErrCodeUnavailable, "GET %s", "/users/me")
	if err.Message != "GET /users/me" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause")
	}
}

func TestFromContext(t *testing.T) {
	if err := FromContext(context.DeadlineExceeded, "slow"); !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
	if err := FromContext(fmt.Errorf("do: %w", context.Canceled), "stop"); !IsCanceled(err) {
		t.Errorf("expected canceled, got %v", err)
	}
	if err := FromContext(errors.New("other"), "x"); err != nil {
		t.Errorf("expected nil for unrelated error, got %v", err)
	}
}

func TestIsAuthFailure(t *testing.T) {
	if !IsAuthFailure(Unauthorized("x")) || !IsAuthFailure(Forbidden("x")) {
		t.Error("401 and 403 should be auth failures")
	}
	if IsAuthFailure(NotFound("x")) {
		t.Error("not found should not be an auth failure")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", Wrap(errors.New("refused"), ErrCodeUnavailable, "x"), true},
		{"timeout", Wrap(context.DeadlineExceeded, ErrCodeTimeout, "x"), true},
		{"upstream", Wrap(errors.New("502"), ErrCodeUpstream, "x"), true},
		{"bare deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), true},
		{"canceled", Wrap(context.Canceled, ErrCodeCanceled, "x"), false},
		{"unauthorized", Unauthorized("x"), false},
		{"not found", NotFound("x"), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsHelpers_WrappedErrors(t *testing.T) {
	base := NotFound("event")
	wrapped := fmt.Errorf("verify: %w", base)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through fmt wrapping")
	}
	if IsConflict(wrapped) || IsValidation(wrapped) || IsInternal(wrapped) {
		t.Error("unexpected code match")
	}
	if GetCode(wrapped) != ErrCodeNotFound {
		t.Errorf("GetCode() = %v", GetCode(wrapped))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode of plain error should be empty")
	}
}

func TestGetMessage(t *testing.T) {
	if got := GetMessage(Wrap(errors.New("eof"), ErrCodeUpstream, "Erreur HTTP: 502")); got != "Erreur HTTP: 502" {
		t.Errorf("GetMessage() = %q", got)
	}
	if got := GetMessage(errors.New("plain")); got != "plain" {
		t.Errorf("GetMessage() = %q", got)
	}
	if GetMessage(nil) != "" {
		t.Error("GetMessage(nil) should be empty")
	}
}
