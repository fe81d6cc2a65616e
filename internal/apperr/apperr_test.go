package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: email already registered", ErrValidation), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("%w: event", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"upstream", fmt.Errorf("%w: cloudinary", ErrUpstream), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		{"tagged message", New(ErrNotFound, "User not found"), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Status(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	err := New(ErrUnauthorized, "Invalid password")
	if err.Error() != "Invalid password" {
		t.Fatalf("expected bare message, got %q", err.Error())
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected error to match its class")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("expected error not to match another class")
	}

	wrapped := fmt.Errorf("login: %w", err)
	if !errors.Is(wrapped, ErrUnauthorized) {
		t.Fatalf("expected wrapped error to keep its class")
	}
}
