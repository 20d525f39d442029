package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/match-arena/internal/usecase"
)

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, []string{"a", "b"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["status"].(string); got != "success" {
		t.Fatalf("expected status=success, got %v", body["status"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["message"]; ok {
		t.Fatalf("did not expect message key in success response")
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["status"].(string); got != "error" {
		t.Fatalf("expected status=error, got %v", body["status"])
	}
	if got, _ := body["message"].(string); got == "" {
		t.Fatalf("expected non-empty message, got %v", body["message"])
	}
}

func TestMapError_StatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{usecase.ErrInvalidInput, http.StatusBadRequest},
		{usecase.ErrNotFound, http.StatusNotFound},
		{usecase.ErrNotOwner, http.StatusForbidden},
		{usecase.ErrSelfAccept, http.StatusConflict},
		{usecase.ErrAlreadyResolved, http.StatusConflict},
		{usecase.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("driver exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := mapError(fmt.Errorf("wrapped: %w", tc.err))
		if status != tc.want {
			t.Fatalf("mapError(%v) = %d, want %d", tc.err, status, tc.want)
		}
	}
}

func TestMapError_HidesInternalDetails(t *testing.T) {
	_, message := mapError(errors.New("pq: connection refused to 10.0.0.5"))
	if message != "internal server error" {
		t.Fatalf("internal error leaked detail: %q", message)
	}
}
