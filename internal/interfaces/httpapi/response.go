package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/match-arena/internal/usecase"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type dataEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeSuccess wraps data in the standard {status:"success", data:...}
// envelope. Handlers whose contract puts fields at the top level build their
// own payload struct with a Status field and call writeJSON directly.
func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, dataEnvelope{
		Status: statusSuccess,
		Data:   data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	status, message := mapError(err)
	writeJSON(ctx, w, status, errorEnvelope{
		Status:  statusError,
		Message: message,
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorEnvelope{
		Status:  statusError,
		Message: "internal server error",
	})
}

// mapError translates the use case taxonomy into HTTP statuses. Losing an
// accept race maps to 409, distinct from 404 and 403, so clients can render
// "already taken". Unknown failures never leak their message.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, usecase.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, usecase.ErrSelfAccept):
		return http.StatusConflict, err.Error()
	case errors.Is(err, usecase.ErrAlreadyResolved):
		return http.StatusConflict, err.Error()
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
