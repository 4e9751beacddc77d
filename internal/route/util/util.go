// Package util holds the helpers shared by the fxwave API routes.
package util

import (
	"context"
	"net/http"
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Issues  []lax.IssueDescription `json:"issues,omitempty"`
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError converts an error from a store into a response.
//
// Internal errors are logged and reported without any detail.
func RespondError(log *zap.Logger, request *lax.Request, err error) *lax.Response {
	kind := apperr.KindOf(err)
	body := ErrorBody{Error: kind.String(), Message: apperr.MessageOf(err)}

	switch kind {
	case apperr.Validation:
		for _, issue := range apperr.IssuesOf(err) {
			body.Issues = append(body.Issues, lax.Issue(issue.Path, issue.Problem))
		}
	case apperr.Unavailable:
		log.Warn("storage unavailable", requestFields(request, err)...)
		body.Message = "storage is unavailable, try again later"
	case apperr.Internal:
		log.Error("internal error", requestFields(request, err)...)
		body.Message = "Internal Server Error"
	}

	return lax.MakeResponse(StatusFor(kind), body)
}

// RespondValidationError reports a single bad field.
func RespondValidationError(path, problem string) *lax.Response {
	return lax.MakeResponse(http.StatusBadRequest, ErrorBody{
		Error:   apperr.Validation.String(),
		Message: "validation failed",
		Issues:  []lax.IssueDescription{lax.Issue(path, problem)},
	})
}

// RespondBadJSON reports a request body which could not be decoded.
func RespondBadJSON(err error) *lax.Response {
	return RespondValidationError("body", err.Error())
}

// RespondNotFound reports a missing resource.
func RespondNotFound(message string) *lax.Response {
	return lax.MakeResponse(http.StatusNotFound, ErrorBody{
		Error:   apperr.NotFound.String(),
		Message: message,
	})
}

// ParseID reads a UUID route variable. A malformed ID cannot name anything,
// so it is reported as not found.
func ParseID(request *lax.Request, name string) (uuid.UUID, *lax.Response) {
	id, err := uuid.Parse(request.Var(name))

	if err != nil {
		return uuid.Nil, RespondNotFound(name + " does not exist")
	}

	return id, nil
}

func requestFields(request *lax.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", request.Method),
		zap.String("path", request.URL.Path),
		zap.Error(err),
	}
}

// WithTimeout gives every request a deadline, so store calls give their
// connection back and fail instead of hanging.
func WithTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx, cancel := context.WithTimeout(request.Context(), timeout)
			defer cancel()

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(status int) {
	recorder.status = status
	recorder.ResponseWriter.WriteHeader(status)
}

// WithAccessLog logs each request at debug level once it is served.
func WithAccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request)

			log.Debug(
				"request",
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
