package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Code      string      `json:"code,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Outcome is a result that can be refused without being an error, such as a
// payment against an installment that is already settled.
type Outcome interface {
	Accepted() bool
	Summary() string
	ReasonCode() string
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	})
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// WriteOutcome sends 200 for an accepted outcome and 400 for a refused one.
// The outcome is the data of both; its reason becomes the envelope code.
func WriteOutcome(w http.ResponseWriter, outcome Outcome) {
	status := http.StatusOK
	if !outcome.Accepted() {
		status = http.StatusBadRequest
	}

	write(w, status, Response{
		Success: outcome.Accepted(),
		Message: outcome.Summary(),
		Code:    outcome.ReasonCode(),
		Data:    outcome,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	response := Response{
		Message: message,
		Code:    customError.Code(err),
	}
	if err != nil {
		response.Error = err.Error()
	}

	write(w, statusCode, response)
}

// FromError sends err with the status its business code maps to. Errors
// without a code are reported as a 500 with a generic message.
func FromError(w http.ResponseWriter, err error) {
	message := "Internal server error"
	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		message = businessErr.Message
	}

	status := StatusForCode(customError.Code(err))
	if status == http.StatusNotFound {
		write(w, status, Response{Message: message, Code: customError.Code(err)})
		return
	}
	Error(w, status, message, err)
}

// StatusForCode maps a business error code to an HTTP status.
func StatusForCode(code string) int {
	switch code {
	case customError.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case customError.ErrCodeLoanNotFound, customError.ErrCodeInstallmentNotFound:
		return http.StatusNotFound
	case customError.ErrCodeAlreadyPaid:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusInternalServerError, message, err)
}

func write(w http.ResponseWriter, statusCode int, response Response) {
	response.Timestamp = time.Now().UTC()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode JSON response", "status", statusCode, "error", err)
	}
}

// JSONMiddleware sets JSON content type for all responses
func JSONMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware answers preflight requests and lets any origin call the API.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware writes one structured access log line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		level := slog.LevelInfo
		if recorder.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
