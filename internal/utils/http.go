package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 4 << 20

var validate = validator.New()

// Envelope is the body of every JSON response.
type Envelope struct {
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata identifies one response.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// RequestID returns the chi request id when the middleware set one, else a
// fresh UUID.
func RequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func metadata(r *http.Request) Metadata {
	return Metadata{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: RequestID(r),
	}
}

// WriteJSON writes data wrapped in an Envelope.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, log zerolog.Logger) {
	writeEnvelope(w, status, Envelope{Data: data, Metadata: metadata(r)}, log)
}

// WriteError writes message wrapped in an Envelope.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string, log zerolog.Logger) {
	writeEnvelope(w, status, Envelope{Error: message, Metadata: metadata(r)}, log)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// DecodeJSON reads a JSON body into dst and validates its `validate` tags.
// An empty body leaves dst untouched. Failures wrap domain.ErrInvalidInput.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs the `validate` tags on v.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// ErrorStatus maps a service error to an HTTP status.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
