package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopcore/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies read by the handlers.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindAuthentication, model.KindMalformedPayload:
		return http.StatusBadRequest
	case model.KindConflict:
		return http.StatusConflict
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Domain errors keep their code,
// message and fields; anything else is reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	requestID := chimw.GetReqID(r.Context())

	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Str("request_id", requestID).Str("path", r.URL.Path).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:         model.ErrCodeInternalError,
			Message:       "internal server error",
			CorrelationID: requestID,
		})
		return
	}

	status := statusFor(de.Kind)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("request_id", requestID).
		Str("kind", de.Kind.String()).
		Int("status", status).
		Msg("request failed")

	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Fields:        de.Fields,
		CorrelationID: requestID,
	})
}

// decodeJSON decodes the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}

// uuidParam parses the named chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewValidationError("invalid path parameter", map[string]string{
			name: "Must be a valid UUID.",
		})
	}
	return id, nil
}
