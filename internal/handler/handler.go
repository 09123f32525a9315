package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/backend"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxRequestBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// writeError translates err into a status code and a model.ErrorResponse
// carrying the request ID as correlation ID.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, resp := errorResponse(err)
	resp.CorrelationID = middleware.GetReqID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Err(err).
		Int("status", status).
		Str("code", resp.Error).
		Str("request_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

func errorResponse(err error) (int, model.ErrorResponse) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidationFailed,
			Message: "Please correct the highlighted fields",
			Fields:  ve.Fields,
		}
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		return domainStatus(de.Code), model.ErrorResponse{Error: de.Code, Message: de.Message}
	}

	switch {
	case errors.Is(err, backend.ErrUnauthenticated):
		return http.StatusUnauthorized, model.ErrorResponse{
			Error:   model.ErrCodeUnauthorised,
			Message: "Please log in to continue",
		}
	case errors.Is(err, backend.ErrForbidden):
		return http.StatusForbidden, model.ErrorResponse{
			Error:   model.ErrCodeForbidden,
			Message: messageOr(err, "You do not have access to this resource"),
		}
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, model.ErrorResponse{
			Error:   model.ErrCodeNotFound,
			Message: messageOr(err, "Not found"),
		}
	case errors.Is(err, backend.ErrTimeout):
		return http.StatusGatewayTimeout, model.ErrorResponse{
			Error:   model.ErrCodeTimeout,
			Message: "The request timed out. Please try again.",
		}
	case errors.Is(err, backend.ErrRequestFailed):
		status := http.StatusBadGateway
		switch backend.StatusCode(err) {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			status = backend.StatusCode(err)
		}
		return status, model.ErrorResponse{
			Error:   model.ErrCodeRequestFailed,
			Message: messageOr(err, "The request failed. Please try again."),
		}
	}

	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "Internal server error",
	}
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeSessionNotFound:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeCheckoutNotStarted, model.ErrCodeItemNotInCart:
		return http.StatusNotFound
	case model.ErrCodeEmptyCart, model.ErrCodeInvalidTransition, model.ErrCodeSubmissionInFlight:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func messageOr(err error, fallback string) string {
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return fallback
}

// decodeJSON decodes the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug().Err(err).Msg("invalid request body")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:         model.ErrCodeInvalidJSON,
			Message:       "invalid request body",
			CorrelationID: middleware.GetReqID(r.Context()),
		})
		return false
	}
	return true
}

// pathID parses the named URL parameter as a positive integer ID.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:         model.ErrCodeValidationFailed,
			Message:       "invalid " + name,
			Fields:        map[string]string{name: "must be a positive integer"},
			CorrelationID: middleware.GetReqID(r.Context()),
		})
		return 0, false
	}
	return id, true
}

// currentSession returns the session placed in the context by the session
// middleware.
func currentSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrSessionNotFound, logger)
		return nil, false
	}
	return s, true
}
