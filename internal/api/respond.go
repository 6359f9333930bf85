package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/internal/logging"
	"github.com/Gobd/vinylstock/keycase"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// ErrorResponse is the body of every non-2xx response. Fields is set for
// validation failures only and is keyed by the wire name of each field.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message"`
	Fields  v.ValidationErrors `json:"fields,omitempty"`
}

// MessageResponse acknowledges a deletion.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON encodes body, converts its keys to the wire convention and
// writes it with status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err == nil {
		data, err = keycase.RewriteJSON(data, keycase.ToInternalConvention)
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error","message":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to write response")
	}
}

// respondError writes the error envelope. err, when set, is logged but
// never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, r, status, ErrorResponse{Error: code, Message: message})
}

// respondInvalid reports a body that could not be decoded or validated.
func respondInvalid(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fields v.ValidationErrors
		decode *v.DecodeError
	)
	switch {
	case errors.As(err, &fields):
		respondJSON(w, r, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Fields:  fields,
		})
	case errors.Is(err, errBodyTooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("Request body exceeds %d bytes", maxBodyBytes), err)
	case errors.Is(err, keycase.ErrKeyCollision):
		respondError(w, r, http.StatusBadRequest, "invalid_body", "Request body has conflicting keys", err)
	case errors.As(err, &decode):
		respondError(w, r, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON", err)
	default:
		respondError(w, r, http.StatusBadRequest, "invalid_body", err.Error(), err)
	}
}

// decodeBody reads a wire-convention JSON body, converts its keys to the
// store convention and decodes, normalizes and validates it into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return &v.DecodeError{Err: err}
	}
	if len(data) == 0 {
		return &v.DecodeError{Err: errors.New("empty body")}
	}
	data, err = keycase.RewriteJSON(data, keycase.ToExternalConvention, keycase.OnCollision(keycase.ErrorOnCollision))
	if err != nil {
		if errors.Is(err, keycase.ErrKeyCollision) {
			return err
		}
		return &v.DecodeError{Err: err}
	}
	return v.UnmarshalAndValidateCtx(r.Context(), data, dst)
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
