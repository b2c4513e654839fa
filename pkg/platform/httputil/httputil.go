// Package httputil holds the shared request/response plumbing for handlers:
// JSON encoding, the error envelope, and generic decode-and-validate.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "givechain/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Validatable is implemented by request types that validate themselves after
// decoding.
type Validatable interface {
	Validate() error
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a service error into the JSON error envelope. Internal
// errors keep their message out of the response.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.DomainError
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// DecodeAndPrepare decodes the request body into T, runs its validation, and
// writes the error response itself on failure. The boolean result tells the
// handler whether to continue.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		logger.WarnContext(ctx, "request decode failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
