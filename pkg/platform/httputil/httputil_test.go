package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "givechain/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("transfer failure maps to 402 with description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeTransferFailed, "payment rail declined the transfer"))

		if w.Code != http.StatusPaymentRequired {
			t.Fatalf("expected status %d, got %d", http.StatusPaymentRequired, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "transfer_failed" {
			t.Fatalf("expected error code transfer_failed, got %q", body["error"])
		}
		if body["error_description"] != "payment rail declined the transfer" {
			t.Fatalf("expected error_description to be returned, got %q", body["error_description"])
		}
	})

	t.Run("untyped error defaults to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.ErrBodyNotAllowed)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
