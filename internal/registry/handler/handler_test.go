package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givechain/internal/platform/middleware"
	"givechain/internal/registry"
	registrystore "givechain/internal/registry/store"
	"givechain/pkg/domain"
)

const (
	testAdmin      = "admin"
	testSigningKey = "test-signing-key"
)

func newTestRouter(t *testing.T) (chi.Router, *registry.Service) {
	t.Helper()

	svc, err := registry.New(registrystore.NewMemoryStore("https://meta.test/"), testAdmin)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger)

	r := chi.NewRouter()
	h.Register(r)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(testSigningKey, logger))
		h.RegisterAdmin(r)
	})
	return r, svc
}

func mintToken(t *testing.T, svc *registry.Service, owner domain.Address, suffix string) uint64 {
	t.Helper()
	id, err := svc.Mint(context.Background(), owner, suffix)
	require.NoError(t, err)
	return id
}

func TestHandleGetToken(t *testing.T) {
	r, svc := newTestRouter(t)
	id := mintToken(t, svc, "alice", ".json?donation=40")

	req := httptest.NewRequest(http.MethodGet, "/tokens/0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"token_id": 0,
		"owner":    "alice",
		"locator":  "https://meta.test/0.json?donation=40"
	}`, w.Body.String())
	assert.Equal(t, uint64(0), id)
}

func TestHandleGetTokenNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/tokens/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "token_not_found")
}

func TestHandleGetTokenBadID(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, id := range []string{"abc", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/tokens/"+id, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestHandleInvoiceToken(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()

	id := mintToken(t, svc, "alice", ".json?invoiceId=INV-1")
	require.NoError(t, svc.SetInvoiceToken(ctx, "alice", id))

	req := httptest.NewRequest(http.MethodGet, "/donors/alice/invoice-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"donor":"alice","token_id":0}`, w.Body.String())
}

func TestHandleInvoiceTokenUnknownDonor(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/donors/nobody/invoice-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func adminRequest(t *testing.T, subject, body string) *http.Request {
	t.Helper()
	token, err := middleware.SignAdminToken(testSigningKey, subject, time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/admin/base-locator", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHandleSetBaseLocator(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	mintToken(t, svc, "alice", ".json?donation=40")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, testAdmin, `{"base_locator":"ipfs://bafy/"}`))
	require.Equal(t, http.StatusNoContent, w.Code)

	// Existing tokens resolve under the new base.
	locator, err := svc.LocatorOf(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://bafy/0.json?donation=40", locator)
}

func TestHandleSetBaseLocatorNonAdminSubject(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, "mallory", `{"base_locator":"ipfs://bafy/"}`))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestHandleSetBaseLocatorMissingToken(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/admin/base-locator", strings.NewReader(`{"base_locator":"ipfs://bafy/"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleSetBaseLocatorEmptyBase(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminRequest(t, testAdmin, `{"base_locator":"  "}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "base_locator is required")
}
