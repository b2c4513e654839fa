package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"givechain/internal/platform/middleware"
	"givechain/internal/registry/models"
	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
	"givechain/pkg/platform/httputil"
)

// Service defines the interface for registry queries and administration.
type Service interface {
	LocatorOf(ctx context.Context, id models.TokenID) (string, error)
	OwnerOf(ctx context.Context, id models.TokenID) (domain.Address, error)
	InvoiceTokenOf(ctx context.Context, donor domain.Address) (models.TokenID, error)
	SetBaseLocator(ctx context.Context, caller domain.Address, newBase string) error
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tokens/{id}", h.HandleGetToken)
	r.Get("/donors/{donor}/invoice-token", h.HandleInvoiceToken)
}

// RegisterAdmin mounts the administrative endpoints. The router wraps these in
// the admin JWT middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/base-locator", h.HandleSetBaseLocator)
}

// TokenResponse is the HTTP response for GET /tokens/{id}.
type TokenResponse struct {
	TokenID uint64 `json:"token_id"`
	Owner   string `json:"owner"`
	Locator string `json:"locator"`
}

// InvoiceTokenResponse is the HTTP response for GET /donors/{donor}/invoice-token.
type InvoiceTokenResponse struct {
	Donor   string `json:"donor"`
	TokenID uint64 `json:"token_id"`
}

// BaseLocatorRequest is the HTTP request body for PUT /admin/base-locator.
type BaseLocatorRequest struct {
	BaseLocator string `json:"base_locator"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *BaseLocatorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.BaseLocator = strings.TrimSpace(r.BaseLocator)
	if r.BaseLocator == "" {
		return dErrors.New(dErrors.CodeBadRequest, "base_locator is required")
	}
	return nil
}

// HandleGetToken handles GET /tokens/{id} requests.
func (h *Handler) HandleGetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "token id must be a non-negative integer"))
		return
	}

	owner, err := h.service.OwnerOf(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	locator, err := h.service.LocatorOf(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		TokenID: id,
		Owner:   owner.String(),
		Locator: locator,
	})
}

// HandleInvoiceToken handles GET /donors/{donor}/invoice-token requests.
func (h *Handler) HandleInvoiceToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donor, err := domain.ParseAddress(chi.URLParam(r, "donor"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "donor is required"))
		return
	}

	id, err := h.service.InvoiceTokenOf(ctx, donor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, InvoiceTokenResponse{
		Donor:   donor.String(),
		TokenID: id,
	})
}

// HandleSetBaseLocator handles PUT /admin/base-locator requests. The caller
// identity comes from the admin JWT subject.
func (h *Handler) HandleSetBaseLocator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, err := domain.ParseAddress(middleware.GetCaller(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[BaseLocatorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.SetBaseLocator(ctx, caller, req.BaseLocator); err != nil {
		h.logger.WarnContext(ctx, "base locator update rejected",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
