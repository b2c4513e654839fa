package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"givechain/internal/charity"
	"givechain/internal/platform/middleware"
	registrymodels "givechain/internal/registry/models"
	"givechain/pkg/domain"
	dErrors "givechain/pkg/domain-errors"
	"givechain/pkg/platform/httputil"
)

// Service defines the interface for donation operations.
type Service interface {
	Donate(ctx context.Context, donor domain.Address, amount *big.Int) (registrymodels.TokenID, error)
	VerifyDonation(ctx context.Context, donor domain.Address, proof []byte, invoiceID string) (registrymodels.TokenID, error)
	AllDonations(ctx context.Context) ([]domain.Address, []*big.Int, []bool, error)
	DonationsOf(ctx context.Context, donor domain.Address) (*big.Int, error)
	CharityInfo() charity.Descriptor
}

// Handler wires donation endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a donation handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts donation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/donations", h.HandleDonate)
	r.Post("/donations/verify", h.HandleVerify)
	r.Get("/donations", h.HandleListDonations)
	r.Get("/donations/{donor}/total", h.HandleDonorTotal)
	r.Get("/charity", h.HandleCharity)
}

// HandleDonate handles POST /donations requests.
func (h *Handler) HandleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[DonateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tokenID, err := h.service.Donate(ctx, req.ParsedDonor(), req.ParsedAmount())
	if err != nil {
		h.logger.ErrorContext(ctx, "donation failed",
			"request_id", requestID,
			"donor", req.Donor,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "donation handled",
		"request_id", requestID,
		"donor", req.Donor,
		"token_id", tokenID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, TokenResponse{TokenID: tokenID})
}

// HandleVerify handles POST /donations/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tokenID, err := h.service.VerifyDonation(ctx, req.ParsedDonor(), []byte(req.Proof), req.InvoiceID)
	if err != nil {
		h.logger.WarnContext(ctx, "donation verification failed",
			"request_id", requestID,
			"donor", req.Donor,
			"invoice_id", req.InvoiceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "donation verification handled",
		"request_id", requestID,
		"donor", req.Donor,
		"invoice_id", req.InvoiceID,
		"token_id", tokenID,
	)
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{TokenID: tokenID})
}

// HandleListDonations handles GET /donations requests.
func (h *Handler) HandleListDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donors, amounts, verified, err := h.service.AllDonations(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "listing donations failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDonations(donors, amounts, verified))
}

// HandleDonorTotal handles GET /donations/{donor}/total requests.
func (h *Handler) HandleDonorTotal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donor, err := domain.ParseAddress(chi.URLParam(r, "donor"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "donor is required"))
		return
	}

	total, err := h.service.DonationsOf(ctx, donor)
	if err != nil {
		h.logger.ErrorContext(ctx, "loading donor total failed",
			"request_id", middleware.GetRequestID(ctx),
			"donor", donor.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TotalResponse{
		Donor: donor.String(),
		Total: total.String(),
	})
}

// HandleCharity handles GET /charity requests.
func (h *Handler) HandleCharity(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.CharityInfo())
}
