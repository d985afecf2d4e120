package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"delphi/internal/account/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/httputil"
	"delphi/pkg/requestcontext"
)

// Service defines the account directory operations the handler needs.
type Service interface {
	Register(ctx context.Context, caller id.AccountID, name string, timestamp time.Time, authority bool) (*models.Account, error)
	Exists(ctx context.Context, caller id.AccountID) (bool, string, error)
}

// Handler wires account endpoints to the directory service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts account endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/accounts", h.HandleRegister)
	r.Get("/accounts/me", h.HandleExistsMe)
	r.Get("/accounts/{accountID}", h.HandleExists)
}

// HandleRegister handles POST /accounts.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.Register(ctx, caller, req.Name, req.Timestamp, req.Authority)
	if err != nil {
		h.logger.ErrorContext(ctx, "account registration failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

// HandleExistsMe handles GET /accounts/me.
func (h *Handler) HandleExistsMe(w http.ResponseWriter, r *http.Request) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	h.writeExists(w, r, caller)
}

// HandleExists handles GET /accounts/{accountID}.
func (h *Handler) HandleExists(w http.ResponseWriter, r *http.Request) {
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeExists(w, r, accountID)
}

func (h *Handler) writeExists(w http.ResponseWriter, r *http.Request, accountID id.AccountID) {
	ctx := r.Context()
	found, name, err := h.service.Exists(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "account lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", accountID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ExistsResponse{AccountID: accountID.String(), Found: found, Name: name})
}
