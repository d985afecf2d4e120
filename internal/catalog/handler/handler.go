package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"delphi/internal/catalog/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/httputil"
	"delphi/pkg/requestcontext"
)

type Service interface {
	RegisterType(ctx context.Context, caller id.AccountID, typeID id.TypeID, requirements id.DocumentAddr) (*models.PropertyType, error)
}

// Handler serves catalog writes. Listings live in the query handler.
type Handler struct {
	service    Service
	logger     *slog.Logger
	strictCIDs bool
}

// New builds the handler. With strictCIDs set, requirement addresses must be CIDs.
func New(service Service, logger *slog.Logger, strictCIDs bool) *Handler {
	return &Handler{service: service, logger: logger, strictCIDs: strictCIDs}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/property-types", h.HandleRegisterType)
}

// HandleRegisterType handles POST /property-types.
func (h *Handler) HandleRegisterType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterTypeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	addr, err := id.ParseDocumentAddr(req.RequirementsAddr, h.strictCIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pt, err := h.service.RegisterType(ctx, caller, req.parsedTypeID, addr)
	if err != nil {
		h.logger.ErrorContext(ctx, "property type registration failed",
			"request_id", requestID,
			"caller", caller,
			"type_id", req.TypeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToPropertyTypeResponse(*pt))
}
