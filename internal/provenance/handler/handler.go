package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"delphi/internal/provenance/models"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/httputil"
	"delphi/pkg/requestcontext"
)

type Service interface {
	RegisterClaim(ctx context.Context, caller id.AccountID, typeID id.TypeID, propertyID id.PropertyID, claimAddr id.DocumentAddr) (*models.Property, error)
	Transfer(ctx context.Context, caller id.AccountID, req models.TransferRequest) (models.Outcome, error)
	Sign(ctx context.Context, caller id.AccountID, propertyID id.PropertyID, typeID id.TypeID, timestamp time.Time) (models.Outcome, error)
}

// Handler serves ledger mutations: claims, transfers and signatures.
type Handler struct {
	service    Service
	logger     *slog.Logger
	strictCIDs bool
}

func New(service Service, logger *slog.Logger, strictCIDs bool) *Handler {
	return &Handler{service: service, logger: logger, strictCIDs: strictCIDs}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/claims", h.HandleRegisterClaim)
	r.Post("/properties/{propertyID}/transfers", h.HandleTransfer)
	r.Post("/properties/{propertyID}/signatures", h.HandleSign)
}

// HandleRegisterClaim handles POST /claims.
func (h *Handler) HandleRegisterClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	claimAddr, err := id.ParseDocumentAddr(req.ClaimAddr, h.strictCIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.RegisterClaim(ctx, caller, req.parsedTypeID, req.parsedPropertyID, claimAddr)
	if err != nil {
		h.logger.ErrorContext(ctx, "claim registration failed",
			"request_id", requestID,
			"caller", caller,
			"property_id", req.PropertyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPropertyResponse(p))
}

// HandleTransfer handles POST /properties/{propertyID}/transfers.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.parsedRecipient == caller {
		httputil.WriteError(w, dErrors.New(dErrors.CodeCannotTransferToSelf, "recipient must differ from sender"))
		return
	}
	transfer, err := h.toTransfer(propertyID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Transfer(ctx, caller, transfer)
	if err != nil {
		h.logger.ErrorContext(ctx, "transfer failed",
			"request_id", requestID,
			"caller", caller,
			"property_id", propertyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	writeOutcome(w, propertyID, outcome)
}

func (h *Handler) toTransfer(propertyID id.PropertyID, req *TransferRequest) (models.TransferRequest, error) {
	out := models.TransferRequest{
		PropertyID: propertyID,
		Recipient:  req.parsedRecipient,
		Timestamp:  req.Timestamp,
	}
	if req.SendersClaimAddr == "" {
		return out, dErrors.New(dErrors.CodeValidation, "senders_claim_addr is required")
	}
	var err error
	if out.SendersClaimAddr, err = id.ParseDocumentAddr(req.SendersClaimAddr, h.strictCIDs); err != nil {
		return out, err
	}
	if req.RecipientsClaimAddr == "" {
		return out, nil
	}
	if out.RecipientsClaimAddr, err = id.ParseDocumentAddr(req.RecipientsClaimAddr, h.strictCIDs); err != nil {
		return out, err
	}
	if req.SendersNewPropertyID != "" {
		if out.SendersNewPropertyID, err = id.ParsePropertyID(req.SendersNewPropertyID); err != nil {
			return out, err
		}
	}
	if req.RecipientsNewPropertyID != "" {
		if out.RecipientsNewPropertyID, err = id.ParsePropertyID(req.RecipientsNewPropertyID); err != nil {
			return out, err
		}
	}
	return out, nil
}

// HandleSign handles POST /properties/{propertyID}/signatures.
func (h *Handler) HandleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.Sign(ctx, caller, propertyID, req.parsedTypeID, req.Timestamp)
	if err != nil {
		h.logger.ErrorContext(ctx, "sign failed",
			"request_id", requestID,
			"caller", caller,
			"property_id", propertyID,
			"type_id", req.TypeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	writeOutcome(w, propertyID, outcome)
}

func writeOutcome(w http.ResponseWriter, propertyID id.PropertyID, outcome models.Outcome) {
	status := http.StatusOK
	if outcome == models.OutcomeNotFound {
		status = http.StatusNotFound
	}
	httputil.WriteJSON(w, status, OutcomeResponse{Outcome: outcome.String(), PropertyID: propertyID.String()})
}
