package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	catalogmodels "delphi/internal/catalog/models"
	"delphi/internal/query/listing"
	"delphi/internal/query/service"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/httputil"
	"delphi/pkg/requestcontext"
)

type Service interface {
	PropertyDetail(ctx context.Context, propertyID id.PropertyID) (*service.PropertyDetail, error)
	AttestationStatus(ctx context.Context, propertyID id.PropertyID) (*service.AttestationStatus, error)
	PtypeDocuments(ctx context.Context, authority id.AccountID) ([]catalogmodels.PropertyType, error)
	PropertyClaims(ctx context.Context, typeID id.TypeID) ([]id.PropertyID, error)
}

// Handler serves ledger reads as JSON, or in the delimited wire form when the
// client asks for application/octet-stream or passes format=wire.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/authorities/{accountID}/property-types", h.HandlePropertyTypes)
	r.Get("/property-types/{typeID}/claims", h.HandlePropertyClaims)
	r.Get("/properties/{propertyID}", h.HandlePropertyDetail)
	r.Get("/properties/{propertyID}/attestation", h.HandleAttestation)
}

// HandlePropertyTypes handles GET /authorities/{accountID}/property-types.
func (h *Handler) HandlePropertyTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authority, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	types, err := h.service.PtypeDocuments(ctx, authority)
	if err != nil {
		h.fail(w, r, "property type listing failed", err)
		return
	}
	if wantsWire(r) {
		h.writeWire(w, r, typeRecords(types))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPropertyTypesResponse(authority, types))
}

// HandlePropertyClaims handles GET /property-types/{typeID}/claims.
func (h *Handler) HandlePropertyClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typeID, err := id.ParseTypeID(chi.URLParam(r, "typeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ids, err := h.service.PropertyClaims(ctx, typeID)
	if err != nil {
		h.fail(w, r, "claim listing failed", err)
		return
	}
	if wantsWire(r) {
		h.writeWire(w, r, claimRecords(ids))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPropertyClaimsResponse(typeID, ids))
}

// HandlePropertyDetail handles GET /properties/{propertyID}.
func (h *Handler) HandlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.PropertyDetail(ctx, propertyID)
	if err != nil {
		h.fail(w, r, "property detail failed", err)
		return
	}
	if !detail.Found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "property not found"))
		return
	}
	if wantsWire(r) {
		h.writeWire(w, r, detailRecords(detail))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPropertyDetailResponse(detail))
}

// HandleAttestation handles GET /properties/{propertyID}/attestation.
// Unknown properties report found=false with an empty status.
func (h *Handler) HandleAttestation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := h.service.AttestationStatus(ctx, propertyID)
	if err != nil {
		h.fail(w, r, "attestation status failed", err)
		return
	}
	if wantsWire(r) {
		h.writeWire(w, r, attestationRecords(status))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAttestationStatusResponse(propertyID, status))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"path", r.URL.Path,
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) writeWire(w http.ResponseWriter, r *http.Request, records [][]string) {
	body, err := listing.Encode(records)
	if err != nil {
		h.fail(w, r, "wire encoding failed", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode listing"))
		return
	}
	w.Header().Set("Content-Type", listing.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func wantsWire(r *http.Request) bool {
	if r.URL.Query().Get("format") == "wire" {
		return true
	}
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(accept), ";")
		if strings.EqualFold(mediaType, listing.ContentType) {
			return true
		}
	}
	return false
}
