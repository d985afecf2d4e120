package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/catalog/service"
	"delphi/internal/catalog/store"
	"delphi/pkg/testutil"
)

func newCatalogRouter(t *testing.T, strict bool) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemoryPropertyTypeStore())
	r := chi.NewRouter()
	New(svc, logger, strict).Register(r)
	return r
}

func TestHandleRegisterType(t *testing.T) {
	router := newCatalogRouter(t, false)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/property-types", map[string]string{
		"type_id":           "residential",
		"requirements_addr": "QmResidentialRequirements",
	})
	rr := testutil.DoRequest(router, testutil.WithCaller(req, "acct-bob"))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[PropertyTypeResponse](t, rr)
	assert.Equal(t, "residential", resp.TypeID)
	assert.Equal(t, "acct-bob", resp.Authority)
}

func TestHandleRegisterType_Errors(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		body       map[string]string
		strict     bool
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous", body: map[string]string{"type_id": "a", "requirements_addr": "b"}, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "missing type id", caller: "acct-bob", body: map[string]string{"requirements_addr": "b"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_input"},
		{name: "missing requirements", caller: "acct-bob", body: map[string]string{"type_id": "a"}, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "strict rejects non-cid", caller: "acct-bob", strict: true, body: map[string]string{"type_id": "a", "requirements_addr": "not-a-cid"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newCatalogRouter(t, tt.strict)
			req := testutil.NewJSONRequest(t, http.MethodPost, "/property-types", tt.body)
			if tt.caller != "" {
				req = testutil.WithCaller(req, tt.caller)
			}
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatusAndError(t, rr, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestHandleRegisterType_StrictAcceptsCID(t *testing.T) {
	sum, err := multihash.Sum([]byte("residential requirements v1"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	addr := cid.NewCidV1(cid.Raw, sum).String()

	router := newCatalogRouter(t, true)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/property-types", map[string]string{
		"type_id":           "residential",
		"requirements_addr": addr,
	})
	rr := testutil.DoRequest(router, testutil.WithCaller(req, "acct-bob"))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "requirements_addr", addr)
}
