package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountservice "delphi/internal/account/service"
	accountstore "delphi/internal/account/store"
	catalogservice "delphi/internal/catalog/service"
	catalogstore "delphi/internal/catalog/store"
	provenancemodels "delphi/internal/provenance/models"
	provenanceservice "delphi/internal/provenance/service"
	provenancestore "delphi/internal/provenance/store"
	"delphi/internal/query/listing"
	"delphi/internal/query/service"
	"delphi/pkg/requestcontext"
	"delphi/pkg/testutil"
)

var seededAt = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

// newSeededRouter registers residential under acct-reg, claims lot-1 for
// alice, transfers it to carol and has acct-reg sign it.
func newSeededRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := requestcontext.WithTime(context.Background(), seededAt)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := accountservice.New(accountstore.NewInMemoryAccountStore())
	catalog := catalogservice.New(catalogstore.NewInMemoryPropertyTypeStore())
	provenance := provenanceservice.New(provenancestore.NewInMemoryLedger(), catalog)

	_, err := accounts.Register(ctx, "acct-carol", "Carol", time.Time{}, false)
	require.NoError(t, err)
	_, err = catalog.RegisterType(ctx, "acct-reg", "residential", "QmResidential")
	require.NoError(t, err)
	_, err = catalog.RegisterType(ctx, "acct-reg", "farmland", "QmFarmland")
	require.NoError(t, err)
	_, err = provenance.RegisterClaim(ctx, "acct-alice", "residential", "lot-1", "QmAlice")
	require.NoError(t, err)
	_, err = provenance.Transfer(ctx, "acct-alice", provenancemodels.TransferRequest{
		PropertyID: "lot-1", Recipient: "acct-carol", SendersClaimAddr: "QmCarol",
	})
	require.NoError(t, err)
	_, err = provenance.Sign(ctx, "acct-reg", "lot-1", "residential", seededAt.Add(time.Hour))
	require.NoError(t, err)

	r := chi.NewRouter()
	New(service.New(provenance, catalog, accounts), logger).Register(r)
	return r
}

func wireRequest(t *testing.T, path string) *http.Request {
	req := testutil.NewRequest(t, http.MethodGet, path)
	req.Header.Set("Accept", "application/octet-stream")
	return req
}

func TestHandlePropertyTypes(t *testing.T) {
	router := newSeededRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/authorities/acct-reg/property-types"))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[PropertyTypesResponse](t, rr)
	require.Len(t, resp.PropertyTypes, 2)
	assert.Equal(t, "farmland", resp.PropertyTypes[1].TypeID)

	wire := testutil.DoRequest(router, wireRequest(t, "/authorities/acct-reg/property-types"))
	testutil.AssertStatusOK(t, wire)
	assert.Equal(t, listing.ContentType, wire.Header().Get("Content-Type"))
	assert.Equal(t, [][]string{{"residential", "QmResidential"}, {"farmland", "QmFarmland"}},
		testutil.DecodeWire(wire.Body.Bytes()))

	empty := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/authorities/acct-nobody/property-types"))
	testutil.AssertStatusOK(t, empty)
	assert.Empty(t, testutil.UnmarshalResponse[PropertyTypesResponse](t, empty).PropertyTypes)
}

func TestHandlePropertyClaims(t *testing.T) {
	router := newSeededRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/property-types/residential/claims"))
	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, []string{"lot-1"}, testutil.UnmarshalResponse[PropertyClaimsResponse](t, rr).PropertyIDs)

	wire := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/property-types/residential/claims?format=wire"))
	assert.Equal(t, []byte("lot-1"), wire.Body.Bytes())
}

func TestHandlePropertyDetail(t *testing.T) {
	router := newSeededRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/properties/lot-1"))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[PropertyDetailResponse](t, rr)
	assert.Equal(t, "acct-carol", resp.Claimer)
	assert.Equal(t, "Carol", resp.ClaimerName)
	assert.Equal(t, 1, resp.HistoryLength)
	require.NotNil(t, resp.Attestation)
	assert.Equal(t, "acct-reg", resp.Attestation.Authority)

	wire := testutil.DoRequest(router, wireRequest(t, "/properties/lot-1"))
	assert.Equal(t, [][]string{{"acct-carol", "QmCarol", "residential"}}, testutil.DecodeWire(wire.Body.Bytes()))

	missing := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/properties/lot-404"))
	testutil.AssertStatusAndError(t, missing, http.StatusNotFound, "not_found")
}

func TestHandleAttestation(t *testing.T) {
	router := newSeededRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/properties/lot-1/attestation"))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[AttestationStatusResponse](t, rr)
	assert.True(t, resp.Found)
	assert.Equal(t, []string{"acct-alice"}, resp.PriorOwners)
	assert.True(t, seededAt.Add(time.Hour).Equal(resp.AttestedAt))

	wire := testutil.DoRequest(router, wireRequest(t, "/properties/lot-1/attestation"))
	records := testutil.DecodeWire(wire.Body.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"acct-alice"}, records[0])
	assert.Equal(t, []string{listing.FormatTime(seededAt.Add(time.Hour))}, records[1])
	assert.Equal(t, []string{"acct-reg"}, records[2])

	unknown := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/properties/lot-404/attestation"))
	testutil.AssertStatusOK(t, unknown)
	unknownResp := testutil.UnmarshalResponse[AttestationStatusResponse](t, unknown)
	assert.False(t, unknownResp.Found)
	assert.Empty(t, unknownResp.PriorOwners)
	assert.True(t, unknownResp.AttestedAt.IsZero())
}

func TestWantsWire(t *testing.T) {
	tests := []struct {
		accept string
		query  string
		want   bool
	}{
		{accept: "", want: false},
		{accept: "application/json", want: false},
		{accept: "application/octet-stream", want: true},
		{accept: "application/json, application/octet-stream;q=0.9", want: true},
		{query: "format=wire", want: true},
	}
	for _, tt := range tests {
		req := testutil.NewRequest(t, http.MethodGet, "/x?"+tt.query)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		assert.Equal(t, tt.want, wantsWire(req), "accept=%q query=%q", tt.accept, tt.query)
	}
}
