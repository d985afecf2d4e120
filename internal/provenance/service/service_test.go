package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuditPublisher,TypeAuthority

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	catalogservice "delphi/internal/catalog/service"
	catalogstore "delphi/internal/catalog/store"
	provenancemetrics "delphi/internal/provenance/metrics"
	"delphi/internal/provenance/models"
	"delphi/internal/provenance/service/mocks"
	"delphi/internal/provenance/store"
	id "delphi/pkg/domain"
	dErrors "delphi/pkg/domain-errors"
	"delphi/pkg/platform/audit"
	"delphi/pkg/platform/audit/publisher"
	auditmemory "delphi/pkg/platform/audit/store/memory"
	"delphi/pkg/requestcontext"
)

var requestTime = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

type ProvenanceServiceSuite struct {
	suite.Suite
	ledger     *store.InMemoryLedger
	catalog    *catalogservice.Service
	auditStore *auditmemory.InMemoryStore
	metrics    *provenancemetrics.Metrics
	service    *Service
	ctx        context.Context
}

func TestProvenanceServiceSuite(t *testing.T) {
	suite.Run(t, new(ProvenanceServiceSuite))
}

func (s *ProvenanceServiceSuite) SetupTest() {
	s.ledger = store.NewInMemoryLedger()
	s.catalog = catalogservice.New(catalogstore.NewInMemoryPropertyTypeStore())
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = provenancemetrics.New(prometheus.NewRegistry())
	s.service = New(s.ledger, s.catalog,
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)
	s.ctx = requestcontext.WithTime(context.Background(), requestTime)
}

func (s *ProvenanceServiceSuite) claim(caller id.AccountID, typeID id.TypeID, propertyID id.PropertyID) {
	_, err := s.service.RegisterClaim(s.ctx, caller, typeID, propertyID, "QmClaim-"+id.DocumentAddr(propertyID))
	s.Require().NoError(err)
}

func (s *ProvenanceServiceSuite) property(propertyID id.PropertyID) *models.Property {
	p, err := s.service.GetProperty(s.ctx, propertyID)
	s.Require().NoError(err)
	return p
}

func (s *ProvenanceServiceSuite) claims(typeID id.TypeID) []id.PropertyID {
	ids, err := s.service.ListClaims(s.ctx, typeID)
	s.Require().NoError(err)
	return ids
}

func (s *ProvenanceServiceSuite) events() []audit.Event {
	events, err := s.auditStore.ListAll(s.ctx)
	s.Require().NoError(err)
	return events
}

func (s *ProvenanceServiceSuite) TestRegisterClaim() {
	p, err := s.service.RegisterClaim(s.ctx, "acct-alice", "residential", "lot-1", "QmAlice")
	s.Require().NoError(err)
	s.Equal("acct-alice", p.Claimer.String())
	s.Empty(p.History)
	s.False(p.Attestation.IsAttested())

	s.Equal([]id.PropertyID{"lot-1"}, s.claims("residential"))
	events := s.events()
	s.Require().Len(events, 1)
	s.Equal(audit.EventPropertyClaimRegistered, events[0].Action)
	s.Equal(id.PropertyID("lot-1"), events[0].PropertyID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ClaimsRegistered))
}

func (s *ProvenanceServiceSuite) TestRegisterClaimValidation() {
	_, err := s.service.RegisterClaim(s.ctx, "", "residential", "lot-1", "QmAlice")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.RegisterClaim(s.ctx, "acct-alice", "residential", "lot-1", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.events())
}

func (s *ProvenanceServiceSuite) TestRegisterClaimOverwritesAndIndexesOnce() {
	s.claim("acct-alice", "residential", "lot-1")
	s.claim("acct-bob", "residential", "lot-1")

	s.Equal([]id.PropertyID{"lot-1"}, s.claims("residential"))
	s.Equal("acct-bob", s.property("lot-1").Claimer.String())
}

func (s *ProvenanceServiceSuite) TestReRegisterUnderNewTypeMovesIndexEntry() {
	s.claim("acct-alice", "residential", "lot-1")
	s.claim("acct-alice", "farmland", "lot-1")

	s.Empty(s.claims("residential"))
	s.Equal([]id.PropertyID{"lot-1"}, s.claims("farmland"))
}

func (s *ProvenanceServiceSuite) TestWholeTransfer() {
	s.claim("acct-alice", "residential", "lot-1")
	_, err := s.catalog.RegisterType(s.ctx, "acct-reg", "residential", "QmReqs")
	s.Require().NoError(err)
	_, err = s.service.Sign(s.ctx, "acct-reg", "lot-1", "residential", time.Time{})
	s.Require().NoError(err)
	s.True(s.property("lot-1").Attestation.IsAttested())

	at := requestTime.Add(time.Hour)
	outcome, err := s.service.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:       "lot-1",
		Recipient:        "acct-carol",
		SendersClaimAddr: "QmCarol",
		Timestamp:        at,
	})
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, outcome)

	p := s.property("lot-1")
	s.Equal("acct-carol", p.Claimer.String())
	s.Equal("QmCarol", p.ClaimAddr.String())
	s.Equal([]models.TransferRecord{{PriorOwner: "acct-alice", TransferredAt: at}}, p.History)
	s.False(p.Attestation.IsAttested(), "ownership change clears attestation")
	s.Equal([]id.PropertyID{"lot-1"}, s.claims("residential"))

	events := s.events()
	last := events[len(events)-1]
	s.Equal(audit.EventPropertyTransferred, last.Action)
	s.Equal(id.AccountID("acct-alice"), last.Actor)
	s.Equal(id.AccountID("acct-carol"), last.Recipient)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Transfers.WithLabelValues("whole")))
}

func (s *ProvenanceServiceSuite) TestHistoryOnlyGrows() {
	s.claim("acct-alice", "residential", "lot-1")
	owners := []id.AccountID{"acct-alice", "acct-bob", "acct-carol", "acct-dave"}

	previous := []models.TransferRecord{}
	for i := 0; i < len(owners)-1; i++ {
		_, err := s.service.Transfer(s.ctx, owners[i], models.TransferRequest{
			PropertyID:       "lot-1",
			Recipient:        owners[i+1],
			SendersClaimAddr: "QmNext",
		})
		s.Require().NoError(err)

		history := s.property("lot-1").History
		s.Require().Len(history, len(previous)+1)
		s.Equal(previous, history[:len(previous)])
		s.Equal(requestTime, history[len(history)-1].TransferredAt, "zero timestamp uses request time")
		previous = history
	}
	s.Equal([]id.AccountID{"acct-alice", "acct-bob", "acct-carol"}, s.property("lot-1").PriorOwners())
}

func (s *ProvenanceServiceSuite) TestPartialTransferConservesClaims() {
	s.claim("acct-alice", "residential", "lot-0")
	s.claim("acct-alice", "residential", "lot-1")

	outcome, err := s.service.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:              "lot-1",
		Recipient:               "acct-carol",
		SendersClaimAddr:        "QmAliceHalf",
		SendersNewPropertyID:    "lot-1a",
		RecipientsClaimAddr:     "QmCarolHalf",
		RecipientsNewPropertyID: "lot-1b",
	})
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, outcome)

	_, err = s.service.GetProperty(s.ctx, "lot-1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal([]id.PropertyID{"lot-0", "lot-1a", "lot-1b"}, s.claims("residential"))

	seed := []models.TransferRecord{{PriorOwner: "acct-alice", TransferredAt: requestTime}}
	senders := s.property("lot-1a")
	recipients := s.property("lot-1b")
	s.Equal("acct-alice", senders.Claimer.String())
	s.Equal("QmAliceHalf", senders.ClaimAddr.String())
	s.Equal("acct-carol", recipients.Claimer.String())
	s.Equal("QmCarolHalf", recipients.ClaimAddr.String())
	s.Equal(seed, senders.History)
	s.Equal(seed, recipients.History)
	s.Equal(id.TypeID("residential"), recipients.TypeID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Transfers.WithLabelValues("partial")))
}

func (s *ProvenanceServiceSuite) TestRepeatedPartialTransferNeverDuplicatesIndex() {
	s.claim("acct-alice", "residential", "lot-1")
	req := models.TransferRequest{
		PropertyID:              "lot-1",
		Recipient:               "acct-carol",
		SendersClaimAddr:        "QmAliceHalf",
		SendersNewPropertyID:    "lot-1",
		RecipientsClaimAddr:     "QmCarolHalf",
		RecipientsNewPropertyID: "lot-1b",
	}
	for range 3 {
		outcome, err := s.service.Transfer(s.ctx, "acct-alice", req)
		s.Require().NoError(err)
		s.Equal(models.OutcomeApplied, outcome)
	}
	s.ElementsMatch([]id.PropertyID{"lot-1", "lot-1b"}, s.claims("residential"))
}

func (s *ProvenanceServiceSuite) TestPartialTransferOverwritingOtherTypeKeepsIndexConsistent() {
	s.claim("acct-alice", "residential", "lot-1")
	s.claim("acct-bob", "farmland", "lot-9")

	_, err := s.service.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:              "lot-1",
		Recipient:               "acct-carol",
		SendersClaimAddr:        "QmA",
		SendersNewPropertyID:    "lot-1a",
		RecipientsClaimAddr:     "QmB",
		RecipientsNewPropertyID: "lot-9",
	})
	s.Require().NoError(err)

	s.Empty(s.claims("farmland"))
	s.Equal(id.TypeID("residential"), s.property("lot-9").TypeID)
}

func (s *ProvenanceServiceSuite) TestSelfTransferRejected() {
	s.claim("acct-alice", "residential", "lot-1")
	before := s.property("lot-1")
	eventsBefore := len(s.events())

	_, err := s.service.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:       "lot-1",
		Recipient:        "acct-alice",
		SendersClaimAddr: "QmAgain",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeCannotTransferToSelf))
	s.Equal(before, s.property("lot-1"))
	s.Len(s.events(), eventsBefore)
}

func (s *ProvenanceServiceSuite) TestTransferMissingProperty() {
	outcome, err := s.service.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:       "lot-404",
		Recipient:        "acct-carol",
		SendersClaimAddr: "QmCarol",
	})
	s.Require().NoError(err)
	s.Equal(models.OutcomeNotFound, outcome)
	s.Empty(s.events())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.NotFound.WithLabelValues("transfer")))
}

func (s *ProvenanceServiceSuite) TestPartialTransferRequiresDistinctIDs() {
	s.claim("acct-alice", "residential", "lot-1")
	_, err := s.service.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:              "lot-1",
		Recipient:               "acct-carol",
		SendersClaimAddr:        "QmA",
		SendersNewPropertyID:    "lot-x",
		RecipientsClaimAddr:     "QmB",
		RecipientsNewPropertyID: "lot-x",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal([]id.PropertyID{"lot-1"}, s.claims("residential"))
}

func (s *ProvenanceServiceSuite) TestSignByOwningAuthority() {
	s.claim("acct-alice", "residential", "lot-1")
	_, err := s.catalog.RegisterType(s.ctx, "acct-reg", "residential", "QmReqs")
	s.Require().NoError(err)

	at := requestTime.Add(2 * time.Hour)
	outcome, err := s.service.Sign(s.ctx, "acct-reg", "lot-1", "residential", at)
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, outcome)

	att := s.property("lot-1").Attestation
	s.Equal(models.Attestation{AttestedAt: at, Authority: "acct-reg"}, att)
	events := s.events()
	s.Equal(audit.EventPropertyDocumentSigned, events[len(events)-1].Action)
}

func (s *ProvenanceServiceSuite) TestSignRefusedForAuthorityWithoutType() {
	s.claim("acct-alice", "residential", "lot-1")
	_, err := s.catalog.RegisterType(s.ctx, "acct-reg", "farmland", "QmReqs")
	s.Require().NoError(err)

	_, err = s.service.Sign(s.ctx, "acct-reg", "lot-1", "residential", time.Time{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorizedAccount))
	s.False(s.property("lot-1").Attestation.IsAttested())
}

func (s *ProvenanceServiceSuite) TestSignWithoutAuthorityEntry() {
	s.claim("acct-alice", "residential", "lot-1")

	outcome, err := s.service.Sign(s.ctx, "acct-anyone", "lot-1", "residential", time.Time{})
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, outcome)
	s.Equal(requestTime, s.property("lot-1").Attestation.AttestedAt)

	strict := New(s.ledger, s.catalog, WithStrictSignerAuthority(true))
	_, err = strict.Sign(s.ctx, "acct-anyone", "lot-1", "residential", time.Time{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorizedAccount))
}

func (s *ProvenanceServiceSuite) TestSignMissingProperty() {
	outcome, err := s.service.Sign(s.ctx, "acct-reg", "lot-404", "residential", time.Time{})
	s.Require().NoError(err)
	s.Equal(models.OutcomeNotFound, outcome)
	s.Empty(s.events())
}

func (s *ProvenanceServiceSuite) TestAuditFailureRollsBackTransfer() {
	s.claim("acct-alice", "residential", "lot-1")
	before := s.property("lot-1")

	ctrl := gomock.NewController(s.T())
	auditor := mocks.NewMockAuditPublisher(ctrl)
	auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox unavailable"))
	svc := New(s.ledger, s.catalog, WithAuditPublisher(auditor))

	_, err := svc.Transfer(s.ctx, "acct-alice", models.TransferRequest{
		PropertyID:              "lot-1",
		Recipient:               "acct-carol",
		SendersClaimAddr:        "QmA",
		SendersNewPropertyID:    "lot-1a",
		RecipientsClaimAddr:     "QmB",
		RecipientsNewPropertyID: "lot-1b",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(before, s.property("lot-1"))
	s.Equal([]id.PropertyID{"lot-1"}, s.claims("residential"))
}

func (s *ProvenanceServiceSuite) TestAuthorityLookupFailure() {
	ctrl := gomock.NewController(s.T())
	authority := mocks.NewMockTypeAuthority(ctrl)
	authority.EXPECT().OwnsType(gomock.Any(), id.AccountID("acct-reg"), id.TypeID("residential")).
		Return(false, false, errors.New("catalog down"))
	svc := New(s.ledger, authority)

	_, err := svc.Sign(s.ctx, "acct-reg", "lot-1", "residential", time.Time{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
