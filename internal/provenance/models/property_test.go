package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "delphi/pkg/domain-errors"
)

var t0 = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func TestNewClaim(t *testing.T) {
	p, err := NewClaim("lot-42", "acct-alice", "QmClaim", "residential")
	require.NoError(t, err)
	assert.Empty(t, p.History)
	assert.NotNil(t, p.History)
	assert.False(t, p.Attestation.IsAttested())

	_, err = NewClaim("lot-42", "", "QmClaim", "residential")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestApplyWholeTransfer(t *testing.T) {
	p, err := NewClaim("lot-42", "acct-alice", "QmClaim", "residential")
	require.NoError(t, err)
	p.Attest("acct-bob", t0)
	before := p.Clone()

	p.ApplyWholeTransfer("acct-alice", "acct-carol", "QmCarol", t0.Add(time.Hour))

	assert.Equal(t, "acct-carol", p.Claimer.String())
	assert.Equal(t, "QmCarol", p.ClaimAddr.String())
	assert.False(t, p.Attestation.IsAttested())
	require.Len(t, p.History, len(before.History)+1)
	assert.Equal(t, before.History, p.History[:len(before.History)])
	assert.Equal(t, TransferRecord{PriorOwner: "acct-alice", TransferredAt: t0.Add(time.Hour)}, p.History[len(p.History)-1])
}

func TestSplit(t *testing.T) {
	p := &Property{ID: "lot-42", Claimer: "acct-alice", ClaimAddr: "QmClaim", TypeID: "residential",
		History: []TransferRecord{{PriorOwner: "acct-zed", TransferredAt: t0}}}
	req := TransferRequest{
		PropertyID:              "lot-42",
		Recipient:               "acct-carol",
		SendersClaimAddr:        "QmA",
		SendersNewPropertyID:    "lot-42a",
		RecipientsClaimAddr:     "QmB",
		RecipientsNewPropertyID: "lot-42b",
	}

	senders, recipients := p.Split("acct-alice", req, t0.Add(time.Hour))

	seed := []TransferRecord{{PriorOwner: "acct-alice", TransferredAt: t0.Add(time.Hour)}}
	assert.Equal(t, "acct-alice", senders.Claimer.String())
	assert.Equal(t, "acct-carol", recipients.Claimer.String())
	assert.Equal(t, seed, senders.History)
	assert.Equal(t, seed, recipients.History)
	assert.Equal(t, "residential", recipients.TypeID.String())
	senders.History[0].PriorOwner = "mutated"
	assert.Equal(t, "acct-alice", recipients.History[0].PriorOwner.String(), "histories are independent")
}

func TestCloneIsDeep(t *testing.T) {
	p := &Property{ID: "lot-1", History: []TransferRecord{{PriorOwner: "acct-a"}}}
	c := p.Clone()
	c.History[0].PriorOwner = "acct-b"
	assert.Equal(t, "acct-a", p.History[0].PriorOwner.String())
}

func TestTransferRequestValidate(t *testing.T) {
	base := TransferRequest{PropertyID: "lot-1", Recipient: "acct-carol", SendersClaimAddr: "QmA"}
	require.NoError(t, base.Validate())
	assert.False(t, base.IsPartial())

	tests := []struct {
		name   string
		mutate func(*TransferRequest)
	}{
		{name: "missing recipient", mutate: func(r *TransferRequest) { r.Recipient = "" }},
		{name: "missing senders claim", mutate: func(r *TransferRequest) { r.SendersClaimAddr = "" }},
		{name: "partial without ids", mutate: func(r *TransferRequest) { r.RecipientsClaimAddr = "QmB" }},
		{name: "partial with equal ids", mutate: func(r *TransferRequest) {
			r.RecipientsClaimAddr = "QmB"
			r.SendersNewPropertyID = "lot-1x"
			r.RecipientsNewPropertyID = "lot-1x"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			err := req.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
