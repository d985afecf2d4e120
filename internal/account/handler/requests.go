package handler

import (
	"strings"
	"time"

	"delphi/internal/account/models"
	dErrors "delphi/pkg/domain-errors"
)

// RegisterAccountRequest is the body of POST /accounts.
type RegisterAccountRequest struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Authority bool      `json:"authority"`
}

// Validate normalizes and checks the request.
func (r *RegisterAccountRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > models.MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 256 bytes")
	}
	return nil
}

// AccountResponse is the body returned after registration.
type AccountResponse struct {
	AccountID   string    `json:"account_id"`
	Name        string    `json:"name"`
	IsAuthority bool      `json:"is_authority"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.ID.String(),
		Name:        a.Name,
		IsAuthority: a.IsAuthority,
		CreatedAt:   a.CreatedAt,
	}
}

// ExistsResponse answers account_exists. Unknown accounts are found=false, name="".
type ExistsResponse struct {
	AccountID string `json:"account_id"`
	Found     bool   `json:"found"`
	Name      string `json:"name"`
}
