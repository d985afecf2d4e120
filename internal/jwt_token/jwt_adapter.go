package jwttoken

import (
	authmw "delphi/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes JWTService as the caller middleware's validator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.CallerClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.CallerClaims{Subject: claims.Subject, TokenID: claims.ID}, nil
}
