package testutil

import (
	"net/http"

	id "delphi/pkg/domain"
	"delphi/pkg/requestcontext"
)

// WithCaller adds an authenticated caller to the request context.
// This simulates what the caller middleware does for authenticated requests.
// Malformed ids are not added.
func WithCaller(req *http.Request, caller string) *http.Request {
	if parsed, err := id.ParseAccountID(caller); err == nil {
		return req.WithContext(requestcontext.WithCaller(req.Context(), parsed))
	}
	return req
}
