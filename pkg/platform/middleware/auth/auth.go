package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "delphi/pkg/domain"
	request "delphi/pkg/platform/middleware/request"
	"delphi/pkg/requestcontext"
)

// HeaderCallerID is set by a trusted gateway that has already authenticated the caller.
const HeaderCallerID = "X-Caller-ID"

// CallerValidator validates a bearer token and returns its claims.
type CallerValidator interface {
	ValidateToken(tokenString string) (*CallerClaims, error)
}

// CallerClaims represents the claims the caller middleware needs.
type CallerClaims struct {
	Subject string
	TokenID string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// ResolveCaller puts the authenticated caller in the request context.
// With trustHeader set, X-Caller-ID wins over the Authorization header.
// Requests without credentials pass through anonymous; read routes allow them.
func ResolveCaller(validator CallerValidator, trustHeader bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			if trustHeader {
				if raw := r.Header.Get(HeaderCallerID); raw != "" {
					caller, err := id.ParseAccountID(raw)
					if err != nil {
						logger.WarnContext(ctx, "unauthorized access - invalid caller header",
							"error", err,
							"request_id", requestID,
						)
						writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid caller header")
						return
					}
					next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
					return
				}
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || validator == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			caller, err := id.ParseAccountID(claims.Subject)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token subject",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
		})
	}
}

// RequireCaller rejects requests that carry no authenticated caller.
func RequireCaller(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Caller(ctx).IsNil() {
				logger.WarnContext(ctx, "unauthorized access - missing caller",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
