package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storefront/storefront/internal/auth"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
}

// Auth returns a middleware that requires a valid bearer token.
// A missing token is rejected with 401; a token that fails verification,
// or a non-Bearer scheme, with 403. On success the claims are stored in
// the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil {
				reason := "invalid_scheme"
				if errors.Is(err, auth.ErrMissingToken) {
					reason = "missing_token"
				}
				logAuthFailure(cfg.Logger, r, reason)
				writeTokenError(w, err)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeTokenError(w, auth.ErrInvalidToken)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.Int64("user_id", claims.ID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			annotateUser(r.Context(), claims)
			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken reads the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrMissingToken
	}

	scheme, token, _ := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", auth.ErrMissingToken
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeTokenError uses one message per status so failures cannot be told apart.
func writeTokenError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrMissingToken) {
		reject(w, rejectMissingToken)
		return
	}
	reject(w, rejectInvalidToken)
}
