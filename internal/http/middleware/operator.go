package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/apierr"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/operator"
)

// OperatorHeader names the operator when no bearer token is configured.
const OperatorHeader = "X-Operator"

const maxOperatorLen = 64

var errMissingToken = errors.New("missing bearer token")

type operatorClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Operator puts the caller's name into the request context. With a secret,
// every request must carry a bearer token signed with HS256 and its name (or
// sub) claim is used; a missing or bad token is rejected. Without a secret
// the X-Operator header is trusted and requests without it are anonymous.
func Operator(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if secret != "" {
				token, ok := bearerToken(r)
				if !ok {
					writeUnauthorized(w, errMissingToken)
					return
				}

				var claims operatorClaims
				if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
					return key, nil
				}); err != nil {
					log.WarnContext(ctx, "reject bearer token", slog.Any("error", err))
					writeUnauthorized(w, err)
					return
				}

				name := claims.Name
				if name == "" {
					name = claims.Subject
				}
				ctx = operator.NewContext(ctx, truncate(name, maxOperatorLen))
			} else if name := strings.TrimSpace(r.Header.Get(OperatorHeader)); name != "" {
				ctx = operator.NewContext(ctx, truncate(name, maxOperatorLen))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	res := apierr.New(apperr.UnauthorizedErr.WrapParent(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
