// Package auth inspects bearer credentials on proxied requests. The gateway
// never issues tokens; it only needs to recognize API callers (which bypass
// CSRF entirely) and, when the backend's signing secret is shared, recover
// the caller's subject so rate limits can key on the user instead of the IP.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// HasBearerToken reports whether the request carries a Bearer authorization
// header. Presence alone is what exempts API callers from CSRF checks; the
// backend remains responsible for rejecting invalid tokens.
func HasBearerToken(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	return len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != ""
}

// BearerInspector verifies HMAC-signed bearer tokens when the signing
// secret is available to the gateway.
type BearerInspector struct {
	secret []byte
	logger *slog.Logger
}

// NewBearerInspector creates an inspector; an empty secret disables
// verification and Subject always reports no identity.
func NewBearerInspector(secret string, logger *slog.Logger) *BearerInspector {
	return &BearerInspector{
		secret: []byte(secret),
		logger: logger,
	}
}

// Subject returns the verified subject claim of the request's bearer token,
// if the token parses and its signature checks out. Requests without a
// usable identity fall back to IP-keyed limiting at the caller.
func (bi *BearerInspector) Subject(r *http.Request) (string, bool) {
	if len(bi.secret) == 0 || !HasBearerToken(r) {
		return "", false
	}

	tokenString := strings.SplitN(r.Header.Get("Authorization"), " ", 2)[1]

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return bi.secret, nil
	})
	if err != nil || !token.Valid {
		bi.logger.Debug("bearer token did not verify", slog.Any("error", err))
		return "", false
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", false
	}
	return subject, true
}
