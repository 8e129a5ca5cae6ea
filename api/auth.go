/*
auth.go - Login and token verification

PURPOSE:
  Password login against bcrypt hashes, HS256 JWT issuance, and the
  bearer-token middleware. An empty JWT secret disables authentication
  entirely, which is only meant for local simulation runs.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aegean/bank-engine/bank"
)

type contextKey string

const customerIDKey contextKey = "customerID"

const tokenTTL = 24 * time.Hour

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Login authenticates a login request.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	c := h.Bank.CustomerByUsername(req.Username)
	if c == nil || c.LockedOut {
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   c.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	})
	signed, err := token.SignedString([]byte(h.JWTSecret))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err)
		return
	}

	h.Log.Infof("Customer logged in: %s", c.Username)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    signed,
		Customer: c.ID,
		Role:     string(c.Role),
	})
}

// requireAuth verifies the bearer token and puts the customer id on
// the request context. With no secret configured every request passes
// through unauthenticated.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.JWTSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(h.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), customerIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the authenticated customer, or nil when authentication
// is disabled.
func (h *Handler) caller(r *http.Request) *bank.Customer {
	id, _ := r.Context().Value(customerIDKey).(string)
	if id == "" {
		return nil
	}
	return h.Bank.Customer(id)
}

// canAccess reports whether the caller may see resources owned by the
// given customer. Admins and the anonymous (auth-disabled) caller see
// everything.
func (h *Handler) canAccess(r *http.Request, ownerID string) bool {
	c := h.caller(r)
	if c == nil || c.Role == bank.RoleAdmin {
		return true
	}
	return c.ID == ownerID
}
