package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates token verification to Service.
type Middleware struct {
	service *Service
	logger  *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given Service.
func NewMiddleware(service *Service, logger *zap.Logger) *Middleware {
	return &Middleware{service: service, logger: logger}
}

// RequireAuth validates the bearer token and puts claims in context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}

		claims, err := m.service.ParseToken(token)
		if err != nil {
			m.logger.Debug("token rejected", zap.Error(err))
			m.unauthorized(w, "Invalid token")
			return
		}

		next(w, r.WithContext(SetClaims(r.Context(), claims)))
	}
}

// RequireRoles restricts an already-authenticated route to the given roles.
// Wrap inside RequireAuth.
func (m *Middleware) RequireRoles(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				m.unauthorized(w, "Authentication required")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				m.forbidden(w, "Insufficient role")
				return
			}
			next(w, r)
		}
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

// forbidden returns a 403 response with JSON error body.
func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "forbidden",
		"message": message,
	})
}
