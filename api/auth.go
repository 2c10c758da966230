package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/blog-backend/errs"
)

const (
	adminTokenTTL     = 24 * time.Hour
	adminTokenIssuer  = "blog-backend"
	adminTokenSubject = "admin"
)

// tokenIssuer signs and verifies admin session tokens (HS256).
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenIssuer(secret string) tokenIssuer {
	return tokenIssuer{secret: []byte(secret), ttl: adminTokenTTL, now: time.Now}
}

func (t tokenIssuer) issue(subject string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    adminTokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (t tokenIssuer) verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type authMiddleware struct {
	responder Responder
	issuer    tokenIssuer
	enabled   bool
}

func newAuthMiddleware(issuer tokenIssuer, enabled bool) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		issuer:    issuer,
		enabled:   enabled,
	}
}

func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			m.responder.WriteError(w, errs.NewLoginDisabledError())
			return
		}

		authHeader := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		claims, err := m.issuer.verify(strings.TrimSpace(token))
		if errors.Is(err, jwt.ErrTokenExpired) {
			m.responder.WriteError(w, errs.NewTokenExpiredError())
			return
		}
		if err != nil {
			m.responder.WriteError(w, errs.NewInvalidTokenError())
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithAdminSubject(r.Context(), claims.Subject)))
	})
}

type authHandler struct {
	responder    Responder
	logger       zerolog.Logger
	issuer       tokenIssuer
	passwordHash []byte
}

func newAuthHandler(issuer tokenIssuer, passwordHash string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	return authHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		issuer:       issuer,
		passwordHash: []byte(passwordHash),
	}
}

// login exchanges the admin password for a session token.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(h.passwordHash) == 0 {
			h.responder.WriteError(w, errs.NewLoginDisabledError())
			return
		}

		var req loginRequest
		if err := h.responder.DecodeJSON(r, &req, "login"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
			h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("Failed admin login attempt")
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}

		token, expiresAt, err := h.issuer.issue(adminTokenSubject)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to sign token", err))
			return
		}

		h.logger.Info().Msg("Admin logged in")
		h.responder.WriteJSON(w, loginResponse{Token: token, ExpiresAt: expiresAt.Unix()})
	}
}
