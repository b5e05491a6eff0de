package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("middleware-secret")

func signed(t *testing.T, claims services.AccessClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return raw
}

func validClaims(sessionID uuid.UUID) services.AccessClaims {
	now := time.Now()
	return services.AccessClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    services.TokenIssuer,
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{services.TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
}

func TestParseAccessToken(t *testing.T) {
	keyFunc := KeyFunc(testSecret, nil)

	_, err := ParseAccessToken(signed(t, validClaims(uuid.New())), keyFunc, ExternalIssuer{})
	assert.NoError(t, err)

	wrongAudience := validClaims(uuid.New())
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}
	_, err = ParseAccessToken(signed(t, wrongAudience), keyFunc, ExternalIssuer{})
	assert.Error(t, err)

	noExpiry := validClaims(uuid.New())
	noExpiry.ExpiresAt = nil
	_, err = ParseAccessToken(signed(t, noExpiry), keyFunc, ExternalIssuer{})
	assert.Error(t, err)

	expired := validClaims(uuid.New())
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = ParseAccessToken(signed(t, expired), keyFunc, ExternalIssuer{})
	assert.Error(t, err)

	_, err = ParseAccessToken(signed(t, validClaims(uuid.New())), KeyFunc([]byte("other"), nil), ExternalIssuer{})
	assert.Error(t, err)
}

func TestParseAccessToken_External(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyFunc := func(token *jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	idp := ExternalIssuer{Issuer: "https://idp.example", Audience: "rescuetrack-api"}

	external := func(issuer, audience string) string {
		now := time.Now()
		claims := services.AccessClaims{
			Email: "vet@example.org",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{audience},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return raw
	}

	_, err = ParseAccessToken(external("https://idp.example", "rescuetrack-api"), keyFunc, idp)
	assert.NoError(t, err)

	_, err = ParseAccessToken(external("https://idp.example", "another-app"), keyFunc, idp)
	assert.ErrorIs(t, err, errIssuerMismatch)

	_, err = ParseAccessToken(external("https://evil.example", "rescuetrack-api"), keyFunc, idp)
	assert.ErrorIs(t, err, errIssuerMismatch)

	_, err = ParseAccessToken(external("https://any.example", "rescuetrack-api"), keyFunc, ExternalIssuer{Audience: "rescuetrack-api"})
	assert.NoError(t, err)

	_, err = ParseAccessToken(external("https://idp.example", "rescuetrack-api"), keyFunc, ExternalIssuer{})
	assert.ErrorIs(t, err, errIssuerMismatch)
}

// stubAuth resolves only the session it was built with.
type stubAuth struct {
	services.AuthService
	session   uuid.UUID
	principal models.Principal
}

func (s *stubAuth) ResolvePrincipal(ctx context.Context, claims *services.AccessClaims) (models.Principal, error) {
	if claims.SessionID != s.session.String() {
		return models.Principal{}, services.ErrUnauthenticated
	}
	return s.principal, nil
}

func TestAuthenticateChain(t *testing.T) {
	sessionID := uuid.New()
	want := models.Principal{StaffID: uuid.New(), OrganizationID: uuid.New(), Role: models.RoleUser, SessionID: sessionID}
	auth := &stubAuth{session: sessionID, principal: want}

	e := echo.New()
	e.GET("/api/me", func(c echo.Context) error {
		p, ok := common.GetPrincipalFromContext(c.Request().Context())
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, p.StaffID.String())
	}, echojwt.WithConfig(JWTConfig(testSecret, nil, ExternalIssuer{})), Authenticate(auth, zap.NewNop()))

	do := func(setup func(r *http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		setup(req)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do(func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, validClaims(sessionID))) })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want.StaffID.String(), rec.Body.String())

	rec = do(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: signed(t, validClaims(sessionID))})
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(func(r *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, validClaims(uuid.New()))) })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
