package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	AccessCookie  = "rt_access"
	SessionCookie = "rt_session"

	tokenContextKey = "user"
)

// NewJWKS fetches and keeps refreshing the identity provider key set.
func NewJWKS(url string, logger *zap.Logger) (*keyfunc.JWKS, error) {
	return keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", zap.String("url", url), zap.Error(err))
		},
	})
}

// KeyFunc resolves HS256 tokens against secret and RS256 tokens against jwks, when configured.
func KeyFunc(secret []byte, jwks *keyfunc.JWKS) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return secret, nil
		case *jwt.SigningMethodRSA:
			if jwks != nil {
				return jwks.Keyfunc(token)
			}
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

// ExternalIssuer is what RS256 tokens from the identity provider must carry.
// An empty Issuer is not checked; Audience is always checked.
type ExternalIssuer struct {
	Issuer   string
	Audience string
}

var errIssuerMismatch = errors.New("token issuer or audience mismatch")

// ParseAccessToken verifies a raw token. Locally issued tokens must carry our issuer and
// audience, external ones the configured identity provider's.
func ParseAccessToken(raw string, keyFunc jwt.Keyfunc, external ExternalIssuer) (*jwt.Token, error) {
	claims := new(services.AccessClaims)
	token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if claims.Issuer != services.TokenIssuer || !slices.Contains(claims.Audience, services.TokenAudience) {
			return nil, errIssuerMismatch
		}
	case *jwt.SigningMethodRSA:
		if external.Audience == "" || !slices.Contains(claims.Audience, external.Audience) {
			return nil, errIssuerMismatch
		}
		if external.Issuer != "" && claims.Issuer != external.Issuer {
			return nil, errIssuerMismatch
		}
	}
	return token, nil
}

// JWTConfig reads the bearer header first and falls back to the access cookie.
func JWTConfig(secret []byte, jwks *keyfunc.JWKS, external ExternalIssuer) echojwt.Config {
	keyFunc := KeyFunc(secret, jwks)
	return echojwt.Config{
		ContextKey:  tokenContextKey,
		TokenLookup: "header:Authorization:Bearer ,cookie:" + AccessCookie,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return ParseAccessToken(auth, keyFunc, external)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}
}

// Authenticate turns the verified token into a Principal on the request context.
// It must run after the echojwt middleware.
func Authenticate(authSvc services.AuthService, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*services.AccessClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			ctx := c.Request().Context()
			var principal models.Principal
			var err error
			if _, external := token.Method.(*jwt.SigningMethodRSA); external {
				principal, err = authSvc.ResolveExternal(ctx, claims.Email)
			} else {
				principal, err = authSvc.ResolvePrincipal(ctx, claims)
			}
			if err != nil {
				if errors.Is(err, services.ErrUnauthenticated) || errors.Is(err, services.ErrSessionExpired) {
					return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", err.Error(), nil))
				}
				logger.Error("failed to resolve principal", zap.Error(err))
				return common.SendServerError(c, "Failed to authenticate")
			}

			c.SetRequest(c.Request().WithContext(common.WithPrincipal(ctx, principal)))
			return next(c)
		}
	}
}
