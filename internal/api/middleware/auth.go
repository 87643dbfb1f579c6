package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/secureapi/secure-api/internal/api/metrics"
	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/ports"
	"github.com/secureapi/secure-api/internal/core/security"
)

// UnauthorizedBody is the fixed body of every authentication rejection.
var UnauthorizedBody = unauthorizedResponse{
	Error:   "Unauthorized",
	Message: "Authentication is required to access this resource",
}

type unauthorizedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AuthConfig configures the Auth middleware.
type AuthConfig struct {
	Authenticator ports.Authenticator
	// Skipper lets allow-listed requests through without a principal.
	Skipper echomiddleware.Skipper
	Logger  zerolog.Logger
}

// Auth verifies the bearer token of every non-skipped request and binds the
// resulting principal to the request context. All failures produce the same
// 401 body; the reason is only logged.
func Auth(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return reject(c, cfg.Logger, "missing_token", nil)
			}

			req := c.Request()
			principal, err := cfg.Authenticator.Authenticate(req.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return reject(c, cfg.Logger, rejectionReason(err), err)
				}
				return err
			}

			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

// PublicPaths returns a Skipper matching the given request paths. A pattern
// ending in "/*" matches every path below that prefix.
func PublicPaths(patterns ...string) echomiddleware.Skipper {
	exact := make(map[string]struct{}, len(patterns))
	var prefixes []string
	for _, p := range patterns {
		if strings.HasSuffix(p, "/*") {
			prefixes = append(prefixes, strings.TrimSuffix(p, "*"))
			continue
		}
		exact[p] = struct{}{}
	}

	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		if _, ok := exact[path]; ok {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "expired"
	case errors.Is(err, security.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, security.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_user"
	default:
		return "unauthenticated"
	}
}

func reject(c echo.Context, log zerolog.Logger, reason string, cause error) error {
	metrics.GateRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Err(cause).
		Str("reason", reason).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("request rejected by auth gate")

	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, UnauthorizedBody)
}
