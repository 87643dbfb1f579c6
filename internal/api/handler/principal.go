package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/secureapi/secure-api/internal/core/domain"
)

// principal returns the identity bound by the Auth middleware. Its absence
// means the route was wired without the middleware; that is reported as
// unauthenticated rather than trusted.
func principal(c echo.Context) (*domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
