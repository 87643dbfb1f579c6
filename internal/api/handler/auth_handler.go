package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/secureapi/secure-api/internal/api/metrics"
	"github.com/secureapi/secure-api/internal/core/domain"
	"github.com/secureapi/secure-api/internal/core/ports"
)

// loginFailedBody is the only body a failed login ever produces, whatever
// the underlying reason.
var loginFailedBody = errorResponse{
	Error:   "Authentication failed",
	Message: "Invalid username or password",
}

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Registration failed", Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Registration failed", Message: err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.DisplayName)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateUsername):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Registration failed", Message: "Username already exists"})
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Registration failed", Message: "invalid registration details"})
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toRegisterResponse(user))
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Authentication failed", Message: "invalid payload"})
	}

	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return c.JSON(http.StatusUnauthorized, loginFailedBody)
	}

	ctx := domain.WithClientIP(c.Request().Context(), c.RealIP())
	res, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		var throttled *domain.ThrottledError
		switch {
		case errors.As(err, &throttled):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			c.Response().Header().Set("Retry-After", retryAfterSeconds(throttled))
			return c.JSON(http.StatusTooManyRequests, errorResponse{
				Error:   "Too many requests",
				Message: "Too many failed login attempts, try again later",
			})
		case errors.Is(err, domain.ErrAuthenticationFailed):
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusUnauthorized, loginFailedBody)
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toLoginResponse(res))
}

// retryAfterSeconds renders the lock duration as whole seconds, rounded up
// and never below one.
func retryAfterSeconds(e *domain.ThrottledError) string {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
