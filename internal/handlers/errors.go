package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}

// respondError maps workflow errors onto HTTP responses. Anything it does not
// recognize is returned to the fiber error handler.
func respondError(c *fiber.Ctx, err error) error {
	var (
		denied   *oauth.ProviderDeniedError
		exchange *oauth.TokenExchangeError
		userInfo *oauth.UserInfoError
		fetch    *oauth.ProfileFetchError
	)

	switch {
	case errors.As(err, &denied):
		return errorJSON(c, fiber.StatusBadRequest, denied.Code)
	case errors.Is(err, services.ErrInvalidState):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid state")
	case errors.Is(err, services.ErrMissingVerifier):
		return errorJSON(c, fiber.StatusBadRequest, "Missing code verifier")
	case errors.Is(err, services.ErrMissingCode):
		return errorJSON(c, fiber.StatusBadRequest, "Missing authorization code")
	case errors.As(err, &exchange):
		slog.Warn("token exchange rejected",
			"provider", exchange.Provider,
			"status", exchange.StatusCode,
			"request_id", requestID(c),
		)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "Token exchange failed",
			Details: exchange.Body,
		})
	case errors.As(err, &userInfo):
		slog.Warn("user info rejected", "provider", userInfo.Provider, "status", userInfo.StatusCode)
		return errorJSON(c, fiber.StatusBadRequest, "Failed to get user info")
	case errors.Is(err, services.ErrInvalidConfig):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotAuthenticated):
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, services.ErrProfileNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Profile not found")
	case errors.Is(err, services.ErrNoToken):
		return errorJSON(c, fiber.StatusNotFound, "No TikTok token on file")
	case errors.Is(err, services.ErrConfigNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Config not found")
	case errors.Is(err, services.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrDiscordAlreadyLinked):
		return errorJSON(c, fiber.StatusConflict, "Discord account already linked to another user")
	case errors.As(err, &fetch):
		slog.Warn("profile fetch failed", "provider", oauth.ProviderTikTok, "status", fetch.StatusCode, "code", fetch.Code)
		return errorJSON(c, fiber.StatusBadGateway, "Failed to fetch TikTok profile")
	case errors.Is(err, oauth.ErrUpstreamTimeout):
		slog.Warn("upstream timeout", "error", err.Error(), "request_id", requestID(c))
		return errorJSON(c, fiber.StatusGatewayTimeout, "Upstream provider timed out")
	case errors.Is(err, oauth.ErrUpstreamUnavailable):
		slog.Warn("upstream unavailable", "error", err.Error(), "request_id", requestID(c))
		return errorJSON(c, fiber.StatusBadGateway, "Upstream provider unavailable")
	default:
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
