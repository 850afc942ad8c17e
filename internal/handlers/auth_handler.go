package handlers

import (
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	link          *services.LinkService
	dashboardPath string
}

func NewAuthHandler(link *services.LinkService, dashboardPath string) *AuthHandler {
	return &AuthHandler{link: link, dashboardPath: dashboardPath}
}

func callbackParams(c *fiber.Ctx) services.CallbackParams {
	return services.CallbackParams{
		State:            c.Query("state"),
		Code:             c.Query("code"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}
}

func (h *AuthHandler) TikTokLogin(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	url, st := h.link.StartTikTok(sess.State())
	if err := sess.Put(st); err != nil {
		return err
	}
	return c.Redirect(url, fiber.StatusFound)
}

func (h *AuthHandler) TikTokCallback(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	_, st, err := h.link.CompleteTikTokCallback(c.UserContext(), sess.State(), callbackParams(c))
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.Put(st); err != nil {
		return err
	}
	return renderSuccess(c, h.dashboardPath)
}

func (h *AuthHandler) TikTokManual(c *fiber.Ctx) error {
	var req dto.ManualExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sess := middleware.SessionFrom(c)
	res, st, err := h.link.CompleteTikTokManual(c.UserContext(), sess.State(), req.Code)
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.Put(st); err != nil {
		return err
	}
	return c.JSON(dto.LinkResponse{Success: true, UserID: res.User.ID})
}

func (h *AuthHandler) DiscordLogin(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	url, st, err := h.link.StartDiscord(sess.State())
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.Put(st); err != nil {
		return err
	}
	return c.Redirect(url, fiber.StatusFound)
}

func (h *AuthHandler) DiscordCallback(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	_, st, err := h.link.CompleteDiscord(c.UserContext(), sess.State(), callbackParams(c))
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.Put(st); err != nil {
		return err
	}
	return renderSuccess(c, h.dashboardPath)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := middleware.SessionFrom(c).Clear(); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	st := middleware.SessionFrom(c).State()
	if !st.Authenticated() {
		return c.JSON(dto.SessionResponse{Authenticated: false})
	}
	return c.JSON(dto.SessionResponse{
		Authenticated: true,
		UserID:        st.UserID,
		TikTokOpenID:  st.TikTokOpenID,
	})
}
