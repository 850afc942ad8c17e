package handlers

import (
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	link    *services.LinkService
	account *services.AccountService
}

func NewUserHandler(link *services.LinkService, account *services.AccountService) *UserHandler {
	return &UserHandler{link: link, account: account}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	view, err := h.link.Profile(c.UserContext(), middleware.SessionFrom(c).State())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProfileResponse(view.Profile, view.User))
}

func (h *UserHandler) RefreshProfile(c *fiber.Ctx) error {
	st := middleware.SessionFrom(c).State()
	if _, err := h.account.RefreshProfile(c.UserContext(), st); err != nil {
		return respondError(c, err)
	}
	view, err := h.link.Profile(c.UserContext(), st)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProfileResponse(view.Profile, view.User))
}

func (h *UserHandler) Analytics(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultSnapshotLimit)
	snaps, err := h.account.Analytics(c.UserContext(), middleware.SessionFrom(c).State(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewAnalyticsResponse(snaps))
}

func (h *UserHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.account.Config(c.UserContext(), middleware.SessionFrom(c).State())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewConfigResponse(cfg))
}

func (h *UserHandler) UpdateConfig(c *fiber.Ctx) error {
	var req dto.UpdateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	cfg, err := h.account.UpdateConfig(c.UserContext(), middleware.SessionFrom(c).State(), store.ConfigPatch{
		DouyinSecUID:    req.DouyinSecUID,
		RapidAPIKey:     req.RapidAPIKey,
		Hashtags:        req.Hashtags,
		CaptionTemplate: req.CaptionTemplate,
		PostingEnabled:  req.PostingEnabled,
		ScheduleType:    req.ScheduleType,
		ScheduledTimes:  req.ScheduledTimes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewConfigResponse(cfg))
}

func (h *UserHandler) UnlinkDiscord(c *fiber.Ctx) error {
	user, err := h.account.UnlinkDiscord(c.UserContext(), middleware.SessionFrom(c).State())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	if err := h.account.DeleteAccount(c.UserContext(), sess.State()); err != nil {
		return respondError(c, err)
	}
	if err := sess.Clear(); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
