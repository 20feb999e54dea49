package handler

import (
	"net/http"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/middleware"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
)

type ParticipationHandler struct {
	svc service.ParticipationService
}

func NewParticipationHandler(svc service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{svc: svc}
}

func (h *ParticipationHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/:id/join", h.Join)
	g.PUT("/:id/cancel_join", h.Leave)
	g.DELETE("/:id/participation", h.Leave)
	g.GET("/:id/participants", h.ListParticipants)
}

func (h *ParticipationHandler) Join(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Join(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ParticipationResponse{
		EventID:           p.EventID,
		UserID:            p.UserID,
		ParticipationDate: p.ParticipationDate,
	})
}

func (h *ParticipationHandler) Leave(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Leave(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ParticipationHandler) ListParticipants(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	rows, err := h.svc.ListParticipants(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToParticipationResponses(rows))
}
