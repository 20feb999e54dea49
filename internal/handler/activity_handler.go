package handler

import (
	"net/http"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/middleware"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
)

type ActivityHandler struct {
	svc service.ActivityService
}

func NewActivityHandler(svc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id/activity", h.ListActivity)
}

func (h *ActivityHandler) ListActivity(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	rows, err := h.svc.ListActivity(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToActivityResponses(rows))
}
