package handler

import (
	"net/http"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/middleware"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
)

type FavoriteHandler struct {
	svc service.FavoriteService
}

func NewFavoriteHandler(svc service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

func (h *FavoriteHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/favorites", h.ListFavorites)
	g.POST("/:id/toggle_favorite", h.Toggle)
	g.GET("/:id/is_favorite", h.IsFavorite)
}

func (h *FavoriteHandler) Toggle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	added, err := h.svc.Toggle(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	status := "removed"
	if added {
		status = "added"
	}
	return c.JSON(http.StatusOK, dto.FavoriteToggleResponse{Status: status, IsFavorite: added})
}

func (h *FavoriteHandler) IsFavorite(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	is, err := h.svc.IsFavorite(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.IsFavoriteResponse{IsFavorite: is})
}

func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	events, err := h.svc.ListFavorites(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}
