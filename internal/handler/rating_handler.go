package handler

import (
	"net/http"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/middleware"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
)

type RatingHandler struct {
	svc service.RatingService
}

func NewRatingHandler(svc service.RatingService) *RatingHandler {
	return &RatingHandler{svc: svc}
}

func (h *RatingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:id/rate", h.Rate)
	g.PUT("/:id/rating", h.UpdateRating)
	g.DELETE("/:id/rating", h.DeleteRating)
	g.GET("/:id/ratings", h.ListRatings)
}

func (h *RatingHandler) Rate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.RateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	res, err := h.svc.Rate(c.Request().Context(), middleware.CurrentUser(c), id, *req.Rating, req.Review)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.RatingWriteResponse{
		Rating:        dto.ToRatingResponse(res.Rating),
		AverageRating: dto.FormatAverage(res.Average),
	})
}

func (h *RatingHandler) UpdateRating(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRatingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}
	if req.Rating == nil && req.Review == nil {
		return toHTTPError(service.NewValidationError("rating", "This field is required."))
	}

	res, err := h.svc.UpdateRating(c.Request().Context(), middleware.CurrentUser(c), id, req.Rating, req.Review)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.RatingWriteResponse{
		Rating:        dto.ToRatingResponse(res.Rating),
		AverageRating: dto.FormatAverage(res.Average),
	})
}

func (h *RatingHandler) DeleteRating(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteRating(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *RatingHandler) ListRatings(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	summary, err := h.svc.ListRatings(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.RatingListResponse{
		Count:         len(summary.Ratings),
		AverageRating: dto.FormatAverage(summary.Average),
		Results:       dto.ToRatingResponses(summary.Ratings),
	})
}
