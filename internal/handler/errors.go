package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrNotAuthenticated, http.StatusUnauthorized, "not_authenticated"},

	{service.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
	{service.ErrRatingNotFound, http.StatusNotFound, "rating_not_found"},

	{service.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{service.ErrStaffOnly, http.StatusForbidden, "staff_only"},
	{service.ErrPostNotAllowed, http.StatusForbidden, "post_not_allowed"},
	{service.ErrJoinNotAllowed, http.StatusForbidden, "join_not_allowed"},
	{service.ErrCommentNotAllowed, http.StatusForbidden, "comment_not_allowed"},
	{service.ErrEventPrivate, http.StatusForbidden, "event_private"},
	{service.ErrDeadlinePassed, http.StatusForbidden, "deadline_passed"},
	{service.ErrNotJoined, http.StatusForbidden, "not_joined"},
	{service.ErrCreatorCannotLeave, http.StatusForbidden, "creator_cannot_leave"},

	{service.ErrAlreadyJoined, http.StatusConflict, "already_joined"},
	{service.ErrEventFull, http.StatusConflict, "event_full"},
	{service.ErrAlreadyRated, http.StatusConflict, "already_rated"},

	{service.ErrEventCancelled, http.StatusBadRequest, "event_cancelled"},
	{service.ErrNotParticipating, http.StatusBadRequest, "not_participating"},
	{service.ErrNotRated, http.StatusBadRequest, "not_rated"},
}

// toHTTPError maps service errors onto status codes and stable machine codes.
func toHTTPError(err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{
			Detail: "Invalid input.",
			Code:   "validation_error",
			Errors: verr.Fields,
		})
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.status, dto.ErrorResponse{Detail: m.err.Error(), Code: m.code})
		}
	}

	log.Printf("[Handler] unexpected error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func badRequest(detail string) error {
	return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{Detail: detail, Code: "bad_request"})
}
