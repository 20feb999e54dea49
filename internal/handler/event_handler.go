package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/middleware"
	"github.com/joinit/events-api/internal/policy"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc            service.EventService
	maxUploadBytes int64
}

func NewEventHandler(svc service.EventService, maxUploadBytes int64) *EventHandler {
	return &EventHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/search", h.SearchEvents)
	g.GET("/categories", h.ListCategories)
	g.GET("/all", h.ListAllEvents)
	g.GET("/mine", h.ListMyEvents)
	g.GET("/:id", h.GetEvent)
	g.PUT("/:id", h.ReplaceEvent)
	g.PATCH("/:id", h.PatchEvent)
	g.DELETE("/:id", h.CancelEvent)
	g.PUT("/:id/cancel", h.CancelEvent)
	g.PUT("/:id/cover", h.SetCover)
	g.DELETE("/:id/cover", h.RemoveCover)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	req, _, err := decodeEvent(c)
	if err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), middleware.CurrentUser(c), toEventInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	event, err := h.svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// ReplaceEvent is a full update: every writable field must be supplied.
func (h *EventHandler) ReplaceEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, keys, err := decodeEvent(c)
	if err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	fields := append(slices.Clone(service.FullUpdateFields), readOnlyKeys(keys)...)
	event, err := h.svc.UpdateEvent(c.Request().Context(), middleware.CurrentUser(c), id, toEventInput(req), fields)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// PatchEvent applies only the keys present in the body.
func (h *EventHandler) PatchEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, keys, err := decodeEvent(c)
	if err != nil {
		return err
	}

	var fields []string
	for _, k := range keys {
		if slices.Contains(service.FullUpdateFields, k) || slices.Contains(policy.ReadOnlyFields, k) {
			fields = append(fields, k)
		}
	}
	if len(fields) == 0 {
		return badRequest("no updatable fields supplied")
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), middleware.CurrentUser(c), id, toEventInput(req), fields)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// CancelEvent answers 204 on the first cancellation and 200 with a notice afterwards.
func (h *EventHandler) CancelEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	already, err := h.svc.CancelEvent(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return toHTTPError(err)
	}
	if already {
		return c.JSON(http.StatusOK, dto.DetailResponse{Detail: "event already cancelled", Code: "already_cancelled"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.svc.ListPublic(c.Request().Context(), page)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToPageResponse(result.Events, result.Total, result.Page, result.PageSize))
}

func (h *EventHandler) SearchEvents(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return toHTTPError(err)
	}
	filter, err := parseFilter(c)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.svc.Search(c.Request().Context(), filter, page)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToPageResponse(result.Events, result.Total, result.Page, result.PageSize))
}

func (h *EventHandler) ListAllEvents(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.svc.ListAll(c.Request().Context(), middleware.CurrentUser(c), page)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToPageResponse(result.Events, result.Total, result.Page, result.PageSize))
}

func (h *EventHandler) ListMyEvents(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.svc.ListMine(c.Request().Context(), middleware.CurrentUser(c), page)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToPageResponse(result.Events, result.Total, result.Page, result.PageSize))
}

func (h *EventHandler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.ToCategoryResponses())
}

func (h *EventHandler) SetCover(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if h.maxUploadBytes > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes+1<<20)
	}
	fh, err := c.FormFile(policy.FieldCoverImage)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return toHTTPError(service.NewValidationError(policy.FieldCoverImage, "The submitted file is too large."))
		}
		return toHTTPError(service.NewValidationError(policy.FieldCoverImage, "No file was submitted."))
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return toHTTPError(service.NewValidationError(policy.FieldCoverImage, "The submitted file is too large."))
	}

	f, err := fh.Open()
	if err != nil {
		return toHTTPError(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return toHTTPError(err)
	}

	event, err := h.svc.SetCover(c.Request().Context(), middleware.CurrentUser(c), id, fh.Filename, data)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) RemoveCover(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	event, err := h.svc.RemoveCover(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// decodeEvent reads the JSON body once into both the typed request and the
// list of keys the client actually sent.
func decodeEvent(c echo.Context) (dto.EventRequest, []string, error) {
	var req dto.EventRequest

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return req, nil, badRequest("invalid request body")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, nil, badRequest("invalid request body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return req, nil, toHTTPError(service.NewValidationError(typeErr.Field, "Invalid value."))
		}
		return req, nil, badRequest("invalid request body")
	}

	verr := &service.ValidationError{}
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		keys = append(keys, k)
		if string(bytes.TrimSpace(v)) == "null" && slices.Contains(service.FullUpdateFields, k) && !slices.Contains(nullableFields, k) {
			verr.Add(k, "This field may not be null.")
		}
	}
	if err := verr.Err(); err != nil {
		return req, nil, toHTTPError(err)
	}
	slices.Sort(keys)
	return req, keys, nil
}

// nullableFields may be sent as null to clear them.
var nullableFields = []string{policy.FieldDescription, policy.FieldTags, policy.FieldMaxParticipants}

func readOnlyKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		if slices.Contains(policy.ReadOnlyFields, k) {
			out = append(out, k)
		}
	}
	return out
}

func toEventInput(req dto.EventRequest) service.EventInput {
	in := service.EventInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Tags:            req.Tags,
		Place:           req.Place,
		MaxParticipants: req.MaxParticipants,
		IsPrivate:       req.IsPrivate,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.EventDate != nil {
		in.EventDate = *req.EventDate
	}
	if req.ParticipationDeadline != nil {
		in.ParticipationDeadline = *req.ParticipationDeadline
	}
	return in
}
