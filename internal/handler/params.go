package handler

import (
	"strconv"
	"strings"

	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	"github.com/joinit/events-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid event id")
	}
	return uint(id), nil
}

// parsePage reads ?page=, defaulting to 1.
func parsePage(c echo.Context) (int, error) {
	raw := c.QueryParam("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, service.NewValidationError("page", "Page must be a positive integer.")
	}
	return page, nil
}

// parseFilter builds the search predicate from the query string. Blank
// parameters are ignored.
func parseFilter(c echo.Context) (repository.EventFilter, error) {
	var f repository.EventFilter
	verr := &service.ValidationError{}

	f.Name = strings.TrimSpace(c.QueryParam("name"))
	f.Place = strings.TrimSpace(c.QueryParam("place"))

	if raw, ok := queryValue(c, "category"); ok {
		cat := models.Category(raw)
		if cat.Valid() {
			f.Category = &cat
		} else {
			verr.Add("category", "Select a valid choice.")
		}
	}

	f.PriceMin = parseDecimal(c, "price_min", verr)
	f.PriceMax = parseDecimal(c, "price_max", verr)

	if raw, ok := queryValue(c, "max_participants"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add("max_participants", "Enter a positive whole number.")
		} else {
			f.MaxCapacity = &n
		}
	}

	for _, v := range c.QueryParams()["tags"] {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}

	return f, verr.Err()
}

func queryValue(c echo.Context, key string) (string, bool) {
	v := strings.TrimSpace(c.QueryParam(key))
	return v, v != ""
}

func parseDecimal(c echo.Context, key string, verr *service.ValidationError) *decimal.Decimal {
	raw, ok := queryValue(c, key)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(key, "A valid number is required.")
		return nil
	}
	return &d
}
