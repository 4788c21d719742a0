// Package handler implements the HTTP endpoints. Every response uses
// the same envelope: {statusCode, data, message, success}. Handlers
// depend on narrow store interfaces (see interfaces.go) so tests can
// substitute in-memory fakes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/repository"
)

type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, apiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < 400,
	})
}

func fail(c echo.Context, code int, message string) error {
	return respond(c, code, nil, message)
}

// failRepo maps repository sentinel errors onto the envelope:
// ErrNotFound → 404 with the caller's message, ErrDuplicate → 409,
// everything else → 500.
func failRepo(c echo.Context, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		return fail(c, http.StatusConflict, "already exists")
	default:
		return fail(c, http.StatusInternalServerError, "database error")
	}
}

// getUserID extracts the acting account's ID placed in context by the
// authorization guard.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errors.New("no authenticated user in context")
}

// currentUser returns the full account stored by the guard, when
// present.
func currentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get("user").(model.User)
	return u, ok
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// parsePage reads page/limit query parameters with defaults 1 and 10.
// Out-of-range pages are valid and simply produce empty result lists.
func parsePage(c echo.Context) (page, limit int) {
	page, limit = 1, 10
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}

// ownerSummaryJSON is OwnerSummary with stable JSON field names for
// responses that embed it directly.
type ownerSummaryJSON struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func ownerJSON(o model.OwnerSummary) ownerSummaryJSON {
	return ownerSummaryJSON{ID: o.ID, Username: o.Username, FullName: o.FullName, Avatar: o.Avatar}
}
