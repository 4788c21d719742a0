package middleware // reusable HTTP middleware for the API

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/utils"
)

// AccountLoader resolves an authenticated user ID to its account.
// *repository.UserRepo satisfies it; tests substitute a fake.
type AccountLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// JWTAuth returns the authorization guard applied to every protected
// route. It accepts the access token from the Authorization header
// ("Bearer <jwt>") or the accessToken cookie, verifies it, resolves
// the acting account and stores it in the request context under
// "user_id" and "user". Requests without a valid token are rejected
// with 401 before any handler runs; there is no anonymous mode.
func JWTAuth(secret string, accounts AccountLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return unauthorized(c, "missing access token")
			}
			uid, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return unauthorized(c, "invalid access token")
			}
			user, err := accounts.GetByID(c.Request().Context(), uid)
			if err != nil {
				// Token verified but the account is gone: still 401.
				return unauthorized(c, "invalid access token")
			}
			c.Set("user_id", user.ID)
			c.Set("user", user)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"statusCode": http.StatusUnauthorized,
		"data":       nil,
		"message":    msg,
		"success":    false,
	})
}
