package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/config"
	"github.com/Yashh918/WatchHaven/internal/model"
	"github.com/Yashh918/WatchHaven/internal/utils"
)

// UserHandler owns registration, the token lifecycle and profile
// management.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
	Media MediaStore
	Clean CleanupScheduler
}

func NewUserHandler(cfg config.Config, users UserStore, media MediaStore, clean CleanupScheduler) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Media: media, Clean: clean}
}

type userResponse struct {
	ID         uint64    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.AvatarURL,
		CoverImage: u.CoverURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Register creates an account from a multipart form. The avatar file
// is mandatory, the cover image optional. Media is uploaded before the
// row is written; if the insert then fails the uploaded assets are
// queued for cleanup so no account ever points at missing media and no
// orphan media survives a failed registration.
func (h *UserHandler) Register(c echo.Context) error {
	fullName := strings.TrimSpace(c.FormValue("fullName"))
	email := strings.TrimSpace(c.FormValue("email"))
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(password) == "" {
		return fail(c, http.StatusBadRequest, "fullName, email, username and password are required")
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, http.StatusBadRequest, "avatar image is required")
	}

	hash, err := utils.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not hash password")
	}

	ctx, cancel := mediaContext(c, h.Cfg.MediaTimeout)
	defer cancel()

	avatar, err := uploadFile(ctx, h.Media, "avatars", avatarFile)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "avatar upload failed")
	}

	user := model.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		AvatarURL:    avatar.URL,
		AvatarKey:    avatar.Key,
	}

	if coverFile, err := c.FormFile("coverImage"); err == nil {
		cover, err := uploadFile(ctx, h.Media, "covers", coverFile)
		if err != nil {
			scheduleCleanup(c, h.Clean, "registration aborted", avatar.Key)
			return fail(c, http.StatusInternalServerError, "cover image upload failed")
		}
		user.CoverURL = cover.URL
		user.CoverKey = cover.Key
	}

	if err := h.Users.Create(c.Request().Context(), &user); err != nil {
		scheduleCleanup(c, h.Clean, "registration aborted", user.AvatarKey, user.CoverKey)
		return failRepo(c, err, "user not found")
	}
	return respond(c, http.StatusCreated, newUserResponse(user), "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials by username or email and issues an
// access/refresh token pair, both returned in the body and set as
// HttpOnly cookies.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "username or email and password are required")
	}

	user, err := h.Users.GetByIdentifier(c.Request().Context(), identifier)
	if err != nil {
		return failRepo(c, err, "user does not exist")
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, refresh, err := h.issueTokens(c, user.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue tokens")
	}
	return respond(c, http.StatusOK, map[string]any{
		"user":         newUserResponse(user),
		"accessToken":  access.Token,
		"refreshToken": refresh.Token,
	}, "logged in successfully")
}

// Refresh rotates the token pair. The presented refresh token must
// both verify as a JWT and hash-match the single token currently on
// record for the account, so a revoked or superseded token is rejected
// even while its signature is still valid.
func (h *UserHandler) Refresh(c echo.Context) error {
	raw := ""
	if cookie, err := c.Cookie("refreshToken"); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.Bind(&body); err == nil {
			raw = body.RefreshToken
		}
	}
	if raw == "" {
		return fail(c, http.StatusUnauthorized, "missing refresh token")
	}

	uid, err := utils.VerifyToken(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	user, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	hash := utils.HashToken(raw)
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != hash {
		return fail(c, http.StatusUnauthorized, "refresh token has been revoked")
	}

	access, refresh, err := h.issueTokens(c, user.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue tokens")
	}
	return respond(c, http.StatusOK, map[string]any{
		"accessToken":  access.Token,
		"refreshToken": refresh.Token,
	}, "tokens refreshed successfully")
}

// Logout invalidates the stored refresh token and clears both auth
// cookies. The access token stays valid until expiry; revocation here
// only stops future refreshes.
func (h *UserHandler) Logout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	if err := h.Users.SetRefreshToken(c.Request().Context(), uid, nil); err != nil {
		return failRepo(c, err, "user not found")
	}
	clearAuthCookies(c)
	return respond(c, http.StatusOK, nil, "logged out successfully")
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.NewPassword) == "" {
		return fail(c, http.StatusBadRequest, "new password is required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return fail(c, http.StatusBadRequest, "new password and confirmation do not match")
	}
	if !utils.VerifyPassword(user.PasswordHash, req.OldPassword) {
		return fail(c, http.StatusUnauthorized, "old password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not hash password")
	}
	if err := h.Users.UpdatePassword(c.Request().Context(), user.ID, hash); err != nil {
		return failRepo(c, err, "user not found")
	}
	return respond(c, http.StatusOK, nil, "password changed successfully")
}

// Me returns the acting account without a database round trip; the
// guard already loaded it.
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	return respond(c, http.StatusOK, newUserResponse(user), "current user fetched successfully")
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateDetails changes full name and/or email. At least one field
// must be present; omitted fields keep their value.
func (h *UserHandler) UpdateDetails(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	if fullName == "" && email == "" {
		return fail(c, http.StatusBadRequest, "at least one of fullName or email is required")
	}
	if err := h.Users.UpdateDetails(c.Request().Context(), uid, fullName, email); err != nil {
		return failRepo(c, err, "user not found")
	}
	user, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return failRepo(c, err, "user not found")
	}
	return respond(c, http.StatusOK, newUserResponse(user), "account details updated successfully")
}

// UpdateAvatar replaces the avatar. The new file is uploaded and the
// row updated before the previous asset is queued for deletion.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.replaceImage(c, "avatar", "avatars", "avatar updated successfully",
		func(u model.User) string { return u.AvatarKey }, h.Users.UpdateAvatar)
}

// UpdateCover replaces the cover image with the same ordering as
// UpdateAvatar.
func (h *UserHandler) UpdateCover(c echo.Context) error {
	return h.replaceImage(c, "coverImage", "covers", "cover image updated successfully",
		func(u model.User) string { return u.CoverKey }, h.Users.UpdateCover)
}

func (h *UserHandler) replaceImage(
	c echo.Context,
	field, kind, okMsg string,
	oldKey func(model.User) string,
	save func(ctx context.Context, id uint64, url, key string) error,
) error {
	user, ok := currentUser(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return fail(c, http.StatusBadRequest, field+" image is required")
	}

	ctx, cancel := mediaContext(c, h.Cfg.MediaTimeout)
	defer cancel()
	asset, err := uploadFile(ctx, h.Media, kind, fh)
	if err != nil {
		return fail(c, http.StatusInternalServerError, field+" upload failed")
	}

	if err := save(c.Request().Context(), user.ID, asset.URL, asset.Key); err != nil {
		scheduleCleanup(c, h.Clean, field+" update aborted", asset.Key)
		return failRepo(c, err, "user not found")
	}
	scheduleCleanup(c, h.Clean, field+" replaced", oldKey(user))

	updated, err := h.Users.GetByID(c.Request().Context(), user.ID)
	if err != nil {
		return failRepo(c, err, "user not found")
	}
	return respond(c, http.StatusOK, newUserResponse(updated), okMsg)
}

// Channel returns the public channel profile for a username, with
// subscriber counts and whether the viewer is subscribed.
func (h *UserHandler) Channel(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return fail(c, http.StatusBadRequest, "username is required")
	}
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	profile, err := h.Users.ChannelProfile(c.Request().Context(), username, uid)
	if err != nil {
		return failRepo(c, err, "channel not found")
	}
	return respond(c, http.StatusOK, profile, "channel profile fetched successfully")
}

// WatchHistory lists the viewer's watched videos, most recent first.
func (h *UserHandler) WatchHistory(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "not authenticated")
	}
	entries, err := h.Users.WatchHistory(c.Request().Context(), uid)
	if err != nil {
		return failRepo(c, err, "user not found")
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"video":     newVideoResponse(e.Video.Video, e.Video.Owner),
			"watchedAt": e.WatchedAt,
		})
	}
	return respond(c, http.StatusOK, out, "watch history fetched successfully")
}

// issueTokens mints a fresh access/refresh pair, stores the refresh
// token's hash as the account's single valid token and sets both
// cookies.
func (h *UserHandler) issueTokens(c echo.Context, userID uint64) (access, refresh utils.SignedToken, err error) {
	access, err = utils.NewAccessToken(h.Cfg.AccessSecret, userID, h.Cfg.AccessTTLMin)
	if err != nil {
		return
	}
	refresh, err = utils.NewRefreshToken(h.Cfg.RefreshSecret, userID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return
	}
	hash := utils.HashToken(refresh.Token)
	if err = h.Users.SetRefreshToken(c.Request().Context(), userID, &hash); err != nil {
		return
	}
	setAuthCookie(c, "accessToken", access.Token, access.Exp)
	setAuthCookie(c, "refreshToken", refresh.Token, refresh.Exp)
	return
}

func setAuthCookie(c echo.Context, name, value string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(c echo.Context) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
