package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"

	"github.com/voxeterna/blog-api/internal/hash"
	"github.com/voxeterna/blog-api/internal/middleware"
	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/repo"
)

type UserHTTP struct {
	Repo *repo.Store
}

// Read returns the signed-in user's own profile.
func (h *UserHTTP) Read(c echo.Context) error {
	profile := c.Get(middleware.CtxProfile).(*models.User)
	return c.JSON(http.StatusOK, profile)
}

// PublicProfile returns a user and their ten most recent blogs.
func (h *UserHTTP) PublicProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Repo.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "User not found")
	}

	blogs, err := h.Repo.BlogsByUser(ctx, user.ID, 10)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"blogs": blogs,
	})
}

// Update applies the allow-listed mutable profile fields. Role and email are
// never settable through this path; they stay whatever the stored record
// already holds.
func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	profile := c.Get(middleware.CtxProfile).(*models.User)

	var req struct {
		Name      string `json:"name"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		About     string `json:"about"`
		Photo     string `json:"photo"` // base64
		PhotoType string `json:"photo_type"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	if req.Username != "" {
		if len(req.Username) > 12 {
			return errorJSON(c, http.StatusBadRequest, "Username should be less than 12 characters long")
		}
		profile.Username = strings.ToLower(slug.Make(req.Username))
	}
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.About != "" {
		profile.About = req.About
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return errorJSON(c, http.StatusBadRequest, "Password must be a minimum of 6 characters long")
		}
		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		profile.PasswordHash = pwHash
	}
	if err := decodePhoto(req.Photo, req.PhotoType, &profile.Photo, &profile.PhotoType); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Photo could not be uploaded")
	}

	if err := h.Repo.SaveUser(ctx, profile); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *UserHTTP) Photo(c echo.Context) error {
	user, err := h.Repo.UserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusBadRequest, "User not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if len(user.Photo) == 0 {
		return errorJSON(c, http.StatusNotFound, "Photo not found")
	}
	return c.Blob(http.StatusOK, user.PhotoType, user.Photo)
}
