package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/repo"
	"github.com/voxeterna/blog-api/internal/tokens"
)

// Context keys populated by the chain and read by downstream handlers.
const (
	CtxUserID  = "userID"
	CtxProfile = "profile"
)

type Auth struct {
	Tokens *tokens.Codec
	Repo   *repo.Store
}

func NewAuth(codec *tokens.Codec, store *repo.Store) *Auth {
	return &Auth{Tokens: codec, Repo: store}
}

// RequireSignin verifies the session token from the `token` cookie or a
// Bearer header and stores its subject id in the request context.
func (m *Auth) RequireSignin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := sessionToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		claims, err := m.Tokens.VerifySession(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}

		userID, err := tokens.UserID(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(CtxUserID, userID)
		return next(c)
	}
}

// AuthenticateUser loads the full profile for the signed-in id. A valid
// token for a deleted account fails here.
func (m *Auth) AuthenticateUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := c.Get(CtxUserID).(uint)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		user, err := m.Repo.UserByID(c.Request().Context(), userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "User not found")
		}

		c.Set(CtxProfile, user)
		return next(c)
	}
}

// AdminOnly requires the loaded profile to carry the admin role.
func (m *Auth) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, ok := c.Get(CtxProfile).(*models.User)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "User not found")
		}
		if profile.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusBadRequest, "Admin resource - Access Denied")
		}
		return next(c)
	}
}

// CanUpdateDeleteBlog allows a mutation only when the authenticated profile
// owns the blog named by the slug parameter, independent of role.
func (m *Auth) CanUpdateDeleteBlog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, ok := c.Get(CtxProfile).(*models.User)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "User not found")
		}

		slug := strings.ToLower(c.Param("slug"))
		blog, err := m.Repo.BlogBySlug(c.Request().Context(), slug)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return echo.NewHTTPError(http.StatusBadRequest, "Blog not found")
			}
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		if blog.PostedByID != profile.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "You are not authorized")
		}
		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
