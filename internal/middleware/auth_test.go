package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/repo"
	"github.com/voxeterna/blog-api/internal/tokens"
)

func newTestAuth(t *testing.T) (*Auth, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Blog{}, &models.Category{}, &models.Tag{}))

	codec := &tokens.Codec{
		ActivationSecret: []byte("test-activation-secret"),
		SessionSecret:    []byte("test-session-secret"),
		ResetSecret:      []byte("test-reset-secret"),
	}
	return NewAuth(codec, &repo.Store{DB: db}), db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         username,
		Email:        username + "@x.com",
		Username:     username,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// runChain drives a request through the given middleware stack.
func runChain(t *testing.T, req *http.Request, slug string, chain ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if slug != "" {
		c.SetParamNames("slug")
		c.SetParamValues(slug)
	}

	h := echo.HandlerFunc(okHandler)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return rec, h(c)
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestRequireSignin(t *testing.T) {
	mw, db := newTestAuth(t)
	user := seedUser(t, db, "ada", models.RoleUser)

	token, _, err := mw.Tokens.IssueSession(user.ID)
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		rec, err := runChain(t, bearerRequest(token), "", mw.RequireSignin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec, err := runChain(t, req, "", mw.RequireSignin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := runChain(t, bearerRequest(""), "", mw.RequireSignin)
		httpErr := new(echo.HTTPError)
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := runChain(t, bearerRequest(token+"x"), "", mw.RequireSignin)
		httpErr := new(echo.HTTPError)
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("wrong purpose token", func(t *testing.T) {
		reset, err := mw.Tokens.IssueReset(user.ID)
		require.NoError(t, err)
		_, err = runChain(t, bearerRequest(reset), "", mw.RequireSignin)
		httpErr := new(echo.HTTPError)
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestAuthenticateUser_DeletedAccount(t *testing.T) {
	mw, db := newTestAuth(t)
	user := seedUser(t, db, "ada", models.RoleUser)

	token, _, err := mw.Tokens.IssueSession(user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Unscoped().Delete(user).Error)

	// signature still valid, account gone
	_, err = runChain(t, bearerRequest(token), "", mw.RequireSignin, mw.AuthenticateUser)
	httpErr := new(echo.HTTPError)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "User not found", httpErr.Message)
}

func TestAdminOnly(t *testing.T) {
	mw, db := newTestAuth(t)
	member := seedUser(t, db, "member", models.RoleUser)
	admin := seedUser(t, db, "admin", models.RoleAdmin)

	chain := []echo.MiddlewareFunc{mw.RequireSignin, mw.AuthenticateUser, mw.AdminOnly}

	t.Run("member denied", func(t *testing.T) {
		token, _, err := mw.Tokens.IssueSession(member.ID)
		require.NoError(t, err)
		_, err = runChain(t, bearerRequest(token), "", chain...)
		httpErr := new(echo.HTTPError)
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "Admin resource - Access Denied", httpErr.Message)
	})

	t.Run("admin allowed", func(t *testing.T) {
		token, _, err := mw.Tokens.IssueSession(admin.ID)
		require.NoError(t, err)
		rec, err := runChain(t, bearerRequest(token), "", chain...)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCanUpdateDeleteBlog(t *testing.T) {
	mw, db := newTestAuth(t)
	owner := seedUser(t, db, "owner", models.RoleUser)
	other := seedUser(t, db, "other", models.RoleAdmin)

	blog := &models.Blog{
		Title:      "Owned Post",
		Slug:       "owned-post",
		Body:       "body",
		PostedByID: owner.ID,
	}
	require.NoError(t, db.Create(blog).Error)

	chain := []echo.MiddlewareFunc{mw.RequireSignin, mw.AuthenticateUser, mw.CanUpdateDeleteBlog}

	t.Run("owner allowed", func(t *testing.T) {
		token, _, err := mw.Tokens.IssueSession(owner.ID)
		require.NoError(t, err)
		rec, err := runChain(t, bearerRequest(token), "owned-post", chain...)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	// ownership is checked independent of role; even an admin is denied here
	t.Run("non-owner denied", func(t *testing.T) {
		token, _, err := mw.Tokens.IssueSession(other.ID)
		require.NoError(t, err)
		_, err = runChain(t, bearerRequest(token), "owned-post", chain...)
		httpErr := new(echo.HTTPError)
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "You are not authorized", httpErr.Message)
	})

	t.Run("unknown slug", func(t *testing.T) {
		token, _, err := mw.Tokens.IssueSession(owner.ID)
		require.NoError(t, err)
		_, err = runChain(t, bearerRequest(token), "no-such-post", chain...)
		httpErr := new(echo.HTTPError)
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "Blog not found", httpErr.Message)
	})
}
