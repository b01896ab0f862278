package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voxeterna/blog-api/internal/middleware"
	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/repo"
)

type blogHarness struct {
	h      *BlogHTTP
	db     *gorm.DB
	author *models.User
}

func newBlogHarness(t *testing.T) *blogHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Blog{}, &models.Category{}, &models.Tag{}))

	author := &models.User{Name: "Ada", Email: "ada@x.com", Username: "ada", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(&models.Category{Name: "Go", Slug: "go"}).Error)
	require.NoError(t, db.Create(&models.Tag{Name: "Testing", Slug: "testing"}).Error)

	return &blogHarness{
		h:      &BlogHTTP{Repo: &repo.Store{DB: db}, AppName: "Voxeterna"},
		db:     db,
		author: author,
	}
}

// doAuthedJSON runs a handler with the profile preloaded, the way the
// middleware chain would leave it.
func (h *blogHarness) doAuthedJSON(t *testing.T, handler echo.HandlerFunc, method, body, slugParam string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxProfile, h.author)
	if slugParam != "" {
		c.SetParamNames("slug")
		c.SetParamValues(slugParam)
	}
	require.NoError(t, handler(c))
	return rec
}

func longBody(prefix string) string {
	return prefix + " " + strings.Repeat("word ", 60)
}

func TestBlogCreate_Validation(t *testing.T) {
	h := newBlogHarness(t)

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"missing title", `{"body":"` + longBody("x") + `","categories":[1],"tags":[1]}`, "Title is required"},
		{"short body", `{"title":"T","body":"too short","categories":[1],"tags":[1]}`, "Content is too short"},
		{"no categories", `{"title":"T","body":"` + longBody("x") + `","tags":[1]}`, "At least one category is required"},
		{"no tags", `{"title":"T","body":"` + longBody("x") + `","categories":[1]}`, "At least one tag is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.doAuthedJSON(t, h.h.Create, http.MethodPost, tc.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, decodeBody(t, rec)["error"])
		})
	}
}

func TestBlogCreate_DerivedFields(t *testing.T) {
	h := newBlogHarness(t)

	body := longBody("<p>Opening paragraph</p>")
	rec := h.doAuthedJSON(t, h.h.Create, http.MethodPost,
		`{"title":"My First Post","body":"`+body+`","categories":[1],"tags":[1]}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	blog, err := h.h.Repo.BlogBySlug(context.Background(), "my-first-post")
	require.NoError(t, err)
	assert.Equal(t, "My First Post", blog.Title)
	assert.Equal(t, "My First Post | Voxeterna", blog.MetaTitle)
	assert.Equal(t, h.author.ID, blog.PostedByID)
	assert.NotEmpty(t, blog.Excerpt)
	assert.NotContains(t, blog.MetaDesc, "<p>")
	require.Len(t, blog.Categories, 1)
	require.Len(t, blog.Tags, 1)
}

func TestBlogUpdate_SlugStable(t *testing.T) {
	h := newBlogHarness(t)

	rec := h.doAuthedJSON(t, h.h.Create, http.MethodPost,
		`{"title":"Original Title","body":"`+longBody("x")+`","categories":[1],"tags":[1]}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.doAuthedJSON(t, h.h.Update, http.MethodPut,
		`{"title":"Renamed Title"}`, "original-title")
	require.Equal(t, http.StatusOK, rec.Code)

	// the original slug still resolves after a rename
	blog, err := h.h.Repo.BlogBySlug(context.Background(), "original-title")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Title", blog.Title)
	assert.Equal(t, "Renamed Title | Voxeterna", blog.MetaTitle)
}

func TestBlogRemove(t *testing.T) {
	h := newBlogHarness(t)

	rec := h.doAuthedJSON(t, h.h.Create, http.MethodPost,
		`{"title":"Doomed Post","body":"`+longBody("x")+`","categories":[1],"tags":[1]}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.doAuthedJSON(t, h.h.Remove, http.MethodDelete, "", "doomed-post")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Blog deleted successfully.", decodeBody(t, rec)["message"])

	_, err := h.h.Repo.BlogBySlug(context.Background(), "doomed-post")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	rec = h.doAuthedJSON(t, h.h.Remove, http.MethodDelete, "", "doomed-post")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSmartTrim(t *testing.T) {
	assert.Equal(t, "short", smartTrim("short", 320))

	long := strings.Repeat("word ", 100)
	trimmed := smartTrim(long, 50)
	assert.LessOrEqual(t, len(trimmed), 54)
	assert.True(t, strings.HasSuffix(trimmed, " ..."))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("<p>plain <b>text</b></p>"))
}

func TestUserUpdate_AllowList(t *testing.T) {
	h := newBlogHarness(t)
	uh := &UserHTTP{Repo: h.h.Repo}

	rec := h.doAuthedJSON(t, uh.Update, http.MethodPut,
		`{"username":"New Name!","about":"hello","role":"admin","email":"evil@x.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := h.h.Repo.UserByID(context.Background(), h.author.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-name", user.Username)
	assert.Equal(t, "hello", user.About)

	// role and email are pinned regardless of what the body claims
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "ada@x.com", user.Email)
}

func TestUserUpdate_Validation(t *testing.T) {
	h := newBlogHarness(t)
	uh := &UserHTTP{Repo: h.h.Repo}

	rec := h.doAuthedJSON(t, uh.Update, http.MethodPut,
		`{"username":"way-too-long-username"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username should be less than 12 characters long", decodeBody(t, rec)["error"])

	rec = h.doAuthedJSON(t, uh.Update, http.MethodPut, `{"password":"abc"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be a minimum of 6 characters long", decodeBody(t, rec)["error"])
}
