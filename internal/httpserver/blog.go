package httpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/voxeterna/blog-api/internal/logging"
	"github.com/voxeterna/blog-api/internal/middleware"
	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/mykafka"
	"github.com/voxeterna/blog-api/internal/repo"
	"github.com/voxeterna/blog-api/internal/service/search"
	"github.com/voxeterna/blog-api/internal/util"
)

const (
	excerptLength  = 320
	metaDescLength = 160
)

var htmlStripper = bluemonday.StrictPolicy()

type BlogHTTP struct {
	Repo     *repo.Store
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
	AppName  string
}

type blogRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Categories []uint `json:"categories"`
	Tags       []uint `json:"tags"`
	Photo      string `json:"photo"` // base64
	PhotoType  string `json:"photo_type"`
}

func (h *BlogHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	profile := c.Get(middleware.CtxProfile).(*models.User)

	var req blogRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return errorJSON(c, http.StatusBadRequest, "Title is required")
	}
	if len(req.Body) < 200 {
		return errorJSON(c, http.StatusBadRequest, "Content is too short")
	}
	if len(req.Categories) == 0 {
		return errorJSON(c, http.StatusBadRequest, "At least one category is required")
	}
	if len(req.Tags) == 0 {
		return errorJSON(c, http.StatusBadRequest, "At least one tag is required")
	}

	categories, err := h.Repo.CategoriesByID(ctx, req.Categories)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	tags, err := h.Repo.TagsByID(ctx, req.Tags)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	blog := &models.Blog{
		Title:      req.Title,
		Slug:       slug.Make(req.Title),
		Body:       req.Body,
		Excerpt:    smartTrim(req.Body, excerptLength),
		MetaTitle:  fmt.Sprintf("%s | %s", req.Title, h.AppName),
		MetaDesc:   stripHTML(truncate(req.Body, metaDescLength)),
		PostedByID: profile.ID,
		PostedBy:   *profile,
		Categories: categories,
		Tags:       tags,
	}
	if err := decodePhoto(req.Photo, req.PhotoType, &blog.Photo, &blog.PhotoType); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Image could not upload")
	}

	if err := h.Repo.CreateBlog(ctx, blog); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	h.publish(c, map[string]any{"type": "blog_created", "blogID": blog.ID, "slug": blog.Slug, "userID": profile.ID})
	h.index(ctx, blog)

	return c.JSON(http.StatusCreated, blog)
}

func (h *BlogHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()

	blog, err := h.Repo.BlogBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Blog not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	var req blogRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	// the slug is stable across updates so shared links keep working
	if req.Title != "" {
		blog.Title = req.Title
		blog.MetaTitle = fmt.Sprintf("%s | %s", req.Title, h.AppName)
	}
	if req.Body != "" {
		if len(req.Body) < 200 {
			return errorJSON(c, http.StatusBadRequest, "Content is too short")
		}
		blog.Body = req.Body
		blog.Excerpt = smartTrim(req.Body, excerptLength)
		blog.MetaDesc = stripHTML(truncate(req.Body, metaDescLength))
	}
	if err := decodePhoto(req.Photo, req.PhotoType, &blog.Photo, &blog.PhotoType); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Image could not upload")
	}

	if err := h.Repo.SaveBlog(ctx, blog); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	if len(req.Categories) > 0 || len(req.Tags) > 0 {
		categories, err := h.Repo.CategoriesByID(ctx, req.Categories)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		tags, err := h.Repo.TagsByID(ctx, req.Tags)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		if err := h.Repo.ReplaceBlogTaxonomy(ctx, blog, categories, tags); err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		blog.Categories = categories
		blog.Tags = tags
	}

	h.publish(c, map[string]any{"type": "blog_updated", "blogID": blog.ID, "slug": blog.Slug})
	h.index(ctx, blog)

	return c.JSON(http.StatusOK, blog)
}

func (h *BlogHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	blog, err := h.Repo.BlogBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Blog not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	if err := h.Repo.DeleteBlogBySlug(ctx, blog.Slug); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	h.publish(c, map[string]any{"type": "blog_deleted", "blogID": blog.ID, "slug": blog.Slug})
	if h.ES != nil {
		if err := search.DeleteBlog(ctx, h.ES, h.ESIndex, blog.ID); err != nil {
			logging.FromContext(ctx).Error("search deindex error", "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Blog deleted successfully."})
}

func (h *BlogHTTP) Read(c echo.Context) error {
	blog, err := h.Repo.BlogBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Blog not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, blog)
}

func (h *BlogHTTP) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	blogs, total, err := h.Repo.Blogs(c.Request().Context(), offset, limit)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"data": blogs, "total": total})
}

// ListAll returns blogs plus the full category and tag lists in a single
// response for the landing page.
func (h *BlogHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Limit int `json:"limit"`
		Skip  int `json:"skip"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Limit <= 0 {
		req.Limit = util.DefaultPageSize
	}

	blogs, _, err := h.Repo.Blogs(ctx, req.Skip, req.Limit)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	categories, err := h.Repo.Categories(ctx)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	tags, err := h.Repo.Tags(ctx)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"blogs":      blogs,
		"categories": categories,
		"tags":       tags,
		"size":       len(blogs),
	})
}

func (h *BlogHTTP) Related(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Slug  string `json:"slug"`
		Limit int    `json:"limit"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Limit <= 0 {
		req.Limit = 3
	}

	blog, err := h.Repo.BlogBySlug(ctx, req.Slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Blog not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	related, err := h.Repo.RelatedBlogs(ctx, blog, req.Limit)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Blogs not found")
	}
	return c.JSON(http.StatusOK, related)
}

func (h *BlogHTTP) Photo(c echo.Context) error {
	blog, err := h.Repo.BlogBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil || len(blog.Photo) == 0 {
		return errorJSON(c, http.StatusNotFound, "Photo not found")
	}
	return c.Blob(http.StatusOK, blog.PhotoType, blog.Photo)
}

func (h *BlogHTTP) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "blog_events", fmt.Sprint(event["blogID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// index is best-effort: a search outage never fails a write.
func (h *BlogHTTP) index(ctx context.Context, blog *models.Blog) {
	if h.ES == nil {
		return
	}
	if err := search.IndexBlog(ctx, h.ES, h.ESIndex, blog); err != nil {
		logging.FromContext(ctx).Error("search index error", "error", err)
	}
}

func smartTrim(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + " ..."
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func stripHTML(s string) string {
	return htmlStripper.Sanitize(s)
}

func decodePhoto(data, contentType string, photo *[]byte, photoType *string) error {
	if data == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return err
	}
	if len(raw) > 2_000_000 {
		return errors.New("image should be less than 2mb in size")
	}
	*photo = raw
	*photoType = contentType
	return nil
}
