package httpserver

import (
	"errors"
	"net/http"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"

	"github.com/voxeterna/blog-api/internal/models"
	"github.com/voxeterna/blog-api/internal/repo"
)

type CategoryHTTP struct {
	Repo *repo.Store
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "Name is required")
	}

	category := &models.Category{Name: req.Name, Slug: slug.Make(req.Name)}
	if err := h.Repo.CreateCategory(c.Request().Context(), category); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHTTP) List(c echo.Context) error {
	categories, err := h.Repo.Categories(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, categories)
}

// Read returns the category together with the blogs filed under it.
func (h *CategoryHTTP) Read(c echo.Context) error {
	ctx := c.Request().Context()

	category, err := h.Repo.CategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Category not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	blogs, err := h.Repo.BlogsByCategory(ctx, category)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"category": category, "blogs": blogs})
}

func (h *CategoryHTTP) Remove(c echo.Context) error {
	if err := h.Repo.DeleteCategoryBySlug(c.Request().Context(), c.Param("slug")); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}

type TagHTTP struct {
	Repo *repo.Store
}

func (h *TagHTTP) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "Name is required")
	}

	tag := &models.Tag{Name: req.Name, Slug: slug.Make(req.Name)}
	if err := h.Repo.CreateTag(c.Request().Context(), tag); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, tag)
}

func (h *TagHTTP) List(c echo.Context) error {
	tags, err := h.Repo.Tags(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHTTP) Read(c echo.Context) error {
	ctx := c.Request().Context()

	tag, err := h.Repo.TagBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Tag not found")
		}
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	blogs, err := h.Repo.BlogsByTag(ctx, tag)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"tag": tag, "blogs": blogs})
}

func (h *TagHTTP) Remove(c echo.Context) error {
	if err := h.Repo.DeleteTagBySlug(c.Request().Context(), c.Param("slug")); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Tag deleted successfully"})
}
