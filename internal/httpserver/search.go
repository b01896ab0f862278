package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/voxeterna/blog-api/internal/service/search"
	"github.com/voxeterna/blog-api/internal/util"
)

type SearchHTTP struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return errorJSON(c, http.StatusBadRequest, "query error")
	}
	if h.ES == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "search is not configured")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, blogs, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "blogs": blogs})
}
