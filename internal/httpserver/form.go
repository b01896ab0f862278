package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voxeterna/blog-api/internal/logging"
	"github.com/voxeterna/blog-api/internal/mailer"
)

type FormHTTP struct {
	Mailer  mailer.Mailer
	AppName string
	EmailTo string
}

func (h *FormHTTP) Contact(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if !strings.Contains(req.Email, "@") {
		return errorJSON(c, http.StatusUnprocessableEntity, "Must be a valid email address")
	}

	email := mailer.ContactEmail(h.AppName, h.EmailTo, req.Name, req.Email, req.Message)
	if err := h.Mailer.Send(ctx, email); err != nil {
		logging.FromContext(ctx).Error("contact_mail_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *FormHTTP) ContactBlogAuthor(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		AuthorEmail string `json:"authorEmail"`
		Name        string `json:"name"`
		Email       string `json:"email"`
		Message     string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if !strings.Contains(req.Email, "@") || !strings.Contains(req.AuthorEmail, "@") {
		return errorJSON(c, http.StatusUnprocessableEntity, "Must be a valid email address")
	}

	email := mailer.AuthorContactEmail(h.AppName, req.AuthorEmail, req.Name, req.Email, req.Message)
	if err := h.Mailer.Send(ctx, email); err != nil {
		logging.FromContext(ctx).Error("author_contact_mail_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
