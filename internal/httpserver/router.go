package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voxeterna/blog-api/internal/middleware"
)

type Deps struct {
	Auth     *AuthHTTP
	Blog     *BlogHTTP
	Category *CategoryHTTP
	Tag      *TagHTTP
	User     *UserHTTP
	Form     *FormHTTP
	Search   *SearchHTTP
	MW       *middleware.Auth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	// identity
	api.POST("/pre-signup", d.Auth.PreSignup)
	api.POST("/signup", d.Auth.Signup)
	api.POST("/signin", d.Auth.Signin)
	api.GET("/signout", d.Auth.Signout)
	api.PUT("/forgot-password", d.Auth.ForgotPassword)
	api.PUT("/reset-password", d.Auth.ResetPassword)
	api.POST("/google-login", d.Auth.GoogleLogin)

	signedIn := []echo.MiddlewareFunc{d.MW.RequireSignin, d.MW.AuthenticateUser}
	admin := append(append([]echo.MiddlewareFunc{}, signedIn...), d.MW.AdminOnly)
	owner := append(append([]echo.MiddlewareFunc{}, signedIn...), d.MW.CanUpdateDeleteBlog)

	// blogs
	api.POST("/blog", d.Blog.Create, admin...)
	api.PUT("/blog/:slug", d.Blog.Update, admin...)
	api.DELETE("/blog/:slug", d.Blog.Remove, admin...)
	api.GET("/blogs", d.Blog.List)
	api.POST("/blogs-categories-tags", d.Blog.ListAll)
	api.POST("/blogs/related", d.Blog.Related)
	api.GET("/blogs/search", d.Search.Search)
	api.GET("/blog/:slug", d.Blog.Read)
	api.GET("/blog/photo/:slug", d.Blog.Photo)

	// any signed-in user may publish; mutations gated on ownership
	api.POST("/user/blog", d.Blog.Create, signedIn...)
	api.PUT("/user/blog/:slug", d.Blog.Update, owner...)
	api.DELETE("/user/blog/:slug", d.Blog.Remove, owner...)

	// categories and tags
	api.POST("/category", d.Category.Create, admin...)
	api.GET("/categories", d.Category.List)
	api.GET("/category/:slug", d.Category.Read)
	api.DELETE("/category/:slug", d.Category.Remove, admin...)

	api.POST("/tag", d.Tag.Create, admin...)
	api.GET("/tags", d.Tag.List)
	api.GET("/tag/:slug", d.Tag.Read)
	api.DELETE("/tag/:slug", d.Tag.Remove, admin...)

	// profiles
	api.GET("/user/profile", d.User.Read, signedIn...)
	api.PUT("/user/update", d.User.Update, signedIn...)
	api.GET("/user/photo/:username", d.User.Photo)
	api.GET("/user/:username", d.User.PublicProfile)

	// contact forms
	api.POST("/contact", d.Form.Contact)
	api.POST("/contact-blog-author", d.Form.ContactBlogAuthor)
}
