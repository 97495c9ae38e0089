// Package router registers the HTTP routes and their middleware.
package router

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/handler"
	"github.com/orablu/space-adoption/internal/middleware"
	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/storage"
)

// Options carries the cross-cutting settings the routes need.
type Options struct {
	AdminAuth      bool
	JWTSecret      string
	Cache          config.CacheConfig
	RateLimit      config.RateLimitConfig
	Redis          *redis.Client // nil disables cache and rate limit
	UploadMaxBytes int64
	RequestTimeout time.Duration
}

// Handlers bundles the route handlers.
type Handlers struct {
	Spaces    *handler.SpaceHandler
	Adoptions *handler.AdoptionHandler
	Media     *handler.MediaHandler
	Stats     *handler.StatsHandler
	Auth      *handler.AuthHandler
	Pages     handler.Pages
}

// New returns an echo instance with the global middleware and every route
// registered.
func New(h Handlers, uploadDir string, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(echomw.CORS())
	if opt.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(opt.RequestTimeout))
	}

	RegisterRoutes(e, h.Pages, uploadDir)
	RegisterAuth(e, h.Auth)
	RegisterPublic(e, h, opt)
	RegisterAdmin(e, h, opt)
	return e
}

// RegisterRoutes registers the health check, the pages and the uploads
// mount.
func RegisterRoutes(e *echo.Echo, p handler.Pages, uploadDir string) {
	e.GET("/healthz", handler.Health)
	e.GET("/", p.Index)
	e.GET("/admin", p.Admin)
	e.Static(storage.URLPrefix, uploadDir)
}

// RegisterAuth registers the admin login.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/api/admin/login", a.Login)
}

// RegisterPublic registers the endpoints sponsors use.  Catalog and media
// reads are cached; the adoption form is rate limited and drops the
// catalog cache once it succeeds.  Stats are never cached.
func RegisterPublic(e *echo.Echo, h Handlers, opt Options) {
	cacheSpaces := middleware.NewRedisCache(opt.Cache, opt.Redis, middleware.GroupSpaces)
	cacheMedia := middleware.NewRedisCache(opt.Cache, opt.Redis, middleware.GroupMedia)

	e.GET("/api/spaces", h.Spaces.List, cacheSpaces)
	e.GET("/api/spaces/:id", h.Spaces.Get, cacheSpaces)
	e.POST("/api/spaces/:id/adopt", h.Spaces.Adopt,
		middleware.NewTokenBucket(opt.RateLimit, opt.Redis),
		uploadLimit(opt),
		middleware.InvalidateOnSuccess(opt.Cache, opt.Redis, middleware.GroupSpaces))
	e.GET("/api/stats", h.Stats.Get)
	e.GET("/api/media", h.Media.Get, cacheMedia)
}

// RegisterAdmin registers the dashboard endpoints.  When admin auth is
// enabled they require an ADMIN access token.
func RegisterAdmin(e *echo.Echo, h Handlers, opt Options) {
	var guard []echo.MiddlewareFunc
	if opt.AdminAuth {
		guard = append(guard, middleware.JWTAuth(opt.JWTSecret), middleware.RequireRole(model.RoleAdmin))
	}
	with := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, guard...), extra...)
	}
	spacesChanged := middleware.InvalidateOnSuccess(opt.Cache, opt.Redis, middleware.GroupSpaces)
	mediaChanged := middleware.InvalidateOnSuccess(opt.Cache, opt.Redis, middleware.GroupMedia)

	e.PUT("/api/spaces/:id/image", h.Spaces.SetImage, with(uploadLimit(opt), spacesChanged)...)
	e.POST("/api/spaces/:id/image", h.Spaces.SetImage, with(uploadLimit(opt), spacesChanged)...)

	// The catalog embeds each space's adoption, so adoption edits drop it too.
	e.GET("/api/adoptions", h.Adoptions.List, with()...)
	e.PUT("/api/adoptions/:id/status", h.Adoptions.UpdateStatus, with(spacesChanged)...)
	e.PUT("/api/adoptions/:id/notes", h.Adoptions.UpdateNotes, with(spacesChanged)...)

	e.POST("/api/media/logo", h.Media.SetLogo, with(uploadLimit(opt), mediaChanged)...)
	e.POST("/api/media/carousel", h.Media.AddCarousel, with(uploadLimit(opt), mediaChanged)...)
	e.DELETE("/api/media/carousel/:id", h.Media.RemoveCarousel, with(mediaChanged)...)
}

// uploadLimit caps the whole request body: one file at the per-file
// ceiling plus room for the other form fields.
func uploadLimit(opt Options) echo.MiddlewareFunc {
	limit := opt.UploadMaxBytes + 1<<20
	if opt.UploadMaxBytes <= 0 {
		limit = 6 << 20
	}
	return echomw.BodyLimit(fmt.Sprintf("%dB", limit))
}
