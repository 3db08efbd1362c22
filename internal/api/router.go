package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/workhive/marketplace-api/docs"
	"github.com/workhive/marketplace-api/internal/api/handler"
	"github.com/workhive/marketplace-api/internal/api/middleware"
	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
	"github.com/workhive/marketplace-api/internal/infrastructure/http/handlers"
)

// Deps is everything the router needs. All fields except CORSOrigins,
// Checkers, Registerer and Gatherer are required.
type Deps struct {
	Log          zerolog.Logger
	Tokens       middleware.TokenVerifier
	Auth         ports.AuthService
	Jobs         ports.JobService
	Moderation   ports.ModerationService
	Assets       ports.AssetService
	Restrictions middleware.RestrictionChecker
	Cookies      *middleware.Cookies

	CORSOrigins []string
	Checkers    map[string]handlers.Checker

	// Registerer and Gatherer default to the global prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Route policies.
var (
	anyIdentity = middleware.Policy{}
	workers     = middleware.Policy{Roles: []domain.Role{domain.RoleWorker}}
	businesses  = middleware.Policy{Roles: []domain.Role{domain.RoleBusiness}}
	staff       = middleware.Policy{Roles: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}}

	jobPosters = middleware.Policy{
		Roles:     []domain.Role{domain.RoleBusiness},
		Forbidden: []domain.RestrictionKind{domain.RestrictPostJobs},
	}
	jobApplicants = middleware.Policy{
		Roles:     []domain.Role{domain.RoleWorker},
		Forbidden: []domain.RestrictionKind{domain.RestrictApplyJobs},
	}
	uploaders = middleware.Policy{
		Forbidden: []domain.RestrictionKind{domain.RestrictUploadAssets},
	}
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if len(d.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders: []string{
				echo.HeaderContentType,
				middleware.HeaderClient,
				middleware.HeaderClientAccess,
				middleware.HeaderClientRefresh,
				middleware.HeaderRefreshToken,
			},
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "marketplace",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(d.Tokens, d.Auth, d.Cookies, d.Log))

	gate := func(p middleware.Policy) echo.MiddlewareFunc {
		return middleware.Authorize(p, d.Restrictions)
	}

	// --- Auth ---
	auth := handler.NewAuthHandler(d.Auth, d.Cookies)
	e.POST("/sign-up", auth.SignUp)
	e.POST("/sign-in", auth.SignIn)
	e.PUT("/refresh", auth.Refresh)
	e.GET("/logout", auth.Logout)
	e.POST("/otp", auth.RequestOTP)
	e.POST("/reset-password", auth.ResetPassword)
	e.GET("/is-authenticated", auth.IsAuthenticated, gate(anyIdentity))
	e.GET("/delete-account", auth.DeleteAccount, gate(anyIdentity))
	e.PUT("/password-recovery", auth.PasswordRecovery, gate(anyIdentity))
	e.GET("/me", auth.Me, gate(anyIdentity))
	e.PUT("/switch-profile", auth.SwitchProfile, gate(anyIdentity))

	// --- Jobs & applications ---
	jobs := handler.NewJobHandler(d.Jobs)
	e.GET("/jobs", jobs.List)
	e.GET("/jobs/:id", jobs.Get)
	e.POST("/jobs", jobs.Create, gate(jobPosters))
	e.PATCH("/jobs/:id/status", jobs.SetStatus, gate(businesses))
	e.POST("/jobs/:id/applications", jobs.Apply, gate(jobApplicants))
	e.GET("/jobs/:id/applications", jobs.ListApplications, gate(businesses))
	e.GET("/applications/me", jobs.MyApplications, gate(workers))

	// --- Moderation ---
	moderation := handler.NewModerationHandler(d.Moderation)
	admin := e.Group("/admin/identities/:id", gate(staff))
	admin.GET("/restrictions", moderation.ListRestrictions)
	admin.POST("/restrictions", moderation.AddRestriction)
	admin.DELETE("/restrictions/:kind", moderation.RemoveRestriction)
	admin.PATCH("/suspension", moderation.SetSuspension)
	admin.GET("/events", moderation.SecurityEvents)

	// --- Assets ---
	assets := handler.NewAssetHandler(d.Assets)
	e.POST("/uploads/url", assets.UploadURL, gate(uploaders))
	e.GET("/uploads/url", assets.RetrievalURL, gate(anyIdentity))

	// --- Ops (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checkers)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	return e
}
