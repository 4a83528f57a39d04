package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/interfaces/http/handler"
	"github.com/jass/bff/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers are the HTTP handlers of the admin API
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	Organization *handler.OrganizationHandler
	Client       *handler.ClientHandler
	Payment      *handler.PaymentHandler
	Distribution *handler.DistributionHandler
	WaterBox     *handler.WaterBoxHandler
	Quality      *handler.QualityHandler
	Report       *handler.ReportHandler
}

// Guards protect the authenticated groups
type Guards struct {
	// Session loads the caller's session (middleware.SessionAuth)
	Session gin.HandlerFunc
	// Admin restricts /admin to administrators, middleware.RequireAdmin
	// when nil
	Admin gin.HandlerFunc
	// Docs guards /swagger (middleware.DocsAccess); the documentation is
	// not mounted when nil
	Docs gin.HandlerFunc
}

// Mount registers /health, /metrics, /swagger and the /api/v1 route table
// on engine. metrics may be nil.
func Mount(engine *gin.Engine, h Handlers, g Guards, metrics http.Handler) *Router {
	if g.Admin == nil {
		g.Admin = middleware.RequireAdmin()
	}

	engine.GET("/health", h.System.Health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}
	if g.Docs != nil {
		engine.GET("/swagger/*any", g.Docs, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(authRoutes(h, g)).
		Register(adminRoutes(h, g)).
		Register(commonRoutes(h, g))
	r.Setup()

	return r
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", h.Auth.Logout).
		GET("/me", g.Session, h.Auth.Me)
	return auth
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		Use(g.Session, middleware.SpanAttributes(), g.Admin)

	admin.Group("organizations", "/organizations").
		GET("", h.Organization.List).
		GET("/:id", h.Organization.Get).
		GET("/:id/zones", h.Organization.Zones)
	admin.Group("zones", "/zones").
		GET("/:id/streets", h.Organization.Streets)

	admin.Group("clients", "/clients").
		GET("", h.Client.List).
		GET("/:id", h.Client.Get).
		POST("", h.Client.Create).
		PUT("/:id", h.Client.Update).
		DELETE("/:id", h.Client.Delete)

	admin.Group("payments", "/payments").
		GET("", h.Payment.List).
		GET("/:id", h.Payment.Get).
		POST("", h.Payment.Create)
	admin.GET("/fares", h.Payment.Fares)

	admin.Group("distribution", "/distribution").
		GET("/routes", h.Distribution.Routes).
		GET("/schedules", h.Distribution.Schedules).
		GET("/programs", h.Distribution.Programs)

	admin.GET("/water-boxes", h.WaterBox.List)

	admin.Group("water-quality", "/water-quality").
		GET("/tests", h.Quality.Tests).
		GET("/chlorine", h.Quality.Chlorine)

	admin.Group("reports", "/reports").
		GET("/archive", h.Report.Archive).
		GET("/archive/:id/download", h.Report.Download).
		GET("/:kind", h.Report.Generate)

	return admin
}

func commonRoutes(h Handlers, g Guards) *DomainGroup {
	common := NewDomainGroup("common", "/common").
		Use(g.Session, middleware.SpanAttributes())
	common.GET("/reniec/:dni", h.Client.LookupDNI)
	return common
}
