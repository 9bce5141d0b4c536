package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"homestay/internal/infra/config"
	"homestay/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type PropertyHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadPhoto(c *gin.Context)
	Availability(c *gin.Context)
}

type ReviewHTTP interface {
	List(c *gin.Context)
	Submit(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Approve(c *gin.Context)
	Complete(c *gin.Context)
	Cancel(c *gin.Context)
	Mine(c *gin.Context)
}

type HostHTTP interface {
	Bookings(c *gin.Context)
	Export(c *gin.Context)
	Dashboard(c *gin.Context)
}

type AdminHTTP interface {
	Users(c *gin.Context)
	RecomputeRating(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Property       PropertyHTTP
	Review         ReviewHTTP
	Booking        BookingHTTP
	Host           HostHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, metrics *obs.Metrics, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	if metrics != nil {
		router.Use(metrics.Instrument())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Content-Disposition",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Property != nil {
		props := api.Group("/properties")
		props.GET("", h.Property.Search)
		props.POST("", h.Property.Create)
		props.GET("/:id", h.Property.Get)
		props.PATCH("/:id", h.Property.Update)
		props.DELETE("/:id", h.Property.Delete)
		props.POST("/:id/photos", h.Property.UploadPhoto)
		props.GET("/:id/availability", h.Property.Availability)
	}
	if h.Review != nil {
		api.GET("/properties/:id/reviews", h.Review.List)
		api.POST("/properties/:id/reviews", h.Review.Submit)
	}
	if h.Booking != nil {
		bookings := api.Group("/bookings")
		bookings.POST("", h.Booking.Create)
		bookings.GET("/:id", h.Booking.Get)
		bookings.POST("/:id/approve", h.Booking.Approve)
		bookings.POST("/:id/complete", h.Booking.Complete)
		bookings.POST("/:id/cancel", h.Booking.Cancel)
		api.GET("/me/bookings", h.Booking.Mine)
	}
	if h.Host != nil {
		host := api.Group("/host")
		host.GET("/bookings", h.Host.Bookings)
		host.GET("/bookings/export", h.Host.Export)
		host.GET("/dashboard", h.Host.Dashboard)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/users", h.Admin.Users)
		admin.POST("/properties/:id/rating/recompute", h.Admin.RecomputeRating)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
