package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayflow/internal/infra/config"
	"stayflow/internal/infra/obs"
)

type PricingHTTP interface {
	SetWeekly(c *gin.Context)
	GetWeekly(c *gin.Context)
	SetOverrides(c *gin.Context)
	DeleteOverrides(c *gin.Context)
	Calendar(c *gin.Context)
	PublicCalendar(c *gin.Context)
}

type AvailabilityHTTP interface {
	GetRange(c *gin.Context)
	PublicRange(c *gin.Context)
	SetOne(c *gin.Context)
	SetMany(c *gin.Context)
}

type RatePlanHTTP interface {
	ListPrices(c *gin.Context)
	SetPrice(c *gin.Context)
	DeletePrice(c *gin.Context)
	BulkSetPrices(c *gin.Context)
	BulkDeletePrices(c *gin.Context)
	PriceStatistics(c *gin.Context)
	PriceGaps(c *gin.Context)
	CopyPrices(c *gin.Context)
	ExportPrices(c *gin.Context)
	BookingOptions(c *gin.Context)
}

type Handlers struct {
	Pricing        PricingHTTP
	Availability   AvailabilityHTTP
	RatePlan       RatePlanHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Pricing != nil {
		api.GET("/properties/:id/calendar", h.Pricing.PublicCalendar)
	}
	if h.Availability != nil {
		api.GET("/properties/:id/availability", h.Availability.PublicRange)
	}
	if h.RatePlan != nil {
		api.GET("/properties/:id/booking-options", h.RatePlan.BookingOptions)
	}

	if h.Pricing != nil || h.Availability != nil {
		hostProps := api.Group("/host/properties/:id")
		if h.Pricing != nil {
			hostProps.PUT("/pricing/weekly", h.Pricing.SetWeekly)
			hostProps.GET("/pricing/weekly", h.Pricing.GetWeekly)
			hostProps.POST("/pricing/overrides", h.Pricing.SetOverrides)
			hostProps.DELETE("/pricing/overrides", h.Pricing.DeleteOverrides)
			hostProps.GET("/pricing/calendar", h.Pricing.Calendar)
		}
		if h.Availability != nil {
			hostProps.GET("/availability", h.Availability.GetRange)
			hostProps.PUT("/availability", h.Availability.SetOne)
			hostProps.POST("/availability/bulk", h.Availability.SetMany)
		}
	}
	if h.RatePlan != nil {
		hostPlans := api.Group("/host/rate-plans/:id/prices")
		hostPlans.GET("", h.RatePlan.ListPrices)
		hostPlans.POST("", h.RatePlan.SetPrice)
		hostPlans.DELETE("/bulk", h.RatePlan.BulkDeletePrices)
		hostPlans.POST("/bulk", h.RatePlan.BulkSetPrices)
		hostPlans.GET("/statistics", h.RatePlan.PriceStatistics)
		hostPlans.GET("/gaps", h.RatePlan.PriceGaps)
		hostPlans.POST("/copy", h.RatePlan.CopyPrices)
		hostPlans.POST("/export", h.RatePlan.ExportPrices)
		hostPlans.DELETE("/:date", h.RatePlan.DeletePrice)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
