package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/cache"
	"github.com/Vihanga-02/EcoLife/internal/config"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
)

// Sentinel errors returned from transaction closures and mapped to HTTP
// statuses at the handler boundary.
var (
	errNotFound          = errors.New("not found")
	errInvalidTransition = errors.New("invalid transition")
	errForbidden         = errors.New("forbidden")
)

// apiError carries a human-readable message while unwrapping to one of the
// sentinels above.
type apiError struct {
	kind error
	msg  string
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.kind }

func notFoundErr(msg string) error          { return &apiError{errNotFound, msg} }
func invalidTransitionErr(msg string) error { return &apiError{errInvalidTransition, msg} }
func forbiddenErr(msg string) error         { return &apiError{errForbidden, msg} }

type Handlers struct {
	cfg   *config.Config
	cache *cache.Cache
	now   func() time.Time
}

func New(cfg *config.Config, c *cache.Cache) *Handlers {
	return &Handlers{cfg: cfg, cache: c, now: time.Now}
}

func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	protect := auth.Protect(h.cfg.JWTSecret)
	adminOnly := auth.AdminOnly()

	r.GET("/health", h.health)

	api := r.Group("/api")

	ar := api.Group("/auth")
	ar.POST("/register", h.register)
	ar.POST("/login", h.login)
	ar.GET("/me", protect, h.getMe)
	ar.PUT("/profile", protect, h.updateProfile)
	ar.POST("/register-admin", protect, adminOnly, h.registerAdmin)

	energy := api.Group("/energy", protect)
	energy.GET("/appliances", h.getMyAppliances)
	energy.POST("/appliances", h.addAppliance)
	energy.PUT("/appliances/:id", h.updateAppliance)
	energy.DELETE("/appliances/:id", h.deleteAppliance)
	energy.PATCH("/appliances/:id/toggle", h.toggleAppliance)
	energy.POST("/appliances/:id/reset-usage", h.resetApplianceUsage)
	energy.GET("/estimate-bill", h.estimateBill)
	energy.GET("/estimate-usage", h.estimateScheduleBill)
	energy.GET("/tariffs", h.getTariffs)
	energy.POST("/tariffs", adminOnly, h.createTariff)
	energy.PUT("/tariffs/:id", adminOnly, h.updateTariff)
	energy.DELETE("/tariffs/:id", adminOnly, h.deleteTariff)

	waste := api.Group("/waste", protect)
	waste.POST("", h.logWaste)
	waste.GET("", h.getMyWasteLogs)
	waste.GET("/analytics", h.getWasteAnalytics)
	waste.GET("/admin/all", adminOnly, h.adminGetAllWasteLogs)
	waste.GET("/:id", h.getWasteLogByID)
	waste.PUT("/:id", h.updateWasteLog)
	waste.DELETE("/:id", h.deleteWasteLog)

	market := api.Group("/marketplace")
	market.GET("/items", h.getAllItems)
	market.GET("/items/:id", h.getItemByID)
	market.POST("/items", protect, h.createItem)
	market.PUT("/items/:id", protect, h.updateItem)
	market.DELETE("/items/:id", protect, h.deleteItem)
	market.POST("/items/:id/claim", protect, h.claimItem)
	market.GET("/my-items", protect, h.getMyItems)
	market.GET("/transactions", protect, h.getMyTransactions)
	market.PATCH("/transactions/:id/review", protect, h.reviewTransaction)
	market.GET("/admin/all", protect, adminOnly, h.adminGetAllItems)

	recycling := api.Group("/recycling")
	recycling.GET("/centers", h.getAllCenters)
	recycling.GET("/centers/nearby", h.getNearbyCenters)
	recycling.GET("/centers/:id", h.getCenterByID)
	recycling.POST("/centers", protect, adminOnly, h.createCenter)
	recycling.PUT("/centers/:id", protect, adminOnly, h.updateCenter)
	recycling.DELETE("/centers/:id", protect, adminOnly, h.deleteCenter)
	recycling.POST("/submissions", protect, h.createSubmission)
	recycling.GET("/submissions/my", protect, h.getMySubmissions)
	recycling.GET("/submissions", protect, adminOnly, h.getAllSubmissions)
	recycling.PATCH("/submissions/:id/review", protect, adminOnly, h.reviewSubmission)

	admin := api.Group("/admin", protect, adminOnly)
	admin.GET("/stats", h.getDashboardStats)
	admin.GET("/users", h.getAllUsers)
	admin.GET("/users/:id", h.getUserByID)
	admin.PATCH("/users/:id/toggle-status", h.toggleUserStatus)
}

func (h *Handlers) health(c *gin.Context) {
	sqlDB, err := store.GetDB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "cache": h.cache.Enabled()})
}

func pageParams(c *gin.Context, defaultSize int) (page, pageSize int) {
	page = 1
	pageSize = defaultSize
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			pageSize = v
		}
	}
	return page, pageSize
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "message": msg})
}

// failFrom maps sentinel errors from a transaction closure onto the HTTP
// error taxonomy: 404 not found, 409 invalid transition, 403 forbidden.
func failFrom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errInvalidTransition):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, errForbidden):
		fail(c, http.StatusForbidden, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
