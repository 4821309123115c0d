package http

import (
	"context"
	"errors"
	"net/http"
	"signetic_scheduler/internal/entities"
	"signetic_scheduler/internal/infrastructure"

	"github.com/gin-gonic/gin"
)

// LocationOverrides stores geocoder overrides.
type LocationOverrides interface {
	Put(ctx context.Context, location string, coords entities.Coordinates) error
}

type Handler struct {
	registry  *infrastructure.SessionRegistry
	limiter   *infrastructure.MessageRateLimiter
	overrides LocationOverrides
	channels  []string
}

// NewHandler builds the plain HTTP handlers. overrides may be nil, in which
// case the geocoder route is not registered.
func NewHandler(registry *infrastructure.SessionRegistry, limiter *infrastructure.MessageRateLimiter, overrides LocationOverrides, channels []string) *Handler {
	return &Handler{
		registry:  registry,
		limiter:   limiter,
		overrides: overrides,
		channels:  channels,
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, chat *ChatHandler, apiLimiter *infrastructure.MessageRateLimiter) {
	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20))
	r.Use(CORS())

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(RateLimitPerIP(apiLimiter))
	{
		api.GET("/chat/ws/:client_id", chat.HandleWebSocket)
		api.GET("/chat/stats", h.GetStats)

		if h.overrides != nil {
			api.PUT("/geocoder/locations/:name", h.PutLocation)
		}
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Signetic AI Scheduler API"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GetStats returns live session statistics
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_sessions": h.registry.Count(),
		"rate_limiter":    h.limiter.GetStats(),
		"channels":        h.channels,
	})
}

// PutLocation stores or replaces a geocoder override
func (h *Handler) PutLocation(c *gin.Context) {
	name := c.Param("name")
	if !ValidLocationName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location name"})
		return
	}

	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	coords := entities.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.overrides.Put(c.Request.Context(), name, coords); err != nil {
		if errors.Is(err, infrastructure.ErrInvalidCoordinates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": name, "latitude": coords.Latitude, "longitude": coords.Longitude})
}
