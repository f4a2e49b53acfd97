package matching

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taroc/schedule-service-sub002/utils"
)

type Handler struct {
	Service       *Service
	StatsCacheTTL time.Duration
}

func NewHandler(s *Service, statsCacheTTL time.Duration) *Handler {
	return &Handler{Service: s, StatsCacheTTL: statsCacheTTL}
}

// ===========================
// Check Event - POST /matching/events/:id/check
func (h *Handler) CheckEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	result, err := h.Service.CheckEventMatching(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ===========================
// Check All - POST /matching/check-all
func (h *Handler) CheckAllEvents(c *gin.Context) {
	batch, err := h.Service.CheckAllEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run batch matching"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ===========================
// Global Matching - POST /matching/global
func (h *Handler) GlobalMatching(c *gin.Context) {
	batch, err := h.Service.GlobalMatching(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run global matching"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ===========================
// Deadline Sweep - POST /matching/sweep
func (h *Handler) SweepExpiredEvents(c *gin.Context) {
	sweep, err := h.Service.SweepExpiredEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run deadline sweep"})
		return
	}

	c.JSON(http.StatusOK, sweep)
}

// ===========================
// Commit Selection - POST /matching/events/:id/commit
type commitSelectionRequest struct {
	Slots []Coordinate `json:"slots" binding:"required"`
}

func (h *Handler) CommitSelection(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	var req commitSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	result, err := h.Service.CommitSelection(c.Request.Context(), id, req.Slots)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if userID := c.GetUint("user_id"); userID != 0 {
		utils.InvalidateCache(c.Request.Context(), fmt.Sprintf("matching:stats:%d", userID))
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ===========================
// Stats - GET /matching/stats
//
// Partial degradation still answers 200 with the affected fields zeroed;
// only total store failure is a 500.
func (h *Handler) GetStats(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cacheKey := fmt.Sprintf("matching:stats:%d", userID)
	var cached StatsResponse
	if utils.GetCachedJSON(c.Request.Context(), cacheKey, &cached) {
		c.JSON(http.StatusOK, gin.H{"stats": cached, "cached": true})
		return
	}

	stats, err := h.Service.GetStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "statistics unavailable"})
		return
	}

	// degraded answers are not worth caching
	if len(stats.Degraded) == 0 {
		utils.CacheJSON(c.Request.Context(), cacheKey, stats, h.StatsCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func parseEventID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return uint(id), true
}
