package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"insightengine/db"
	"insightengine/internal/evaluation"
	"insightengine/models"
	"insightengine/services"

	"github.com/gin-gonic/gin"
)

var (
	reportCache *evaluation.ReportCache
	rateLimiter *evaluation.RateLimiter
	rateLimits  evaluation.RateLimitConfig
)

// InitEvaluationController wires the optional Redis-backed cache and rate
// limiter. Call after InitRedis; a no-op when Redis is disabled.
func InitEvaluationController(cacheTTL time.Duration) {
	if !evaluation.Enabled() {
		return
	}
	reportCache = evaluation.NewReportCache(cacheTTL)
	rateLimiter = evaluation.NewRateLimiter()
	rateLimits = evaluation.DefaultRateLimitConfig()
}

// EvaluateRequest is the payload for POST /evaluate
type EvaluateRequest struct {
	Text  string `json:"text" binding:"required"`
	Title string `json:"title"`
}

// EvaluateArticle runs the four-dimension evaluation and returns the report
func EvaluateArticle(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if rateLimiter != nil {
		allowed, err := rateLimiter.CheckEvaluationRateLimit(c.ClientIP(), rateLimits)
		if err != nil {
			log.Printf("rate limiter unavailable, allowing request: %v", err)
		} else if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Evaluation rate limit exceeded, try again later"})
			return
		}
	}

	if reportCache != nil {
		if report, ok := reportCache.Get(req.Text, req.Title); ok {
			c.JSON(http.StatusOK, report)
			return
		}
	}

	if rateLimiter != nil {
		if err := rateLimiter.RecordEvaluation(c.ClientIP(), rateLimits); err != nil {
			log.Printf("failed to record evaluation for rate limiting: %v", err)
		}
	}

	report, err := services.EvaluateArticle(c.Request.Context(), req.Text, req.Title)
	if err != nil {
		if errors.Is(err, models.ErrEmptyArticle) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate article"})
		return
	}

	if db.Connected() {
		if id, err := db.SaveEvaluation(c.Request.Context(), report); err == nil {
			report.ID = id
		} else {
			log.Printf("failed to persist evaluation: %v", err)
		}
	}

	if reportCache != nil {
		if err := reportCache.Set(req.Text, req.Title, report); err != nil {
			log.Printf("failed to cache evaluation: %v", err)
		}
	}

	c.JSON(http.StatusOK, report)
}

// ListEvaluations returns the most recent stored reports
func ListEvaluations(c *gin.Context) {
	if !db.Connected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report history is not configured"})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	reports, err := db.ListEvaluations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list evaluations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": reports})
}

// GetEvaluation returns one stored report by id
func GetEvaluation(c *gin.Context) {
	if !db.Connected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report history is not configured"})
		return
	}

	report, err := db.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
