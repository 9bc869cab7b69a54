package handlers

import (
	"net/http"

	"github.com/edunite/exam-result-service/internal/cache"
	"github.com/edunite/exam-result-service/internal/repositories"
	"github.com/edunite/exam-result-service/internal/services"
	"github.com/edunite/exam-result-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	attemptHandler    *AttemptHandler
	statisticsHandler *StatisticsHandler
	reportHandler     *ReportHandler

	repo         repositories.Repository
	cacheManager *cache.CacheManager
}

func NewHandlerManager(
	attemptService services.AttemptService,
	statisticsService services.StatisticsService,
	reportService services.ReportService,
	exportService services.ExportService,
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:    NewAttemptHandler(attemptService, logger),
		statisticsHandler: NewStatisticsHandler(statisticsService, exportService, logger),
		reportHandler:     NewReportHandler(reportService, logger),
		repo:              repo,
		cacheManager:      cacheManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	{
		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:submission_id", hm.attemptHandler.GetAttempt)
			attempts.GET("/user/:user_id", hm.attemptHandler.GetUserAttempts)
		}

		exams := v1.Group("/exams")
		{
			exams.POST("/:exam_id/attempts", hm.attemptHandler.SubmitAttempt)
			exams.POST("/:exam_id/reports", hm.reportHandler.GenerateReport)
			exams.GET("/:exam_id/statistics", hm.statisticsHandler.GetStatistics)
			exams.GET("/:exam_id/leaderboard", hm.statisticsHandler.GetLeaderboard)
			exams.GET("/:exam_id/attempts/export", hm.statisticsHandler.ExportResults)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/:submission_id", hm.reportHandler.GetReport)
		}
	}
}

// healthCheck reports database and cache reachability. The cache being down
// degrades the response body but not the status: the service still serves
// requests without it.
func (hm *HandlerManager) healthCheck(c *gin.Context) {
	health := gin.H{
		"status":  "healthy",
		"service": "exam-result-service",
	}

	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "exam-result-service",
			"details": gin.H{"database": err.Error()},
		})
		return
	}
	health["database"] = "ok"

	if hm.cacheManager != nil {
		if err := hm.cacheManager.HealthCheck(c.Request.Context()); err != nil {
			health["cache"] = "unavailable"
		} else {
			health["cache"] = "ok"
		}
	}

	c.JSON(http.StatusOK, health)
}
