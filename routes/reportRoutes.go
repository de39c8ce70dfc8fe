package routes

import (
	"os"
	"strconv"

	"urbanfix-be/controllers"
	"urbanfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ReportRoutes sets up the report routes
func ReportRoutes(r *gin.Engine) {
	createLimit := 10
	if v, err := strconv.Atoi(os.Getenv("REPORT_RATE_LIMIT")); err == nil && v > 0 {
		createLimit = v
	}

	reports := r.Group("/reports", middlewares.AuthMiddleware())
	{
		reports.POST("", middlewares.ReportRateLimiter(createLimit), controllers.CreateReport)
		reports.GET("", controllers.GetReports)
		reports.GET("/my-reports", controllers.GetMyReports)
		reports.GET("/statistics", controllers.GetStatistics)
		reports.GET("/top-reported", controllers.GetTopReported)
		reports.GET("/:id", controllers.GetReportByID)
		reports.POST("/:id/comments", controllers.AddComment)
		reports.PATCH("/:id/status", controllers.UpdateReportStatus)
		reports.POST("/:id/vote", controllers.VoteOnReport)
	}
}
