package routes

import (
	"insightengine/controllers"

	"github.com/gin-gonic/gin"
)

func SetupEvaluationRoutes(router *gin.RouterGroup) {
	router.POST("/evaluate", controllers.EvaluateArticle)
	router.GET("/evaluations", controllers.ListEvaluations)
	router.GET("/evaluations/:id", controllers.GetEvaluation)
}
