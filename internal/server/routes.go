package server

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches every endpoint to the engine.
func RegisterRoutes(engine *gin.Engine, handlers *Handlers) {
	engine.GET("/", handlers.Root)
	engine.GET("/health", handlers.Health)
	engine.GET("/database/status", handlers.DatabaseStatus)
	engine.GET("/metrics", handlers.Metrics())

	engine.POST("/query", handlers.Query)
	engine.GET("/suggestions", handlers.Suggestions)
	engine.GET("/examples", handlers.Examples)

	fields := engine.Group("/fields")
	{
		fields.GET("/meanings", handlers.FieldMeanings)
		fields.GET("/:field/meaning", handlers.FieldMeaning)
	}

	engine.GET("/semantic/trend-values", handlers.TrendValues)

	trends := engine.Group("/trend")
	{
		trends.POST("/current/:symbol", handlers.TrendCurrent)
		trends.POST("/changes/:symbol", handlers.TrendChanges)
		trends.POST("/history/:symbol", handlers.TrendHistory)
		trends.POST("/analysis/:symbol", handlers.TrendAnalysis)
	}
}
