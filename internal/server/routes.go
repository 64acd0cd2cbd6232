package server

import (
	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/handlers"
)

type routeHandlers struct {
	auth          *handlers.AuthHandler
	dailyLogs     *handlers.DailyLogHandler
	weeklyLogs    *handlers.WeeklyLogHandler
	todos         *handlers.TodoHandler
	learning      *handlers.LearningHandler
	finance       *handlers.FinanceHandler
	stats         *handlers.StatsHandler
	exports       *handlers.ExportHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
}

type routeMiddleware struct {
	auth        echo.MiddlewareFunc
	stream      echo.MiddlewareFunc
	admin       echo.MiddlewareFunc
	authLimiter echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware, db handlers.Pinger) {
	e.GET("/health", handlers.Health)
	e.GET("/ready", handlers.Ready(db))

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", mw.authLimiter)

	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me, mw.auth)
	authGroup.PATCH("/me", h.auth.UpdateMe, mw.auth)

	daily := api.Group("/daily-logs", mw.auth)
	daily.GET("", h.dailyLogs.List)
	daily.GET("/:date", h.dailyLogs.Get)
	daily.PUT("/:date", h.dailyLogs.Put)

	weekly := api.Group("/weekly-logs", mw.auth)
	weekly.GET("", h.weeklyLogs.List)
	weekly.GET("/:weekStart", h.weeklyLogs.Get)
	weekly.PUT("/:weekStart", h.weeklyLogs.Put)
	weekly.GET("/:weekStart/scores", h.weeklyLogs.Scores)
	weekly.GET("/:weekStart/export", h.exports.ExportWeekJSON)

	todos := api.Group("/todos", mw.auth)
	todos.GET("", h.todos.List)
	todos.PATCH("/:id/toggle", h.todos.Toggle)
	todos.DELETE("/:id", h.todos.Delete)

	learning := api.Group("/learning", mw.auth)
	learning.GET("/items", h.learning.List)
	learning.GET("/due", h.learning.Due)
	learning.GET("/stats", h.learning.Stats)
	learning.POST("/items/:id/review", h.learning.Review)
	learning.GET("/items/:id/preview", h.learning.Preview)
	learning.PATCH("/items/:id/suspend", h.learning.Suspend)
	learning.PATCH("/items/:id/unsuspend", h.learning.Unsuspend)

	expenses := api.Group("/expenses", mw.auth)
	expenses.GET("", h.finance.ListExpenses)
	expenses.POST("", h.finance.CreateExpense)
	expenses.PUT("/:id", h.finance.UpdateExpense)
	expenses.DELETE("/:id", h.finance.DeleteExpense)

	incomes := api.Group("/incomes", mw.auth)
	incomes.GET("", h.finance.ListIncomes)
	incomes.POST("", h.finance.CreateIncome)
	incomes.PUT("/:id", h.finance.UpdateIncome)
	incomes.DELETE("/:id", h.finance.DeleteIncome)

	api.GET("/budget-target", h.finance.GetBudgetTarget, mw.auth)
	api.PUT("/budget-target", h.finance.PutBudgetTarget, mw.auth)

	finance := api.Group("/finance", mw.auth)
	finance.GET("/summary", h.stats.Summary)
	finance.GET("/weekly-comparison", h.stats.WeeklyComparison)
	finance.GET("/export/csv", h.exports.ExportCSV)

	notifications := api.Group("/notifications", mw.stream)
	notifications.GET("/stream", h.notifications.Stream)

	admin := api.Group("/admin", mw.auth, mw.admin)
	admin.GET("/users", h.admin.ListUsers)
	admin.GET("/usage", h.admin.Usage)
}
