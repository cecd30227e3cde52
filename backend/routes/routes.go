package routes

import (
	"devprep/backend/app"
	"devprep/backend/controllers"
	"devprep/backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(router *fiber.App, a *app.App) {
	// Middleware
	authMiddleware := middleware.AuthMiddleware(a.Cfg)
	adminMiddleware := middleware.AdminMiddleware(a.Cfg)

	// Question catalogue
	questionsController := controllers.NewQuestionsController(a.Repos.Questions)
	questions := router.Group("/api/questions", authMiddleware)
	questions.Get("/", questionsController.ListQuestions)
	questions.Get("/:id", questionsController.GetQuestion)

	// Progress routes
	progressController := controllers.NewProgressController(a)
	questions.Post("/:id/progress", progressController.RecordProgress)

	progress := router.Group("/api/progress", authMiddleware)
	progress.Get("/stats", progressController.GetStats)
	progress.Get("/activity", progressController.GetActivity)
	progress.Get("/questions", progressController.GetQuestionProgress)

	// Admin routes
	statsController := controllers.NewStatsController(a.Recomputer)
	admin := router.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/questions", questionsController.CreateQuestion)
	admin.Post("/stats/recalculate", statsController.RecalculateStats)
}
