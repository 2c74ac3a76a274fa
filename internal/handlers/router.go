package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	questionHandler  *QuestionHandler
	classHandler     *ClassHandler
	moderatorHandler *ModeratorHandler
	adminHandler     *AdminHandler
	authMiddleware   *SessionAuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sessions *auth.SessionStore,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	authMiddleware := NewSessionAuthMiddleware(sessions)

	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.User(), validator, logger),
		questionHandler:  NewQuestionHandler(serviceManager.Question(), validator, logger),
		classHandler:     NewClassHandler(serviceManager.Catalog(), logger),
		moderatorHandler: NewModeratorHandler(serviceManager.Catalog(), validator, logger),
		adminHandler:     NewAdminHandler(serviceManager.Admin(), serviceManager.User(), logger),
		authMiddleware:   authMiddleware,
		serviceManager:   serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Session resolution runs on every request; route groups below
	// decide whether an actor is required.
	router.Use(hm.authMiddleware.Middleware())

	api := router.Group("/api")
	{
		// Account routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", hm.authHandler.Register)
			authRoutes.POST("/login", hm.authHandler.Login)
			authRoutes.POST("/logout", hm.authMiddleware.RequireAuth(), hm.authHandler.Logout)
			authRoutes.GET("/me", hm.authMiddleware.RequireAuth(), hm.authHandler.Me)
			authRoutes.PUT("/profile", hm.authMiddleware.RequireAuth(), hm.authHandler.UpdateProfile)
			authRoutes.PUT("/avatar", hm.authMiddleware.RequireAuth(), hm.authHandler.UpdateAvatar)
		}

		// Public catalog routes
		api.GET("/classes", hm.classHandler.ListClasses)
		api.GET("/resources", hm.classHandler.ListResources)
		api.GET("/books", hm.classHandler.ListBooks)

		// Question routes
		questions := api.Group("/questions")
		{
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.GET("/:id/answers", hm.questionHandler.GetAnswers)

			questions.POST("", hm.authMiddleware.RequireAuth(), hm.questionHandler.CreateQuestion)
			questions.DELETE("/:id", hm.authMiddleware.RequireAuth(), hm.questionHandler.DeleteQuestion)
			questions.POST("/:id/answers", hm.authMiddleware.RequireAuth(), hm.questionHandler.PostAnswer)
			questions.POST("/:id/vote", hm.authMiddleware.RequireAuth(), hm.questionHandler.VoteQuestion)
			questions.POST("/:id/report", hm.authMiddleware.RequireAuth(), hm.questionHandler.ReportQuestion)
		}

		// Answer routes
		answers := api.Group("/answers")
		answers.Use(hm.authMiddleware.RequireAuth())
		{
			answers.DELETE("/:id", hm.questionHandler.DeleteAnswer)
			answers.POST("/:id/vote", hm.questionHandler.VoteAnswer)
			answers.POST("/:id/report", hm.questionHandler.ReportAnswer)
			answers.POST("/:id/verify", hm.questionHandler.VerifyAnswer)
		}

		// Moderator routes - moderators and admins only
		moderator := api.Group("/moderator")
		moderator.Use(hm.authMiddleware.RequireModerator())
		{
			moderator.POST("/classes", hm.moderatorHandler.CreateClass)
			moderator.PUT("/classes/:id", hm.moderatorHandler.UpdateClass)
			moderator.POST("/classes/:id/sections", hm.moderatorHandler.AddSection)
			moderator.DELETE("/classes/:id", hm.moderatorHandler.DeleteClass)

			moderator.POST("/resources", hm.moderatorHandler.CreateResource)
			moderator.PUT("/resources/:id", hm.moderatorHandler.UpdateResource)
			moderator.DELETE("/resources/:id", hm.moderatorHandler.DeleteResource)

			moderator.POST("/books", hm.moderatorHandler.CreateBook)
			moderator.PUT("/books/:id", hm.moderatorHandler.UpdateBook)
			moderator.DELETE("/books/:id", hm.moderatorHandler.DeleteBook)
		}

		// Admin routes - the console session endpoints are open, the
		// rest require the admin flag
		admin := api.Group("/admin")
		admin.POST("/login", hm.adminHandler.Login)
		admin.POST("/logout", hm.adminHandler.Logout)
		admin.GET("/session", hm.adminHandler.Session)
		admin.Use(hm.authMiddleware.RequireAdmin())
		{
			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.GET("/users/export", hm.adminHandler.ExportUsers)
			admin.DELETE("/users/:id", hm.adminHandler.DeleteUser)
			admin.POST("/users/:id/suspend", hm.adminHandler.SuspendUser)
			admin.POST("/users/:id/unsuspend", hm.adminHandler.UnsuspendUser)

			admin.GET("/moderators", hm.adminHandler.ListModerators)
			admin.POST("/moderators", hm.adminHandler.AddModerator)
			admin.PUT("/moderators/:id", hm.adminHandler.UpdateModerator)
			admin.DELETE("/moderators/:id", hm.adminHandler.RemoveModerator)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "qna-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "qna-service",
		})
	})
}
