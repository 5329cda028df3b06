package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/alumlink/internal/app/controllers"
	"github.com/deniz/alumlink/internal/app/models"
	"github.com/deniz/alumlink/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	mentorshipController *controllers.MentorshipController,
	messageController *controllers.MessageController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Mentorship routes
	mentorship := authenticated.Group("/mentorship")
	{
		// Mentor directory, visible to every authenticated user
		mentorship.GET("/mentors", mentorshipController.ListMentors)

		// Mentors take on mentees in bulk
		mentorshipMentor := mentorship.Group("")
		mentorshipMentor.Use(authMiddleware.RoleRequired(string(models.RoleAlumni)))
		{
			mentorshipMentor.POST("/start", mentorshipController.StartMentorship)
		}

		// Admin-managed assignment lifecycle
		mentorshipAdmin := mentorship.Group("/admin")
		mentorshipAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			mentorshipAdmin.POST("/assign", mentorshipController.AssignMentor)
			mentorshipAdmin.POST("/unassign", mentorshipController.UnassignMentor)
			mentorshipAdmin.GET("/assignments", mentorshipController.ListAssignments)
		}

		// Messaging, mentors and students only
		messaging := mentorship.Group("")
		messaging.Use(authMiddleware.RoleRequired(string(models.RoleAlumni), string(models.RoleStudent)))
		{
			messaging.GET("/messages", messageController.GetMessages)
			messaging.POST("/messages", messageController.SendMessage)
			messaging.GET("/group-messages", messageController.GetGroupMessages)
			messaging.POST("/group-messages", messageController.SendGroupMessage)
			messaging.DELETE("/messages/:id", messageController.DeleteMessage)
			messaging.POST("/messages/:id/reactions", messageController.AddReaction)
			messaging.DELETE("/messages/:id/reactions", messageController.RemoveReaction)
		}
	}
}
