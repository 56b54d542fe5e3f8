package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/edustack/communityhub/internal/app/controllers"
	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	communityController *controllers.CommunityController,
	feedController *controllers.FeedController,
	engagementController *controllers.EngagementController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Students and mentors reach the same handlers through their own
	// prefix; the auth middleware pins the token's actor kind to the
	// prefix it came in on.
	student := v1.Group("/student")
	student.Use(authMiddleware.ActorAuth(models.ActorKindStudent))
	registerActorRoutes(student, communityController, feedController, engagementController)

	mentor := v1.Group("/mentor")
	mentor.Use(authMiddleware.ActorAuth(models.ActorKindMentor))
	registerActorRoutes(mentor, communityController, feedController, engagementController)
}

func registerActorRoutes(
	group *gin.RouterGroup,
	communityController *controllers.CommunityController,
	feedController *controllers.FeedController,
	engagementController *controllers.EngagementController,
) {
	// Community listing and lifecycle
	group.GET("/communities", communityController.ListCommunities)

	community := group.Group("/community")
	{
		community.POST("/create", communityController.CreateCommunity)
		community.PUT("/update/:id", communityController.UpdateCommunity)
		community.DELETE("/delete/:id", communityController.DeleteCommunity)
		community.GET("/:id", communityController.GetCommunity)
		community.GET("/:id/members", communityController.GetCommunityMembers)

		// Membership
		community.POST("/:id/join", communityController.JoinCommunity)
		community.DELETE("/:id/leave", communityController.LeaveCommunity)

		// Feed
		community.POST("/:id/post", feedController.CreatePost)
		community.GET("/:id/posts", feedController.ListPosts)
		community.DELETE("/:id/post/:pid", feedController.DeletePost)

		// Engagement
		community.POST("/:id/post/:pid/like", engagementController.ToggleLike)
		community.POST("/:id/post/:pid/comment", engagementController.AddComment)
	}
}
