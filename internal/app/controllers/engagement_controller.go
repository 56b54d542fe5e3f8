package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/app/services"
	"github.com/edustack/communityhub/internal/middleware"
)

// EngagementController handles likes and comments on posts
type EngagementController struct {
	engagementService services.EngagementService
	logger            zerolog.Logger
}

// NewEngagementController creates a new EngagementController
func NewEngagementController(engagementService services.EngagementService, logger zerolog.Logger) *EngagementController {
	return &EngagementController{
		engagementService: engagementService,
		logger:            logger,
	}
}

// ToggleLike handles liking and unliking a post
// @Summary Toggle a like
// @Description Flips the caller's like on a post. A first call likes, a second unlikes. Members only.
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param pid path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeToggleResponse} "Like state toggled"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /community/{id}/post/{pid}/like [post]
func (c *EngagementController) ToggleLike(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	communityID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}
	postID, err := parseIDParam(ctx, "pid")
	if err != nil {
		return
	}

	response, err := c.engagementService.ToggleLike(ctx.Request.Context(), actor, communityID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// AddComment handles commenting on a post
// @Summary Add a comment
// @Description Attaches a comment to a post, optionally as a reply to another comment on the same post. Members only.
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param pid path int true "Post ID"
// @Param request body dto.AddCommentRequest true "Comment content"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse} "Comment created"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 422 {object} dto.ErrorResponse "Invalid content or parent comment"
// @Router /community/{id}/post/{pid}/comment [post]
func (c *EngagementController) AddComment(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	communityID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}
	postID, err := parseIDParam(ctx, "pid")
	if err != nil {
		return
	}

	var req dto.AddCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid comment payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	response, err := c.engagementService.AddComment(ctx.Request.Context(), actor, communityID, postID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}
