package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/app/services"
	"github.com/edustack/communityhub/internal/middleware"
	"github.com/edustack/communityhub/internal/pkg/helpers"
)

// FeedController handles community feed operations
type FeedController struct {
	feedService services.FeedService
	logger      zerolog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(feedService services.FeedService, logger zerolog.Logger) *FeedController {
	return &FeedController{
		feedService: feedService,
		logger:      logger,
	}
}

// CreatePost handles publishing a post to a community feed
// @Summary Create a post
// @Description Publishes a post to the community feed. Members only. An original post carries a caption, a content file, or both; a repost references an existing post in the same community instead.
// @Tags feed
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param caption formData string false "Post caption"
// @Param originalPostId formData int false "ID of the post being reposted"
// @Param content formData file false "Content file"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse} "Post created"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 422 {object} dto.ErrorResponse "Post content rules violated"
// @Router /community/{id}/post [post]
func (c *FeedController) CreatePost(ctx *gin.Context) {
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

	var req dto.CreatePostRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid post creation payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	contentFile, _ := ctx.FormFile("content")

	response, err := c.feedService.CreatePost(ctx.Request.Context(), actor, communityID, &req, contentFile)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// DeletePost handles removing a post from a community feed
// @Summary Delete a post
// @Description Removes a post. Allowed for the post's author and for community admins. Comments and likes are removed with the post; reposts of it survive with their reference cleared.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param pid path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Post deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the author or an admin"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /community/{id}/post/{pid} [delete]
func (c *FeedController) DeletePost(ctx *gin.Context) {
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

	if err := c.feedService.DeletePost(ctx.Request.Context(), actor, communityID, postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Post deleted successfully"}))
}

// ListPosts handles retrieving a community's feed
// @Summary List posts
// @Description Retrieves a page of the community feed with like counts, the caller's like state and threaded comments. Members only.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param page query int false "Page number (1-based)" default(1)
// @Param pageSize query int false "Page size (default 10, max 100)" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts retrieved"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /community/{id}/posts [get]
func (c *FeedController) ListPosts(ctx *gin.Context) {
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

	page, pageSize := helpers.ParsePaginationParams(ctx)

	response, err := c.feedService.ListPosts(ctx.Request.Context(), actor, communityID, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
