// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/app/services"
	"github.com/edustack/communityhub/internal/middleware"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
	"github.com/edustack/communityhub/internal/pkg/helpers"
)

// CommunityController handles community related operations
type CommunityController struct {
	communityService services.CommunityService
	logger           zerolog.Logger
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService, logger zerolog.Logger) *CommunityController {
	return &CommunityController{
		communityService: communityService,
		logger:           logger,
	}
}

// CreateCommunity handles community creation
// @Summary Create a community
// @Description Creates a community and makes the caller its admin member. Accepts multipart form data with optional profile and cover photos.
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Community name"
// @Param description formData string false "Community description"
// @Param profilePhoto formData file false "Profile photo"
// @Param coverPhoto formData file false "Cover photo"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse} "Community created"
// @Failure 422 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /community/create [post]
func (c *CommunityController) CreateCommunity(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.CreateCommunityRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid community creation payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	profilePhoto, _ := ctx.FormFile("profilePhoto")
	coverPhoto, _ := ctx.FormFile("coverPhoto")

	response, err := c.communityService.Create(ctx.Request.Context(), actor, &req, profilePhoto, coverPhoto)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UpdateCommunity handles partial community updates
// @Summary Update a community
// @Description Updates community fields. Only members holding the admin role may update. Replacing a photo removes the previous file.
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse} "Community updated"
// @Failure 403 {object} dto.ErrorResponse "Not an admin of the community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 422 {object} dto.ErrorResponse "Invalid request format"
// @Router /community/update/{id} [put]
func (c *CommunityController) UpdateCommunity(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	var req dto.UpdateCommunityRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid community update payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	profilePhoto, _ := ctx.FormFile("profilePhoto")
	coverPhoto, _ := ctx.FormFile("coverPhoto")

	response, err := c.communityService.Update(ctx.Request.Context(), actor, id, &req, profilePhoto, coverPhoto)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// DeleteCommunity handles community deletion
// @Summary Delete a community
// @Description Deletes a community together with its memberships, posts, comments and likes. Only the creator may delete.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Community deleted"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the creator"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /community/delete/{id} [delete]
func (c *CommunityController) DeleteCommunity(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	if err := c.communityService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Community deleted successfully"}))
}

// GetCommunity handles retrieving a community's details
// @Summary Get community details
// @Description Retrieves a community together with creator information and the caller's membership state.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityDetailResponse} "Community retrieved"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /community/{id} [get]
func (c *CommunityController) GetCommunity(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	response, err := c.communityService.GetDetails(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ListCommunities handles retrieving communities with optional search
// @Summary List communities
// @Description Retrieves a page of communities, optionally filtered by a name search.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Param page query int false "Page number (1-based)" default(1)
// @Param pageSize query int false "Page size (default 10, max 100)" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.CommunityListResponse} "Communities retrieved"
// @Router /communities [get]
func (c *CommunityController) ListCommunities(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)

	filter := &dto.CommunityFilterRequest{
		Page:     page,
		PageSize: pageSize,
	}
	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	response, err := c.communityService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// JoinCommunity handles joining a community
// @Summary Join a community
// @Description Adds the caller as a regular member of the community. Joining twice is a conflict.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Joined the community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /community/{id}/join [post]
func (c *CommunityController) JoinCommunity(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	if err := c.communityService.Join(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Joined the community successfully"}))
}

// LeaveCommunity handles leaving a community
// @Summary Leave a community
// @Description Removes the caller's membership. The creator cannot leave their own community.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Left the community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Not a member, or caller is the creator"
// @Router /community/{id}/leave [delete]
func (c *CommunityController) LeaveCommunity(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	if err := c.communityService.Leave(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Left the community successfully"}))
}

// GetCommunityMembers handles retrieving a community's members
// @Summary Get community members
// @Description Retrieves the members of a community with their roles and join timestamps.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse} "Members retrieved"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /community/{id}/members [get]
func (c *CommunityController) GetCommunityMembers(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	response, err := c.communityService.Members(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// parseIDParam parses a positive int64 path parameter, writing the error
// response itself when parsing fails.
func parseIDParam(ctx *gin.Context, name string) (int64, error) {
	idStr := ctx.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		apiErr := apperrors.NewBadRequestError("Invalid " + name + " parameter")
		middleware.HandleAPIError(ctx, apiErr)
		return 0, apiErr
	}
	return id, nil
}
