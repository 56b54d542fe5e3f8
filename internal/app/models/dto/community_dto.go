package dto

import (
	"time"

	"github.com/edustack/communityhub/internal/app/models"
)

// --- Request DTOs ---

// CreateCommunityRequest represents community creation data.
// Profile and cover photos arrive separately in the multipart form.
type CreateCommunityRequest struct {
	Name         string  `json:"name" form:"name" binding:"required,max=255"`
	Description  *string `json:"description,omitempty" form:"description"`
	DomainID     *int64  `json:"domainId,omitempty" form:"domainId"`
	SubdomainIDs []int64 `json:"subdomainIds,omitempty" form:"subdomainIds"`
}

// UpdateCommunityRequest represents a partial community update.
// Fields left nil are not touched.
type UpdateCommunityRequest struct {
	Name         *string `json:"name,omitempty" form:"name" binding:"omitempty,max=255"`
	Description  *string `json:"description,omitempty" form:"description"`
	DomainID     *int64  `json:"domainId,omitempty" form:"domainId"`
	SubdomainIDs []int64 `json:"subdomainIds,omitempty" form:"subdomainIds"`
}

// CommunityFilterRequest represents community filter parameters
type CommunityFilterRequest struct {
	Search   *string `form:"search,omitempty"`
	Page     int     `form:"page,default=1" binding:"min=1"`
	PageSize int     `form:"pageSize,default=10" binding:"min=1,max=100"`
}

// --- Response DTOs ---

// ActorResponse represents minimal actor information for embedding in responses
type ActorResponse struct {
	ID    int64  `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CreatorResponse extends ActorResponse with the creator's own join timestamp
type CreatorResponse struct {
	ActorResponse
	JoinedAt *time.Time `json:"joinedAt,omitempty"`
}

// CommunityResponse represents basic community information
type CommunityResponse struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Description     *string       `json:"description,omitempty"`
	ProfilePhotoURL *string       `json:"profilePhotoUrl,omitempty"`
	CoverPhotoURL   *string       `json:"coverPhotoUrl,omitempty"`
	Creator         ActorResponse `json:"creator"`
	DomainID        *int64        `json:"domainId,omitempty"`
	SubdomainIDs    []int64       `json:"subdomainIds,omitempty"`
	MemberCount     int           `json:"memberCount"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CommunityDetailResponse extends CommunityResponse with viewer-derived state
type CommunityDetailResponse struct {
	CommunityResponse
	Creator    CreatorResponse `json:"creator"`
	IsMember   bool            `json:"isMember"`
	ButtonText string          `json:"buttonText"`
}

// CommunityListResponse represents a page of communities
type CommunityListResponse struct {
	Communities []CommunityResponse `json:"communities"`
	PaginationInfo
}

// MemberResponse represents a community member
type MemberResponse struct {
	Member   ActorResponse     `json:"member"`
	Role     models.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joinedAt"`
}

// MemberListResponse represents the members of a community
type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}
