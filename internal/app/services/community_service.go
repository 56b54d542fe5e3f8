package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/app/repositories"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
	"github.com/edustack/communityhub/internal/pkg/dberrors"
	"github.com/edustack/communityhub/internal/pkg/helpers"
)

const (
	bucketProfilePhotos = "profile_photos"
	bucketCoverPhotos   = "cover_photos"
)

// CommunityService defines the interface for community operations
type CommunityService interface {
	Create(ctx context.Context, creator models.ActorRef, req *dto.CreateCommunityRequest, profilePhoto, coverPhoto *multipart.FileHeader) (*dto.CommunityResponse, error)
	Update(ctx context.Context, actor models.ActorRef, id int64, req *dto.UpdateCommunityRequest, profilePhoto, coverPhoto *multipart.FileHeader) (*dto.CommunityResponse, error)
	Delete(ctx context.Context, actor models.ActorRef, id int64) error
	GetDetails(ctx context.Context, viewer models.ActorRef, id int64) (*dto.CommunityDetailResponse, error)
	List(ctx context.Context, filter *dto.CommunityFilterRequest) (*dto.CommunityListResponse, error)
	Join(ctx context.Context, actor models.ActorRef, id int64) error
	Leave(ctx context.Context, actor models.ActorRef, id int64) error
	Members(ctx context.Context, id int64) (*dto.MemberListResponse, error)
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communityStore  CommunityStore
	membershipStore MembershipStore
	postStore       PostStore
	actorDirectory  ActorDirectory
	blobStore       BlobStore
	logger          zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communityStore CommunityStore,
	membershipStore MembershipStore,
	postStore PostStore,
	actorDirectory ActorDirectory,
	blobStore BlobStore,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		communityStore:  communityStore,
		membershipStore: membershipStore,
		postStore:       postStore,
		actorDirectory:  actorDirectory,
		blobStore:       blobStore,
		logger:          logger,
	}
}

// Create persists a community and grants the creator an admin membership.
// Both writes happen in one transaction inside the store.
func (s *communityServiceImpl) Create(ctx context.Context, creator models.ActorRef, req *dto.CreateCommunityRequest, profilePhoto, coverPhoto *multipart.FileHeader) (*dto.CommunityResponse, error) {
	s.logger.Debug().
		Str("creator", creator.String()).
		Str("name", req.Name).
		Msg("Creating community")

	community := &models.Community{
		Name:         req.Name,
		Description:  req.Description,
		Creator:      creator,
		DomainID:     req.DomainID,
		SubdomainIDs: req.SubdomainIDs,
	}

	if profilePhoto != nil {
		ref, err := s.blobStore.SaveFile(profilePhoto, bucketProfilePhotos)
		if err != nil {
			return nil, fmt.Errorf("failed to store profile photo: %w", err)
		}
		community.ProfilePhoto = &ref
	}

	if coverPhoto != nil {
		ref, err := s.blobStore.SaveFile(coverPhoto, bucketCoverPhotos)
		if err != nil {
			return nil, fmt.Errorf("failed to store cover photo: %w", err)
		}
		community.CoverPhoto = &ref
	}

	if _, err := s.communityStore.CreateWithAdminMembership(ctx, community); err != nil {
		s.logger.Error().Err(err).
			Str("creator", creator.String()).
			Msg("Failed to create community")
		return nil, fmt.Errorf("failed to create community: %w", err)
	}

	resp := s.toCommunityResponse(ctx, community, 1)
	return &resp, nil
}

// Update applies a partial update. Only members holding the admin role may
// update; fields absent from the request are left unchanged.
func (s *communityServiceImpl) Update(ctx context.Context, actor models.ActorRef, id int64, req *dto.UpdateCommunityRequest, profilePhoto, coverPhoto *multipart.FileHeader) (*dto.CommunityResponse, error) {
	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return nil, apperrors.ErrCommunityNotFound
	}

	role, err := s.membershipStore.RoleOf(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("error checking membership role: %w", err)
	}
	if role == nil || *role != models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("You are not authorized to update this community")
	}

	if req.Name != nil {
		community.Name = *req.Name
	}
	if req.Description != nil {
		community.Description = req.Description
	}
	if req.DomainID != nil {
		community.DomainID = req.DomainID
	}
	if req.SubdomainIDs != nil {
		community.SubdomainIDs = req.SubdomainIDs
	}

	if profilePhoto != nil {
		if community.ProfilePhoto != nil {
			if err := s.blobStore.DeleteFile(*community.ProfilePhoto); err != nil {
				s.logger.Warn().Err(err).
					Int64("communityID", id).
					Msg("Failed to delete old profile photo")
			}
		}
		ref, err := s.blobStore.SaveFile(profilePhoto, bucketProfilePhotos)
		if err != nil {
			return nil, fmt.Errorf("failed to store profile photo: %w", err)
		}
		community.ProfilePhoto = &ref
	}

	if coverPhoto != nil {
		if community.CoverPhoto != nil {
			if err := s.blobStore.DeleteFile(*community.CoverPhoto); err != nil {
				s.logger.Warn().Err(err).
					Int64("communityID", id).
					Msg("Failed to delete old cover photo")
			}
		}
		ref, err := s.blobStore.SaveFile(coverPhoto, bucketCoverPhotos)
		if err != nil {
			return nil, fmt.Errorf("failed to store cover photo: %w", err)
		}
		community.CoverPhoto = &ref
	}

	if err := s.communityStore.Update(ctx, community); err != nil {
		s.logger.Error().Err(err).
			Int64("communityID", id).
			Msg("Failed to update community")
		return nil, fmt.Errorf("failed to update community: %w", err)
	}

	memberCount, err := s.membershipStore.CountByCommunityID(ctx, id)
	if err != nil {
		memberCount = 0
	}

	resp := s.toCommunityResponse(ctx, community, memberCount)
	return &resp, nil
}

// Delete removes a community. Only the creator may delete; holding the admin
// role is not sufficient. Memberships, posts, comments and likes cascade.
func (s *communityServiceImpl) Delete(ctx context.Context, actor models.ActorRef, id int64) error {
	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return apperrors.ErrCommunityNotFound
	}

	if !community.Creator.Equal(actor) {
		return apperrors.NewForbiddenError("Only the creator of the community can delete it")
	}

	// Collect blob references before the rows disappear
	contentPaths, err := s.postStore.ContentPathsByCommunity(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).
			Int64("communityID", id).
			Msg("Failed to collect post content references")
	}

	if err := s.communityStore.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).
			Int64("communityID", id).
			Msg("Failed to delete community")
		return fmt.Errorf("failed to delete community: %w", err)
	}

	for _, path := range contentPaths {
		if err := s.blobStore.DeleteFile(path); err != nil {
			s.logger.Warn().Err(err).Str("ref", path).Msg("Failed to delete post content blob")
		}
	}
	if community.ProfilePhoto != nil {
		if err := s.blobStore.DeleteFile(*community.ProfilePhoto); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to delete profile photo blob")
		}
	}
	if community.CoverPhoto != nil {
		if err := s.blobStore.DeleteFile(*community.CoverPhoto); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to delete cover photo blob")
		}
	}

	return nil
}

// GetDetails retrieves a community together with creator information and the
// viewer's membership state.
func (s *communityServiceImpl) GetDetails(ctx context.Context, viewer models.ActorRef, id int64) (*dto.CommunityDetailResponse, error) {
	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return nil, apperrors.ErrCommunityNotFound
	}

	memberCount, err := s.membershipStore.CountByCommunityID(ctx, id)
	if err != nil {
		memberCount = 0
	}

	creatorJoinedAt, err := s.membershipStore.JoinedAt(ctx, id, community.Creator)
	if err != nil {
		s.logger.Warn().Err(err).
			Int64("communityID", id).
			Msg("Failed to look up creator join timestamp")
	}

	isMember, err := s.membershipStore.IsMember(ctx, id, viewer)
	if err != nil {
		return nil, fmt.Errorf("error checking membership: %w", err)
	}

	buttonText := "Join"
	if isMember {
		buttonText = "Leave"
	}

	detail := &dto.CommunityDetailResponse{
		CommunityResponse: s.toCommunityResponse(ctx, community, memberCount),
		Creator: dto.CreatorResponse{
			ActorResponse: s.actorResponse(ctx, community.Creator),
			JoinedAt:      creatorJoinedAt,
		},
		IsMember:   isMember,
		ButtonText: buttonText,
	}

	return detail, nil
}

// List retrieves communities with optional search and pagination
func (s *communityServiceImpl) List(ctx context.Context, filter *dto.CommunityFilterRequest) (*dto.CommunityListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	communities, total, err := s.communityStore.List(ctx, filter.Search, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list communities")
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}

	communityIDs := make([]int64, 0, len(communities))
	for i := range communities {
		communityIDs = append(communityIDs, communities[i].ID)
	}
	memberCounts, err := s.membershipStore.CountsByCommunityIDs(ctx, communityIDs)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count community members")
		memberCounts = map[int64]int{}
	}

	responses := make([]dto.CommunityResponse, 0, len(communities))
	for i := range communities {
		responses = append(responses, s.toCommunityResponse(ctx, &communities[i], memberCounts[communities[i].ID]))
	}

	return &dto.CommunityListResponse{
		Communities:    responses,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// Join adds the actor as a regular member. Joining twice is a conflict; the
// storage-level uniqueness constraint backs the membership check so a racing
// duplicate join fails deterministically.
func (s *communityServiceImpl) Join(ctx context.Context, actor models.ActorRef, id int64) error {
	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return apperrors.ErrCommunityNotFound
	}

	isMember, err := s.membershipStore.IsMember(ctx, id, actor)
	if err != nil {
		return fmt.Errorf("error checking membership: %w", err)
	}
	if isMember {
		return apperrors.ErrAlreadyMember
	}

	if _, err := s.membershipStore.Add(ctx, id, actor, models.RoleMember); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.ConstraintMembershipUnique) {
			return apperrors.ErrAlreadyMember
		}
		s.logger.Error().Err(err).
			Int64("communityID", id).
			Str("actor", actor.String()).
			Msg("Failed to add membership")
		return fmt.Errorf("error adding membership: %w", err)
	}

	return nil
}

// Leave removes the actor's membership. The creator's admin membership is
// only removed together with the community itself.
func (s *communityServiceImpl) Leave(ctx context.Context, actor models.ActorRef, id int64) error {
	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return apperrors.ErrCommunityNotFound
	}

	if community.Creator.Equal(actor) {
		return apperrors.NewConflictError("The creator cannot leave the community")
	}

	removed, err := s.membershipStore.Remove(ctx, id, actor)
	if err != nil {
		return fmt.Errorf("error removing membership: %w", err)
	}
	if !removed {
		return apperrors.ErrNotMember
	}

	return nil
}

// Members retrieves the members of a community with display information
func (s *communityServiceImpl) Members(ctx context.Context, id int64) (*dto.MemberListResponse, error) {
	community, err := s.communityStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return nil, apperrors.ErrCommunityNotFound
	}

	memberships, err := s.membershipStore.ListByCommunityID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}

	refs := make([]models.ActorRef, 0, len(memberships))
	for _, m := range memberships {
		refs = append(refs, m.Member)
	}

	profiles, err := s.actorDirectory.GetProfiles(ctx, refs)
	if err != nil {
		s.logger.Warn().Err(err).
			Int64("communityID", id).
			Msg("Failed to resolve member profiles")
		profiles = map[models.ActorRef]models.ActorProfile{}
	}

	members := make([]dto.MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		resp := dto.ActorResponse{ID: m.Member.ID, Kind: string(m.Member.Kind)}
		if profile, ok := profiles[m.Member]; ok {
			resp.Name = profile.Name
			resp.Email = profile.Email
		}
		members = append(members, dto.MemberResponse{
			Member:   resp,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}

	return &dto.MemberListResponse{Members: members}, nil
}

func (s *communityServiceImpl) toCommunityResponse(ctx context.Context, community *models.Community, memberCount int) dto.CommunityResponse {
	var profileURL, coverURL *string
	if community.ProfilePhoto != nil {
		url := s.blobStore.URLFor(*community.ProfilePhoto)
		profileURL = &url
	}
	if community.CoverPhoto != nil {
		url := s.blobStore.URLFor(*community.CoverPhoto)
		coverURL = &url
	}

	return dto.CommunityResponse{
		ID:              community.ID,
		Name:            community.Name,
		Description:     community.Description,
		ProfilePhotoURL: profileURL,
		CoverPhotoURL:   coverURL,
		Creator:         s.actorResponse(ctx, community.Creator),
		DomainID:        community.DomainID,
		SubdomainIDs:    community.SubdomainIDs,
		MemberCount:     memberCount,
		CreatedAt:       community.CreatedAt,
		UpdatedAt:       community.UpdatedAt,
	}
}

func (s *communityServiceImpl) actorResponse(ctx context.Context, ref models.ActorRef) dto.ActorResponse {
	resp := dto.ActorResponse{ID: ref.ID, Kind: string(ref.Kind)}
	profile, err := s.actorDirectory.GetProfile(ctx, ref)
	if err != nil {
		s.logger.Warn().Err(err).Str("actor", ref.String()).Msg("Failed to resolve actor profile")
		return resp
	}
	if profile != nil {
		resp.Name = profile.Name
		resp.Email = profile.Email
	}
	return resp
}
