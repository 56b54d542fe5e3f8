package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/app/repositories"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
	"github.com/edustack/communityhub/internal/pkg/dberrors"
)

// EngagementService defines the interface for likes and comments on posts
type EngagementService interface {
	ToggleLike(ctx context.Context, actor models.ActorRef, communityID, postID int64) (*dto.LikeToggleResponse, error)
	AddComment(ctx context.Context, actor models.ActorRef, communityID, postID int64, req *dto.AddCommentRequest) (*dto.CommentResponse, error)
}

// engagementServiceImpl implements EngagementService
type engagementServiceImpl struct {
	membershipStore MembershipStore
	postStore       PostStore
	commentStore    CommentStore
	likeStore       LikeStore
	actorDirectory  ActorDirectory
	logger          zerolog.Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	membershipStore MembershipStore,
	postStore PostStore,
	commentStore CommentStore,
	likeStore LikeStore,
	actorDirectory ActorDirectory,
	logger zerolog.Logger,
) EngagementService {
	return &engagementServiceImpl{
		membershipStore: membershipStore,
		postStore:       postStore,
		commentStore:    commentStore,
		likeStore:       likeStore,
		actorDirectory:  actorDirectory,
		logger:          logger,
	}
}

// ToggleLike flips the actor's like on a post. A first call likes, a second
// unlikes. The storage-level uniqueness constraint makes a racing double
// like converge on the liked state instead of failing.
func (s *engagementServiceImpl) ToggleLike(ctx context.Context, actor models.ActorRef, communityID, postID int64) (*dto.LikeToggleResponse, error) {
	post, err := s.resolvePost(ctx, actor, communityID, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeStore.Exists(ctx, post.ID, actor)
	if err != nil {
		return nil, fmt.Errorf("error checking like: %w", err)
	}

	if liked {
		if _, err := s.likeStore.Remove(ctx, post.ID, actor); err != nil {
			return nil, fmt.Errorf("error removing like: %w", err)
		}
		liked = false
	} else {
		if _, err := s.likeStore.Add(ctx, post.ID, actor); err != nil {
			if !dberrors.IsDuplicateConstraintError(err, repositories.ConstraintLikeUnique) {
				s.logger.Error().Err(err).
					Int64("postID", post.ID).
					Str("actor", actor.String()).
					Msg("Failed to add like")
				return nil, fmt.Errorf("error adding like: %w", err)
			}
			// Lost a race against a concurrent like; the post ends up liked
			// either way.
		}
		liked = true
	}

	count, err := s.likeStore.CountByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting likes: %w", err)
	}

	return &dto.LikeToggleResponse{Liked: liked, LikeCount: count}, nil
}

// AddComment attaches a comment to a post, optionally as a reply to another
// comment on the same post. Members only.
func (s *engagementServiceImpl) AddComment(ctx context.Context, actor models.ActorRef, communityID, postID int64, req *dto.AddCommentRequest) (*dto.CommentResponse, error) {
	post, err := s.resolvePost(ctx, actor, communityID, postID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("Comment content cannot be empty")
	}
	if utf8.RuneCountInString(content) > 1000 {
		return nil, apperrors.NewValidationError("Comment content cannot exceed 1000 characters")
	}

	if req.ParentCommentID != nil {
		parent, err := s.commentStore.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, fmt.Errorf("error getting parent comment: %w", err)
		}
		if parent == nil || parent.PostID != post.ID {
			return nil, apperrors.NewValidationError("The parent comment does not exist on this post")
		}
	}

	comment := &models.Comment{
		PostID:          post.ID,
		Author:          actor,
		Content:         content,
		ParentCommentID: req.ParentCommentID,
	}

	if _, err := s.commentStore.Create(ctx, comment); err != nil {
		s.logger.Error().Err(err).
			Int64("postID", post.ID).
			Str("actor", actor.String()).
			Msg("Failed to create comment")
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	author := dto.ActorResponse{ID: actor.ID, Kind: string(actor.Kind)}
	if profile, err := s.actorDirectory.GetProfile(ctx, actor); err != nil {
		s.logger.Warn().Err(err).Str("actor", actor.String()).Msg("Failed to resolve actor profile")
	} else if profile != nil {
		author.Name = profile.Name
		author.Email = profile.Email
	}

	return &dto.CommentResponse{
		ID:              comment.ID,
		Author:          author,
		Content:         comment.Content,
		ParentCommentID: comment.ParentCommentID,
		CreatedAt:       comment.CreatedAt,
	}, nil
}

// resolvePost loads a post scoped to a community and verifies the actor's
// membership.
func (s *engagementServiceImpl) resolvePost(ctx context.Context, actor models.ActorRef, communityID, postID int64) (*models.Post, error) {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil || post.CommunityID != communityID {
		return nil, apperrors.ErrPostNotFound
	}

	isMember, err := s.membershipStore.IsMember(ctx, communityID, actor)
	if err != nil {
		return nil, fmt.Errorf("error checking membership: %w", err)
	}
	if !isMember {
		return nil, apperrors.NewForbiddenError("You must be a member of the community to interact with its posts")
	}

	return post, nil
}
