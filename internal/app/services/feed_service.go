package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
	"github.com/edustack/communityhub/internal/pkg/helpers"
)

const bucketPostContent = "post_content"

// FeedService defines the interface for post operations on a community feed
type FeedService interface {
	CreatePost(ctx context.Context, actor models.ActorRef, communityID int64, req *dto.CreatePostRequest, contentFile *multipart.FileHeader) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, actor models.ActorRef, communityID, postID int64) error
	ListPosts(ctx context.Context, viewer models.ActorRef, communityID int64, page, pageSize int) (*dto.PostListResponse, error)
}

// feedServiceImpl implements FeedService
type feedServiceImpl struct {
	communityStore  CommunityStore
	membershipStore MembershipStore
	postStore       PostStore
	commentStore    CommentStore
	likeStore       LikeStore
	actorDirectory  ActorDirectory
	blobStore       BlobStore
	logger          zerolog.Logger
}

// NewFeedService creates a new FeedService
func NewFeedService(
	communityStore CommunityStore,
	membershipStore MembershipStore,
	postStore PostStore,
	commentStore CommentStore,
	likeStore LikeStore,
	actorDirectory ActorDirectory,
	blobStore BlobStore,
	logger zerolog.Logger,
) FeedService {
	return &feedServiceImpl{
		communityStore:  communityStore,
		membershipStore: membershipStore,
		postStore:       postStore,
		commentStore:    commentStore,
		likeStore:       likeStore,
		actorDirectory:  actorDirectory,
		blobStore:       blobStore,
		logger:          logger,
	}
}

// CreatePost publishes a post to a community feed. Members only. An original
// post carries a caption, a content file, or both; a repost references an
// existing post in the same community and never carries its own content file.
func (s *feedServiceImpl) CreatePost(ctx context.Context, actor models.ActorRef, communityID int64, req *dto.CreatePostRequest, contentFile *multipart.FileHeader) (*dto.PostResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return nil, apperrors.ErrCommunityNotFound
	}

	isMember, err := s.membershipStore.IsMember(ctx, communityID, actor)
	if err != nil {
		return nil, fmt.Errorf("error checking membership: %w", err)
	}
	if !isMember {
		return nil, apperrors.NewForbiddenError("You must be a member of the community to post")
	}

	caption := req.Caption
	if caption != nil {
		trimmed := strings.TrimSpace(*caption)
		if trimmed == "" {
			caption = nil
		} else {
			caption = &trimmed
		}
	}

	if req.OriginalPostID != nil {
		if contentFile != nil {
			return nil, apperrors.NewValidationError("A repost cannot carry its own content file")
		}
		original, err := s.postStore.GetByID(ctx, *req.OriginalPostID)
		if err != nil {
			return nil, fmt.Errorf("error getting original post: %w", err)
		}
		if original == nil || original.CommunityID != communityID {
			return nil, apperrors.NewValidationError("The original post does not exist in this community")
		}
	} else if caption == nil && contentFile == nil {
		return nil, apperrors.NewValidationError("A post requires a caption or a content file")
	}

	post := &models.Post{
		CommunityID:    communityID,
		Author:         actor,
		Caption:        caption,
		OriginalPostID: req.OriginalPostID,
	}

	if contentFile != nil {
		ref, err := s.blobStore.SaveFile(contentFile, bucketPostContent)
		if err != nil {
			return nil, fmt.Errorf("failed to store post content: %w", err)
		}
		post.ContentPath = &ref
	}

	if _, err := s.postStore.Create(ctx, post); err != nil {
		s.logger.Error().Err(err).
			Int64("communityID", communityID).
			Str("author", actor.String()).
			Msg("Failed to create post")
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	resp := s.toPostResponse(ctx, post, 0, false, nil)
	return &resp, nil
}

// DeletePost removes a post. Allowed for the post's author and for members
// holding the admin role. Comments and likes cascade; reposts of the deleted
// post survive with their reference cleared.
func (s *feedServiceImpl) DeletePost(ctx context.Context, actor models.ActorRef, communityID, postID int64) error {
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("error getting post: %w", err)
	}
	if post == nil || post.CommunityID != communityID {
		return apperrors.ErrPostNotFound
	}

	if !post.Author.Equal(actor) {
		role, err := s.membershipStore.RoleOf(ctx, communityID, actor)
		if err != nil {
			return fmt.Errorf("error checking membership role: %w", err)
		}
		if role == nil || *role != models.RoleAdmin {
			return apperrors.NewForbiddenError("You are not authorized to delete this post")
		}
	}

	if err := s.postStore.Delete(ctx, postID); err != nil {
		s.logger.Error().Err(err).
			Int64("postID", postID).
			Msg("Failed to delete post")
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if post.ContentPath != nil {
		if err := s.blobStore.DeleteFile(*post.ContentPath); err != nil {
			s.logger.Warn().Err(err).
				Str("ref", *post.ContentPath).
				Msg("Failed to delete post content blob")
		}
	}

	return nil
}

// ListPosts retrieves a page of a community's feed together with engagement
// aggregates and threaded comments. Members only.
func (s *feedServiceImpl) ListPosts(ctx context.Context, viewer models.ActorRef, communityID int64, page, pageSize int) (*dto.PostListResponse, error) {
	community, err := s.communityStore.GetByID(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("error getting community: %w", err)
	}
	if community == nil {
		return nil, apperrors.ErrCommunityNotFound
	}

	isMember, err := s.membershipStore.IsMember(ctx, communityID, viewer)
	if err != nil {
		return nil, fmt.Errorf("error checking membership: %w", err)
	}
	if !isMember {
		return nil, apperrors.NewForbiddenError("You must be a member of the community to view its feed")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)

	posts, total, err := s.postStore.ListByCommunity(ctx, communityID, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("communityID", communityID).
			Msg("Failed to list posts")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	postIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	likeCounts := map[int64]int{}
	likedByViewer := map[int64]bool{}
	commentsByPost := map[int64][]models.Comment{}

	if len(postIDs) > 0 {
		likeCounts, err = s.likeStore.CountsByPostIDs(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("error counting likes: %w", err)
		}

		likedByViewer, err = s.likeStore.LikedPostIDs(ctx, viewer, postIDs)
		if err != nil {
			return nil, fmt.Errorf("error resolving viewer likes: %w", err)
		}

		comments, err := s.commentStore.ListByPostIDs(ctx, postIDs)
		if err != nil {
			return nil, fmt.Errorf("error listing comments: %w", err)
		}
		for _, c := range comments {
			commentsByPost[c.PostID] = append(commentsByPost[c.PostID], c)
		}
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		responses = append(responses, s.toPostResponse(ctx, p, likeCounts[p.ID], likedByViewer[p.ID], commentsByPost[p.ID]))
	}

	return &dto.PostListResponse{
		Posts:          responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

func (s *feedServiceImpl) toPostResponse(ctx context.Context, post *models.Post, likeCount int, likedByViewer bool, comments []models.Comment) dto.PostResponse {
	var contentURL *string
	if post.ContentPath != nil {
		url := s.blobStore.URLFor(*post.ContentPath)
		contentURL = &url
	}

	return dto.PostResponse{
		ID:             post.ID,
		CommunityID:    post.CommunityID,
		Author:         s.actorResponse(ctx, post.Author),
		Caption:        post.Caption,
		ContentURL:     contentURL,
		OriginalPostID: post.OriginalPostID,
		LikeCount:      likeCount,
		LikedByViewer:  likedByViewer,
		CommentCount:   len(comments),
		Comments:       s.buildCommentTree(ctx, comments),
		CreatedAt:      post.CreatedAt,
	}
}

// buildCommentTree nests replies under their parents. Comments arrive in
// creation order, so a parent is always placed before its replies.
func (s *feedServiceImpl) buildCommentTree(ctx context.Context, comments []models.Comment) []dto.CommentResponse {
	if len(comments) == 0 {
		return nil
	}

	refs := make([]models.ActorRef, 0, len(comments))
	for _, c := range comments {
		refs = append(refs, c.Author)
	}
	profiles, err := s.actorDirectory.GetProfiles(ctx, refs)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to resolve comment author profiles")
		profiles = map[models.ActorRef]models.ActorProfile{}
	}

	type node struct {
		comment  models.Comment
		author   dto.ActorResponse
		children []*node
	}

	nodes := make(map[int64]*node, len(comments))
	for _, c := range comments {
		author := dto.ActorResponse{ID: c.Author.ID, Kind: string(c.Author.Kind)}
		if profile, ok := profiles[c.Author]; ok {
			author.Name = profile.Name
			author.Email = profile.Email
		}
		nodes[c.ID] = &node{comment: c, author: author}
	}

	var roots []*node
	for _, c := range comments {
		n := nodes[c.ID]
		if c.ParentCommentID != nil {
			if parent, ok := nodes[*c.ParentCommentID]; ok {
				parent.children = append(parent.children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	var materialize func(n *node) dto.CommentResponse
	materialize = func(n *node) dto.CommentResponse {
		resp := dto.CommentResponse{
			ID:              n.comment.ID,
			Author:          n.author,
			Content:         n.comment.Content,
			ParentCommentID: n.comment.ParentCommentID,
			CreatedAt:       n.comment.CreatedAt,
		}
		for _, child := range n.children {
			resp.Replies = append(resp.Replies, materialize(child))
		}
		return resp
	}

	out := make([]dto.CommentResponse, 0, len(roots))
	for _, n := range roots {
		out = append(out, materialize(n))
	}
	return out
}

func (s *feedServiceImpl) actorResponse(ctx context.Context, ref models.ActorRef) dto.ActorResponse {
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
