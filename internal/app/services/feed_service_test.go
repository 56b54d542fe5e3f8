package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
)

type feedTestDeps struct {
	communities *fakeCommunityStore
	memberships *fakeMembershipStore
	posts       *fakePostStore
	comments    *fakeCommentStore
	likes       *fakeLikeStore
	actors      *fakeActorDirectory
	blobs       *fakeBlobStore
}

func newFeedService(t *testing.T) (FeedService, *feedTestDeps) {
	t.Helper()
	deps := &feedTestDeps{
		communities: newFakeCommunityStore(),
		memberships: &fakeMembershipStore{},
		posts:       newFakePostStore(),
		comments:    newFakeCommentStore(),
		likes:       newFakeLikeStore(),
		actors:      newFakeActorDirectory(),
		blobs:       &fakeBlobStore{},
	}
	svc := NewFeedService(deps.communities, deps.memberships, deps.posts, deps.comments, deps.likes, deps.actors, deps.blobs, zerolog.Nop())
	return svc, deps
}

func seedFeedCommunity(t *testing.T, deps *feedTestDeps, creator models.ActorRef, members ...models.ActorRef) *models.Community {
	t.Helper()
	community := &models.Community{Name: "Chess Circle", Creator: creator}
	_, err := deps.communities.CreateWithAdminMembership(context.Background(), community)
	require.NoError(t, err)
	_, err = deps.memberships.Add(context.Background(), community.ID, creator, models.RoleAdmin)
	require.NoError(t, err)
	for _, m := range members {
		_, err = deps.memberships.Add(context.Background(), community.ID, m, models.RoleMember)
		require.NoError(t, err)
	}
	return community
}

func TestFeedService_CreatePost(t *testing.T) {
	t.Run("member posts with a caption", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		caption := "First meeting on Friday"
		resp, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)
		assert.Equal(t, caption, *resp.Caption)
		assert.Equal(t, community.ID, resp.CommunityID)
		assert.Nil(t, resp.OriginalPostID)
	})

	t.Run("member posts with a content file only", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		resp, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{}, newTestFileHeader())
		require.NoError(t, err)
		assert.Nil(t, resp.Caption)
		require.NotNil(t, resp.ContentURL)
		require.Len(t, deps.blobs.saved, 1)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		caption := "hi"
		_, err := svc.CreatePost(context.Background(), mentorOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("post without caption or content is rejected", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		_, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{}, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		blank := "   "
		_, err = svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &blank}, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("repost of a post in the same community", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne, studentTwo)

		caption := "original"
		original, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)

		resp, err := svc.CreatePost(context.Background(), studentTwo, community.ID, &dto.CreatePostRequest{OriginalPostID: &original.ID}, nil)
		require.NoError(t, err)
		require.NotNil(t, resp.OriginalPostID)
		assert.Equal(t, original.ID, *resp.OriginalPostID)
	})

	t.Run("repost cannot carry its own content file", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		caption := "original"
		original, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)

		_, err = svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{OriginalPostID: &original.ID}, newTestFileHeader())
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("repost across communities is rejected", func(t *testing.T) {
		svc, deps := newFeedService(t)
		first := seedFeedCommunity(t, deps, studentOne)
		second := seedFeedCommunity(t, deps, studentOne)

		caption := "original"
		original, err := svc.CreatePost(context.Background(), studentOne, first.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)

		_, err = svc.CreatePost(context.Background(), studentOne, second.ID, &dto.CreatePostRequest{OriginalPostID: &original.ID}, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unknown community", func(t *testing.T) {
		svc, _ := newFeedService(t)
		caption := "hi"
		_, err := svc.CreatePost(context.Background(), studentOne, 404, &dto.CreatePostRequest{Caption: &caption}, nil)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestFeedService_DeletePost(t *testing.T) {
	setup := func(t *testing.T) (FeedService, *feedTestDeps, *models.Community, *dto.PostResponse) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne, studentTwo, mentorOne)
		caption := "to be deleted"
		post, err := svc.CreatePost(context.Background(), studentTwo, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)
		return svc, deps, community, post
	}

	t.Run("author deletes own post", func(t *testing.T) {
		svc, deps, community, post := setup(t)

		require.NoError(t, svc.DeletePost(context.Background(), studentTwo, community.ID, post.ID))

		stored, _ := deps.posts.GetByID(context.Background(), post.ID)
		assert.Nil(t, stored)
	})

	t.Run("admin deletes another member's post", func(t *testing.T) {
		svc, _, community, post := setup(t)

		require.NoError(t, svc.DeletePost(context.Background(), studentOne, community.ID, post.ID))
	})

	t.Run("regular member cannot delete another member's post", func(t *testing.T) {
		svc, _, community, post := setup(t)

		err := svc.DeletePost(context.Background(), mentorOne, community.ID, post.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("deleting removes the content blob", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		post, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{}, newTestFileHeader())
		require.NoError(t, err)

		require.NoError(t, svc.DeletePost(context.Background(), studentOne, community.ID, post.ID))
		require.Len(t, deps.blobs.deleted, 1)
		assert.Equal(t, deps.blobs.saved[0], deps.blobs.deleted[0])
	})

	t.Run("post outside the community is not found", func(t *testing.T) {
		svc, deps, _, post := setup(t)
		other := seedFeedCommunity(t, deps, studentOne)

		err := svc.DeletePost(context.Background(), studentOne, other.ID, post.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestFeedService_ListPosts(t *testing.T) {
	t.Run("non-member cannot view the feed", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		_, err := svc.ListPosts(context.Background(), mentorOne, community.ID, 1, 10)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("feed carries engagement aggregates and threaded comments", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne, studentTwo)
		deps.actors.profiles[studentOne] = models.ActorProfile{Ref: studentOne, Name: "Ada Student"}

		caption := "game night"
		post, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)

		_, err = deps.likes.Add(context.Background(), post.ID, studentOne)
		require.NoError(t, err)
		_, err = deps.likes.Add(context.Background(), post.ID, studentTwo)
		require.NoError(t, err)

		_, err = deps.comments.Create(context.Background(), &models.Comment{PostID: post.ID, Author: studentTwo, Content: "count me in"})
		require.NoError(t, err)
		reply := &models.Comment{PostID: post.ID, Author: studentOne, Content: "great"}
		parentID := int64(1)
		reply.ParentCommentID = &parentID
		_, err = deps.comments.Create(context.Background(), reply)
		require.NoError(t, err)

		resp, err := svc.ListPosts(context.Background(), studentOne, community.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Posts, 1)

		got := resp.Posts[0]
		assert.Equal(t, 2, got.LikeCount)
		assert.True(t, got.LikedByViewer)
		assert.Equal(t, 2, got.CommentCount)
		assert.Equal(t, "Ada Student", got.Author.Name)

		require.Len(t, got.Comments, 1)
		assert.Equal(t, "count me in", got.Comments[0].Content)
		require.Len(t, got.Comments[0].Replies, 1)
		assert.Equal(t, "great", got.Comments[0].Replies[0].Content)
	})

	t.Run("viewer who has not liked", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne, studentTwo)

		caption := "quiet post"
		_, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
		require.NoError(t, err)

		resp, err := svc.ListPosts(context.Background(), studentTwo, community.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, 0, resp.Posts[0].LikeCount)
		assert.False(t, resp.Posts[0].LikedByViewer)
	})

	t.Run("pagination info reflects totals", func(t *testing.T) {
		svc, deps := newFeedService(t)
		community := seedFeedCommunity(t, deps, studentOne)

		for i := 0; i < 3; i++ {
			caption := "post"
			_, err := svc.CreatePost(context.Background(), studentOne, community.ID, &dto.CreatePostRequest{Caption: &caption}, nil)
			require.NoError(t, err)
		}

		resp, err := svc.ListPosts(context.Background(), studentOne, community.ID, 1, 2)
		require.NoError(t, err)
		assert.Len(t, resp.Posts, 2)
		assert.Equal(t, int64(3), resp.TotalItems)
		assert.Equal(t, 2, resp.TotalPages)
	})
}
