package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/app/models/dto"
	"github.com/edustack/communityhub/internal/app/repositories"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
)

type communityTestDeps struct {
	communities *fakeCommunityStore
	memberships *fakeMembershipStore
	posts       *fakePostStore
	actors      *fakeActorDirectory
	blobs       *fakeBlobStore
}

func newCommunityService(t *testing.T) (CommunityService, *communityTestDeps) {
	t.Helper()
	deps := &communityTestDeps{
		communities: newFakeCommunityStore(),
		memberships: &fakeMembershipStore{},
		posts:       newFakePostStore(),
		actors:      newFakeActorDirectory(),
		blobs:       &fakeBlobStore{},
	}
	svc := NewCommunityService(deps.communities, deps.memberships, deps.posts, deps.actors, deps.blobs, zerolog.Nop())
	return svc, deps
}

func seedCommunity(t *testing.T, deps *communityTestDeps, creator models.ActorRef) *models.Community {
	t.Helper()
	community := &models.Community{Name: "Robotics Club", Creator: creator}
	_, err := deps.communities.CreateWithAdminMembership(context.Background(), community)
	require.NoError(t, err)
	_, err = deps.memberships.Add(context.Background(), community.ID, creator, models.RoleAdmin)
	require.NoError(t, err)
	return community
}

var (
	studentOne = models.ActorRef{Kind: models.ActorKindStudent, ID: 1}
	studentTwo = models.ActorRef{Kind: models.ActorKindStudent, ID: 2}
	mentorOne  = models.ActorRef{Kind: models.ActorKindMentor, ID: 1}
)

func TestCommunityService_Create(t *testing.T) {
	svc, deps := newCommunityService(t)

	desc := "We build robots"
	resp, err := svc.Create(context.Background(), mentorOne, &dto.CreateCommunityRequest{
		Name:        "Robotics Club",
		Description: &desc,
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Robotics Club", resp.Name)
	assert.Equal(t, int64(1), resp.Creator.ID)
	assert.Equal(t, string(models.ActorKindMentor), resp.Creator.Kind)
	assert.Equal(t, 1, resp.MemberCount)

	stored, err := deps.communities.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Creator.Equal(mentorOne))
}

func TestCommunityService_Update(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc, _ := newCommunityService(t)

		_, err := svc.Update(context.Background(), studentOne, 99, &dto.UpdateCommunityRequest{}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("non-admin member is rejected", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)
		_, err := deps.memberships.Add(context.Background(), community.ID, studentTwo, models.RoleMember)
		require.NoError(t, err)

		name := "Renamed"
		_, err = svc.Update(context.Background(), studentTwo, community.ID, &dto.UpdateCommunityRequest{Name: &name}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		name := "Renamed"
		_, err := svc.Update(context.Background(), mentorOne, community.ID, &dto.UpdateCommunityRequest{Name: &name}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin applies partial update", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		name := "Renamed Club"
		resp, err := svc.Update(context.Background(), studentOne, community.ID, &dto.UpdateCommunityRequest{Name: &name}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Club", resp.Name)

		stored, _ := deps.communities.GetByID(context.Background(), community.ID)
		assert.Equal(t, "Renamed Club", stored.Name)
	})

	t.Run("replacing the photo deletes the old blob", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		oldRef := "profile_photos/old"
		community.ProfilePhoto = &oldRef
		require.NoError(t, deps.communities.Update(context.Background(), community))

		_, err := svc.Update(context.Background(), studentOne, community.ID, &dto.UpdateCommunityRequest{}, newTestFileHeader(), nil)
		require.NoError(t, err)

		assert.Contains(t, deps.blobs.deleted, oldRef)
		require.Len(t, deps.blobs.saved, 1)

		stored, _ := deps.communities.GetByID(context.Background(), community.ID)
		require.NotNil(t, stored.ProfilePhoto)
		assert.Equal(t, deps.blobs.saved[0], *stored.ProfilePhoto)
	})
}

func TestCommunityService_Delete(t *testing.T) {
	t.Run("only the creator may delete", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		// Another admin is still not the creator
		_, err := deps.memberships.Add(context.Background(), community.ID, studentTwo, models.RoleAdmin)
		require.NoError(t, err)

		err = svc.Delete(context.Background(), studentTwo, community.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		// Same ID under a different kind is a different actor
		err = svc.Delete(context.Background(), mentorOne, community.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("creator deletes community and blobs", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		photoRef := "profile_photos/p"
		community.ProfilePhoto = &photoRef
		require.NoError(t, deps.communities.Update(context.Background(), community))

		contentRef := "post_content/c"
		_, err := deps.posts.Create(context.Background(), &models.Post{
			CommunityID: community.ID,
			Author:      studentOne,
			ContentPath: &contentRef,
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), studentOne, community.ID))

		stored, _ := deps.communities.GetByID(context.Background(), community.ID)
		assert.Nil(t, stored)
		assert.Contains(t, deps.blobs.deleted, photoRef)
		assert.Contains(t, deps.blobs.deleted, contentRef)
	})

	t.Run("missing community", func(t *testing.T) {
		svc, _ := newCommunityService(t)
		err := svc.Delete(context.Background(), studentOne, 42)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestCommunityService_GetDetails(t *testing.T) {
	svc, deps := newCommunityService(t)
	community := seedCommunity(t, deps, studentOne)
	deps.actors.profiles[studentOne] = models.ActorProfile{Ref: studentOne, Name: "Ada Student", Email: "ada@example.com"}

	t.Run("member sees leave button", func(t *testing.T) {
		resp, err := svc.GetDetails(context.Background(), studentOne, community.ID)
		require.NoError(t, err)
		assert.True(t, resp.IsMember)
		assert.Equal(t, "Leave", resp.ButtonText)
		assert.Equal(t, "Ada Student", resp.Creator.Name)
		assert.NotNil(t, resp.Creator.JoinedAt)
	})

	t.Run("non-member sees join button", func(t *testing.T) {
		resp, err := svc.GetDetails(context.Background(), mentorOne, community.ID)
		require.NoError(t, err)
		assert.False(t, resp.IsMember)
		assert.Equal(t, "Join", resp.ButtonText)
	})
}

func TestCommunityService_Join(t *testing.T) {
	t.Run("joins as regular member", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		require.NoError(t, svc.Join(context.Background(), mentorOne, community.ID))

		role, err := deps.memberships.RoleOf(context.Background(), community.ID, mentorOne)
		require.NoError(t, err)
		require.NotNil(t, role)
		assert.Equal(t, models.RoleMember, *role)
	})

	t.Run("joining twice is a conflict", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		require.NoError(t, svc.Join(context.Background(), studentTwo, community.ID))
		err := svc.Join(context.Background(), studentTwo, community.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("same ID with a different kind may join", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		// mentorOne shares the numeric ID of studentOne
		require.NoError(t, svc.Join(context.Background(), mentorOne, community.ID))
	})

	t.Run("racing duplicate surfaces as conflict", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		deps.memberships.addErr = &pgconn.PgError{Code: "23505", ConstraintName: repositories.ConstraintMembershipUnique}
		err := svc.Join(context.Background(), studentTwo, community.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("unknown community", func(t *testing.T) {
		svc, _ := newCommunityService(t)
		err := svc.Join(context.Background(), studentOne, 7)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestCommunityService_Leave(t *testing.T) {
	t.Run("member leaves", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)
		require.NoError(t, svc.Join(context.Background(), studentTwo, community.ID))

		require.NoError(t, svc.Leave(context.Background(), studentTwo, community.ID))

		isMember, _ := deps.memberships.IsMember(context.Background(), community.ID, studentTwo)
		assert.False(t, isMember)
	})

	t.Run("creator cannot leave", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		err := svc.Leave(context.Background(), studentOne, community.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("leaving without a membership is a conflict", func(t *testing.T) {
		svc, deps := newCommunityService(t)
		community := seedCommunity(t, deps, studentOne)

		err := svc.Leave(context.Background(), mentorOne, community.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestCommunityService_Members(t *testing.T) {
	svc, deps := newCommunityService(t)
	community := seedCommunity(t, deps, studentOne)
	require.NoError(t, svc.Join(context.Background(), mentorOne, community.ID))
	deps.actors.profiles[mentorOne] = models.ActorProfile{Ref: mentorOne, Name: "Mia Mentor", Email: "mia@example.com"}

	resp, err := svc.Members(context.Background(), community.ID)
	require.NoError(t, err)
	require.Len(t, resp.Members, 2)

	byKind := map[string]dto.MemberResponse{}
	for _, m := range resp.Members {
		byKind[m.Member.Kind] = m
	}
	assert.Equal(t, models.RoleAdmin, byKind[string(models.ActorKindStudent)].Role)
	assert.Equal(t, models.RoleMember, byKind[string(models.ActorKindMentor)].Role)
	assert.Equal(t, "Mia Mentor", byKind[string(models.ActorKindMentor)].Member.Name)
}

func TestCommunityService_List(t *testing.T) {
	svc, deps := newCommunityService(t)
	first := seedCommunity(t, deps, studentOne)
	second := seedCommunity(t, deps, mentorOne)

	_, err := deps.memberships.Add(context.Background(), first.ID, studentTwo, models.RoleMember)
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), &dto.CommunityFilterRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Communities, 2)
	assert.Equal(t, int64(2), resp.TotalItems)

	countsByID := map[int64]int{}
	for _, c := range resp.Communities {
		countsByID[c.ID] = c.MemberCount
	}
	assert.Equal(t, 2, countsByID[first.ID])
	assert.Equal(t, 1, countsByID[second.ID])
}
