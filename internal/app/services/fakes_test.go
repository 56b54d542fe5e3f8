package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/edustack/communityhub/internal/app/models"
)

// In-memory store fakes backing the service tests.

type fakeMembershipStore struct {
	memberships []models.Membership
	nextID      int64
	addErr      error
}

func (f *fakeMembershipStore) find(communityID int64, actor models.ActorRef) *models.Membership {
	for i := range f.memberships {
		m := &f.memberships[i]
		if m.CommunityID == communityID && m.Member.Equal(actor) {
			return m
		}
	}
	return nil
}

func (f *fakeMembershipStore) IsMember(_ context.Context, communityID int64, actor models.ActorRef) (bool, error) {
	return f.find(communityID, actor) != nil, nil
}

func (f *fakeMembershipStore) RoleOf(_ context.Context, communityID int64, actor models.ActorRef) (*models.MemberRole, error) {
	if m := f.find(communityID, actor); m != nil {
		role := m.Role
		return &role, nil
	}
	return nil, nil
}

func (f *fakeMembershipStore) JoinedAt(_ context.Context, communityID int64, actor models.ActorRef) (*time.Time, error) {
	if m := f.find(communityID, actor); m != nil {
		joined := m.JoinedAt
		return &joined, nil
	}
	return nil, nil
}

func (f *fakeMembershipStore) Add(_ context.Context, communityID int64, actor models.ActorRef, role models.MemberRole) (int64, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.nextID++
	f.memberships = append(f.memberships, models.Membership{
		ID:          f.nextID,
		CommunityID: communityID,
		Member:      actor,
		Role:        role,
		JoinedAt:    time.Now(),
	})
	return f.nextID, nil
}

func (f *fakeMembershipStore) Remove(_ context.Context, communityID int64, actor models.ActorRef) (bool, error) {
	for i := range f.memberships {
		m := f.memberships[i]
		if m.CommunityID == communityID && m.Member.Equal(actor) {
			f.memberships = append(f.memberships[:i], f.memberships[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembershipStore) ListByCommunityID(_ context.Context, communityID int64) ([]models.Membership, error) {
	var out []models.Membership
	for _, m := range f.memberships {
		if m.CommunityID == communityID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipStore) CountByCommunityID(_ context.Context, communityID int64) (int, error) {
	count := 0
	for _, m := range f.memberships {
		if m.CommunityID == communityID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMembershipStore) CountsByCommunityIDs(_ context.Context, communityIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(communityIDs))
	for _, id := range communityIDs {
		for _, m := range f.memberships {
			if m.CommunityID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

type fakeCommunityStore struct {
	communities map[int64]*models.Community
	nextID      int64
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{communities: make(map[int64]*models.Community)}
}

func (f *fakeCommunityStore) CreateWithAdminMembership(_ context.Context, community *models.Community) (int64, error) {
	f.nextID++
	community.ID = f.nextID
	community.CreatedAt = time.Now()
	community.UpdatedAt = community.CreatedAt
	stored := *community
	f.communities[community.ID] = &stored
	return community.ID, nil
}

func (f *fakeCommunityStore) GetByID(_ context.Context, id int64) (*models.Community, error) {
	if c, ok := f.communities[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCommunityStore) Update(_ context.Context, community *models.Community) error {
	stored := *community
	f.communities[community.ID] = &stored
	return nil
}

func (f *fakeCommunityStore) Delete(_ context.Context, id int64) error {
	delete(f.communities, id)
	return nil
}

func (f *fakeCommunityStore) List(_ context.Context, search *string, offset uint64, limit int) ([]models.Community, int64, error) {
	var all []models.Community
	for _, c := range f.communities {
		all = append(all, *c)
	}
	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

type fakePostStore struct {
	posts  map[int64]*models.Post
	nextID int64
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[int64]*models.Post)}
}

func (f *fakePostStore) Create(_ context.Context, post *models.Post) (int64, error) {
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	f.posts[post.ID] = &stored
	return post.ID, nil
}

func (f *fakePostStore) GetByID(_ context.Context, id int64) (*models.Post, error) {
	if p, ok := f.posts[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakePostStore) Delete(_ context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) ListByCommunity(_ context.Context, communityID int64, offset uint64, limit int) ([]models.Post, int64, error) {
	var all []models.Post
	for _, p := range f.posts {
		if p.CommunityID == communityID {
			all = append(all, *p)
		}
	}
	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakePostStore) ContentPathsByCommunity(_ context.Context, communityID int64) ([]string, error) {
	var out []string
	for _, p := range f.posts {
		if p.CommunityID == communityID && p.ContentPath != nil {
			out = append(out, *p.ContentPath)
		}
	}
	return out, nil
}

type fakeCommentStore struct {
	comments map[int64]*models.Comment
	nextID   int64
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[int64]*models.Comment)}
}

func (f *fakeCommentStore) Create(_ context.Context, comment *models.Comment) (int64, error) {
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	stored := *comment
	f.comments[comment.ID] = &stored
	return comment.ID, nil
}

func (f *fakeCommentStore) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	if c, ok := f.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCommentStore) ListByPostIDs(_ context.Context, postIDs []int64) ([]models.Comment, error) {
	wanted := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	var out []models.Comment
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.comments[id]; ok && wanted[c.PostID] {
			out = append(out, *c)
		}
	}
	return out, nil
}

type likeKey struct {
	postID int64
	liker  models.ActorRef
}

type fakeLikeStore struct {
	likes  map[likeKey]int64
	nextID int64
	addErr error
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[likeKey]int64)}
}

func (f *fakeLikeStore) Exists(_ context.Context, postID int64, liker models.ActorRef) (bool, error) {
	_, ok := f.likes[likeKey{postID, liker}]
	return ok, nil
}

func (f *fakeLikeStore) Add(_ context.Context, postID int64, liker models.ActorRef) (int64, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.nextID++
	f.likes[likeKey{postID, liker}] = f.nextID
	return f.nextID, nil
}

func (f *fakeLikeStore) Remove(_ context.Context, postID int64, liker models.ActorRef) (bool, error) {
	key := likeKey{postID, liker}
	if _, ok := f.likes[key]; ok {
		delete(f.likes, key)
		return true, nil
	}
	return false, nil
}

func (f *fakeLikeStore) CountByPostID(_ context.Context, postID int64) (int, error) {
	count := 0
	for key := range f.likes {
		if key.postID == postID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLikeStore) CountsByPostIDs(_ context.Context, postIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int)
	for _, id := range postIDs {
		count, _ := f.CountByPostID(context.Background(), id)
		if count > 0 {
			out[id] = count
		}
	}
	return out, nil
}

func (f *fakeLikeStore) LikedPostIDs(_ context.Context, liker models.ActorRef, postIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, id := range postIDs {
		if _, ok := f.likes[likeKey{id, liker}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type fakeActorDirectory struct {
	profiles map[models.ActorRef]models.ActorProfile
}

func newFakeActorDirectory() *fakeActorDirectory {
	return &fakeActorDirectory{profiles: make(map[models.ActorRef]models.ActorProfile)}
}

func (f *fakeActorDirectory) GetProfile(_ context.Context, ref models.ActorRef) (*models.ActorProfile, error) {
	if p, ok := f.profiles[ref]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeActorDirectory) GetProfiles(_ context.Context, refs []models.ActorRef) (map[models.ActorRef]models.ActorProfile, error) {
	out := make(map[models.ActorRef]models.ActorProfile)
	for _, ref := range refs {
		if p, ok := f.profiles[ref]; ok {
			out[ref] = p
		}
	}
	return out, nil
}

type fakeBlobStore struct {
	saved   []string
	deleted []string
	nextID  int
}

func (f *fakeBlobStore) SaveFile(_ *multipart.FileHeader, bucket string) (string, error) {
	f.nextID++
	ref := fmt.Sprintf("%s/blob-%d", bucket, f.nextID)
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *fakeBlobStore) DeleteFile(ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeBlobStore) URLFor(ref string) string {
	return "/uploads/" + ref
}

func newTestFileHeader() *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "upload.png", Size: 4}
}
