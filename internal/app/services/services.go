package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/edustack/communityhub/internal/app/models"
)

// Persistence contracts consumed by the services. The pgx-backed
// repositories satisfy them; tests substitute in-memory fakes.

// MembershipStore is the persistence contract for typed community
// memberships, keyed on (community, member kind, member id).
type MembershipStore interface {
	IsMember(ctx context.Context, communityID int64, actor models.ActorRef) (bool, error)
	RoleOf(ctx context.Context, communityID int64, actor models.ActorRef) (*models.MemberRole, error)
	JoinedAt(ctx context.Context, communityID int64, actor models.ActorRef) (*time.Time, error)
	Add(ctx context.Context, communityID int64, actor models.ActorRef, role models.MemberRole) (int64, error)
	Remove(ctx context.Context, communityID int64, actor models.ActorRef) (bool, error)
	ListByCommunityID(ctx context.Context, communityID int64) ([]models.Membership, error)
	CountByCommunityID(ctx context.Context, communityID int64) (int, error)
	CountsByCommunityIDs(ctx context.Context, communityIDs []int64) (map[int64]int, error)
}

// CommunityStore is the persistence contract for communities
type CommunityStore interface {
	CreateWithAdminMembership(ctx context.Context, community *models.Community) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search *string, offset uint64, limit int) ([]models.Community, int64, error)
}

// PostStore is the persistence contract for feed posts
type PostStore interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
	ListByCommunity(ctx context.Context, communityID int64, offset uint64, limit int) ([]models.Post, int64, error)
	ContentPathsByCommunity(ctx context.Context, communityID int64) ([]string, error)
}

// CommentStore is the persistence contract for threaded comments
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPostIDs(ctx context.Context, postIDs []int64) ([]models.Comment, error)
}

// LikeStore is the persistence contract for post likes
type LikeStore interface {
	Exists(ctx context.Context, postID int64, liker models.ActorRef) (bool, error)
	Add(ctx context.Context, postID int64, liker models.ActorRef) (int64, error)
	Remove(ctx context.Context, postID int64, liker models.ActorRef) (bool, error)
	CountByPostID(ctx context.Context, postID int64) (int, error)
	CountsByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int, error)
	LikedPostIDs(ctx context.Context, liker models.ActorRef, postIDs []int64) (map[int64]bool, error)
}

// ActorDirectory resolves actor display information from the external
// identity store.
type ActorDirectory interface {
	GetProfile(ctx context.Context, ref models.ActorRef) (*models.ActorProfile, error)
	GetProfiles(ctx context.Context, refs []models.ActorRef) (map[models.ActorRef]models.ActorProfile, error)
}

// BlobStore persists uploaded media and returns a reference to it
type BlobStore interface {
	SaveFile(fileHeader *multipart.FileHeader, bucket string) (string, error)
	DeleteFile(ref string) error
	URLFor(ref string) string
}
