package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Unique constraint names enforced by the schema. Services use these to map
// storage-level violations to domain errors.
const (
	ConstraintMembershipUnique = "community_members_member_uniq"
	ConstraintLikeUnique       = "post_likes_liker_uniq"
)

// Repositories holds all the repository instances
type Repositories struct {
	MembershipRepository *MembershipRepository
	CommunityRepository  *CommunityRepository
	PostRepository       *PostRepository
	CommentRepository    *CommentRepository
	LikeRepository       *LikeRepository
	ActorRepository      *ActorRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		MembershipRepository: NewMembershipRepository(db),
		CommunityRepository:  NewCommunityRepository(db),
		PostRepository:       NewPostRepository(db),
		CommentRepository:    NewCommentRepository(db),
		LikeRepository:       NewLikeRepository(db),
		ActorRepository:      NewActorRepository(db),
	}
}
