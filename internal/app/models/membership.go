package models

import "time"

// MemberRole defines the role a member holds within a community
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Membership associates an actor with a community and a role.
// At most one row exists per (community, member kind, member id).
type Membership struct {
	ID          int64      `json:"id" db:"id"`
	CommunityID int64      `json:"communityId" db:"community_id"`
	Member      ActorRef   `json:"member"`
	Role        MemberRole `json:"role" db:"role"`
	JoinedAt    time.Time  `json:"joinedAt" db:"joined_at"`
}
