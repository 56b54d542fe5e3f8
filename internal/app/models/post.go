package models

import "time"

// Post is a feed entry in a community. A post is either an original post
// (caption or content present) or a repost referencing an earlier post.
type Post struct {
	ID             int64     `json:"id" db:"id"`
	CommunityID    int64     `json:"communityId" db:"community_id"`
	Author         ActorRef  `json:"author"`
	Caption        *string   `json:"caption,omitempty" db:"caption"`
	ContentPath    *string   `json:"contentPath,omitempty" db:"content_path"`
	OriginalPostID *int64    `json:"originalPostId,omitempty" db:"original_post_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRepost reports whether the post references an original post
func (p *Post) IsRepost() bool {
	return p.OriginalPostID != nil
}
