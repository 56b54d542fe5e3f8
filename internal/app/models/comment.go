package models

import "time"

// Comment is a threaded comment on a post. Replies reference their parent
// through ParentCommentID; the parent always belongs to the same post.
type Comment struct {
	ID              int64     `json:"id" db:"id"`
	PostID          int64     `json:"postId" db:"post_id"`
	Author          ActorRef  `json:"author"`
	Content         string    `json:"content" db:"content"`
	ParentCommentID *int64    `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
