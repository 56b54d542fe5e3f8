package dto

import "time"

// --- Request DTOs ---

// CreatePostRequest represents post creation data. The content file, when
// present, arrives separately in the multipart form.
type CreatePostRequest struct {
	Caption        *string `json:"caption,omitempty" form:"caption" binding:"omitempty,max=255"`
	OriginalPostID *int64  `json:"originalPostId,omitempty" form:"originalPostId"`
}

// --- Response DTOs ---

// CommentResponse represents a comment with its nested replies
type CommentResponse struct {
	ID              int64             `json:"id"`
	Author          ActorResponse     `json:"author"`
	Content         string            `json:"content"`
	ParentCommentID *int64            `json:"parentCommentId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	Replies         []CommentResponse `json:"replies,omitempty"`
}

// PostResponse represents a post with its engagement aggregates
type PostResponse struct {
	ID             int64             `json:"id"`
	CommunityID    int64             `json:"communityId"`
	Author         ActorResponse     `json:"author"`
	Caption        *string           `json:"caption,omitempty"`
	ContentURL     *string           `json:"contentUrl,omitempty"`
	OriginalPostID *int64            `json:"originalPostId,omitempty"`
	LikeCount      int               `json:"likeCount"`
	LikedByViewer  bool              `json:"likedByViewer"`
	CommentCount   int               `json:"commentCount"`
	Comments       []CommentResponse `json:"comments,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// PostListResponse represents a page of posts
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	PaginationInfo
}
