package dto

// AddCommentRequest represents comment creation data
type AddCommentRequest struct {
	Content         string `json:"content" binding:"required,max=1000"`
	ParentCommentID *int64 `json:"parentCommentId,omitempty"`
}

// LikeToggleResponse represents the outcome of a like toggle
type LikeToggleResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
