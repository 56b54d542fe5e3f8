package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edustack/communityhub/internal/app/models"
)

// CommentRepository handles database operations for post comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and returns its id
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	query := squirrel.Insert("comments").
		Columns("post_id", "author_kind", "author_id", "content", "parent_comment_id").
		Values(
			comment.PostID,
			string(comment.Author.Kind),
			comment.Author.ID,
			comment.Content,
			comment.ParentCommentID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	comment.ID = id
	return id, nil
}

// GetByID retrieves a comment by ID, or nil when it does not exist
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := squirrel.Select("id", "post_id", "author_kind", "author_id", "content", "parent_comment_id", "created_at", "updated_at").
		From("comments").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var comment models.Comment
	var authorKind string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&comment.ID,
		&comment.PostID,
		&authorKind,
		&comment.Author.ID,
		&comment.Content,
		&comment.ParentCommentID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	comment.Author.Kind = models.ActorKind(authorKind)
	return &comment, nil
}

// ListByPostIDs retrieves all comments belonging to the given posts, oldest
// first so parents always precede their replies.
func (r *CommentRepository) ListByPostIDs(ctx context.Context, postIDs []int64) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	query := squirrel.Select("id", "post_id", "author_kind", "author_id", "content", "parent_comment_id", "created_at", "updated_at").
		From("comments").
		Where(squirrel.Eq{"post_id": postIDs}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		var authorKind string
		err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&authorKind,
			&comment.Author.ID,
			&comment.Content,
			&comment.ParentCommentID,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		comment.Author.Kind = models.ActorKind(authorKind)
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}
