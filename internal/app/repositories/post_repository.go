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

// PostRepository handles database operations for community posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post and returns its id
func (r *PostRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := squirrel.Insert("posts").
		Columns("community_id", "author_kind", "author_id", "caption", "content_path", "original_post_id").
		Values(
			post.CommunityID,
			string(post.Author.Kind),
			post.Author.ID,
			post.Caption,
			post.ContentPath,
			post.OriginalPostID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	post.ID = id
	return id, nil
}

// GetByID retrieves a post by ID, or nil when it does not exist
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := squirrel.Select(
		"id", "community_id", "author_kind", "author_id",
		"caption", "content_path", "original_post_id",
		"created_at", "updated_at",
	).
		From("posts").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var post models.Post
	var authorKind string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&post.ID,
		&post.CommunityID,
		&authorKind,
		&post.Author.ID,
		&post.Caption,
		&post.ContentPath,
		&post.OriginalPostID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	post.Author.Kind = models.ActorKind(authorKind)
	return &post, nil
}

// Delete removes a post. Its comments and likes are removed by the schema's
// ON DELETE CASCADE chain.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("posts").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// ContentPathsByCommunity returns the blob references of all posts in a
// community, used to clean up storage before a cascade delete.
func (r *PostRepository) ContentPathsByCommunity(ctx context.Context, communityID int64) ([]string, error) {
	query := squirrel.Select("content_path").
		From("posts").
		Where("community_id = ? AND content_path IS NOT NULL", communityID).
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

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, rows.Err()
}

// ListByCommunity retrieves a page of posts in a community, newest first
func (r *PostRepository) ListByCommunity(ctx context.Context, communityID int64, offset uint64, limit int) ([]models.Post, int64, error) {
	query := squirrel.Select(
		"id", "community_id", "author_kind", "author_id",
		"caption", "content_path", "original_post_id",
		"created_at", "updated_at",
		"COUNT(*) OVER() AS total_count",
	).
		From("posts").
		Where("community_id = ?", communityID).
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	var total int64
	for rows.Next() {
		var post models.Post
		var authorKind string
		err := rows.Scan(
			&post.ID,
			&post.CommunityID,
			&authorKind,
			&post.Author.ID,
			&post.Caption,
			&post.ContentPath,
			&post.OriginalPostID,
			&post.CreatedAt,
			&post.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		post.Author.Kind = models.ActorKind(authorKind)
		posts = append(posts, post)
	}

	return posts, total, rows.Err()
}
