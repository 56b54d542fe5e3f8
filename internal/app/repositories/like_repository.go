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

// LikeRepository handles database operations for post likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Exists checks whether an actor has liked a post
func (r *LikeRepository) Exists(ctx context.Context, postID int64, liker models.ActorRef) (bool, error) {
	query := squirrel.Select("1").
		From("post_likes").
		Where("post_id = ? AND liker_kind = ? AND liker_id = ?", postID, string(liker.Kind), liker.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var exists int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// Add inserts a like row. A concurrent duplicate insert fails on the
// post_likes_liker_uniq constraint.
func (r *LikeRepository) Add(ctx context.Context, postID int64, liker models.ActorRef) (int64, error) {
	query := squirrel.Insert("post_likes").
		Columns("post_id", "liker_kind", "liker_id").
		Values(postID, string(liker.Kind), liker.ID).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// Remove deletes an actor's like on a post. It reports whether a row was removed.
func (r *LikeRepository) Remove(ctx context.Context, postID int64, liker models.ActorRef) (bool, error) {
	query := squirrel.Delete("post_likes").
		Where("post_id = ? AND liker_kind = ? AND liker_id = ?", postID, string(liker.Kind), liker.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CountByPostID returns the number of likes on a post
func (r *LikeRepository) CountByPostID(ctx context.Context, postID int64) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("post_likes").
		Where("post_id = ?", postID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return count, nil
}

// CountsByPostIDs returns like counts for multiple posts
func (r *LikeRepository) CountsByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	if len(postIDs) == 0 {
		return make(map[int64]int), nil
	}

	query := squirrel.Select("post_id", "COUNT(*)").
		From("post_likes").
		Where(squirrel.Eq{"post_id": postIDs}).
		GroupBy("post_id").
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

	counts := make(map[int64]int)
	for rows.Next() {
		var postID int64
		var count int
		if err := rows.Scan(&postID, &count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[postID] = count
	}

	return counts, rows.Err()
}

// LikedPostIDs returns which of the given posts the actor has liked
func (r *LikeRepository) LikedPostIDs(ctx context.Context, liker models.ActorRef, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := squirrel.Select("post_id").
		From("post_likes").
		Where(squirrel.Eq{"post_id": postIDs}).
		Where("liker_kind = ? AND liker_id = ?", string(liker.Kind), liker.ID).
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

	liked := make(map[int64]bool)
	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		liked[postID] = true
	}

	return liked, rows.Err()
}
