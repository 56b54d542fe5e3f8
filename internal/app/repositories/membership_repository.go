package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edustack/communityhub/internal/app/models"
)

// MembershipRepository handles database operations for community memberships
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// IsMember checks if an actor holds a membership in a community
func (r *MembershipRepository) IsMember(ctx context.Context, communityID int64, actor models.ActorRef) (bool, error) {
	query := squirrel.Select("1").
		From("community_members").
		Where("community_id = ? AND member_kind = ? AND member_id = ?", communityID, string(actor.Kind), actor.ID).
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

// RoleOf returns the role an actor holds in a community, or nil when the
// actor is not a member.
func (r *MembershipRepository) RoleOf(ctx context.Context, communityID int64, actor models.ActorRef) (*models.MemberRole, error) {
	query := squirrel.Select("role").
		From("community_members").
		Where("community_id = ? AND member_kind = ? AND member_id = ?", communityID, string(actor.Kind), actor.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var role models.MemberRole
	err = r.db.QueryRow(ctx, sql, args...).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &role, nil
}

// JoinedAt returns the join timestamp of an actor's membership, or nil when
// the actor is not a member.
func (r *MembershipRepository) JoinedAt(ctx context.Context, communityID int64, actor models.ActorRef) (*time.Time, error) {
	query := squirrel.Select("joined_at").
		From("community_members").
		Where("community_id = ? AND member_kind = ? AND member_id = ?", communityID, string(actor.Kind), actor.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var joinedAt time.Time
	err = r.db.QueryRow(ctx, sql, args...).Scan(&joinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &joinedAt, nil
}

// Add inserts a membership row with an explicit role. A concurrent duplicate
// insert fails on the community_members_member_uniq constraint; callers remap
// that violation to the domain conflict error.
func (r *MembershipRepository) Add(ctx context.Context, communityID int64, actor models.ActorRef, role models.MemberRole) (int64, error) {
	query := squirrel.Insert("community_members").
		Columns("community_id", "member_kind", "member_id", "role", "joined_at").
		Values(communityID, string(actor.Kind), actor.ID, string(role), time.Now()).
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

// Remove deletes an actor's membership. It reports whether a row was removed.
func (r *MembershipRepository) Remove(ctx context.Context, communityID int64, actor models.ActorRef) (bool, error) {
	query := squirrel.Delete("community_members").
		Where("community_id = ? AND member_kind = ? AND member_id = ?", communityID, string(actor.Kind), actor.ID).
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

// ListByCommunityID retrieves all memberships of a community, newest first
func (r *MembershipRepository) ListByCommunityID(ctx context.Context, communityID int64) ([]models.Membership, error) {
	query := squirrel.Select("id", "community_id", "member_kind", "member_id", "role", "joined_at").
		From("community_members").
		Where("community_id = ?", communityID).
		OrderBy("joined_at DESC").
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

	var memberships []models.Membership
	for rows.Next() {
		var m models.Membership
		var kind string
		err := rows.Scan(&m.ID, &m.CommunityID, &kind, &m.Member.ID, &m.Role, &m.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		m.Member.Kind = models.ActorKind(kind)
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

// CountByCommunityID returns the number of members in a community
func (r *MembershipRepository) CountByCommunityID(ctx context.Context, communityID int64) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("community_members").
		Where("community_id = ?", communityID).
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

// CountsByCommunityIDs returns member counts for multiple communities
func (r *MembershipRepository) CountsByCommunityIDs(ctx context.Context, communityIDs []int64) (map[int64]int, error) {
	if len(communityIDs) == 0 {
		return make(map[int64]int), nil
	}

	query := squirrel.Select("community_id", "COUNT(*)").
		From("community_members").
		Where(squirrel.Eq{"community_id": communityIDs}).
		GroupBy("community_id").
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
		var communityID int64
		var count int
		if err := rows.Scan(&communityID, &count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[communityID] = count
	}

	return counts, rows.Err()
}
