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
	"github.com/edustack/communityhub/internal/db"
)

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// CreateWithAdminMembership inserts a community and its creator's admin
// membership in a single transaction. A community must never exist without
// an admin membership, so a failed membership insert rolls the whole
// creation back.
func (r *CommunityRepository) CreateWithAdminMembership(ctx context.Context, community *models.Community) (int64, error) {
	var id int64
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		insertCommunity := squirrel.Insert("communities").
			Columns("name", "description", "profile_photo", "cover_photo", "creator_kind", "creator_id", "domain_id", "subdomain_ids").
			Values(
				community.Name,
				community.Description,
				community.ProfilePhoto,
				community.CoverPhoto,
				string(community.Creator.Kind),
				community.Creator.ID,
				community.DomainID,
				community.SubdomainIDs,
			).
			Suffix("RETURNING id, created_at, updated_at").
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := insertCommunity.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		err = tx.QueryRow(ctx, sql, args...).Scan(&id, &community.CreatedAt, &community.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error inserting community: %w", err)
		}

		insertMembership := squirrel.Insert("community_members").
			Columns("community_id", "member_kind", "member_id", "role", "joined_at").
			Values(id, string(community.Creator.Kind), community.Creator.ID, string(models.RoleAdmin), time.Now()).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err = insertMembership.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error inserting admin membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	community.ID = id
	return id, nil
}

// GetByID retrieves a community by ID, or nil when it does not exist
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	query := squirrel.Select(
		"id", "name", "description", "profile_photo", "cover_photo",
		"creator_kind", "creator_id", "domain_id", "subdomain_ids",
		"created_at", "updated_at",
	).
		From("communities").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var community models.Community
	var creatorKind string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&community.ID,
		&community.Name,
		&community.Description,
		&community.ProfilePhoto,
		&community.CoverPhoto,
		&creatorKind,
		&community.Creator.ID,
		&community.DomainID,
		&community.SubdomainIDs,
		&community.CreatedAt,
		&community.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	community.Creator.Kind = models.ActorKind(creatorKind)
	return &community, nil
}

// Update persists the mutable fields of a community
func (r *CommunityRepository) Update(ctx context.Context, community *models.Community) error {
	query := squirrel.Update("communities").
		Set("name", community.Name).
		Set("description", community.Description).
		Set("profile_photo", community.ProfilePhoto).
		Set("cover_photo", community.CoverPhoto).
		Set("domain_id", community.DomainID).
		Set("subdomain_ids", community.SubdomainIDs).
		Set("updated_at", time.Now()).
		Where("id = ?", community.ID).
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

// Delete removes a community. Memberships, posts, comments and likes are
// removed by the schema's ON DELETE CASCADE chain, so the whole cascade is
// atomic within this single statement.
func (r *CommunityRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("communities").
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

// List retrieves communities with optional name search and pagination
func (r *CommunityRepository) List(ctx context.Context, search *string, offset uint64, limit int) ([]models.Community, int64, error) {
	query := squirrel.Select(
		"id", "name", "description", "profile_photo", "cover_photo",
		"creator_kind", "creator_id", "domain_id", "subdomain_ids",
		"created_at", "updated_at",
		"COUNT(*) OVER() AS total_count",
	).
		From("communities").
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if search != nil && *search != "" {
		query = query.Where("name ILIKE ?", "%"+*search+"%")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var communities []models.Community
	var total int64
	for rows.Next() {
		var community models.Community
		var creatorKind string
		err := rows.Scan(
			&community.ID,
			&community.Name,
			&community.Description,
			&community.ProfilePhoto,
			&community.CoverPhoto,
			&creatorKind,
			&community.Creator.ID,
			&community.DomainID,
			&community.SubdomainIDs,
			&community.CreatedAt,
			&community.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		community.Creator.Kind = models.ActorKind(creatorKind)
		communities = append(communities, community)
	}

	return communities, total, rows.Err()
}
