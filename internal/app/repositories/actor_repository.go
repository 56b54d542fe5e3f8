package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edustack/communityhub/internal/app/models"
)

// profileColumns are the identity-store columns backing an ActorProfile.
// The students and mentors tables carry split name fields.
var profileColumns = []string{"id", "first_name", "last_name", "email"}

// ActorRepository looks up display information for polymorphic actors from
// the identity store's student and mentor tables. Actor records themselves
// are owned by the identity subsystem; this repository only reads them.
type ActorRepository struct {
	db *pgxpool.Pool
}

// NewActorRepository creates a new ActorRepository
func NewActorRepository(db *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{db: db}
}

func tableForKind(kind models.ActorKind) (string, error) {
	switch kind {
	case models.ActorKindStudent:
		return "students", nil
	case models.ActorKindMentor:
		return "mentors", nil
	default:
		return "", fmt.Errorf("unknown actor kind: %q", kind)
	}
}

func profileQuery(table string, pred interface{}) squirrel.SelectBuilder {
	return squirrel.Select(profileColumns...).
		From(table).
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)
}

func displayName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}

// GetProfile retrieves a single actor's profile, or nil when the actor does
// not exist in the identity store.
func (r *ActorRepository) GetProfile(ctx context.Context, ref models.ActorRef) (*models.ActorProfile, error) {
	table, err := tableForKind(ref.Kind)
	if err != nil {
		return nil, err
	}

	sql, args, err := profileQuery(table, squirrel.Eq{"id": ref.ID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	profile := models.ActorProfile{Ref: ref}
	var firstName, lastName string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&profile.Ref.ID, &firstName, &lastName, &profile.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	profile.Name = displayName(firstName, lastName)

	return &profile, nil
}

// GetProfiles retrieves profiles for a set of actors, one query per kind
func (r *ActorRepository) GetProfiles(ctx context.Context, refs []models.ActorRef) (map[models.ActorRef]models.ActorProfile, error) {
	profiles := make(map[models.ActorRef]models.ActorProfile)
	if len(refs) == 0 {
		return profiles, nil
	}

	idsByKind := make(map[models.ActorKind][]int64)
	for _, ref := range refs {
		idsByKind[ref.Kind] = append(idsByKind[ref.Kind], ref.ID)
	}

	for kind, ids := range idsByKind {
		table, err := tableForKind(kind)
		if err != nil {
			return nil, err
		}

		sql, args, err := profileQuery(table, squirrel.Eq{"id": ids}).ToSql()
		if err != nil {
			return nil, fmt.Errorf("error building SQL: %w", err)
		}

		rows, err := r.db.Query(ctx, sql, args...)
		if err != nil {
			return nil, fmt.Errorf("error executing query: %w", err)
		}

		for rows.Next() {
			profile := models.ActorProfile{Ref: models.ActorRef{Kind: kind}}
			var firstName, lastName string
			if err := rows.Scan(&profile.Ref.ID, &firstName, &lastName, &profile.Email); err != nil {
				rows.Close()
				return nil, fmt.Errorf("error scanning row: %w", err)
			}
			profile.Name = displayName(firstName, lastName)
			profiles[profile.Ref] = profile
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error iterating rows: %w", err)
		}
		rows.Close()
	}

	return profiles, nil
}
