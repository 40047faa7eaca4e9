package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const actorColumns = `id, name, role, person_id, api_key_hash, api_key_lookup, is_active, created_at, updated_at`

type actorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActorRepository creates a new actor repository
func NewActorRepository(db *sql.DB, logger *zap.Logger) *actorRepository {
	return &actorRepository{
		db:     db,
		logger: logger,
	}
}

// GetByAPIKey finds the active actor by the SHA256 lookup column, then
// verifies the key against the bcrypt hash.
func (r *actorRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE is_active = true AND api_key_lookup = $1`

	actor, err := scanActor(r.db.QueryRowContext(ctx, query, domain.APIKeyLookup(apiKey)))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "actor", ID: "api_key"}
	}
	if err != nil {
		r.logger.Error("Failed to get actor by API key", zap.Error(err))
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(actor.APIKeyHash), []byte(apiKey)) != nil {
		r.logger.Debug("API key lookup found actor but bcrypt verification failed", zap.String("actor_id", actor.ID.String()))
		return nil, &errors.ErrNotFound{Resource: "actor", ID: "api_key"}
	}

	return actor, nil
}

func (r *actorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE id = $1`

	actor, err := scanActor(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "actor", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get actor", zap.Error(err))
		return nil, err
	}

	return actor, nil
}

func (r *actorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	query := `
		INSERT INTO actors (` + actorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = now
	}
	if actor.UpdatedAt.IsZero() {
		actor.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		actor.ID,
		actor.Name,
		actor.Role,
		actor.PersonID,
		actor.APIKeyHash,
		actor.APIKeyLookup,
		actor.IsActive,
		actor.CreatedAt,
		actor.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create actor", zap.Error(err))
		return err
	}

	return nil
}

func (r *actorRepository) List(ctx context.Context) ([]*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list actors", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var actors []*domain.Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, actor)
	}

	return actors, rows.Err()
}

func scanActor(row rowScanner) (*domain.Actor, error) {
	var actor domain.Actor
	var personID uuid.NullUUID

	if err := row.Scan(
		&actor.ID,
		&actor.Name,
		&actor.Role,
		&personID,
		&actor.APIKeyHash,
		&actor.APIKeyLookup,
		&actor.IsActive,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	actor.PersonID = uuidPtr(personID)

	return &actor, nil
}
