package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

type personRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *sql.DB, logger *zap.Logger) *personRepository {
	return &personRepository{
		db:     db,
		logger: logger,
	}
}

func (r *personRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	query := `
		SELECT id, name, cpf, person_type, created_by, created_at
		FROM persons
		WHERE id = $1
	`

	person, err := scanPerson(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "person", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get person", zap.Error(err))
		return nil, err
	}

	return person, nil
}

// FindOrCreateByCPF is idempotent on the CPF: an existing person keeps its
// stored name and type.
func (r *personRepository) FindOrCreateByCPF(ctx context.Context, person *domain.Person) (*domain.Person, error) {
	if person.CPF == nil {
		return nil, &errors.ErrValidation{Message: "CPF is required", Fields: map[string]string{"cpf": "required"}}
	}

	insert := `
		INSERT INTO persons (id, name, cpf, person_type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cpf) DO NOTHING
	`

	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, insert,
		person.ID,
		person.Name,
		person.CPF,
		person.Type,
		person.CreatedBy,
		person.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create person", zap.Error(err))
		return nil, err
	}

	query := `
		SELECT id, name, cpf, person_type, created_by, created_at
		FROM persons
		WHERE cpf = $1
	`

	stored, err := scanPerson(r.db.QueryRowContext(ctx, query, person.CPF))
	if err != nil {
		r.logger.Error("Failed to read back person", zap.Error(err))
		return nil, err
	}

	return stored, nil
}

func (r *personRepository) FindEmployeeByName(ctx context.Context, name string) (*domain.Person, error) {
	query := `
		SELECT id, name, cpf, person_type, created_by, created_at
		FROM persons
		WHERE name = $1 AND person_type <> $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	person, err := scanPerson(r.db.QueryRowContext(ctx, query, name, domain.RoleClient))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "employee", ID: name}
	}
	if err != nil {
		r.logger.Error("Failed to find employee by name", zap.Error(err))
		return nil, err
	}

	return person, nil
}

func (r *personRepository) FindContactOwner(ctx context.Context, phone string, email *string) (*uuid.UUID, error) {
	query := `
		SELECT person_id
		FROM person_contacts
		WHERE phone = $1 OR ($2::text IS NOT NULL AND email = $2)
		ORDER BY created_at ASC
		LIMIT 1
	`

	var personID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, phone, email).Scan(&personID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find contact owner", zap.Error(err))
		return nil, err
	}

	return &personID, nil
}

func (r *personRepository) AttachContact(ctx context.Context, contact *domain.Contact) error {
	query := `
		INSERT INTO person_contacts (id, person_id, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.PersonID,
		contact.Phone,
		contact.Email,
		contact.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to attach contact", zap.Error(err))
		return err
	}

	return nil
}

func (r *personRepository) AttachAddress(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO person_addresses (id, person_id, street, number, cep, neighborhood, city_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING
	`

	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		address.ID,
		address.PersonID,
		address.Street,
		address.Number,
		address.CEP,
		address.Neighborhood,
		address.CityID,
		address.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to attach address", zap.Error(err))
		return err
	}

	return nil
}

func (r *personRepository) FindCityByName(ctx context.Context, name string) (*domain.City, error) {
	query := `
		SELECT id, name, uf, code
		FROM cities
		WHERE UPPER(name) = UPPER($1)
		ORDER BY name ASC
		LIMIT 1
	`

	var city domain.City
	err := r.db.QueryRowContext(ctx, query, name).Scan(&city.ID, &city.Name, &city.UF, &city.Code)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "city", ID: name}
	}
	if err != nil {
		r.logger.Error("Failed to find city", zap.Error(err))
		return nil, err
	}

	return &city, nil
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var person domain.Person
	var cpf sql.NullString
	var createdBy uuid.NullUUID

	if err := row.Scan(
		&person.ID,
		&person.Name,
		&cpf,
		&person.Type,
		&createdBy,
		&person.CreatedAt,
	); err != nil {
		return nil, err
	}
	person.CPF = stringPtr(cpf)
	person.CreatedBy = uuidPtr(createdBy)

	return &person, nil
}
