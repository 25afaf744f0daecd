package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils"
)

const pgUniqueViolation = "23505"

// Constraint names used to tell cpf and email conflicts apart
const (
	personsCPFConstraint   = "persons_cpf_key"
	personsEmailConstraint = "persons_email_key"
)

// PersonsSchema creates the persons table. Columns follow the original
// relational schema plus telefone_e164.
const PersonsSchema = `
CREATE TABLE IF NOT EXISTS persons (
	id              UUID PRIMARY KEY,
	nome            VARCHAR(100) NOT NULL,
	data_nascimento DATE NOT NULL,
	nome_mae        VARCHAR(100) NOT NULL,
	rg              VARCHAR(20) NOT NULL,
	cpf             VARCHAR(14) NOT NULL CONSTRAINT persons_cpf_key UNIQUE,
	cep             VARCHAR(9) NOT NULL,
	logradouro      VARCHAR(100) NOT NULL,
	numero          VARCHAR(20) NOT NULL,
	complemento     VARCHAR(100),
	bairro          VARCHAR(100) NOT NULL,
	cidade          VARCHAR(100) NOT NULL,
	estado          VARCHAR(2) NOT NULL,
	telefone        VARCHAR(15) NOT NULL,
	telefone_e164   VARCHAR(20),
	email           VARCHAR(100) NOT NULL CONSTRAINT persons_email_key UNIQUE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS persons_nome_idx ON persons (nome);
`

const personColumns = `id::text, nome, to_char(data_nascimento, 'YYYY-MM-DD'), nome_mae, rg, cpf, cep,
	logradouro, numero, COALESCE(complemento, ''), bairro, cidade, estado, telefone,
	COALESCE(telefone_e164, ''), email, created_at, updated_at`

// PgxQuerier is the subset of *pgxpool.Pool used by the repository
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresPersonRepository stores persons in the persons table
type PostgresPersonRepository struct {
	db PgxQuerier
}

// NewPostgresPersonRepository creates a repository over db
func NewPostgresPersonRepository(db PgxQuerier) *PostgresPersonRepository {
	return &PostgresPersonRepository{db: db}
}

// Migrate creates the persons table when it does not exist
func (r *PostgresPersonRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, PersonsSchema); err != nil {
		return fmt.Errorf("failed to create persons table: %w", err)
	}
	return nil
}

// uniqueViolationConflict maps a unique violation to the models sentinel for
// the violated constraint, or nil
func uniqueViolationConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case personsCPFConstraint:
		return models.ErrCPFAlreadyExists
	case personsEmailConstraint:
		return models.ErrEmailAlreadyExists
	default:
		return nil
	}
}

func scanPerson(row pgx.Row) (*models.Person, error) {
	var p models.Person
	err := row.Scan(
		&p.ID, &p.Nome, &p.DataNascimento, &p.NomeMae, &p.RG, &p.CPF, &p.CEP,
		&p.Logradouro, &p.Numero, &p.Complemento, &p.Bairro, &p.Cidade, &p.Estado, &p.Telefone,
		&p.TelefoneE164, &p.Email, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a person
func (r *PostgresPersonRepository) Create(ctx context.Context, p *models.Person) error {
	ctx, span := utils.TraceDatabaseWrite(ctx, "persons", "insert")
	defer span.End()

	_, err := r.db.Exec(ctx, `
		INSERT INTO persons (id, nome, data_nascimento, nome_mae, rg, cpf, cep, logradouro, numero,
			complemento, bairro, cidade, estado, telefone, telefone_e164, email, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13, $14,
			NULLIF($15, ''), $16, $17, $18)`,
		p.ID, p.Nome, p.DataNascimento, p.NomeMae, p.RG, p.CPF, p.CEP, p.Logradouro, p.Numero,
		p.Complemento, p.Bairro, p.Cidade, p.Estado, p.Telefone, p.TelefoneE164, p.Email, p.CreatedAt, p.UpdatedAt,
	)
	recordDBOperation("person_insert", err)
	if err != nil {
		if conflict := uniqueViolationConflict(err); conflict != nil {
			return conflict
		}
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "insert"})
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

func (r *PostgresPersonRepository) findOne(ctx context.Context, name, where string, arg any) (*models.Person, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, "persons", name)
	defer span.End()

	p, err := scanPerson(r.db.QueryRow(ctx, "SELECT "+personColumns+" FROM persons WHERE "+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
	}
	recordDBOperation("person_find", err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"filter": name})
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	return p, nil
}

// FindByID returns the person with id
func (r *PostgresPersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	// ids that are not UUIDs cannot exist
	if !utils.IsValidUUID(id) {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "person_by_id", "id = $1::uuid", id)
}

// FindByCPF returns the person with cpf
func (r *PostgresPersonRepository) FindByCPF(ctx context.Context, cpf string) (*models.Person, error) {
	return r.findOne(ctx, "person_by_cpf", "cpf = $1", cpf)
}

// FindByEmail returns the person with email, compared case-insensitively
func (r *PostgresPersonRepository) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	return r.findOne(ctx, "person_by_email", "lower(email) = lower($1)", email)
}

// likePattern escapes LIKE wildcards in search and wraps it in %
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(search) + "%"
}

const searchWhere = `($1 = '' OR nome ILIKE $2 OR cpf ILIKE $2 OR email ILIKE $2)`

// List returns one page of persons sorted by name
func (r *PostgresPersonRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int64, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, "persons", "person_list")
	defer span.End()

	search := strings.TrimSpace(filter.Search)
	pattern := likePattern(search)

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM persons WHERE "+searchWhere, search, pattern).Scan(&total); err != nil {
		recordDBOperation("person_count", err)
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "count"})
		return nil, 0, fmt.Errorf("failed to count persons: %w", err)
	}

	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	rows, err := r.db.Query(ctx,
		"SELECT "+personColumns+" FROM persons WHERE "+searchWhere+" ORDER BY nome, id LIMIT $3 OFFSET $4",
		search, pattern, limit, filter.Offset())
	recordDBOperation("person_list", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "query"})
		return nil, 0, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	persons := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read persons: %w", err)
	}
	return persons, total, nil
}

// Update replaces a stored person
func (r *PostgresPersonRepository) Update(ctx context.Context, p *models.Person) error {
	ctx, span := utils.TraceDatabaseWrite(ctx, "persons", "update")
	defer span.End()

	if !utils.IsValidUUID(p.ID) {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE persons SET nome = $2, data_nascimento = $3::date, nome_mae = $4, rg = $5, cpf = $6,
			cep = $7, logradouro = $8, numero = $9, complemento = NULLIF($10, ''), bairro = $11,
			cidade = $12, estado = $13, telefone = $14, telefone_e164 = NULLIF($15, ''), email = $16,
			updated_at = $17
		WHERE id = $1::uuid`,
		p.ID, p.Nome, p.DataNascimento, p.NomeMae, p.RG, p.CPF, p.CEP, p.Logradouro, p.Numero,
		p.Complemento, p.Bairro, p.Cidade, p.Estado, p.Telefone, p.TelefoneE164, p.Email, p.UpdatedAt,
	)
	recordDBOperation("person_update", err)
	if err != nil {
		if conflict := uniqueViolationConflict(err); conflict != nil {
			return conflict
		}
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "update"})
		return fmt.Errorf("failed to update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a person
func (r *PostgresPersonRepository) Delete(ctx context.Context, id string) error {
	ctx, span := utils.TraceDatabaseWrite(ctx, "persons", "delete")
	defer span.End()

	if !utils.IsValidUUID(id) {
		return ErrNotFound
	}

	tag, err := r.db.Exec(ctx, "DELETE FROM persons WHERE id = $1::uuid", id)
	recordDBOperation("person_delete", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "delete"})
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
