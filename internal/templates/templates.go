// Package templates is the Postgres-backed catalog of scripted-video
// templates. Scripted submissions are validated against it.
package templates

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yaomexi/internal/httpkit"
	"yaomexi/internal/pkg/errors"
)

// Template is one catalog row. Deleted templates are soft-deleted and no
// longer accepted by submissions.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Repository reads and writes the templates table.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, t *Template) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO templates (id, name, description)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, t.ID, t.Name, t.Description).Scan(&t.CreatedAt)

	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.Conflict("template already exists").WithField("template", t.ID)
		}
		return errors.Wrap(err, "templates.create", "insert template")
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Template, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(description,''), created_at
		FROM templates
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "templates.list", "query templates")
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "templates.list", "scan template")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Template, error) {
	var t Template
	err := r.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(description,''), created_at, deleted_at
		FROM templates
		WHERE id=$1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("template", id)
		}
		return nil, errors.Wrap(err, "templates.get", "query template")
	}
	return &t, nil
}

// Exists reports whether a live (non-deleted) template with this id is in
// the catalog.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM templates WHERE id=$1 AND deleted_at IS NULL
		)
	`, id).Scan(&found)
	if err != nil {
		return false, errors.Wrap(err, "templates.exists", "query template")
	}
	return found, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE templates
		SET deleted_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return errors.Wrap(err, "templates.delete", "soft delete template")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("template", id)
	}
	return nil
}
