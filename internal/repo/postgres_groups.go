package repo

import (
	"context"
	"database/sql"

	"github.com/linkflow/linkflow/internal/model"
)

const groupColumns = `id, name, slug, description, is_active, created_at, updated_at`

type PostgresGroupRepo struct {
	db *sql.DB
}

func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

func (r *PostgresGroupRepo) ListGroups(ctx context.Context) ([]model.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+groupColumns+`
		FROM groups
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresGroupRepo) GetGroup(ctx context.Context, id string) (model.Group, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+groupColumns+`
		FROM groups
		WHERE id = $1
	`, id)

	g, err := scanGroup(row)
	return g, classify(err)
}

func (r *PostgresGroupRepo) CreateGroup(ctx context.Context, in model.GroupInput) (model.Group, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO groups (id, name, slug, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+groupColumns,
		model.NewID(), in.Name, in.Slug, in.Description, in.Active(),
	)

	g, err := scanGroup(row)
	return g, classify(err)
}

func (r *PostgresGroupRepo) UpdateGroup(ctx context.Context, id string, in model.GroupInput) (model.Group, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE groups
		SET name = $2,
		    slug = $3,
		    description = $4,
		    is_active = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+groupColumns,
		id, in.Name, in.Slug, in.Description, in.Active(),
	)

	g, err := scanGroup(row)
	return g, classify(err)
}

// DeleteGroup refuses to drop a group that still owns numbers; its clicks go with it.
func (r *PostgresGroupRepo) DeleteGroup(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, ErrGroupHasNumbers)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGroup(row rowScanner) (model.Group, error) {
	var g model.Group
	var desc sql.NullString
	if err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Slug,
		&desc,
		&g.IsActive,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return model.Group{}, err
	}
	g.Description = nullableString(desc)
	return g, nil
}
