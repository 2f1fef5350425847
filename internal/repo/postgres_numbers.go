package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linkflow/linkflow/internal/model"
)

const numberColumns = `id, phone, group_id, is_active, custom_message, created_at, updated_at`

type PostgresNumberRepo struct {
	db *sql.DB
}

func NewPostgresNumberRepo(db *sql.DB) *PostgresNumberRepo {
	return &PostgresNumberRepo{db: db}
}

// ListNumbers lists every number, or only those of groupID when it is set.
func (r *PostgresNumberRepo) ListNumbers(ctx context.Context, groupID string) ([]model.WhatsAppNumber, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if groupID == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+numberColumns+`
			FROM whatsapp_numbers
			ORDER BY created_at DESC
		`)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+numberColumns+`
			FROM whatsapp_numbers
			WHERE group_id = $1
			ORDER BY created_at DESC
		`, groupID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WhatsAppNumber{}
	for rows.Next() {
		n, err := scanNumber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresNumberRepo) GetNumber(ctx context.Context, id string) (model.WhatsAppNumber, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+numberColumns+`
		FROM whatsapp_numbers
		WHERE id = $1
	`, id)

	n, err := scanNumber(row)
	return n, classify(err)
}

func (r *PostgresNumberRepo) CreateNumber(ctx context.Context, in model.NumberInput) (model.WhatsAppNumber, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO whatsapp_numbers (id, phone, group_id, is_active, custom_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+numberColumns,
		model.NewID(), in.Phone, in.GroupID, in.Active(), in.CustomMessage,
	)

	n, err := scanNumber(row)
	return n, numberWriteErr(err)
}

func (r *PostgresNumberRepo) UpdateNumber(ctx context.Context, id string, in model.NumberInput) (model.WhatsAppNumber, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE whatsapp_numbers
		SET phone = $2,
		    group_id = $3,
		    is_active = $4,
		    custom_message = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+numberColumns,
		id, in.Phone, in.GroupID, in.Active(), in.CustomMessage,
	)

	n, err := scanNumber(row)
	return n, numberWriteErr(err)
}

func (r *PostgresNumberRepo) DeleteNumber(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM whatsapp_numbers WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, ErrHasClicks)
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

// SelectNextNumber delegates rotation to get_next_number_for_group, which is
// expected to pick and mark a number in one atomic statement.
func (r *PostgresNumberRepo) SelectNextNumber(ctx context.Context, groupSlug string) (model.NumberSelection, error) {
	if groupSlug == "" {
		return model.NumberSelection{}, model.ErrNoActiveNumber
	}

	var (
		sel model.NumberSelection
		msg sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT number_id, phone, final_message
		FROM get_next_number_for_group($1)
	`, groupSlug).Scan(&sel.NumberID, &sel.Phone, &msg)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NumberSelection{}, model.ErrNoActiveNumber
	}
	if err != nil {
		return model.NumberSelection{}, err
	}

	sel.FinalMessage = msg.String
	return sel, nil
}

func numberWriteErr(err error) error {
	err = classify(err)
	if errors.Is(err, errForeignKey) {
		v := &model.ValidationError{}
		v.Add("group_id", "does not reference an existing group")
		return v
	}
	return err
}

func scanNumber(row rowScanner) (model.WhatsAppNumber, error) {
	var n model.WhatsAppNumber
	var msg sql.NullString
	if err := row.Scan(
		&n.ID,
		&n.Phone,
		&n.GroupID,
		&n.IsActive,
		&msg,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return model.WhatsAppNumber{}, err
	}
	n.CustomMessage = nullableString(msg)
	return n, nil
}
