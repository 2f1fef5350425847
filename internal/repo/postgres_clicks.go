package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/linkflow/linkflow/internal/model"
)

const countryCode = "55"

type PostgresClickRepo struct {
	db *sql.DB
}

func NewPostgresClickRepo(db *sql.DB) *PostgresClickRepo {
	return &PostgresClickRepo{db: db}
}

// RecordClick appends one click for the group behind evt.GroupSlug. The number is
// matched on digits with or without the country code; when none matches the click
// is still stored with a NULL number_id.
func (r *PostgresClickRepo) RecordClick(ctx context.Context, evt model.ClickEvent) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO clicks (group_id, number_id, phone, ip_address, user_agent, device_type, referrer)
		SELECT g.id,
		       (SELECT n.id
		        FROM whatsapp_numbers n
		        WHERE n.group_id = g.id
		          AND regexp_replace(n.phone, '\D', '', 'g') = ANY($3)
		        ORDER BY n.is_active DESC
		        LIMIT 1),
		       $2, $4, $5, $6, $7
		FROM groups g
		WHERE g.slug = $1
	`,
		evt.GroupSlug,
		evt.NumberPhone,
		phoneVariants(evt.NumberPhone),
		evt.IPAddress,
		evt.UserAgent,
		string(evt.DeviceType),
		evt.Referrer,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("group %q: %w", evt.GroupSlug, ErrNotFound)
	}
	return nil
}

func (r *PostgresClickRepo) ListClicks(ctx context.Context, f model.StatsFilter, limit int) ([]model.ClickRow, error) {
	conds, args := clickConditions(f, "c", 0)
	query := `
		SELECT c.id, c.group_id, c.number_id, c.phone, c.created_at, c.ip_address,
		       c.user_agent, c.device_type, c.referrer, g.name, g.slug
		FROM clicks c
		JOIN groups g ON g.id = c.group_id` + whereClause(conds) + `
		ORDER BY c.created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ClickRow{}
	for rows.Next() {
		var c model.ClickRow
		var numberID sql.NullString
		var device string
		if err := rows.Scan(
			&c.ID,
			&c.GroupID,
			&numberID,
			&c.Phone,
			&c.CreatedAt,
			&c.IPAddress,
			&c.UserAgent,
			&device,
			&c.Referrer,
			&c.GroupName,
			&c.GroupSlug,
		); err != nil {
			return nil, err
		}
		c.NumberID = nullableString(numberID)
		c.DeviceType = model.DeviceType(device)
		out = append(out, c)
	}
	return out, rows.Err()
}

// phoneVariants lists the digit strings a stored phone may have been saved as.
func phoneVariants(phone string) []string {
	d := model.Digits(phone)
	if d == "" {
		return []string{}
	}
	if strings.HasPrefix(d, countryCode) && len(d) > len(countryCode) {
		return []string{d, strings.TrimPrefix(d, countryCode)}
	}
	return []string{d, countryCode + d}
}
