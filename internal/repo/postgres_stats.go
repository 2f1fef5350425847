package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linkflow/linkflow/internal/model"
)

type PostgresStatsRepo struct {
	db *sql.DB
}

func NewPostgresStatsRepo(db *sql.DB) *PostgresStatsRepo {
	return &PostgresStatsRepo{db: db}
}

func (r *PostgresStatsRepo) ClickTotals(ctx context.Context, f model.StatsFilter) (model.ClickTotals, error) {
	conds, args := clickConditions(f, "c", 0)

	var t model.ClickTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*),
		       count(DISTINCT c.ip_address) FILTER (WHERE c.ip_address <> 'unknown')
		FROM clicks c`+whereClause(conds),
		args...,
	).Scan(&t.Clicks, &t.UniqueVisitors)
	return t, err
}

func (r *PostgresStatsRepo) ClicksByDay(ctx context.Context, f model.StatsFilter) ([]model.DailyCount, error) {
	conds, args := clickConditions(f, "c", 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char((c.created_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day, count(*)
		FROM clicks c`+whereClause(conds)+`
		GROUP BY day
		ORDER BY day`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DailyCount{}
	for rows.Next() {
		var d model.DailyCount
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresStatsRepo) DeviceBreakdown(ctx context.Context, f model.StatsFilter) (map[model.DeviceType]int64, error) {
	conds, args := clickConditions(f, "c", 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.device_type, count(*)
		FROM clicks c`+whereClause(conds)+`
		GROUP BY c.device_type`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.DeviceType]int64{}
	for rows.Next() {
		var (
			device string
			n      int64
		)
		if err := rows.Scan(&device, &n); err != nil {
			return nil, err
		}
		out[model.DeviceType(device)] = n
	}
	return out, rows.Err()
}

func (r *PostgresStatsRepo) ClicksByGroup(ctx context.Context, f model.StatsFilter) ([]model.GroupClicks, error) {
	conds, args := clickConditions(f, "c", 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.slug, count(c.id) AS clicks
		FROM clicks c
		JOIN groups g ON g.id = c.group_id`+whereClause(conds)+`
		GROUP BY g.id, g.name, g.slug
		ORDER BY clicks DESC, g.name`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.GroupClicks{}
	for rows.Next() {
		var g model.GroupClicks
		if err := rows.Scan(&g.GroupID, &g.Name, &g.Slug, &g.Clicks); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresStatsRepo) TopNumbers(ctx context.Context, f model.StatsFilter, limit int) ([]model.NumberClicks, error) {
	conds, args := clickConditions(f, "c", 0)
	query := `
		SELECT n.id, n.phone, n.group_id, n.is_active, count(c.id) AS clicks
		FROM clicks c
		JOIN whatsapp_numbers n ON n.id = c.number_id` + whereClause(conds) + `
		GROUP BY n.id, n.phone, n.group_id, n.is_active
		ORDER BY clicks DESC, n.phone`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryNumberClicks(ctx, query, args...)
}

// GroupNumbers lists every number of a group with its click count, including
// numbers that were never clicked in the filtered window.
func (r *PostgresStatsRepo) GroupNumbers(ctx context.Context, groupID string, f model.StatsFilter) ([]model.NumberClicks, error) {
	f.GroupIDs = nil
	conds, args := clickConditions(f, "c", 1)
	args = append([]any{groupID}, args...)

	return r.queryNumberClicks(ctx, `
		SELECT n.id, n.phone, n.group_id, n.is_active, count(c.id) AS clicks
		FROM whatsapp_numbers n
		LEFT JOIN clicks c ON c.number_id = n.id`+andClause(conds)+`
		WHERE n.group_id = $1
		GROUP BY n.id, n.phone, n.group_id, n.is_active
		ORDER BY clicks DESC, n.phone`,
		args...,
	)
}

func (r *PostgresStatsRepo) Inventory(ctx context.Context) (model.Inventory, error) {
	var inv model.Inventory
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT count(*) FROM groups),
		       (SELECT count(*) FROM groups WHERE is_active),
		       (SELECT count(*) FROM whatsapp_numbers),
		       (SELECT count(*) FROM whatsapp_numbers WHERE is_active)
	`).Scan(&inv.Groups, &inv.ActiveGroups, &inv.Numbers, &inv.ActiveNumbers)
	return inv, err
}

func (r *PostgresStatsRepo) queryNumberClicks(ctx context.Context, query string, args ...any) ([]model.NumberClicks, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.NumberClicks{}
	for rows.Next() {
		var n model.NumberClicks
		if err := rows.Scan(&n.NumberID, &n.Phone, &n.GroupID, &n.IsActive, &n.Clicks); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
