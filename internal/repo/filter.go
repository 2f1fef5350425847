package repo

import (
	"fmt"
	"strings"

	"github.com/linkflow/linkflow/internal/model"
)

// clickConditions renders f as SQL predicates on the clicks table aliased as alias.
// Placeholders are numbered from argOffset+1 so the result can be appended to a
// query that already binds argOffset parameters.
func clickConditions(f model.StatsFilter, alias string, argOffset int) ([]string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", argOffset+len(args))
	}

	if f.From != nil {
		conds = append(conds, alias+".created_at >= "+next(f.From.UTC()))
	}
	if f.To != nil {
		conds = append(conds, alias+".created_at < "+next(f.To.UTC()))
	}
	if len(f.GroupIDs) > 0 {
		conds = append(conds, alias+".group_id = ANY("+next(f.GroupIDs)+"::text[]::uuid[])")
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func andClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(conds, " AND ")
}
