package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/linkflow/linkflow/internal/model"
	"github.com/linkflow/linkflow/internal/repo"
)

const defaultTopNumbers = 10

type Stats struct {
	stats  repo.StatsRepository
	groups repo.GroupRepository
	top    int
}

func NewStats(stats repo.StatsRepository, groups repo.GroupRepository) *Stats {
	return &Stats{stats: stats, groups: groups, top: defaultTopNumbers}
}

// Dashboard runs the independent aggregates concurrently; the first failure
// cancels the rest.
func (s *Stats) Dashboard(ctx context.Context, f model.StatsFilter) (model.DashboardStats, error) {
	var out model.DashboardStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Totals, err = s.stats.ClickTotals(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Inventory, err = s.stats.Inventory(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ClicksByDay, err = s.stats.ClicksByDay(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.DeviceBreakdown, err = s.stats.DeviceBreakdown(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.ByGroup, err = s.stats.ClicksByGroup(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.TopNumbers, err = s.stats.TopNumbers(ctx, f, s.top)
		return err
	})

	if err := g.Wait(); err != nil {
		return model.DashboardStats{}, err
	}
	return out, nil
}

// GroupAnalytics scopes the aggregates to one group. Unknown ids yield repo.ErrNotFound.
func (s *Stats) GroupAnalytics(ctx context.Context, groupID string, f model.StatsFilter) (model.GroupAnalytics, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return model.GroupAnalytics{}, err
	}

	f.GroupIDs = []string{groupID}
	out := model.GroupAnalytics{Group: group}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Totals, err = s.stats.ClickTotals(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.ClicksByDay, err = s.stats.ClicksByDay(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.DeviceBreakdown, err = s.stats.DeviceBreakdown(ctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.Numbers, err = s.stats.GroupNumbers(ctx, groupID, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return model.GroupAnalytics{}, err
	}
	return out, nil
}
