package model

import "time"

// StatsFilter narrows click aggregates. Zero values mean "no bound".
type StatsFilter struct {
	From     *time.Time
	To       *time.Time
	GroupIDs []string
}

type DailyCount struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type GroupClicks struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Clicks  int64  `json:"clicks"`
}

type NumberClicks struct {
	NumberID string `json:"number_id"`
	Phone    string `json:"phone"`
	GroupID  string `json:"group_id"`
	IsActive bool   `json:"is_active"`
	Clicks   int64  `json:"clicks"`
}

type ClickTotals struct {
	Clicks         int64 `json:"clicks"`
	UniqueVisitors int64 `json:"unique_visitors"`
}

type Inventory struct {
	Groups        int64 `json:"groups"`
	ActiveGroups  int64 `json:"active_groups"`
	Numbers       int64 `json:"numbers"`
	ActiveNumbers int64 `json:"active_numbers"`
}

type DashboardStats struct {
	Totals          ClickTotals          `json:"totals"`
	Inventory       Inventory            `json:"inventory"`
	ClicksByDay     []DailyCount         `json:"clicks_by_day"`
	DeviceBreakdown map[DeviceType]int64 `json:"device_breakdown"`
	ByGroup         []GroupClicks        `json:"by_group"`
	TopNumbers      []NumberClicks       `json:"top_numbers"`
}

type GroupAnalytics struct {
	Group           Group                `json:"group"`
	Totals          ClickTotals          `json:"totals"`
	ClicksByDay     []DailyCount         `json:"clicks_by_day"`
	DeviceBreakdown map[DeviceType]int64 `json:"device_breakdown"`
	Numbers         []NumberClicks       `json:"numbers"`
}
