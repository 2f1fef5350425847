package repo

import (
	"context"
	"errors"

	"github.com/linkflow/linkflow/internal/model"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrGroupHasNumbers = errors.New("group still has numbers")
	ErrHasClicks       = errors.New("has recorded clicks")
)

type GroupRepository interface {
	ListGroups(ctx context.Context) ([]model.Group, error)
	GetGroup(ctx context.Context, id string) (model.Group, error)
	CreateGroup(ctx context.Context, in model.GroupInput) (model.Group, error)
	UpdateGroup(ctx context.Context, id string, in model.GroupInput) (model.Group, error)
	DeleteGroup(ctx context.Context, id string) error
}

type NumberRepository interface {
	ListNumbers(ctx context.Context, groupID string) ([]model.WhatsAppNumber, error)
	GetNumber(ctx context.Context, id string) (model.WhatsAppNumber, error)
	CreateNumber(ctx context.Context, in model.NumberInput) (model.WhatsAppNumber, error)
	UpdateNumber(ctx context.Context, id string, in model.NumberInput) (model.WhatsAppNumber, error)
	DeleteNumber(ctx context.Context, id string) error
}

type ClickRepository interface {
	RecordClick(ctx context.Context, evt model.ClickEvent) error
	ListClicks(ctx context.Context, f model.StatsFilter, limit int) ([]model.ClickRow, error)
}

type StatsRepository interface {
	ClickTotals(ctx context.Context, f model.StatsFilter) (model.ClickTotals, error)
	ClicksByDay(ctx context.Context, f model.StatsFilter) ([]model.DailyCount, error)
	DeviceBreakdown(ctx context.Context, f model.StatsFilter) (map[model.DeviceType]int64, error)
	ClicksByGroup(ctx context.Context, f model.StatsFilter) ([]model.GroupClicks, error)
	TopNumbers(ctx context.Context, f model.StatsFilter, limit int) ([]model.NumberClicks, error)
	GroupNumbers(ctx context.Context, groupID string, f model.StatsFilter) ([]model.NumberClicks, error)
	Inventory(ctx context.Context) (model.Inventory, error)
}
