package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/uptrace/bun"
)

type Group struct {
	bun.BaseModel `bun:"table:group_registration"`

	GroupId      string          `bun:",pk"`
	GroupName    string          `bun:",notnull"`
	IsActive     bool            `bun:",notnull"`
	RegisteredBy string          `bun:",notnull"`
	RegisteredAt time.Time       `bun:",notnull"`
	Settings     map[string]bool `bun:"type:jsonb,notnull"`
}

func groupModel(reg dealstreak.GroupRegistration) *Group {
	settings := make(map[string]bool, len(reg.Settings))
	for kind, enabled := range reg.Settings {
		settings[string(kind)] = enabled
	}
	return &Group{
		GroupId:      reg.GroupId,
		GroupName:    reg.GroupName,
		IsActive:     reg.IsActive,
		RegisteredBy: reg.RegisteredBy,
		RegisteredAt: reg.RegisteredAt,
		Settings:     settings,
	}
}

func (g Group) ToDomain() dealstreak.GroupRegistration {
	settings := make(dealstreak.NotificationSettings, len(g.Settings))
	for kind, enabled := range g.Settings {
		settings[dealstreak.NotificationKind(kind)] = enabled
	}
	return dealstreak.GroupRegistration{
		GroupId:      g.GroupId,
		GroupName:    g.GroupName,
		IsActive:     g.IsActive,
		RegisteredBy: g.RegisteredBy,
		RegisteredAt: g.RegisteredAt.UTC(),
		Settings:     settings,
	}
}

type GroupStore struct {
	DB *bun.DB
}

var _ dealstreak.GroupStore = (*GroupStore)(nil)

func (s *GroupStore) ById(ctx context.Context, groupId string) (dealstreak.GroupRegistration, error) {
	group := new(Group)
	err := s.DB.NewSelect().
		Model(group).
		Where("group_id=?", groupId).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dealstreak.GroupRegistration{}, dealstreak.ErrGroupNotFound
	}
	if err != nil {
		return dealstreak.GroupRegistration{}, fmt.Errorf("select group: %w", err)
	}
	return group.ToDomain(), nil
}

func (s *GroupStore) Save(ctx context.Context, reg dealstreak.GroupRegistration) error {
	_, err := s.DB.NewInsert().
		Model(groupModel(reg)).
		On(`CONFLICT (group_id) DO UPDATE SET group_name=EXCLUDED.group_name, ` +
			`is_active=EXCLUDED.is_active, registered_by=EXCLUDED.registered_by, ` +
			`registered_at=EXCLUDED.registered_at, settings=EXCLUDED.settings`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

func (s *GroupStore) All(ctx context.Context) ([]dealstreak.GroupRegistration, error) {
	var groups []Group
	err := s.DB.NewSelect().
		Model(&groups).
		Order("registered_at", "group_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select groups: %w", err)
	}
	regs := make([]dealstreak.GroupRegistration, len(groups))
	for i, g := range groups {
		regs[i] = g.ToDomain()
	}
	return regs, nil
}
