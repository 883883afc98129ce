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

type Activity struct {
	bun.BaseModel `bun:"table:activity"`

	Id          string                 `bun:",pk"`
	OwnerId     string                 `bun:",notnull"`
	Type        string                 `bun:",notnull"`
	Description string                 `bun:",notnull"`
	Points      int                    `bun:",notnull"`
	Status      string                 `bun:",notnull"`
	Metadata    map[string]interface{} `bun:"type:jsonb"`
	CreatedAt   time.Time              `bun:",notnull"`
	UpdatedAt   time.Time              `bun:",notnull"`
}

func activityModel(a dealstreak.Activity) *Activity {
	return &Activity{
		Id:          string(a.Id),
		OwnerId:     string(a.OwnerId),
		Type:        string(a.Type),
		Description: a.Description,
		Points:      a.Points,
		Status:      string(a.Status),
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (a Activity) ToDomain() dealstreak.Activity {
	return dealstreak.Activity{
		Id:          dealstreak.ActivityId(a.Id),
		OwnerId:     dealstreak.UserId(a.OwnerId),
		Type:        dealstreak.ActivityType(a.Type),
		Description: a.Description,
		Points:      a.Points,
		Status:      dealstreak.ActivityStatus(a.Status),
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

type ActivityStore struct {
	DB *bun.DB
}

var _ dealstreak.ActivityStore = (*ActivityStore)(nil)

func (s *ActivityStore) Insert(ctx context.Context, activity dealstreak.Activity) error {
	_, err := s.DB.NewInsert().
		Model(activityModel(activity)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *ActivityStore) ById(ctx context.Context, id dealstreak.ActivityId) (dealstreak.Activity, error) {
	activity := new(Activity)
	err := s.DB.NewSelect().
		Model(activity).
		Where("id=?", string(id)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dealstreak.Activity{}, dealstreak.ErrActivityNotFound
	}
	if err != nil {
		return dealstreak.Activity{}, fmt.Errorf("select activity: %w", err)
	}
	return activity.ToDomain(), nil
}

func (s *ActivityStore) ByUserId(ctx context.Context, userId dealstreak.UserId) ([]dealstreak.Activity, error) {
	var activities []Activity
	err := s.DB.NewSelect().
		Model(&activities).
		Where("owner_id=?", string(userId)).
		Order("created_at DESC", "id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select user activities: %w", err)
	}
	return toDomainActivities(activities), nil
}

func (s *ActivityStore) CreatedBetween(ctx context.Context, from time.Time, to time.Time) ([]dealstreak.Activity, error) {
	var activities []Activity
	err := s.DB.NewSelect().
		Model(&activities).
		Where("created_at >= ?", from).
		Where("created_at <= ?", to).
		Order("created_at ASC", "id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select window activities: %w", err)
	}
	return toDomainActivities(activities), nil
}

func (s *ActivityStore) Update(ctx context.Context, activity dealstreak.Activity) error {
	res, err := s.DB.NewUpdate().
		Model(activityModel(activity)).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return expectAffected(res, dealstreak.ErrActivityNotFound)
}

func (s *ActivityStore) Delete(ctx context.Context, id dealstreak.ActivityId) error {
	res, err := s.DB.NewDelete().
		Model((*Activity)(nil)).
		Where("id=?", string(id)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return expectAffected(res, dealstreak.ErrActivityNotFound)
}

func toDomainActivities(activities []Activity) []dealstreak.Activity {
	domain := make([]dealstreak.Activity, len(activities))
	for i, a := range activities {
		domain[i] = a.ToDomain()
	}
	return domain
}

func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
