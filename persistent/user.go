package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	Id               string `bun:",pk"`
	DisplayName      string `bun:",notnull"`
	TotalPoints      int    `bun:",notnull"`
	CurrentStreak    int    `bun:",notnull"`
	LongestStreak    int    `bun:",notnull"`
	LastActivityDate string `bun:",notnull"`
}

func userModel(u dealstreak.User) *User {
	return &User{
		Id:               string(u.Id),
		DisplayName:      u.DisplayName,
		TotalPoints:      u.TotalPoints,
		CurrentStreak:    u.CurrentStreak,
		LongestStreak:    u.LongestStreak,
		LastActivityDate: u.LastActivityDate,
	}
}

func (u User) ToDomain() dealstreak.User {
	return dealstreak.User{
		Id:               dealstreak.UserId(u.Id),
		DisplayName:      u.DisplayName,
		TotalPoints:      u.TotalPoints,
		CurrentStreak:    u.CurrentStreak,
		LongestStreak:    u.LongestStreak,
		LastActivityDate: u.LastActivityDate,
	}
}

type UserStore struct {
	DB *bun.DB
}

var _ dealstreak.UserStore = (*UserStore)(nil)

func (s *UserStore) ById(ctx context.Context, userId dealstreak.UserId) (dealstreak.User, error) {
	user := new(User)
	err := s.DB.NewSelect().
		Model(user).
		Where("id=?", string(userId)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dealstreak.User{}, dealstreak.ErrUserNotFound
	}
	if err != nil {
		return dealstreak.User{}, fmt.Errorf("select user: %w", err)
	}
	return user.ToDomain(), nil
}

func (s *UserStore) Insert(ctx context.Context, user dealstreak.User) error {
	_, err := s.DB.NewInsert().
		Model(userModel(user)).
		Exec(ctx)
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return fmt.Errorf("%w: user %s exists", dealstreak.ErrConflict, user.Id)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, user dealstreak.User) error {
	res, err := s.DB.NewUpdate().
		Model(userModel(user)).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, dealstreak.ErrUserNotFound)
}

func (s *UserStore) All(ctx context.Context) ([]dealstreak.User, error) {
	var users []User
	err := s.DB.NewSelect().
		Model(&users).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	domain := make([]dealstreak.User, len(users))
	for i, u := range users {
		domain[i] = u.ToDomain()
	}
	return domain, nil
}
