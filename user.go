package dealstreak

import "context"

type UserId string

// User is the aggregate side of a team member: profile data is owned by the
// identity provider, points and streaks are owned by the ledger.
type User struct {
	Id          UserId
	DisplayName string
	TotalPoints int
	// Consecutive days with an activity, ending on LastActivityDate.
	CurrentStreak int
	LongestStreak int
	// Date only (2006-01-02) in the reporting timezone, empty when the user has no activity yet.
	LastActivityDate string
}

type UserStore interface {
	// Returns ErrUserNotFound when there is no user with given id.
	ById(ctx context.Context, userId UserId) (User, error)

	Insert(ctx context.Context, user User) error

	Update(ctx context.Context, user User) error

	All(ctx context.Context) ([]User, error)
}
