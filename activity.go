package dealstreak

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ActivityId string

type ActivityType string

const (
	ActivityCall             ActivityType = "call"
	ActivityMeeting          ActivityType = "meeting"
	ActivityFollowUp         ActivityType = "follow-up"
	ActivityContractSent     ActivityType = "contract-sent"
	ActivityMeetingScheduled ActivityType = "meeting-scheduled"
	ActivityProjectBooked    ActivityType = "project-booked"
	ActivityOther            ActivityType = "other"
)

// Points awarded per activity type.
var ActivityPoints = map[ActivityType]int{
	ActivityCall:             10,
	ActivityMeeting:          20,
	ActivityFollowUp:         15,
	ActivityContractSent:     30,
	ActivityMeetingScheduled: 25,
	ActivityProjectBooked:    50,
	ActivityOther:            5,
}

func (t ActivityType) Valid() bool {
	_, ok := ActivityPoints[t]
	return ok
}

func (t ActivityType) Points() int {
	return ActivityPoints[t]
}

type ActivityStatus string

const (
	StatusPending   ActivityStatus = "pending"
	StatusCompleted ActivityStatus = "completed"
	StatusCancelled ActivityStatus = "cancelled"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Activity struct {
	Id          ActivityId
	OwnerId     UserId
	Type        ActivityType
	Description string
	Points      int
	Status      ActivityStatus
	Metadata    map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewActivity is the caller supplied part of an activity.
type NewActivity struct {
	Type        ActivityType
	Description string
	// Defaults to StatusCompleted.
	Status   ActivityStatus
	Metadata map[string]interface{}
}

func (a NewActivity) validate() error {
	if a.Type == "" {
		return fmt.Errorf("%w: missing activity type", ErrValidation)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown activity type %q", ErrValidation, a.Type)
	}
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrValidation)
	}
	if a.Status != "" && !a.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, a.Status)
	}
	return nil
}

// ActivityPatch holds optional changes, nil fields are left untouched.
type ActivityPatch struct {
	Type        *ActivityType
	Description *string
	Status      *ActivityStatus
	Metadata    map[string]interface{}
}

func (p ActivityPatch) validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: unknown activity type %q", ErrValidation, *p.Type)
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	return nil
}

type ActivityStore interface {
	Insert(ctx context.Context, activity Activity) error

	// Returns ErrActivityNotFound when there is no activity with given id.
	ById(ctx context.Context, id ActivityId) (Activity, error)

	// Activities of given user, most recent first.
	ByUserId(ctx context.Context, userId UserId) ([]Activity, error)

	// Activities created in [from, to], oldest first.
	CreatedBetween(ctx context.Context, from time.Time, to time.Time) ([]Activity, error)

	Update(ctx context.Context, activity Activity) error

	Delete(ctx context.Context, id ActivityId) error
}
