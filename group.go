package dealstreak

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type NotificationKind string

const (
	NotifyDailyLeaderboard NotificationKind = "dailyLeaderboard"
	NotifyAchievements     NotificationKind = "achievements"
	NotifyMilestones       NotificationKind = "milestones"
)

var NotificationKinds = []NotificationKind{NotifyDailyLeaderboard, NotifyAchievements, NotifyMilestones}

func (k NotificationKind) Valid() bool {
	for _, kind := range NotificationKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// NotificationSettings of a group. A kind missing from the map is enabled.
type NotificationSettings map[NotificationKind]bool

func (s NotificationSettings) Enabled(kind NotificationKind) bool {
	enabled, ok := s[kind]
	return !ok || enabled
}

type GroupRegistration struct {
	GroupId      string
	GroupName    string
	IsActive     bool
	RegisteredBy string
	RegisteredAt time.Time
	Settings     NotificationSettings
}

type GroupStore interface {
	// Returns ErrGroupNotFound when the group was never registered.
	ById(ctx context.Context, groupId string) (GroupRegistration, error)

	// Inserts or replaces the registration of reg.GroupId.
	Save(ctx context.Context, reg GroupRegistration) error

	All(ctx context.Context) ([]GroupRegistration, error)
}

// GroupRegistry manages chat group subscriptions. Registrations are never
// removed, unregistering only deactivates them.
type GroupRegistry struct {
	Store GroupStore
	Now   func() time.Time

	mutex sync.Mutex
}

func (r *GroupRegistry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *GroupRegistry) Register(ctx context.Context, groupId string, registeredBy string, groupName string) (GroupRegistration, error) {
	if groupId == "" {
		return GroupRegistration{}, fmt.Errorf("%w: missing group id", ErrValidation)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	reg, err := r.Store.ById(ctx, groupId)
	switch {
	case err == nil && reg.IsActive:
		return GroupRegistration{}, ErrGroupAlreadyRegistered
	case err == nil:
		// reactivation keeps the settings chosen before unregistering
	case errors.Is(err, ErrNotFound):
		reg = GroupRegistration{GroupId: groupId, Settings: NotificationSettings{}}
	default:
		return GroupRegistration{}, fmt.Errorf("get group: %w", err)
	}

	reg.IsActive = true
	reg.RegisteredBy = registeredBy
	reg.RegisteredAt = r.now().UTC()
	if groupName != "" {
		reg.GroupName = groupName
	}
	if reg.Settings == nil {
		reg.Settings = NotificationSettings{}
	}
	if err := r.Store.Save(ctx, reg); err != nil {
		return GroupRegistration{}, fmt.Errorf("save group: %w", err)
	}
	return reg, nil
}

func (r *GroupRegistry) Unregister(ctx context.Context, groupId string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	reg, err := r.Store.ById(ctx, groupId)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if !reg.IsActive {
		return nil
	}
	reg.IsActive = false
	if err := r.Store.Save(ctx, reg); err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	return nil
}

func (r *GroupRegistry) Get(ctx context.Context, groupId string) (GroupRegistration, error) {
	reg, err := r.Store.ById(ctx, groupId)
	if err != nil {
		return GroupRegistration{}, fmt.Errorf("get group: %w", err)
	}
	return reg, nil
}

// ListActive returns ids of active groups that did not disable kind. An empty
// kind lists every active group.
func (r *GroupRegistry) ListActive(ctx context.Context, kind NotificationKind) ([]string, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown notification kind %q", ErrValidation, kind)
	}
	regs, err := r.Store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		if !reg.IsActive {
			continue
		}
		if kind != "" && !reg.Settings.Enabled(kind) {
			continue
		}
		ids = append(ids, reg.GroupId)
	}
	return ids, nil
}

func (r *GroupRegistry) UpdateSettings(ctx context.Context, groupId string, kind NotificationKind, enabled bool) (GroupRegistration, error) {
	if !kind.Valid() {
		return GroupRegistration{}, fmt.Errorf("%w: unknown notification kind %q", ErrValidation, kind)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	reg, err := r.Store.ById(ctx, groupId)
	if err != nil {
		return GroupRegistration{}, fmt.Errorf("get group: %w", err)
	}
	settings := make(NotificationSettings, len(reg.Settings)+1)
	for k, v := range reg.Settings {
		settings[k] = v
	}
	settings[kind] = enabled
	reg.Settings = settings
	if err := r.Store.Save(ctx, reg); err != nil {
		return GroupRegistration{}, fmt.Errorf("save group: %w", err)
	}
	return reg, nil
}
