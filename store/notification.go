package store

import "context"

type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "low"
	NotificationPriorityNormal   NotificationPriority = "normal"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityCritical NotificationPriority = "critical"
)

type Notification struct {
	ID       int32
	UserID   int32
	Title    string
	Message  string
	Priority NotificationPriority
	Read     bool
	// ModuleID is set when a module sent the notification.
	ModuleID  *int32
	CreatedTs int64
}

type FindNotification struct {
	ID     *int32
	UserID *int32
	Read   *bool
}

type UpdateNotification struct {
	UserID int32
	// ID selects one notification; nil marks every notification of the user.
	ID   *int32
	Read bool
}

type DeleteNotification struct {
	ID     int32
	UserID int32
}

func (s *Store) CreateNotification(ctx context.Context, create *Notification) (*Notification, error) {
	return s.driver.CreateNotification(ctx, create)
}

// ListNotifications returns notifications newest first.
func (s *Store) ListNotifications(ctx context.Context, find *FindNotification) ([]*Notification, error) {
	return s.driver.ListNotifications(ctx, find)
}

func (s *Store) GetNotification(ctx context.Context, find *FindNotification) (*Notification, error) {
	list, err := s.driver.ListNotifications(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateNotifications sets the read flag and returns how many rows changed.
func (s *Store) UpdateNotifications(ctx context.Context, update *UpdateNotification) (int64, error) {
	return s.driver.UpdateNotifications(ctx, update)
}

func (s *Store) DeleteNotification(ctx context.Context, delete *DeleteNotification) error {
	return s.driver.DeleteNotification(ctx, delete)
}
