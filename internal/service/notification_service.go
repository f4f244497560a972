package service

import (
	"context"
	"errors"
	"sort"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// Sink receives every notification after it has been persisted
// (websocket push, email copy). Delivery errors are logged only.
type Sink interface {
	Deliver(ctx context.Context, recipient *domain.User, n *domain.Notification) error
}

// NotificationService creates, lists and deletes notifications
type NotificationService struct {
	repo  NotificationStore
	users UserStore
	sinks []Sink
}

func NewNotificationService(repo NotificationStore, users UserStore, sinks ...Sink) *NotificationService {
	return &NotificationService{repo: repo, users: users, sinks: sinks}
}

// AddSink registers an additional delivery channel
func (s *NotificationService) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// SendToUserID loads the recipient by id and notifies them
func (s *NotificationService) SendToUserID(ctx context.Context, userID int64, title, message string) (*domain.Notification, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", userID, err)
	}
	return s.SendToUser(ctx, user, title, message)
}

func (s *NotificationService) SendToUser(ctx context.Context, user *domain.User, title, message string) (*domain.Notification, error) {
	if user == nil {
		return nil, ErrNullEntity
	}

	n := &domain.Notification{
		UserID:  user.ID,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.deliver(ctx, user, n)
	return n, nil
}

// SendToAllUsers notifies every user. A failure for one user does not stop
// the others; the number sent and the joined errors are returned.
func (s *NotificationService) SendToAllUsers(ctx context.Context, title, message string) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	var errs []error
	for _, u := range users {
		if _, err := s.SendToUser(ctx, u, title, message); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// FindByUser returns the user's notifications in store order
func (s *NotificationService) FindByUser(ctx context.Context, user *domain.User) ([]*domain.Notification, error) {
	if user == nil {
		return nil, ErrNullEntity
	}
	return s.repo.ListByUser(ctx, user.ID)
}

// Count returns how many unread notifications the user has
func (s *NotificationService) Count(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *NotificationService) DeleteByID(ctx context.Context, id int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound("notification", id, err)
	}
	return s.Delete(ctx, n)
}

func (s *NotificationService) Delete(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return ErrNullEntity
	}
	return notFound("notification", n.ID, s.repo.Delete(ctx, n.ID))
}

// MarkAsRead deletes the notification if it belongs to userID. Another
// user's notification is reported as not found.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound("notification", id, err)
	}
	if n.UserID != userID {
		return notFound("notification", id, errNotOwned)
	}
	return s.Delete(ctx, n)
}

func (s *NotificationService) deliver(ctx context.Context, user *domain.User, n *domain.Notification) {
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, user, n); err != nil {
			logger.WithContext(ctx).Warn("notification delivery failed",
				"error", err, "notification_id", n.ID, "user_id", user.ID)
		}
	}
}

// SortNewestFirst orders notifications by creation time, newest first
func SortNewestFirst(ns []*domain.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].ID > ns[j].ID
		}
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}
