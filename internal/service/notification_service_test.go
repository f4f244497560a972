package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository/memrepo"
)

func TestSendToUserID(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	u := s.db.AddUser("ann")
	sink := &recordingSink{}
	s.notifications.AddSink(sink)

	n, err := s.notifications.SendToUserID(ctx, u.ID, "Hello", "world")
	if err != nil {
		t.Fatalf("SendToUserID: %v", err)
	}
	if n.ID == 0 || n.UserID != u.ID {
		t.Fatalf("notification = %+v", n)
	}
	if len(sink.delivered) != 1 {
		t.Fatalf("sink got %d, want 1", len(sink.delivered))
	}

	if _, err := s.notifications.SendToUserID(ctx, 999, "Hello", "world"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: err = %v", err)
	}
}

func TestSendToUserNil(t *testing.T) {
	s := newServices()
	if _, err := s.notifications.SendToUser(context.Background(), nil, "a", "b"); !errors.Is(err, ErrNullEntity) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.notifications.FindByUser(context.Background(), nil); !errors.Is(err, ErrNullEntity) {
		t.Fatalf("FindByUser err = %v", err)
	}
	if err := s.notifications.Delete(context.Background(), nil); !errors.Is(err, ErrNullEntity) {
		t.Fatalf("Delete err = %v", err)
	}
}

func TestSinkFailureDoesNotFailSend(t *testing.T) {
	s := newServices()
	u := s.db.AddUser("ann")
	s.notifications.AddSink(&recordingSink{err: errors.New("socket closed")})

	if _, err := s.notifications.SendToUser(context.Background(), u, "a", "b"); err != nil {
		t.Fatalf("SendToUser: %v", err)
	}
	if got := len(s.db.NotificationsFor(u.ID)); got != 1 {
		t.Fatalf("stored %d, want 1", got)
	}
}

func TestSendToAllUsers(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	a := s.db.AddUser("ann")
	b := s.db.AddUser("bob")
	c := s.db.AddUser("cid")
	s.db.FailNotificationsFor(b.ID)

	sent, err := s.notifications.SendToAllUsers(ctx, "Maintenance", "tonight")
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if !errors.Is(err, memrepo.ErrWriteFailed) {
		t.Fatalf("err = %v, want joined write error", err)
	}
	for _, u := range []*domain.User{a, c} {
		if got := len(s.db.NotificationsFor(u.ID)); got != 1 {
			t.Errorf("user %d has %d notifications", u.ID, got)
		}
	}
}

func TestDeleteNotificationByID(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	u := s.db.AddUser("ann")
	n, _ := s.notifications.SendToUser(ctx, u, "a", "b")

	if err := s.notifications.DeleteByID(ctx, n.ID+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := len(s.db.NotificationsFor(u.ID)); got != 1 {
		t.Fatalf("missing id deleted something: %d left", got)
	}

	if err := s.notifications.DeleteByID(ctx, n.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if got := len(s.db.NotificationsFor(u.ID)); got != 0 {
		t.Fatalf("%d left, want 0", got)
	}
}

func TestMarkAsReadOnlyOwnNotification(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	ann := s.db.AddUser("ann")
	bob := s.db.AddUser("bob")
	n, _ := s.notifications.SendToUser(ctx, ann, "a", "b")

	if err := s.notifications.MarkAsRead(ctx, bob.ID, n.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user: err = %v", err)
	}
	if err := s.notifications.MarkAsRead(ctx, ann.ID, n.ID); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	count, _ := s.notifications.Count(ctx, ann.ID)
	if count != 0 {
		t.Fatalf("count = %d", count)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ns := []*domain.Notification{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(time.Hour)},
		{ID: 3, CreatedAt: base},
	}
	SortNewestFirst(ns)

	want := []int64{2, 3, 1}
	for i, n := range ns {
		if n.ID != want[i] {
			t.Fatalf("order[%d] = %d, want %d", i, n.ID, want[i])
		}
	}
}
