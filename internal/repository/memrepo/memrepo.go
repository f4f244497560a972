// Package memrepo keeps every service store in memory. It backs the service
// and handler tests.
package memrepo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
)

// DB is an in-memory stand-in for the postgres repositories
type DB struct {
	mu sync.Mutex

	nextID        int64
	users         map[int64]*domain.User
	identities    []*domain.OAuthIdentity
	todos         map[int64]*domain.ToDo
	collaborators map[int64]map[int64]bool // todo -> users
	tasks         map[int64]*domain.Task
	assignees     map[int64][]int64 // task -> users, assignment order
	states        map[int64]*domain.State
	comments      map[int64]*domain.Comment
	notifications map[int64]*domain.Notification
	audit         []*domain.AuditLog

	failNotificationsFor map[int64]bool
	failTaskScan         error
}

func New() *DB {
	db := &DB{
		users:                make(map[int64]*domain.User),
		todos:                make(map[int64]*domain.ToDo),
		collaborators:        make(map[int64]map[int64]bool),
		tasks:                make(map[int64]*domain.Task),
		assignees:            make(map[int64][]int64),
		states:               make(map[int64]*domain.State),
		comments:             make(map[int64]*domain.Comment),
		notifications:        make(map[int64]*domain.Notification),
		failNotificationsFor: make(map[int64]bool),
	}
	for _, name := range []string{domain.StateNew, "In Progress", "Under Review", domain.StateCompleted} {
		db.nextID++
		db.states[db.nextID] = &domain.State{ID: db.nextID, Name: name}
	}
	return db
}

func (db *DB) Users() UserStore { return UserStore{db} }
func (db *DB) Identities() IdentityStore { return IdentityStore{db} }
func (db *DB) ToDos() ToDoStore { return ToDoStore{db} }
func (db *DB) Tasks() TaskStore { return TaskStore{db} }
func (db *DB) States() StateStore { return StateStore{db} }
func (db *DB) Comments() CommentStore { return CommentStore{db} }
func (db *DB) Notifications() NotificationStore { return NotificationStore{db} }
func (db *DB) Audit() AuditStore { return AuditStore{db} }

// FailNotificationsFor makes every notification write for userID fail
func (db *DB) FailNotificationsFor(userID int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failNotificationsFor[userID] = true
}

// FailTaskScan makes ListAllWithAssignees return err
func (db *DB) FailTaskScan(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failTaskScan = err
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

// AddUser creates a plain user with an example.com address
func (db *DB) AddUser(first string) *domain.User {
	u := &domain.User{FirstName: first, Email: first + "@example.com", Role: domain.RoleUser}
	if err := (UserStore{db}).Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (db *DB) StateNamed(name string) domain.State {
	for _, s := range db.states {
		if s.Name == name {
			return *s
		}
	}
	panic("no state " + name)
}

func (db *DB) NotificationsFor(userID int64) []*domain.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var res []*domain.Notification
	for _, n := range db.notifications {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

type UserStore struct{ db *DB }

func (s UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (s UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s UserStore) List(_ context.Context) ([]*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.User
	for _, u := range s.db.users {
		res = append(res, copyUser(u))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s UserStore) Create(_ context.Context, u *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = s.db.id()
	u.CreatedAt = time.Now()
	s.db.users[u.ID] = copyUser(u)
	return nil
}

func (s UserStore) Update(_ context.Context, u *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	s.db.users[u.ID] = copyUser(u)
	return nil
}

func (s UserStore) SetRole(_ context.Context, id int64, role domain.RoleName) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (s UserStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.users, id)
	return nil
}

type IdentityStore struct{ db *DB }

func (s IdentityStore) GetByProviderSubject(_ context.Context, provider, subject string) (*domain.OAuthIdentity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, i := range s.db.identities {
		if i.Provider == provider && i.Subject == subject {
			c := *i
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s IdentityStore) Create(_ context.Context, ident *domain.OAuthIdentity) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, i := range s.db.identities {
		if i.Provider == ident.Provider && i.Subject == ident.Subject {
			return repository.ErrDuplicate
		}
	}
	ident.ID = s.db.id()
	c := *ident
	s.db.identities = append(s.db.identities, &c)
	return nil
}

type ToDoStore struct{ db *DB }

func (s ToDoStore) GetByID(_ context.Context, id int64) (*domain.ToDo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (s ToDoStore) list(match func(*domain.ToDo) bool) []*domain.ToDo {
	var res []*domain.ToDo
	for _, t := range s.db.todos {
		if match(t) {
			c := *t
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s ToDoStore) ListByOwner(_ context.Context, ownerID int64) ([]*domain.ToDo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(func(t *domain.ToDo) bool { return t.OwnerID == ownerID }), nil
}

func (s ToDoStore) ListByCollaborator(_ context.Context, userID int64) ([]*domain.ToDo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(func(t *domain.ToDo) bool { return s.db.collaborators[t.ID][userID] }), nil
}

func (s ToDoStore) Create(_ context.Context, t *domain.ToDo) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t.ID = s.db.id()
	t.CreatedAt = time.Now()
	c := *t
	s.db.todos[t.ID] = &c
	return nil
}

func (s ToDoStore) Update(_ context.Context, t *domain.ToDo) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.todos[t.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *t
	s.db.todos[t.ID] = &c
	return nil
}

func (s ToDoStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.todos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.todos, id)
	delete(s.db.collaborators, id)
	for tid, t := range s.db.tasks {
		if t.ToDoID == id {
			delete(s.db.tasks, tid)
			delete(s.db.assignees, tid)
		}
	}
	return nil
}

func (s ToDoStore) AddCollaborator(_ context.Context, todoID, userID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.collaborators[todoID] == nil {
		s.db.collaborators[todoID] = make(map[int64]bool)
	}
	if s.db.collaborators[todoID][userID] {
		return false, nil
	}
	s.db.collaborators[todoID][userID] = true
	return true, nil
}

func (s ToDoStore) RemoveCollaborator(_ context.Context, todoID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.collaborators[todoID], userID)
	return nil
}

func (s ToDoStore) IsCollaborator(_ context.Context, todoID, userID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.collaborators[todoID][userID], nil
}

func (s ToDoStore) ListCollaborators(_ context.Context, todoID int64) ([]*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.User
	for uid := range s.db.collaborators[todoID] {
		if u, ok := s.db.users[uid]; ok {
			res = append(res, copyUser(u))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

type TaskStore struct{ db *DB }

func (s TaskStore) copyTask(t *domain.Task) *domain.Task {
	c := *t
	c.AssignedUsers = nil
	return &c
}

func (s TaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.copyTask(t), nil
}

func (s TaskStore) ListByToDo(_ context.Context, todoID int64) ([]*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.Task
	for _, t := range s.db.tasks {
		if t.ToDoID == todoID {
			res = append(res, s.copyTask(t))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Priority > res[j].Priority })
	return res, nil
}

func (s TaskStore) ListAssignedTo(_ context.Context, userID int64) ([]*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.Task
	for tid, uids := range s.db.assignees {
		for _, uid := range uids {
			if uid == userID {
				res = append(res, s.copyTask(s.db.tasks[tid]))
			}
		}
	}
	return res, nil
}

func (s TaskStore) ListAllWithAssignees(_ context.Context) ([]*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failTaskScan != nil {
		return nil, s.db.failTaskScan
	}
	var res []*domain.Task
	for _, t := range s.db.tasks {
		c := s.copyTask(t)
		for _, uid := range s.db.assignees[t.ID] {
			c.AssignedUsers = append(c.AssignedUsers, copyUser(s.db.users[uid]))
		}
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s TaskStore) Create(_ context.Context, t *domain.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t.ID = s.db.id()
	t.CreatedAt = time.Now()
	s.db.tasks[t.ID] = s.copyTask(t)
	return nil
}

func (s TaskStore) Update(_ context.Context, t *domain.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tasks[t.ID]; !ok {
		return repository.ErrNotFound
	}
	s.db.tasks[t.ID] = s.copyTask(t)
	return nil
}

func (s TaskStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.tasks, id)
	delete(s.db.assignees, id)
	return nil
}

func (s TaskStore) Assign(_ context.Context, taskID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, uid := range s.db.assignees[taskID] {
		if uid == userID {
			return nil
		}
	}
	s.db.assignees[taskID] = append(s.db.assignees[taskID], userID)
	return nil
}

func (s TaskStore) Unassign(_ context.Context, taskID, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	uids := s.db.assignees[taskID]
	for i, uid := range uids {
		if uid == userID {
			s.db.assignees[taskID] = append(uids[:i:i], uids[i+1:]...)
			break
		}
	}
	return nil
}

func (s TaskStore) ListAssignees(_ context.Context, taskID int64) ([]*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.User
	for _, uid := range s.db.assignees[taskID] {
		res = append(res, copyUser(s.db.users[uid]))
	}
	return res, nil
}

func (s TaskStore) UnassignFromToDo(ctx context.Context, todoID, userID int64) error {
	s.db.mu.Lock()
	var ids []int64
	for id, t := range s.db.tasks {
		if t.ToDoID == todoID {
			ids = append(ids, id)
		}
	}
	s.db.mu.Unlock()
	for _, id := range ids {
		_ = s.Unassign(ctx, id, userID)
	}
	return nil
}

type StateStore struct{ db *DB }

func (s StateStore) List(_ context.Context) ([]*domain.State, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.State
	for _, st := range s.db.states {
		c := *st
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s StateStore) GetByID(_ context.Context, id int64) (*domain.State, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st, ok := s.db.states[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *st
	return &c, nil
}

func (s StateStore) GetByName(_ context.Context, name string) (*domain.State, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, st := range s.db.states {
		if st.Name == name {
			c := *st
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s StateStore) Create(_ context.Context, st *domain.State) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.states {
		if existing.Name == st.Name {
			return repository.ErrDuplicate
		}
	}
	st.ID = s.db.id()
	c := *st
	s.db.states[st.ID] = &c
	return nil
}

func (s StateStore) Rename(_ context.Context, id int64, name string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st, ok := s.db.states[id]
	if !ok {
		return repository.ErrNotFound
	}
	st.Name = name
	return nil
}

func (s StateStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.states[id]; !ok {
		return repository.ErrNotFound
	}
	for _, t := range s.db.tasks {
		if t.State.ID == id {
			return repository.ErrInUse
		}
	}
	delete(s.db.states, id)
	return nil
}

type CommentStore struct{ db *DB }

func (s CommentStore) Create(_ context.Context, c *domain.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = s.db.id()
	c.CreatedAt = time.Now()
	cp := *c
	s.db.comments[c.ID] = &cp
	return nil
}

func (s CommentStore) GetByID(_ context.Context, id int64) (*domain.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s CommentStore) ListByTask(_ context.Context, taskID int64) ([]*domain.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.Comment
	for _, c := range s.db.comments {
		if c.TaskID == taskID {
			cp := *c
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s CommentStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

type NotificationStore struct{ db *DB }

var ErrWriteFailed = errors.New("write failed")

func (s NotificationStore) Create(_ context.Context, n *domain.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failNotificationsFor[n.UserID] {
		return ErrWriteFailed
	}
	n.ID = s.db.id()
	n.CreatedAt = time.Now()
	c := *n
	s.db.notifications[n.ID] = &c
	return nil
}

func (s NotificationStore) GetByID(_ context.Context, id int64) (*domain.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (s NotificationStore) ListByUser(_ context.Context, userID int64) ([]*domain.Notification, error) {
	return s.db.NotificationsFor(userID), nil
}

func (s NotificationStore) CountByUser(_ context.Context, userID int64) (int, error) {
	return len(s.db.NotificationsFor(userID)), nil
}

func (s NotificationStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.notifications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.notifications, id)
	return nil
}

type AuditStore struct{ db *DB }

func (s AuditStore) Create(_ context.Context, entry *domain.AuditLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	entry.ID = s.db.id()
	s.db.audit = append(s.db.audit, entry)
	return nil
}

func (s AuditStore) ListRecent(_ context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var res []*domain.AuditLog
	for i := len(s.db.audit) - 1; i >= 0 && len(res) < limit; i-- {
		if category == "" || s.db.audit[i].Category == category {
			res = append(res, s.db.audit[i])
		}
	}
	return res, nil
}

