// Package memstore is an in-memory implementation of the repo interfaces.
// It backs tests and STORAGE=memory development runs; nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/repo"
)

// Store holds every table behind one lock.
type Store struct {
	mu sync.RWMutex

	reminders      []models.Reminder
	nextReminderID int

	users      map[int]*models.User
	byUsername map[string]int
	nextUserID int

	sessions map[string]models.Session

	audit       []models.AuditEntry
	nextAuditID int

	now func() time.Time
}

func New() *Store {
	return &Store{
		nextReminderID: 1,
		users:          map[int]*models.User{},
		byUsername:     map[string]int{},
		nextUserID:     1,
		sessions:       map[string]models.Session{},
		nextAuditID:    1,
		now:            time.Now,
	}
}

// Reminders, Users, Sessions and Audit expose the store through the repo interfaces.
func (s *Store) Reminders() repo.ReminderStore { return reminderStore{s} }
func (s *Store) Users() repo.UserStore         { return userStore{s} }
func (s *Store) Sessions() repo.SessionStore   { return sessionStore{s} }
func (s *Store) Audit() repo.AuditStore        { return auditStore{s} }

// PingContext matches *sql.DB so readiness checks treat both backends alike.
func (s *Store) PingContext(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

type reminderStore struct{ s *Store }

func (r reminderStore) Create(_ context.Context, title, description string) (models.Reminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rem := models.Reminder{
		ID:          r.s.nextReminderID,
		Title:       title,
		Description: description,
		CreatedAt:   r.s.now(),
	}
	r.s.nextReminderID++
	r.s.reminders = append(r.s.reminders, rem)
	return rem, nil
}

func (r reminderStore) List(context.Context) ([]models.Reminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Reminder, len(r.s.reminders))
	copy(out, r.s.reminders)
	return out, nil
}

func (r reminderStore) GetByID(_ context.Context, id int) (models.Reminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// ids are assigned in ascending order
	i := sort.Search(len(r.s.reminders), func(i int) bool { return r.s.reminders[i].ID >= id })
	if i < len(r.s.reminders) && r.s.reminders[i].ID == id {
		return r.s.reminders[i], nil
	}
	return models.Reminder{}, repo.ErrNotFound
}

func (r reminderStore) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.reminders), nil
}

type userStore struct{ s *Store }

func (u userStore) Create(_ context.Context, username, passwordHash string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.byUsername[username]; ok {
		return nil, repo.ErrDuplicate
	}
	user := &models.User{
		ID:           u.s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    u.s.now(),
	}
	u.s.nextUserID++
	u.s.users[user.ID] = user
	u.s.byUsername[username] = user.ID

	cp := *user
	return &cp, nil
}

func (u userStore) GetByID(_ context.Context, id int) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (u userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u.s.mu.RLock()
	id, ok := u.s.byUsername[username]
	u.s.mu.RUnlock()
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u.GetByID(ctx, id)
}

type sessionStore struct{ s *Store }

func (ss sessionStore) Create(_ context.Context, sess models.Session) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	if _, ok := ss.s.sessions[sess.ID]; ok {
		return repo.ErrDuplicate
	}
	if _, ok := ss.s.users[sess.UserID]; !ok {
		return repo.ErrNotFound
	}
	ss.s.sessions[sess.ID] = sess
	return nil
}

func (ss sessionStore) Get(_ context.Context, id string) (models.Session, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	sess, ok := ss.s.sessions[id]
	if !ok {
		return models.Session{}, repo.ErrNotFound
	}
	return sess, nil
}

func (ss sessionStore) Delete(_ context.Context, id string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	delete(ss.s.sessions, id)
	return nil
}

func (ss sessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	var n int64
	for id, sess := range ss.s.sessions {
		if sess.Expired(now) {
			delete(ss.s.sessions, id)
			n++
		}
	}
	return n, nil
}

type auditStore struct{ s *Store }

func (a auditStore) Log(_ context.Context, e models.AuditEntry) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	e.ID = a.s.nextAuditID
	e.CreatedAt = a.s.now()
	a.s.nextAuditID++
	a.s.audit = append(a.s.audit, e)
	return nil
}

func (a auditStore) List(_ context.Context, limit, offset int) ([]models.AuditEntry, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := []models.AuditEntry{}
	for i := len(a.s.audit) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.s.audit[i])
	}
	return out, nil
}
