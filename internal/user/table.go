// Package user holds the admin view of application users.
package user

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pawmart_web/internal/domain"

	"go.uber.org/zap"
)

// ErrUnknownUser is returned for an email the table does not hold.
var ErrUnknownUser = errors.New("user is not in the table")

// AdminAPI is the part of the backend the admin table uses.
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]domain.ApplicationUser, error)
	UpdateRole(ctx context.Context, email string, role domain.Role) (*domain.ApplicationUser, error)
}

// Table is the admin's user list. Role changes are applied to a row only
// after the backend accepts them.
type Table struct {
	api    AdminAPI
	logger *zap.Logger

	mu    sync.Mutex
	users []domain.ApplicationUser
}

// NewTable returns an empty table.
func NewTable(api AdminAPI, logger *zap.Logger) *Table {
	return &Table{api: api, logger: logger.Named("user_table")}
}

// Load replaces the rows with every application user. On failure the table
// is emptied.
func (t *Table) Load(ctx context.Context) ([]domain.ApplicationUser, error) {
	users, err := t.api.ListUsers(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.users = nil
		return []domain.ApplicationUser{}, err
	}
	t.users = users
	return t.copyLocked(), nil
}

// Users returns a copy of the rows.
func (t *Table) Users() []domain.ApplicationUser {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyLocked()
}

// ToggleRole switches the role of the user keyed by email between user and
// admin.
func (t *Table) ToggleRole(ctx context.Context, email string) (domain.ApplicationUser, error) {
	t.mu.Lock()
	i := t.indexLocked(email)
	if i < 0 {
		t.mu.Unlock()
		return domain.ApplicationUser{}, ErrUnknownUser
	}
	current := t.users[i]
	t.mu.Unlock()

	next := current.Role.Toggled()
	updated, err := t.api.UpdateRole(ctx, current.Email, next)
	if err != nil {
		t.logger.Warn("Role update failed", zap.String("email", current.Email), zap.Error(err))
		return current, err
	}
	row := current
	row.Role = next
	if updated != nil {
		row = *updated
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if j := t.indexLocked(row.Email); j >= 0 {
		t.users[j] = row
	}
	t.logger.Info("Role updated", zap.String("email", row.Email), zap.String("role", string(row.Role)))
	return row, nil
}

func (t *Table) indexLocked(email string) int {
	for i := range t.users {
		if strings.EqualFold(t.users[i].Email, email) {
			return i
		}
	}
	return -1
}

func (t *Table) copyLocked() []domain.ApplicationUser {
	out := make([]domain.ApplicationUser, len(t.users))
	copy(out, t.users)
	return out
}
