// Package theme implements the light/dark preference of one browser client:
// a manual choice persisted under a single storage key, or the system
// preference when no manual choice exists.
package theme

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Mode is a colour scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// StorageKey is the single durable key holding a manual preference.
const StorageKey = "theme"

// ParseMode accepts "light" or "dark", case-insensitively.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Preference is the store's state.
type Preference struct {
	Theme  Mode `json:"theme"`
	Manual bool `json:"manual"`
}

// Root is the presentation state reflected onto the document root: the
// "dark" class flag and the data-theme attribute.
type Root struct {
	DarkClass bool   `json:"darkClass"`
	DataTheme string `json:"dataTheme"`
}

// Storage is durable key/value storage for one client.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store owns one client's preference. Toggle and SystemChanged are its only
// writers.
type Store struct {
	storage Storage
	logger  *zap.Logger

	mu   sync.Mutex
	pref Preference
	root Root
	subs []func(Preference, Root)
}

// NewStore reads the stored preference; without one the store follows system.
func NewStore(ctx context.Context, storage Storage, system Mode, logger *zap.Logger) (*Store, error) {
	s := &Store{storage: storage, logger: logger.Named("theme")}

	stored, ok, err := storage.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read theme preference: %w", err)
	}
	if mode, valid := ParseMode(stored); ok && valid {
		s.pref = Preference{Theme: mode, Manual: true}
	} else {
		if system == "" {
			system = Light
		}
		s.pref = Preference{Theme: system, Manual: false}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.applyLocked(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Preference returns the current preference.
func (s *Store) Preference() Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pref
}

// Root returns the current root presentation attributes.
func (s *Store) Root() Root {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Subscribe registers fn to be called after every state change.
func (s *Store) Subscribe(fn func(Preference, Root)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Toggle flips the theme and records it as a manual choice.
func (s *Store) Toggle(ctx context.Context) (Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref = Preference{Theme: s.pref.Theme.Opposite(), Manual: true}
	err := s.applyLocked(ctx)
	return s.pref, err
}

// SystemChanged applies a system colour-scheme change unless the user made a
// manual choice. It reports whether the preference changed.
func (s *Store) SystemChanged(ctx context.Context, mode Mode) (Preference, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pref.Manual || s.pref.Theme == mode {
		return s.pref, false, nil
	}
	s.pref.Theme = mode
	err := s.applyLocked(ctx)
	return s.pref, true, err
}

// FollowSystem drops a manual choice and adopts mode.
func (s *Store) FollowSystem(ctx context.Context, mode Mode) (Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref = Preference{Theme: mode, Manual: false}
	err := s.applyLocked(ctx)
	return s.pref, err
}

// applyLocked reflects the preference and syncs storage: a manual choice is
// written, otherwise the key is removed. In-memory state is updated even when
// storage fails.
func (s *Store) applyLocked(ctx context.Context) error {
	s.root = Root{DarkClass: s.pref.Theme == Dark, DataTheme: string(s.pref.Theme)}
	for _, fn := range s.subs {
		fn(s.pref, s.root)
	}

	var err error
	if s.pref.Manual {
		err = s.storage.Set(ctx, StorageKey, string(s.pref.Theme))
	} else {
		err = s.storage.Delete(ctx, StorageKey)
	}
	if err != nil {
		s.logger.Warn("Failed to persist theme preference", zap.Error(err))
		return fmt.Errorf("persist theme preference: %w", err)
	}
	return nil
}
