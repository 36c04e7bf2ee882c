// Package authbridge keeps the signed-in state of one browser client: the
// identity provider's session plus the backend's ApplicationUser record.
package authbridge

import (
	"context"
	"sync"
	"time"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"

	"go.uber.org/zap"
)

// State is the unified auth view consumed by guards and handlers.
type State struct {
	User    *domain.Session         `json:"user"`
	DBUser  *domain.ApplicationUser `json:"dbUser"`
	Loading bool                    `json:"loading"`
	IsAdmin bool                    `json:"isAdmin"`
}

// UserFetcher reads the ApplicationUser keyed by email.
type UserFetcher interface {
	GetUser(ctx context.Context, email string) (*domain.ApplicationUser, error)
}

// Bridge turns session-change events into State. It is the single writer of
// that state; readers take copies through State or Subscribe.
type Bridge struct {
	fetcher UserFetcher
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	state State
	seq   uint64
	subs  map[int]chan State
	next  int

	// publishMu orders notifications so the last one delivered always
	// carries the latest state.
	publishMu sync.Mutex
	listeners []func(State)
}

// NewBridge returns a bridge in the initial loading state.
func NewBridge(fetcher UserFetcher, logger *zap.Logger) *Bridge {
	return &Bridge{
		fetcher: fetcher,
		logger:  logger.Named("authbridge"),
		now:     time.Now,
		state:   State{Loading: true},
		subs:    make(map[int]chan State),
	}
}

// State returns a copy of the current state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Bridge) snapshotLocked() State {
	st := b.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	if st.DBUser != nil {
		d := *st.DBUser
		st.DBUser = &d
	}
	return st
}

// Credentials returns the credentials of the current session for backend calls.
func (b *Bridge) Credentials() apiclient.Credentials {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.User == nil {
		return apiclient.Credentials{}
	}
	return apiclient.Credentials{IDToken: b.state.User.IDToken}
}

// OnSessionChange handles one session event: a sign-in or token refresh
// (session != nil) or a sign-out (session == nil). It returns the state after
// the event resolved. When a newer event arrives while this one is still
// fetching the ApplicationUser, this event's result is discarded.
func (b *Bridge) OnSessionChange(ctx context.Context, session *domain.Session) State {
	b.mu.Lock()
	b.seq++
	seq := b.seq

	if session == nil {
		b.state = State{Loading: false}
		st := b.snapshotLocked()
		b.mu.Unlock()
		b.logger.Debug("Session cleared")
		b.publish()
		return st
	}

	user := *session
	if b.state.User == nil || b.state.User.Email != user.Email {
		b.state.DBUser = nil
		b.state.IsAdmin = false
	}
	b.state.User = &user
	b.mu.Unlock()
	b.publish()

	// The fetch outlives a disconnecting caller so the event still resolves.
	fetchCtx := apiclient.WithCredentials(context.WithoutCancel(ctx), apiclient.Credentials{IDToken: user.IDToken})
	dbUser, err := b.fetcher.GetUser(fetchCtx, user.Email)

	b.mu.Lock()
	if seq != b.seq {
		st := b.snapshotLocked()
		b.mu.Unlock()
		b.logger.Debug("Discarding superseded session event", zap.String("email", user.Email))
		return st
	}
	if err != nil {
		b.logger.Warn("Failed to load application user", zap.String("email", user.Email), zap.Error(err))
		dbUser = nil
	}
	b.state.DBUser = dbUser
	b.state.IsAdmin = dbUser.IsAdmin()
	b.state.Loading = false
	st := b.snapshotLocked()
	b.mu.Unlock()
	b.publish()
	return st
}

// SetDBUser replaces the ApplicationUser after a profile change made through
// this server, keeping loading and user untouched.
func (b *Bridge) SetDBUser(u *domain.ApplicationUser) {
	b.mu.Lock()
	if b.state.User == nil {
		b.mu.Unlock()
		return
	}
	b.state.DBUser = u
	b.state.IsAdmin = u.IsAdmin()
	b.mu.Unlock()
	b.publish()
}

// UpdateProfile applies a displayName/photoURL change to the current session.
func (b *Bridge) UpdateProfile(displayName, photoURL string) {
	b.mu.Lock()
	if b.state.User == nil {
		b.mu.Unlock()
		return
	}
	u := *b.state.User
	u.DisplayName = displayName
	u.PhotoURL = photoURL
	b.state.User = &u
	b.mu.Unlock()
	b.publish()
}

// Restore seeds the bridge from a persisted snapshot, resolved either way:
// signed out when the snapshot has no user, or when its ID token has no
// known expiry or has expired. It is a no-op once any session event has been
// handled.
func (b *Bridge) Restore(snap Snapshot) bool {
	b.mu.Lock()
	if b.seq != 0 {
		b.mu.Unlock()
		return false
	}
	st := snap.State
	st.Loading = false
	if st.User != nil {
		if snap.IDToken == "" || snap.TokenExpiresAt.IsZero() || !b.now().Before(snap.TokenExpiresAt) {
			b.logger.Debug("Snapshot token lapsed; restoring signed out", zap.String("email", st.User.Email))
			st = State{}
		} else {
			u := *st.User
			u.IDToken = snap.IDToken
			u.TokenExpiresAt = snap.TokenExpiresAt
			st.User = &u
		}
	}
	st.IsAdmin = st.DBUser.IsAdmin()
	b.state = st
	b.mu.Unlock()
	b.publish()
	return true
}

// OnChange registers fn to be called with every new state.
func (b *Bridge) OnChange(fn func(State)) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Subscribe returns a channel that always holds the most recent state not
// yet received, plus a function that ends the subscription.
func (b *Bridge) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	ch <- b.snapshotLocked()
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bridge) publish() {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	st := b.snapshotLocked()
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
	b.mu.Unlock()

	for _, fn := range b.listeners {
		fn(st)
	}
}
