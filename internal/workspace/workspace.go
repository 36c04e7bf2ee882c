// Package workspace keeps the per-client component set: one auth bridge,
// listing browser, owner collection, order modal, order history, admin user
// table and theme store for each browser, keyed by the session cookie.
package workspace

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/authbridge"
	"pawmart_web/internal/config"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/identity"
	"pawmart_web/internal/listing"
	"pawmart_web/internal/order"
	"pawmart_web/internal/platform/crypto"
	"pawmart_web/internal/theme"
	"pawmart_web/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"go.uber.org/zap"
)

// SystemThemeHeader carries the browser's color-scheme preference.
const SystemThemeHeader = "Sec-CH-Prefers-Color-Scheme"

const snapshotWriteTimeout = 2 * time.Second

// BackendAPI is every backend call the workspace components make.
type BackendAPI interface {
	authbridge.UserFetcher
	listing.MutationAPI
	order.Creator
	order.HistoryAPI
	user.AdminAPI
}

// PreferenceStorage hands out the durable key/value storage of one client.
type PreferenceStorage interface {
	For(clientID string) theme.Storage
}

// Workspace is one client's component set.
type Workspace struct {
	ID         string
	Auth       *authbridge.Bridge
	Browser    *listing.Browser
	Collection *listing.Collection
	Modal      *order.Modal
	Orders     *order.History
	Users      *user.Table
	Theme      *theme.Store
}

// Session returns the signed-in session, or nil.
func (w *Workspace) Session() *domain.Session {
	return w.Auth.State().User
}

// Context returns ctx carrying the session's backend credentials.
func (w *Workspace) Context(ctx context.Context) context.Context {
	return apiclient.WithCredentials(ctx, w.Auth.Credentials())
}

func (w *Workspace) close() {
	w.Browser.Close()
}

// Registry creates, caches and evicts workspaces.
type Registry struct {
	cfg       *config.Config
	api       BackendAPI
	snapshots authbridge.Store
	prefs     PreferenceStorage
	logger    *zap.Logger

	cache *cache.Cache
	// builds collapses concurrent first contacts for the same id.
	builds singleflight.Group
}

// NewRegistry returns a registry whose workspaces expire after SESSION_TTL
// without a request.
func NewRegistry(cfg *config.Config, api BackendAPI, snapshots authbridge.Store, prefs PreferenceStorage, logger *zap.Logger) *Registry {
	c := cache.New(cfg.SessionTTL, 10*time.Minute)
	c.OnEvicted(func(id string, v interface{}) {
		if ws, ok := v.(*Workspace); ok {
			ws.close()
		}
	})
	return &Registry{
		cfg:       cfg,
		api:       api,
		snapshots: snapshots,
		prefs:     prefs,
		logger:    logger.Named("workspace"),
		cache:     c,
	}
}

// Resolve returns the caller's workspace, issuing a new session cookie when
// the request carries none or a malformed one.
func (r *Registry) Resolve(c *gin.Context) (*Workspace, error) {
	id, err := c.Cookie(r.cfg.SessionCookieName)
	if err != nil || !crypto.IsToken(id) {
		id, err = crypto.NewToken()
		if err != nil {
			return nil, fmt.Errorf("generate workspace id: %w", err)
		}
	}
	// Refresh the cookie on every request so it slides with the workspace.
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     r.cfg.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(r.cfg.SessionTTL.Seconds()),
		Secure:   r.cfg.SessionCookieSecure,
		HttpOnly: true,
		SameSite: identity.ParseSameSite(r.cfg.SessionCookieSameSite),
	})

	system, _ := theme.ParseMode(c.GetHeader(SystemThemeHeader))
	return r.Get(c.Request.Context(), id, system)
}

// Get returns workspace id, building it on first use. A new workspace
// restores the client's auth snapshot when one exists.
func (r *Registry) Get(ctx context.Context, id string, system theme.Mode) (*Workspace, error) {
	if ws, ok := r.lookup(id); ok {
		return ws, nil
	}

	// Builds for different ids run in parallel; only callers sharing an id wait.
	v, err, _ := r.builds.Do(id, func() (interface{}, error) {
		if ws, ok := r.lookup(id); ok {
			return ws, nil
		}
		ws, err := r.build(context.WithoutCancel(ctx), id, system)
		if err != nil {
			return nil, err
		}
		r.cache.Set(id, ws, cache.DefaultExpiration)
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

// lookup returns a cached workspace and slides its expiry.
func (r *Registry) lookup(id string) (*Workspace, bool) {
	v, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	ws := v.(*Workspace)
	r.cache.Set(id, ws, cache.DefaultExpiration)
	return ws, true
}

// Count returns the number of live workspaces.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}

func (r *Registry) build(ctx context.Context, id string, system theme.Mode) (*Workspace, error) {
	logger := r.logger.With(zap.String("workspace", shortID(id)))

	themeStore, err := theme.NewStore(ctx, r.prefs.For(id), system, logger)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		ID:         id,
		Auth:       authbridge.NewBridge(r.api, logger),
		Browser:    listing.NewBrowser(r.api, logger),
		Collection: listing.NewCollection(r.api, logger),
		Orders:     order.NewHistory(r.api, logger),
		Users:      user.NewTable(r.api, logger),
		Theme:      themeStore,
	}
	ws.Modal = order.NewModal(r.api, logger, ws.Orders.Add)

	snap, err := r.snapshots.Load(ctx, id)
	if err != nil {
		logger.Warn("Could not read auth snapshot", zap.Error(err))
	} else if snap != nil {
		ws.Auth.Restore(*snap)
		logger.Debug("Auth snapshot restored")
	}

	ws.Auth.OnChange(func(st authbridge.State) {
		r.persist(id, st, logger)
	})
	return ws, nil
}

// persist writes the bridge state to the snapshot store. Pending states are
// not written; a signed-out state is saved like any other resolved state.
func (r *Registry) persist(id string, st authbridge.State, logger *zap.Logger) {
	if st.Loading {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotWriteTimeout)
	defer cancel()

	if err := r.snapshots.Save(ctx, id, authbridge.SnapshotOf(st)); err != nil {
		logger.Warn("Could not write auth snapshot", zap.Error(err))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
