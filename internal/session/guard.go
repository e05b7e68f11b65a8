// Package session keeps the client's local belief about whether the
// operator is logged in, and gates authenticated backend calls on it.
//
// The local TTL is advisory. It spares the backend requests that would be
// rejected anyway; the backend still authorizes every request on its own.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/existflow/scic/internal/logger"
)

// DefaultTTL is how long a login stays valid locally.
const DefaultTTL = time.Hour

const logoutTimeout = 10 * time.Second

var (
	// ErrUnauthenticated is returned before any network call when no valid session exists.
	ErrUnauthenticated = errors.New("session: not authenticated")
	// ErrSessionExpired is returned when the backend rejects a call with 401 or 403.
	ErrSessionExpired = errors.New("session: expired")
)

// State is the two-state view of a session
type State int

const (
	// Unauthenticated means no valid session is stored
	Unauthenticated State = iota
	// Authenticated means an identity is stored and its TTL has not elapsed
	Authenticated
)

// String returns the display name of the state
func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Doer sends HTTP requests; *http.Client satisfies it
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Info describes a valid session
type Info struct {
	Identity  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Guard is the single source of truth for session validity
type Guard struct {
	store     Store
	doer      Doer
	ttl       time.Duration
	now       func() time.Time
	logoutURL string
	jar       http.CookieJar
	onEnd     func()
	log       *logger.Logger

	mu      sync.Mutex
	pending sync.WaitGroup
}

// Option configures a Guard
type Option func(*Guard)

// WithTTL sets the local validity window
func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogoutURL sets the backend endpoint notified on End
func WithLogoutURL(url string) Option {
	return func(g *Guard) { g.logoutURL = url }
}

// WithCookieJar lets End forward the credential cookies to the logout call
// after they have been cleared locally.
func WithCookieJar(jar http.CookieJar) Option {
	return func(g *Guard) { g.jar = jar }
}

// WithOnEnd registers the hook run after every End
func WithOnEnd(fn func()) Option {
	return func(g *Guard) { g.onEnd = fn }
}

// WithLogger sets the guard's logger
func WithLogger(l *logger.Logger) Option {
	return func(g *Guard) { g.log = l }
}

// NewGuard creates a guard over store. doer sends authenticated requests.
func NewGuard(store Store, doer Doer, opts ...Option) *Guard {
	g := &Guard{
		store: store,
		doer:  doer,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Global()
	}
	g.log = g.log.WithFields(logger.F("component", "session"))
	return g
}

// TTL returns the configured validity window
func (g *Guard) TTL() time.Duration {
	return g.ttl
}

// checkAndMaybeExpire reads the stored session and clears it when the TTL
// has elapsed or the issue time is unusable. It is the only place where a
// read may transition Authenticated -> Unauthenticated.
func (g *Guard) checkAndMaybeExpire(ctx context.Context) (Info, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	identity, ok, err := g.store.Get(ctx, KeyIdentity)
	if err != nil {
		g.log.Warn("Failed to read session identity", logger.F("error", err))
		return Info{}, false
	}
	if !ok || identity == "" {
		return Info{}, false
	}

	raw, ok, err := g.store.Get(ctx, KeyIssuedAt)
	if err != nil {
		g.log.Warn("Failed to read session issue time", logger.F("error", err))
		return Info{}, false
	}

	issuedAt, perr := parseIssuedAt(raw)
	if !ok || perr != nil {
		g.clearLocked(ctx, "missing or unreadable issue time")
		return Info{}, false
	}

	expiresAt := issuedAt.Add(g.ttl)
	if !g.now().Before(expiresAt) {
		g.clearLocked(ctx, "ttl elapsed")
		return Info{}, false
	}

	return Info{Identity: identity, IssuedAt: issuedAt, ExpiresAt: expiresAt}, true
}

// clearLocked ignores cancellation of ctx: a session that must end is
// cleared even when the caller's request was cancelled.
func (g *Guard) clearLocked(ctx context.Context, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()

	if err := g.store.Clear(ctx, KeyIdentity, KeyIssuedAt, KeyCookies); err != nil {
		g.log.Error("Failed to clear session", logger.F("reason", reason), logger.F("error", err))
		return
	}
	g.log.Info("Session cleared", logger.F("reason", reason))
}

// IsValid reports whether a session exists and its TTL has not elapsed.
// An expired session is cleared as a side effect.
func (g *Guard) IsValid(ctx context.Context) bool {
	_, ok := g.checkAndMaybeExpire(ctx)
	return ok
}

// State returns Authenticated when IsValid holds
func (g *Guard) State(ctx context.Context) State {
	if g.IsValid(ctx) {
		return Authenticated
	}
	return Unauthenticated
}

// CurrentIdentity returns the stored identity while the session is valid
func (g *Guard) CurrentIdentity(ctx context.Context) (string, bool) {
	info, ok := g.checkAndMaybeExpire(ctx)
	if !ok {
		return "", false
	}
	return info.Identity, true
}

// Current returns the full session description while it is valid
func (g *Guard) Current(ctx context.Context) (Info, bool) {
	return g.checkAndMaybeExpire(ctx)
}

// TimeRemaining returns how long the session stays valid, 0 when it is not.
// Display only.
func (g *Guard) TimeRemaining(ctx context.Context) time.Duration {
	info, ok := g.checkAndMaybeExpire(ctx)
	if !ok {
		return 0
	}
	if rem := info.ExpiresAt.Sub(g.now()); rem > 0 {
		return rem
	}
	return 0
}

// Start records a new session for identity, replacing any previous one.
// When it fails, no session remains: the previous one is cleared too.
func (g *Guard) Start(ctx context.Context, identity string) error {
	if identity == "" {
		return errors.New("session: identity is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	issuedAt := strconv.FormatInt(g.now().UnixMilli(), 10)
	if err := g.store.Set(ctx, KeyIdentity, identity); err != nil {
		g.clearLocked(ctx, "failed start")
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := g.store.Set(ctx, KeyIssuedAt, issuedAt); err != nil {
		g.clearLocked(ctx, "failed start")
		return fmt.Errorf("failed to store session: %w", err)
	}

	g.log.Info("Session started", logger.F("identity", identity), logger.F("ttl", g.ttl.String()))
	return nil
}

// End clears the local session, notifies the backend in the background and
// runs the OnEnd hook. It never fails and may be called repeatedly.
func (g *Guard) End(ctx context.Context) {
	req := g.logoutRequest()

	g.mu.Lock()
	g.clearLocked(ctx, "logout")
	g.mu.Unlock()

	if req != nil {
		g.pending.Add(1)
		go g.notifyLogout(req)
	}

	if g.onEnd != nil {
		g.onEnd()
	}
}

// Wait blocks until background logout notifications have finished
func (g *Guard) Wait() {
	g.pending.Wait()
}

// logoutRequest builds the notification before local state is cleared so
// the credential cookies can still be attached.
func (g *Guard) logoutRequest() *http.Request {
	if g.logoutURL == "" || g.doer == nil {
		return nil
	}

	req, err := http.NewRequest(http.MethodPost, g.logoutURL, nil)
	if err != nil {
		g.log.Warn("Invalid logout url", logger.F("url", g.logoutURL), logger.F("error", err))
		return nil
	}
	if g.jar != nil {
		for _, c := range g.jar.Cookies(req.URL) {
			req.AddCookie(c)
		}
	}
	return req
}

func (g *Guard) notifyLogout(req *http.Request) {
	defer g.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()

	resp, err := g.doer.Do(req.WithContext(ctx))
	if err != nil {
		g.log.Warn("Logout notification failed", logger.F("error", err))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	g.log.Debug("Logout notification sent", logger.F("status", resp.StatusCode))
}

// Do sends an authenticated request. It fails with ErrUnauthenticated
// without touching the network when the session is not valid, and turns a
// 401/403 answer into End + ErrSessionExpired.
func (g *Guard) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if _, ok := g.checkAndMaybeExpire(ctx); !ok {
		return nil, ErrUnauthenticated
	}

	resp, err := g.doer.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		g.log.Warn("Backend rejected session",
			logger.F("method", req.Method),
			logger.F("url", req.URL.String()),
			logger.F("status", resp.StatusCode))
		g.End(ctx)
		return nil, ErrSessionExpired
	}

	return resp, nil
}

func parseIssuedAt(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid issue time %q: %w", raw, err)
	}
	return time.UnixMilli(ms), nil
}
