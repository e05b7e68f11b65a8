package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/existflow/scic/internal/logger"
)

const jarTimeout = 5 * time.Second

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Host     string    `json:"host"`
	Domain   string    `json:"domain,omitempty"` // set for domain cookies, empty for host-only ones
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// matches reports whether the cookie is sent to host and path
func (c storedCookie) matches(host, path string) bool {
	if c.Domain != "" {
		if !domainMatch(host, c.Domain) {
			return false
		}
	} else if c.Host != host {
		return false
	}
	return pathMatch(path, c.Path)
}

func domainMatch(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// pathMatch follows RFC 6265 section 5.1.4
func pathMatch(requestPath, cookiePath string) bool {
	if requestPath == "" {
		requestPath = "/"
	}
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}

// defaultPath is the directory of the request path (RFC 6265 section 5.1.4)
func defaultPath(requestPath string) string {
	if requestPath == "" || requestPath[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(requestPath, "/")
	if i == 0 {
		return "/"
	}
	return requestPath[:i]
}

// CookieJar is an http.CookieJar that keeps the backend's credential
// cookies in the session Store, so they survive between CLI runs and are
// cleared together with the rest of the session.
type CookieJar struct {
	store Store
	now   func() time.Time
	log   *logger.Logger

	mu sync.Mutex
}

var _ http.CookieJar = (*CookieJar)(nil)

// NewCookieJar creates a jar backed by store
func NewCookieJar(store Store, log *logger.Logger) *CookieJar {
	if log == nil {
		log = logger.Global()
	}
	return &CookieJar{
		store: store,
		now:   time.Now,
		log:   log.WithFields(logger.F("component", "cookiejar")),
	}
}

// SetCookies implements http.CookieJar
func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jarTimeout)
	defer cancel()

	jar := j.load(ctx)
	now := j.now()
	host := u.Hostname()

	for _, c := range cookies {
		sc := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Host:     host,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if sc.Path == "" || sc.Path[0] != '/' {
			sc.Path = defaultPath(u.Path)
		}
		if d := strings.ToLower(strings.TrimPrefix(c.Domain, ".")); d != "" {
			if !domainMatch(host, d) {
				j.log.Warn("Ignoring cookie for foreign domain", logger.F("name", c.Name), logger.F("domain", d))
				continue
			}
			sc.Domain = d
		}
		switch {
		case c.MaxAge < 0:
			sc.Expires = now
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			sc.Expires = c.Expires
		}

		jar = removeCookie(jar, sc)
		if !sc.expired(now) && sc.Value != "" {
			jar = append(jar, sc)
		}
	}

	j.save(ctx, jar)
}

// Cookies implements http.CookieJar
func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jarTimeout)
	defer cancel()

	now := j.now()
	host := u.Hostname()

	var out []*http.Cookie
	for _, c := range j.load(ctx) {
		if !c.matches(host, u.Path) || c.expired(now) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (j *CookieJar) load(ctx context.Context) []storedCookie {
	raw, ok, err := j.store.Get(ctx, KeyCookies)
	if err != nil {
		j.log.Warn("Failed to read cookies", logger.F("error", err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var jar []storedCookie
	if err := json.Unmarshal([]byte(raw), &jar); err != nil {
		j.log.Warn("Discarding unreadable cookies", logger.F("error", err))
		return nil
	}
	return jar
}

func (j *CookieJar) save(ctx context.Context, jar []storedCookie) {
	if len(jar) == 0 {
		if err := j.store.Clear(ctx, KeyCookies); err != nil {
			j.log.Warn("Failed to clear cookies", logger.F("error", err))
		}
		return
	}

	data, err := json.Marshal(jar)
	if err != nil {
		j.log.Error("Failed to encode cookies", logger.F("error", err))
		return
	}
	if err := j.store.Set(ctx, KeyCookies, string(data)); err != nil {
		j.log.Warn("Failed to store cookies", logger.F("error", err))
	}
}

// removeCookie drops the stored cookie that sc replaces: same name, scope
// and path.
func removeCookie(jar []storedCookie, sc storedCookie) []storedCookie {
	out := jar[:0]
	for _, c := range jar {
		if c.Name == sc.Name && c.Path == sc.Path && c.Domain == sc.Domain && (c.Domain != "" || c.Host == sc.Host) {
			continue
		}
		out = append(out, c)
	}
	return out
}
