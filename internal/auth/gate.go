package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Defaults for the gate.
const (
	LoginPath       = "/login"
	DefaultCallback = "/dashboard"
	CallbackParam   = "callbackUrl"
)

// DefaultProtected are the path prefixes gated when none are configured.
var DefaultProtected = []string{"/dashboard", "/analytics"}

// Authenticator answers whether a request carries a valid session.
type Authenticator interface {
	Authenticated(r *http.Request) bool
}

// Gate redirects unauthenticated requests for protected paths to the login
// page, carrying the requested path as the callback.
type Gate struct {
	auth     Authenticator
	prefixes []string
	log      *slog.Logger
}

// NewGate creates a gate over prefixes. Nil prefixes means DefaultProtected.
func NewGate(auth Authenticator, prefixes []string, log *slog.Logger) *Gate {
	if prefixes == nil {
		prefixes = DefaultProtected
	}
	if log == nil {
		log = slog.Default()
	}
	clean := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimRight(p, "/"); p != "" {
			clean = append(clean, p)
		}
	}
	return &Gate{auth: auth, prefixes: clean, log: log}
}

// Protected reports whether path falls under a protected prefix. Matching
// is per path segment: /dashboard guards /dashboard and /dashboard/x but not
// /dashboards.
func (g *Gate) Protected(path string) bool {
	for _, p := range g.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Middleware wraps next with the gate.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Protected(r.URL.Path) || g.auth.Authenticated(r) {
			next.ServeHTTP(w, r)
			return
		}
		g.log.Debug("redirecting unauthenticated request", "path", r.URL.Path)
		http.Redirect(w, r, LoginURL(r.URL.Path), http.StatusFound)
	})
}

// LoginURL is the login page URL carrying path as the callback.
func LoginURL(path string) string {
	return LoginPath + "?" + url.Values{CallbackParam: {path}}.Encode()
}

// SafeCallback returns raw when it is a local absolute path and
// DefaultCallback otherwise, so the login form cannot redirect off-site.
func SafeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return DefaultCallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultCallback
	}
	return raw
}
