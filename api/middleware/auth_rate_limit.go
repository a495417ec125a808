package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/exhale-app/exhale-backend/api/responses"
	"github.com/exhale-app/exhale-backend/pkg/config"
	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
	"github.com/exhale-app/exhale-backend/pkg/logger"
)

// RateLimitStore is the Redis surface the auth limiter uses.
type RateLimitStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	RateLimitKey(scope, id string) string
}

// AuthRateLimiter throttles credential endpoints per IP at the middleware
// layer and per email inside the handlers. Redis outages fail open; losing
// throttling briefly beats locking every user out.
type AuthRateLimiter struct {
	store RateLimitStore
	cfg   config.AuthRateLimitConfig
	log   *logger.Logger
}

func NewAuthRateLimiter(store RateLimitStore, cfg config.AuthRateLimitConfig, logg *logger.Logger) *AuthRateLimiter {
	return &AuthRateLimiter{store: store, cfg: cfg, log: logg}
}

// Allow counts one hit against scope:id and reports whether it is within limit.
func (l *AuthRateLimiter) Allow(ctx context.Context, scope, id string, limit int, window time.Duration) bool {
	if l == nil || l.store == nil || limit <= 0 {
		return true
	}
	key := l.store.RateLimitKey(scope, id)
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		l.log.Warn(ctx, "rate limit store unavailable, failing open")
		return true
	}
	if count == 1 {
		_, _ = l.store.Expire(ctx, key, window)
	}
	return count <= int64(limit)
}

// AllowLoginEmail checks the per-email login budget.
func (l *AuthRateLimiter) AllowLoginEmail(ctx context.Context, email string) bool {
	return l.Allow(ctx, "login_email", email, l.cfg.LoginEmailLimit, l.cfg.LoginWindow)
}

// AllowRegisterEmail checks the per-email registration budget.
func (l *AuthRateLimiter) AllowRegisterEmail(ctx context.Context, email string) bool {
	return l.Allow(ctx, "register_email", email, l.cfg.RegisterEmailLimit, l.cfg.RegisterWindow)
}

// LimitLoginByIP is the middleware for the login route.
func (l *AuthRateLimiter) LimitLoginByIP(next http.Handler) http.Handler {
	return l.limitByIP("login_ip", l.cfg.LoginIPLimit, l.cfg.LoginWindow, next)
}

// LimitRegisterByIP is the middleware for the register route.
func (l *AuthRateLimiter) LimitRegisterByIP(next http.Handler) http.Handler {
	return l.limitByIP("register_ip", l.cfg.RegisterIPLimit, l.cfg.RegisterWindow, next)
}

func (l *AuthRateLimiter) limitByIP(scope string, limit int, window time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.Context(), scope, clientIP(r), limit, window) {
			responses.WriteError(w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, slow down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
