package csrf

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	CookieName = "XSRF-TOKEN"
	HeaderName = "X-CSRF-Token"
	FormField  = "csrf_token"
	ContextKey = "csrf_token"
)

type Config struct {
	Secure    bool
	MaxAge    time.Duration
	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{MaxAge: 24 * time.Hour}
}

// Middleware issues a double-submit token cookie on every request and
// requires it back in HeaderName or FormField on unsafe methods.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultConfig().MaxAge
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			_, ok := skip[c.Request().URL.Path]
			return ok
		},
		TokenLookup:    "header:" + HeaderName + ",form:" + FormField,
		ContextKey:     ContextKey,
		CookieName:     CookieName,
		CookiePath:     "/",
		CookieMaxAge:   int(cfg.MaxAge.Seconds()),
		CookieSecure:   cfg.Secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}
