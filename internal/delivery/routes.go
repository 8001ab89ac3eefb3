package delivery

import (
	"context"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/metrics"
)

type RouterOptions struct {
	UIOrigins      []string
	RateLimit      config.RateLimitConfig
	RequestTimeout time.Duration
	Metrics        *metrics.Metrics
	// UI serves the embedded browser app under /ui/.
	UI http.Handler
}

func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		httputil.RecoverMiddleware,
		middleware.SetHeader("X-Content-Type-Options", "nosniff"),
		middleware.SetHeader("X-Frame-Options", "DENY"),
		middleware.SetHeader("X-XSS-Protection", "1; mode=block"),
		middleware.SetHeader("Strict-Transport-Security", "max-age=31536000; includeSubDomains"),
		middleware.SetHeader("Referrer-Policy", "no-referrer"),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.UIOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Transcript", "X-Transcript-Language"},
		MaxAge:         300,
	}))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	if opts.RequestTimeout > 0 {
		r.Use(deadline(opts.RequestTimeout))
	}

	RegisterRoutes(r, h, opts.RateLimit)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.UI != nil {
		r.Get("/ui", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/ui/", http.StatusMovedPermanently)
		})
		r.Handle("/ui/*", http.StripPrefix("/ui", opts.UI))
	}
	return r
}

// deadline bounds the request context. Unlike middleware.Timeout it never
// writes a response itself; handlers answer once with a timeout error.
func deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RegisterRoutes(r chi.Router, h *Handler, rl config.RateLimitConfig) {
	// --- meta ---
	r.Get("/", h.Root)
	r.Get("/ping", h.Ping)
	r.Get("/languages", h.Languages)

	// --- model-backed, each group limited per client ip ---
	r.With(limiter(rl.Translate, rl.Window)).Post("/translate", h.Translate)
	r.With(limiter(rl.STT, rl.Window)).Post("/stt", h.STT)
	r.With(limiter(rl.TTS, rl.Window)).Post("/tts", h.TTS)
}

func limiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyByIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests, please slow down",
				"kind":  "rate_limited",
			})
		}),
	)
}
