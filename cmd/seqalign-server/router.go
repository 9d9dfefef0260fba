package main

import (
	"net/http"
	"time"

	"github.com/aria-lang/seqalign/api/handlers"
	"github.com/aria-lang/seqalign/api/middleware"
	"github.com/aria-lang/seqalign/internal/config"
	"github.com/aria-lang/seqalign/internal/pool"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func newRouter(p *pool.Pool, cfg *config.Config) http.Handler {
	mode := cfg.AlignMode()

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))
	r.Use(limitBody(cfg.Server.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/align", handlers.Align(p, mode))
		r.Post("/profile", handlers.Profile(p, mode))
		r.Post("/similarity", handlers.Similarity())
		r.Get("/pool", handlers.PoolStatus(p))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(homePage))
	})
	return r
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>seqalign API</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 2rem auto; padding: 0 1rem; }
        h1 { color: #2563eb; }
        pre { background: #f3f4f6; padding: 1rem; border-radius: 0.5rem; overflow-x: auto; }
        .endpoint { margin: 1rem 0; padding: 1rem; border: 1px solid #e5e7eb; border-radius: 0.5rem; }
        .method { display: inline-block; padding: 0.25rem 0.5rem; background: #10b981; color: white; border-radius: 0.25rem; font-size: 0.875rem; }
    </style>
</head>
<body>
    <h1>seqalign API</h1>
    <p>Pairwise affine-gap alignment and quality-aware alignment profiles.</p>

    <h2>Endpoints</h2>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/align</code>
        <p>Align a query read against a reference read.</p>
        <pre>{"ref": {"seq": "ACGTACGTAC"}, "query": {"seq": "ACGTTCGTAC"}, "mode": "global", "cache": true}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/profile</code>
        <p>Align and profile a read pair. Qualities are phred+33.</p>
        <pre>{"ref": {"name": "r1", "seq": "ACGTACGTAC"}, "query": {"seq": "ACGTTCGTAC", "qual": "IIII#IIIII"}}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/similarity</code>
        <p>Share of distinct k-mers two sequences have in common.</p>
        <pre>{"a": "ACGTACGTAC", "b": "ACGTTCGTAC", "k": 4}</pre>
    </div>

    <div class="endpoint">
        <span class="method">GET</span> <code>/api/pool</code>
        <p>Aligner pool usage.</p>
    </div>
</body>
</html>`
