package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/cors"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// Services groups what the router dispatches to
type Services struct {
	Links    ports.LinkService
	Groups   ports.GroupService
	Timeline ports.TimelineService
	Accounts ports.AccountService
	Pages    ports.PageService
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, logger *slog.Logger, svc Services) http.Handler {
	// Initialize Handlers
	lh := NewLinkHandler(svc.Links)
	gh := NewGroupHandler(svc.Groups)
	th := NewTimelineHandler(svc.Timeline)
	ph := NewProfileHandler(svc.Accounts)
	pub := NewPublicHandler(svc.Pages, cfg.BaseURL)
	authHandler := NewAuthHandler(cfg, svc.Accounts)

	// Initialize Middleware
	mw := NewMiddleware(cfg)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /u/{username}", pub.Page)
	mux.HandleFunc("GET /u/{username}/story", pub.Story)
	mux.HandleFunc("GET /public/{username}", pub.JSON)
	mux.HandleFunc("GET /l/{id}", lh.Redirect)
	mux.HandleFunc("GET /api/timeline/{id}/media", pub.Media)

	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/login", authHandler.PasswordLogin)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/links", lh.List)
	protectedMux.HandleFunc("POST /api/v1/links", lh.Create)
	protectedMux.HandleFunc("PUT /api/v1/links/order", lh.Reorder)
	protectedMux.HandleFunc("PATCH /api/v1/links/{id}", lh.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", lh.Delete)
	protectedMux.HandleFunc("GET /api/v1/links/{id}/stats", lh.Stats)
	protectedMux.HandleFunc("GET /api/v1/dashboard", lh.Dashboard)

	protectedMux.HandleFunc("GET /api/v1/groups", gh.List)
	protectedMux.HandleFunc("POST /api/v1/groups", gh.Create)
	protectedMux.HandleFunc("PUT /api/v1/groups/describe", gh.Describe)
	protectedMux.HandleFunc("PUT /api/v1/groups/order", gh.Reorder)
	protectedMux.HandleFunc("PATCH /api/v1/groups/{id}", gh.Update)
	protectedMux.HandleFunc("DELETE /api/v1/groups/{id}", gh.Delete)

	protectedMux.HandleFunc("GET /api/v1/timeline", th.List)
	protectedMux.HandleFunc("POST /api/v1/timeline", th.Create)
	protectedMux.HandleFunc("PUT /api/v1/timeline/order", th.Reorder)
	protectedMux.HandleFunc("PATCH /api/v1/timeline/{id}", th.Update)
	protectedMux.HandleFunc("DELETE /api/v1/timeline/{id}", th.Delete)

	protectedMux.HandleFunc("GET /api/v1/profile", ph.Get)
	protectedMux.HandleFunc("PATCH /api/v1/profile", ph.Update)

	// Apply Middleware to Protected Routes
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return RequestLogger(logger, c.Handler(mux))
}
