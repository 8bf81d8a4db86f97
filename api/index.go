package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	mux = handler.NewRouter(cfg, logger, handler.Services{
		Links:    services.NewLinkService(repo),
		Groups:   services.NewGroupService(repo, repo),
		Timeline: services.NewTimelineService(repo),
		Accounts: services.NewAccountService(repo),
		Pages:    services.NewPageService(repo),
	})
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
