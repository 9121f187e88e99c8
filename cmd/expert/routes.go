package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"monotributo-backend/http-server/data/refresh"
	"monotributo-backend/http-server/data/status"
	reportexcel "monotributo-backend/http-server/report/excel"
	"monotributo-backend/http-server/session/answer"
	"monotributo-backend/http-server/session/reset"
	"monotributo-backend/http-server/session/start"
	"monotributo-backend/internal/config"
	"monotributo-backend/internal/middleware/auth"
	"monotributo-backend/internal/service/expert"
	"monotributo-backend/internal/service/report"
	"monotributo-backend/internal/storage"
	"monotributo-backend/internal/storage/snapshot"
)

func routes(
	cfg *config.Config,
	log *slog.Logger,
	svc *expert.Service,
	loader *storage.Loader,
	data *storage.Holder,
	files *snapshot.Store,
	exporter *report.TableExporter,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Session endpoints, paths kept compatible with the existing
	// frontend.
	router.Post("/iniciar_sesion", start.NewSession(log, svc))
	router.Post("/responder/{sessionId}", answer.ProcessAnswer(log, svc))
	router.Get("/reiniciar/{sessionId}", reset.RestartSession(log, svc))

	router.Get("/api/data/status", status.DataStatus(log, data, files))

	// Maintenance endpoints behind basic auth.
	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
	adminRouter.Post("/actualizar_datos", refresh.RefreshData(log, loader, data))
	adminRouter.Get("/report/excel", reportexcel.ExportTables(log, exporter))
	router.Mount("/api/admin", adminRouter)

	mountStatic(router, log, cfg.StaticDir)

	return router
}

// mountStatic serves the bundled frontend when present: /static/* for
// assets and index.html at the root. The API works without it.
func mountStatic(router *chi.Mux, log *slog.Logger, dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warn("static dir not found, serving API only", slog.String("path", dir))
		return
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
	router.Handle("/static/*", fileServer)

	index := filepath.Join(dir, "index.html")
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	})
}
