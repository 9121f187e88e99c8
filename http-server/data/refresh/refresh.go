package refresh

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"monotributo-backend/internal/storage"
)

type DatasetLoader interface {
	Load(ctx context.Context) *storage.Dataset
}

type Response struct {
	Message    string    `json:"mensaje"`
	Source     string    `json:"fuente"`
	UpdatedAt  time.Time `json:"fecha_actualizacion"`
	Categories int       `json:"categorias"`
}

// RefreshData re-runs the live → snapshot → empty chain and swaps the
// dataset the engine reads. Sessions in flight keep the dataset they
// started with.
func RefreshData(log *slog.Logger, loader DatasetLoader, data *storage.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.data.RefreshData"

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		ds := loader.Load(ctx)
		data.Set(ds)

		log.Info("dataset refreshed",
			slog.String("op", op),
			slog.String("source", ds.Source),
			slog.Int("categories", len(ds.Categories[storage.ActivityServices])))

		render.JSON(w, r, Response{
			Message:    "Datos actualizados correctamente",
			Source:     ds.Source,
			UpdatedAt:  ds.UpdatedAt,
			Categories: len(ds.Categories[storage.ActivityServices]),
		})
	}
}
