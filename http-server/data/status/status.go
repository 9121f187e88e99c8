package status

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"monotributo-backend/internal/storage"
	"monotributo-backend/internal/storage/snapshot"
)

type FileLister interface {
	Files() []snapshot.FileInfo
}

type Response struct {
	Source             string              `json:"fuente"`
	UpdatedAt          time.Time           `json:"fecha_actualizacion"`
	ServicesCategories int                 `json:"categorias_servicios"`
	GoodsCategories    int                 `json:"categorias_venta"`
	ServicesPayments   int                 `json:"pagos_servicios"`
	GoodsPayments      int                 `json:"pagos_venta"`
	ArefCategories     int                 `json:"categorias_aref"`
	Files              []snapshot.FileInfo `json:"archivos"`
}

// DataStatus reports where the current dataset came from and how
// complete it is.
func DataStatus(log *slog.Logger, data *storage.Holder, files FileLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := data.Get()

		render.JSON(w, r, Response{
			Source:             ds.Source,
			UpdatedAt:          ds.UpdatedAt,
			ServicesCategories: len(ds.Categories[storage.ActivityServices]),
			GoodsCategories:    len(ds.Categories[storage.ActivityGoods]),
			ServicesPayments:   len(ds.Payments[storage.ActivityServices]),
			GoodsPayments:      len(ds.Payments[storage.ActivityGoods]),
			ArefCategories:     len(ds.Aref),
			Files:              files.Files(),
		})
	}
}
