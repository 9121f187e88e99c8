package excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type TableExporter interface {
	Export(ctx context.Context) ([]byte, error)
}

// ExportTables streams the current category and payment tables as an
// Excel workbook.
func ExportTables(log *slog.Logger, exporter TableExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.ExportTables"

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		data, err := exporter.Export(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).
				Error("failed to generate report")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("monotributo_%s.xlsx", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Write(data)
	}
}
