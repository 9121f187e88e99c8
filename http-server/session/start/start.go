package start

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"monotributo-backend/internal/service/expert"
)

type SessionStarter interface {
	Start() (string, expert.Question)
}

// Response is the session-opening payload; field names are part of the
// frontend contract.
type Response struct {
	SessionID string          `json:"sesion_id"`
	Question  expert.Question `json:"siguiente_pregunta"`
}

func NewSession(log *slog.Logger, svc SessionStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.NewSession"

		id, question := svc.Start()

		log.Info("session started", slog.String("op", op), slog.String("session_id", id))

		render.JSON(w, r, Response{SessionID: id, Question: question})
	}
}
