package reset

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"monotributo-backend/internal/service/expert"
)

type SessionResetter interface {
	Reset(sessionID string) (string, expert.Question)
}

type Response struct {
	SessionID string          `json:"sesion_id"`
	Question  expert.Question `json:"siguiente_pregunta"`
}

// RestartSession discards the session state and answers like a fresh
// start. Unknown ids are not an error: the result is a new session
// either way.
func RestartSession(log *slog.Logger, svc SessionResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.RestartSession"

		oldID := chi.URLParam(r, "sessionId")
		id, question := svc.Reset(oldID)

		log.Info("session restarted",
			slog.String("op", op),
			slog.String("old_session_id", oldID),
			slog.String("session_id", id))

		render.JSON(w, r, Response{SessionID: id, Question: question})
	}
}
