package answer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"monotributo-backend/internal/service/expert"
)

type AnswerProcessor interface {
	Answer(sessionID string, ev expert.AnswerEvent) (*expert.Response, error)
}

func ProcessAnswer(log *slog.Logger, svc AnswerProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.ProcessAnswer"

		sessionID := chi.URLParam(r, "sessionId")
		if sessionID == "" {
			http.Error(w, "Missing session id", http.StatusBadRequest)
			return
		}

		var ev expert.AnswerEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "JSON inválido", http.StatusBadRequest)
			return
		}
		if ev.QuestionID == "" {
			http.Error(w, "Falta pregunta_id", http.StatusBadRequest)
			return
		}

		resp, err := svc.Answer(sessionID, ev)
		if err != nil {
			switch {
			case errors.Is(err, expert.ErrSessionNotFound):
				log.With(slog.String("op", op), slog.String("session_id", sessionID)).
					Warn("session not found")
				http.Error(w, "Sesión no encontrada", http.StatusNotFound)
			case errors.Is(err, expert.ErrNoRuleMatched):
				log.With(
					slog.String("op", op),
					slog.String("session_id", sessionID),
					slog.String("question_id", ev.QuestionID),
				).Warn("no rule matched")
				http.Error(w, "Pregunta no reconocida o secuencia inválida", http.StatusBadRequest)
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).
					Error("failed to process answer")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, r, resp)
	}
}
