// Package expert implements the questionnaire inference engine: a
// forward-chaining, first-match scan over an ordered rule set that walks
// the taxpayer through the categorization decision tree and computes the
// resulting payments.
package expert

import (
	"errors"
	"log/slog"

	"monotributo-backend/internal/storage"
)

var (
	// ErrSessionNotFound means the session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoRuleMatched means the answer does not correspond to any known
	// transition: a question answered out of order or replayed after it
	// was already resolved.
	ErrNoRuleMatched = errors.New("no rule matched the answer")
)

// firstQuestion opens every session.
var firstQuestion = Question{
	ID:      "persona_juridica",
	Text:    "¿Sos persona jurídica (empresa o sociedad)?",
	Options: []string{"SÍ", "NO (Persona Física)"},
	Kind:    InputOption,
}

const msgExceedsParameters = "Régimen General (Excede límites de parámetros)"

// Service ties the rule set, the session store and the current dataset
// together. The rule slice is immutable after construction.
type Service struct {
	rules []Rule
	store *Store
	data  *storage.Holder
	log   *slog.Logger
}

func New(rules []Rule, store *Store, data *storage.Holder, log *slog.Logger) *Service {
	return &Service{rules: rules, store: store, data: data, log: log}
}

// Start creates a session and returns its id with the fixed first
// question.
func (s *Service) Start() (string, Question) {
	sess := s.store.Create()
	return sess.ID, firstQuestion
}

// Reset discards any state under the id and starts over.
func (s *Service) Reset(sessionID string) (string, Question) {
	s.store.Delete(sessionID)
	return s.Start()
}

// Answer processes one user answer: the first rule whose condition holds
// wins, its post-action mutates the session facts, and its action builds
// the response. Answers for the same session are serialized by the
// session mutex; the dataset is pinned once per request.
func (s *Service) Answer(sessionID string, ev AnswerEvent) (*Response, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	ds := s.data.Get()
	facts := &sess.facts
	facts.Answers[ev.QuestionID] = ev

	for i := range s.rules {
		rule := &s.rules[i]
		if !s.conditionMatches(rule, facts, ev, ds) {
			continue
		}

		facts.AppliedRules = append(facts.AppliedRules, AppliedRule{
			Name:        rule.Name,
			Description: rule.Description,
			Rationale:   rule.Rationale,
		})

		if rule.Mutator != MutatorNone {
			if err := applyMutator(rule.Mutator, rule.Parameter, facts, ev, ds); err != nil {
				// Same containment policy as predicates: a failed
				// post-action must not abort the response.
				s.log.Warn("post-action failed",
					slog.String("rule", rule.Name),
					slog.String("mutator", string(rule.Mutator)),
					slog.String("error", err.Error()))
			}
		}

		s.log.Debug("rule fired",
			slog.String("session_id", sess.ID),
			slog.String("rule", rule.Name),
			slog.String("question_id", ev.QuestionID))

		return s.execute(rule, facts, ds), nil
	}

	return nil, ErrNoRuleMatched
}

func (s *Service) execute(rule *Rule, facts *Facts, ds *storage.Dataset) *Response {
	switch rule.Action.Kind {
	case ActionQuestion:
		return &Response{
			Kind:     ResponseQuestion,
			Question: renderQuestion(rule.Action.Question, ds),
		}

	case ActionDynamicQuestion:
		q, err := dynamicQuestion(rule.Parameter, facts, ds)
		if err != nil {
			s.log.Error("dynamic question generation failed",
				slog.String("rule", rule.Name), slog.String("error", err.Error()))
			return &Response{
				Kind:    ResponseError,
				Message: "No se pudo generar la pregunta de " + string(rule.Parameter),
			}
		}
		return &Response{Kind: ResponseQuestion, Question: q}

	case ActionAdvanceCategory:
		if facts.ExceedsParams {
			return &Response{
				Kind:    ResponseResult,
				Message: msgExceedsParameters,
				Details: &Details{Trail: facts.trail()},
			}
		}
		// The mutator already advanced the category; re-ask the same
		// parameter for the new bracket.
		q, err := dynamicQuestion(rule.Parameter, facts, ds)
		if err != nil {
			return &Response{
				Kind:    ResponseResult,
				Message: msgExceedsParameters,
				Details: &Details{Trail: facts.trail()},
			}
		}
		return &Response{Kind: ResponseQuestion, Question: q}

	case ActionResult:
		return &Response{
			Kind:    ResponseResult,
			Message: rule.Action.Message,
			Details: &Details{Trail: facts.trail()},
		}

	case ActionFinalResult:
		if facts.Err != "" {
			return &Response{Kind: ResponseError, Message: facts.Err}
		}
		if facts.Result == nil {
			return &Response{Kind: ResponseError, Message: "No fue posible calcular el resultado final"}
		}
		return &Response{
			Kind:    ResponseResult,
			Message: "Te corresponde la Categoría " + facts.Result.Category,
			Details: &Details{Result: facts.Result, Trail: facts.trail()},
		}
	}

	// Unreachable after pack validation.
	return &Response{Kind: ResponseError, Message: "acción desconocida"}
}

// trail copies the applied-rule list so responses never alias the
// session's append-only slice.
func (f *Facts) trail() []AppliedRule {
	out := make([]AppliedRule, len(f.AppliedRules))
	copy(out, f.AppliedRules)
	return out
}
