package expert

import (
	"fmt"
	"log/slog"
	"strings"

	"monotributo-backend/internal/storage"
)

// answerAffirmative matches the "SÍ ..." option variants ("SÍ (Supera el
// límite)" and plain "SÍ"). Accent-sensitive on purpose: options travel
// verbatim between the engine and the frontend.
func answerAffirmative(answer string) bool {
	return strings.HasPrefix(answer, "SÍ")
}

// conditionMatches checks every specified sub-condition (logical AND).
// Predicate failures are logged and counted as non-match; a broken
// predicate must never abort the rule scan.
func (s *Service) conditionMatches(r *Rule, facts *Facts, ev AnswerEvent, ds *storage.Dataset) bool {
	c := r.Condition
	if c.QuestionID != "" && ev.QuestionID != c.QuestionID {
		return false
	}
	if c.QuestionPrefix != "" && !strings.HasPrefix(ev.QuestionID, c.QuestionPrefix) {
		return false
	}
	if c.Answer != "" && ev.Answer != c.Answer {
		return false
	}
	if c.Predicate != PredNone {
		ok, err := evalPredicate(c.Predicate, facts, ev, ds)
		if err != nil {
			s.log.Warn("predicate evaluation failed",
				slog.String("rule", r.Name),
				slog.String("predicate", string(c.Predicate)),
				slog.String("error", err.Error()))
			return false
		}
		return ok
	}
	return true
}

func evalPredicate(kind PredicateKind, facts *Facts, ev AnswerEvent, ds *storage.Dataset) (bool, error) {
	switch kind {
	case PredUnitPriceExceedsMax:
		// The lookup guards against an empty table: without a published
		// maximum the exclusion cannot be asserted.
		lim, ok := ds.Categories.Limits(storage.ActivityGoods, "A")
		if !ok || lim.MaxUnitPrice <= 0 {
			return false, fmt.Errorf("category A unit price limit unavailable")
		}
		return answerAffirmative(ev.Answer), nil

	case PredIncomeExceedsLimit:
		return incomeExceedsLimit(facts, ev, ds)

	case PredIncomeWithinLimit:
		exceeds, err := incomeExceedsLimit(facts, ev, ds)
		if err != nil {
			return false, err
		}
		return !exceeds, nil

	case PredExceedsParameter:
		return answerAffirmative(ev.Answer), nil

	case PredWithinParameter:
		return !answerAffirmative(ev.Answer), nil

	default:
		return false, fmt.Errorf("unknown predicate %q", kind)
	}
}

// incomeExceedsLimit compares the projected income against the top
// admissible category: H for services, the (possibly capped) last
// category for goods sellers.
func incomeExceedsLimit(facts *Facts, ev AnswerEvent, ds *storage.Dataset) (bool, error) {
	if ev.Value == nil {
		return false, nil
	}
	act := facts.Activity
	if act == "" {
		act = storage.ActivityServices
	}
	capCategory := "H"
	if act == storage.ActivityGoods {
		capCategory = facts.MaxCategory
		if capCategory == "" {
			capCategory = "K"
		}
	}
	lim, ok := ds.Categories.Limits(act, capCategory)
	if !ok {
		return false, fmt.Errorf("income limit for %s/%s unavailable", act, capCategory)
	}
	return *ev.Value > lim.Income, nil
}
