package expert

import (
	"fmt"
	"strconv"
	"strings"

	"monotributo-backend/internal/storage"
)

var dynamicOptions = []string{
	"SÍ (Supera el límite)",
	"NO (No supera el límite / Desconozco)",
}

// dynamicQuestion synthesizes a per-category parameter question with the
// current threshold embedded in the prompt. The question id carries the
// category label so the parameter rules can prefix-match the answer.
func dynamicQuestion(param Parameter, facts *Facts, ds *storage.Dataset) (*Question, error) {
	category := facts.CurrentCategory
	if category == "" {
		category = "A"
	}
	act := facts.Activity
	if act == "" {
		act = storage.ActivityServices
	}
	lim, ok := ds.Categories.Limits(act, category)
	if !ok {
		return nil, fmt.Errorf("no thresholds for category %s (%s)", category, act)
	}

	var text string
	switch param {
	case ParamSurface:
		text = fmt.Sprintf("¿La superficie afectada de tu local supera los %s m2?", formatNumber(lim.Surface))
	case ParamEnergy:
		text = fmt.Sprintf("¿El consumo de energía eléctrica supera los %s Kw?", formatNumber(lim.Energy))
	case ParamRent:
		text = fmt.Sprintf("¿Los alquileres devengados superan los %s?", formatAmount(lim.Rent))
	default:
		return nil, fmt.Errorf("unknown parameter %q", param)
	}

	return &Question{
		ID:      fmt.Sprintf("%s_cat_%s", param, category),
		Text:    text,
		Options: dynamicOptions,
		Kind:    InputOption,
	}, nil
}

// renderQuestion resolves a question's templated prompt against the
// current table. Static rule definitions are never mutated; the filled
// text lives only in the response. When the table cannot provide the
// unit price the static fallback wording is kept.
func renderQuestion(q *Question, ds *storage.Dataset) *Question {
	out := *q
	out.TextTemplate = ""
	if q.TextTemplate != "" {
		if lim, ok := ds.Categories.Limits(storage.ActivityGoods, "A"); ok && lim.MaxUnitPrice > 0 {
			out.Text = fmt.Sprintf(q.TextTemplate, formatAmount(lim.MaxUnitPrice))
		}
	}
	return &out
}

// formatAmount renders a monetary value as published: "$466,361.15".
func formatAmount(v float64) string {
	return "$" + groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
}

// formatNumber renders a threshold without trailing decimals when it is
// a whole number ("30", "3330", "85.5").
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return groupThousands(strconv.FormatInt(int64(v), 10))
	}
	return groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
}

func groupThousands(s string) string {
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}
	if len(intPart) <= 3 {
		return intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}
