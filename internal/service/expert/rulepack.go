package expert

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultPack []byte

type packFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rule pack from disk, or the embedded default when
// path is empty. The returned slice is fully validated and already in
// scan order: literal rules first, predicate rules after, each group
// keeping its file order.
func LoadRules(path string) ([]Rule, error) {
	const op = "expert.LoadRules"

	data := defaultPack
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	rules, err := parsePack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rules, nil
}

func parsePack(data []byte) ([]Rule, error) {
	var pack packFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse rule pack: %w", err)
	}
	if len(pack.Rules) == 0 {
		return nil, fmt.Errorf("rule pack is empty")
	}

	seen := make(map[string]bool, len(pack.Rules))
	for i, r := range pack.Rules {
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, r.Name, err)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
	}

	// Partition once at load: literal rules shadow predicate rules with
	// overlapping applicability, and the scan order must not be
	// recomputed per request.
	ordered := make([]Rule, 0, len(pack.Rules))
	for _, r := range pack.Rules {
		if r.Condition.literal() {
			ordered = append(ordered, r)
		}
	}
	for _, r := range pack.Rules {
		if !r.Condition.literal() {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

func validateRule(r Rule) error {
	if r.Name == "" {
		return fmt.Errorf("missing name")
	}
	if r.Condition.QuestionID == "" && r.Condition.QuestionPrefix == "" {
		return fmt.Errorf("condition must name a question id or prefix")
	}
	switch r.Condition.Predicate {
	case PredNone, PredUnitPriceExceedsMax, PredIncomeExceedsLimit,
		PredIncomeWithinLimit, PredExceedsParameter, PredWithinParameter:
	default:
		return fmt.Errorf("unknown predicate %q", r.Condition.Predicate)
	}

	switch r.Action.Kind {
	case ActionQuestion:
		if r.Action.Question == nil {
			return fmt.Errorf("question action without a question")
		}
		if r.Action.Question.ID == "" || r.Action.Question.Text == "" {
			return fmt.Errorf("question action missing id or text")
		}
	case ActionDynamicQuestion, ActionAdvanceCategory:
		if !validParameter(r.Parameter) {
			return fmt.Errorf("action %q needs a valid parameter, got %q", r.Action.Kind, r.Parameter)
		}
	case ActionResult:
		if r.Action.Message == "" {
			return fmt.Errorf("result action without a message")
		}
	case ActionFinalResult:
	default:
		return fmt.Errorf("unknown action kind %q", r.Action.Kind)
	}

	switch r.Mutator {
	case MutatorNone, MutatorClassifyActivity, MutatorSetCategoryA,
		MutatorCategoryFromIncome, MutatorFreezeCategory, MutatorComputePayments:
	case MutatorAdvanceCategory:
		if !validParameter(r.Parameter) {
			return fmt.Errorf("advance mutator needs a valid parameter, got %q", r.Parameter)
		}
	default:
		return fmt.Errorf("unknown mutator %q", r.Mutator)
	}
	return nil
}

func validParameter(p Parameter) bool {
	switch p {
	case ParamSurface, ParamEnergy, ParamRent:
		return true
	}
	return false
}
