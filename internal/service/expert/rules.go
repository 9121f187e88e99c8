package expert

// The rule set is a closed vocabulary: every predicate, action and
// mutator a pack may reference is an enum handled by one switch. Unknown
// names are rejected when the pack is loaded, so dispatch cannot fail at
// answer time.

// PredicateKind names the hardcoded condition functions.
type PredicateKind string

const (
	PredNone                PredicateKind = ""
	PredUnitPriceExceedsMax PredicateKind = "unit_price_exceeds_max"
	PredIncomeExceedsLimit  PredicateKind = "income_exceeds_limit"
	PredIncomeWithinLimit   PredicateKind = "income_within_limit"
	PredExceedsParameter    PredicateKind = "exceeds_parameter"
	PredWithinParameter     PredicateKind = "within_parameter"
)

// ActionKind names what a fired rule produces.
type ActionKind string

const (
	ActionQuestion        ActionKind = "question"
	ActionDynamicQuestion ActionKind = "dynamic_question"
	ActionAdvanceCategory ActionKind = "advance_category"
	ActionResult          ActionKind = "result"
	ActionFinalResult     ActionKind = "final_result"
)

// MutatorKind names the fact-mutating post-actions.
type MutatorKind string

const (
	MutatorNone               MutatorKind = ""
	MutatorClassifyActivity   MutatorKind = "classify_activity"
	MutatorSetCategoryA       MutatorKind = "set_category_a"
	MutatorCategoryFromIncome MutatorKind = "category_from_income"
	MutatorAdvanceCategory    MutatorKind = "advance_category"
	MutatorFreezeCategory     MutatorKind = "freeze_category"
	MutatorComputePayments    MutatorKind = "compute_payments"
)

// Parameter names the per-category thresholds checked one by one once
// the taxpayer has physical premises. Values double as question-id
// prefixes (superficie_cat_A, ...).
type Parameter string

const (
	ParamSurface Parameter = "superficie"
	ParamEnergy  Parameter = "energia"
	ParamRent    Parameter = "alquileres"
)

// Condition is the conjunctive guard of a rule. Empty fields are not
// checked; Predicate runs last and its errors count as non-match.
type Condition struct {
	QuestionID     string        `yaml:"question_id,omitempty"`
	QuestionPrefix string        `yaml:"question_prefix,omitempty"`
	Answer         string        `yaml:"answer,omitempty"`
	Predicate      PredicateKind `yaml:"predicate,omitempty"`
}

// literal reports whether the condition matches on ids and text alone.
// Literal rules are scanned before predicate rules so exact transitions
// shadow derived ones.
func (c Condition) literal() bool {
	return c.Predicate == PredNone
}

// Action describes what to send back when the rule fires.
type Action struct {
	Kind     ActionKind `yaml:"kind"`
	Question *Question  `yaml:"question,omitempty"`
	Message  string     `yaml:"message,omitempty"`
}

// Rule is one condition→action entry of the knowledge base. Rules are
// immutable after load. Parameter is shared by dynamic-question actions,
// advance actions and the advance mutator of the same rule.
type Rule struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Rationale   string      `yaml:"rationale,omitempty"`
	Condition   Condition   `yaml:"condition"`
	Action      Action      `yaml:"action"`
	Parameter   Parameter   `yaml:"parameter,omitempty"`
	Mutator     MutatorKind `yaml:"mutator,omitempty"`
}
