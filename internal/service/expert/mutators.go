package expert

import (
	"fmt"

	"monotributo-backend/internal/storage"
)

// applyMutator runs the post-action of a fired rule against the session
// facts. Mutators are the only writers of session state.
func applyMutator(kind MutatorKind, param Parameter, facts *Facts, ev AnswerEvent, ds *storage.Dataset) error {
	switch kind {
	case MutatorClassifyActivity:
		classifyActivity(facts, ev.Answer)
		return nil
	case MutatorSetCategoryA:
		facts.CurrentCategory = "A"
		facts.FinalCategory = "A"
		return nil
	case MutatorCategoryFromIncome:
		return categoryFromIncome(facts, ev.Value, ds)
	case MutatorAdvanceCategory:
		return advanceCategoryByParameter(facts, param, ds)
	case MutatorFreezeCategory:
		facts.FinalCategory = facts.CurrentCategory
		return nil
	case MutatorComputePayments:
		computeFinalPayments(facts, ev.Answer == "SÍ", ds)
		return nil
	default:
		return fmt.Errorf("unknown mutator %q", kind)
	}
}

// classifyActivity records the activity type. Goods sellers start the
// parameter checks from the lowest category.
func classifyActivity(facts *Facts, answer string) {
	if answerAffirmative(answer) {
		facts.Activity = storage.ActivityServices
		return
	}
	facts.Activity = storage.ActivityGoods
	facts.CurrentCategory = "A"
}

// categoryFromIncome assigns the smallest category whose income
// threshold covers the projected income (inclusive upper bound). A prior
// MaxCategory cap clamps the result down for goods sellers.
func categoryFromIncome(facts *Facts, income *float64, ds *storage.Dataset) error {
	if income == nil {
		return fmt.Errorf("income value missing")
	}
	act := facts.Activity
	if act == "" {
		return fmt.Errorf("activity type not set")
	}
	for _, label := range ds.Categories.SortedCategories(act) {
		lim, _ := ds.Categories.Limits(act, label)
		if *income > lim.Income {
			continue
		}
		if act == storage.ActivityGoods && facts.MaxCategory != "" && label > facts.MaxCategory {
			label = facts.MaxCategory
		}
		facts.CurrentCategory = label
		facts.FinalCategory = label
		return nil
	}
	return fmt.Errorf("income %.2f above every category of %s", *income, act)
}

// advanceCategoryByParameter moves to the next-higher category after a
// threshold was exceeded. Rent hops to the next category whose rent
// threshold is strictly greater, because consecutive categories share
// rent figures. At the top, the general-regime flag is set and the
// category left unchanged, which keeps repeated calls idempotent.
func advanceCategoryByParameter(facts *Facts, param Parameter, ds *storage.Dataset) error {
	act := facts.Activity
	if act == "" {
		act = storage.ActivityServices
	}
	current := facts.CurrentCategory
	if current == "" {
		current = "A"
	}
	if _, ok := ds.Categories.Limits(act, current); !ok {
		return fmt.Errorf("category %s (%s) not in table", current, act)
	}

	var next string
	var ok bool
	if param == ParamRent {
		next, ok = ds.Categories.NextRentCategory(act, current)
	} else {
		next, ok = ds.Categories.NextCategory(act, current)
	}
	if !ok {
		facts.ExceedsParams = true
		return nil
	}
	facts.CurrentCategory = next
	return nil
}

// computeFinalPayments builds the payment summary for the final
// category. Concurrent dependent employment waives the pension (SIPA)
// and health-insurance components, which the employer already covers.
// Lookup failures are recorded as an error fact, not returned: the
// final-result action surfaces them as a typed error response.
func computeFinalPayments(facts *Facts, dependent bool, ds *storage.Dataset) {
	pay, ok := ds.Payments.Amounts(facts.Activity, facts.FinalCategory)
	if !ok {
		facts.Err = fmt.Sprintf("no hay datos de pago para la categoría %s (%s)", facts.FinalCategory, facts.Activity)
		return
	}

	national := NationalPayments{Tax: pay.TaxOnly}
	totalNational := pay.TaxOnly
	if dependent {
		national.Note = "SIPA y obra social no aplican: cubiertos por tu empleo actual"
	} else {
		pension, health := pay.Pension, pay.Health
		national.Pension = &pension
		national.Health = &health
		totalNational += pay.Pension + pay.Health
	}

	var regional RegionalPayments
	var totalRegional float64
	if amount, ok := ds.Aref[facts.FinalCategory]; ok {
		regional.Aref = &amount
		totalRegional = amount
	}

	facts.Result = &FinalResult{
		Category:        facts.FinalCategory,
		Activity:        facts.Activity,
		National:        national,
		Regional:        regional,
		TotalNational:   totalNational,
		TotalRegional:   totalRegional,
		TotalGeneral:    totalNational + totalRegional,
		DependentWorker: dependent,
	}
}
