package storage

import (
	"sort"
	"time"
)

// Activity is the first key of every Monotributo table. AFIP publishes
// separate figures for service providers and goods sellers.
type Activity string

const (
	ActivityServices Activity = "servicios"
	ActivityGoods    Activity = "venta"
)

// Activities lists both activity kinds in a fixed order.
var Activities = []Activity{ActivityServices, ActivityGoods}

// CategoryLimits holds the eligibility thresholds of one category.
// MaxUnitPrice is only published for category A of goods sellers; zero
// means the value is absent.
type CategoryLimits struct {
	Income       float64 `json:"ingresos"`
	Surface      float64 `json:"superficie"`
	Energy       float64 `json:"energia"`
	Rent         float64 `json:"alquileres"`
	MaxUnitPrice float64 `json:"precio_unitario_maximo,omitempty"`
}

// PaymentAmounts holds the monthly amounts of one category.
type PaymentAmounts struct {
	TaxOnly float64 `json:"solo_impuesto"`
	Full    float64 `json:"completo"`
	Pension float64 `json:"sipa"`
	Health  float64 `json:"obra_social"`
}

// CategoryTable maps activity -> category label (A..K) -> thresholds.
// Category labels sort alphabetically in ascending threshold order.
type CategoryTable map[Activity]map[string]CategoryLimits

// PaymentTable maps activity -> category label -> payment amounts.
type PaymentTable map[Activity]map[string]PaymentAmounts

// Surcharge maps category label -> flat provincial (AREF) amount.
type Surcharge map[string]float64

// Limits returns the thresholds of a category, failing closed on any
// missing key so an empty table never panics a lookup.
func (t CategoryTable) Limits(act Activity, category string) (CategoryLimits, bool) {
	cats, ok := t[act]
	if !ok {
		return CategoryLimits{}, false
	}
	lim, ok := cats[category]
	return lim, ok
}

// SortedCategories returns the category labels of an activity in
// ascending order. Alphabetical order is the bracket order.
func (t CategoryTable) SortedCategories(act Activity) []string {
	cats := t[act]
	labels := make([]string, 0, len(cats))
	for label := range cats {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// NextCategory returns the label following the given one, or false when
// the category is unknown or already the highest.
func (t CategoryTable) NextCategory(act Activity, category string) (string, bool) {
	labels := t.SortedCategories(act)
	for i, label := range labels {
		if label == category {
			if i+1 < len(labels) {
				return labels[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// NextRentCategory returns the first later category whose rent threshold
// is strictly greater than the current one. Several categories share the
// same rent figure, so a plain +1 hop would not change the question being
// asked.
func (t CategoryTable) NextRentCategory(act Activity, category string) (string, bool) {
	cur, ok := t.Limits(act, category)
	if !ok {
		return "", false
	}
	labels := t.SortedCategories(act)
	idx := sort.SearchStrings(labels, category)
	if idx >= len(labels) || labels[idx] != category {
		return "", false
	}
	for _, label := range labels[idx+1:] {
		if t[act][label].Rent > cur.Rent {
			return label, true
		}
	}
	return "", false
}

// Amounts returns the payment record of a category, failing closed on
// missing keys.
func (t PaymentTable) Amounts(act Activity, category string) (PaymentAmounts, bool) {
	cats, ok := t[act]
	if !ok {
		return PaymentAmounts{}, false
	}
	pay, ok := cats[category]
	return pay, ok
}

// Dataset bundles everything the inference engine reads: category
// thresholds, payment amounts and the optional provincial surcharge.
type Dataset struct {
	Categories CategoryTable
	Payments   PaymentTable
	Aref       Surcharge
	UpdatedAt  time.Time
	Source     string
}

// Dataset sources, reported on the status endpoint.
const (
	SourceLive     = "afip"
	SourceSnapshot = "snapshot"
	SourceEmpty    = "default"
)

// EmptyDataset returns a dataset with empty activity maps. Lookups on it
// fail closed; the engine keeps answering but threshold-dependent
// questions produce typed errors.
func EmptyDataset() *Dataset {
	return &Dataset{
		Categories: CategoryTable{ActivityServices: {}, ActivityGoods: {}},
		Payments:   PaymentTable{ActivityServices: {}, ActivityGoods: {}},
		Aref:       Surcharge{},
		Source:     SourceEmpty,
	}
}
