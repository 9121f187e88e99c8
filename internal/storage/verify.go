package storage

import "fmt"

// Verify checks that a fetched category/payment pair is usable before it
// replaces the current dataset. Both activities must be present with at
// least one category each. Mismatched category sets between thresholds
// and payments are tolerated (the engine fails closed per lookup) and
// reported as warnings.
func Verify(categories CategoryTable, payments PaymentTable) (warnings []string, err error) {
	for _, act := range Activities {
		cats, ok := categories[act]
		if !ok || len(cats) == 0 {
			return nil, fmt.Errorf("missing categories for activity %q", act)
		}
		pays, ok := payments[act]
		if !ok || len(pays) == 0 {
			return nil, fmt.Errorf("missing payments for activity %q", act)
		}

		for label := range cats {
			if _, ok := pays[label]; !ok {
				warnings = append(warnings, fmt.Sprintf("category %s (%s) has thresholds but no payments", label, act))
			}
		}
		for label := range pays {
			if _, ok := cats[label]; !ok {
				warnings = append(warnings, fmt.Sprintf("category %s (%s) has payments but no thresholds", label, act))
			}
		}
	}
	return warnings, nil
}
