package requirement

import (
	"fmt"
	"sort"
	"strings"

	"ai-shopscout-be/pkg/store"
)

// Merge folds one extracted fragment into the running record. Scalars are
// replaced only when the fragment carries an explicit value; map entries
// are upserted key by key; brand preferences are unioned with
// case-insensitive dedup. A fragment never erases knowledge the record
// already holds.
func Merge(current store.RequirementRecord, frag store.RequirementFragment) store.RequirementRecord {
	merged := clone(current)

	if frag.Category != nil {
		v := strings.TrimSpace(*frag.Category)
		if v != "" {
			merged.Category = &v
		}
	}
	if frag.BudgetMin != nil && *frag.BudgetMin > 0 {
		v := *frag.BudgetMin
		merged.BudgetMin = &v
	}
	if frag.BudgetMax != nil && *frag.BudgetMax > 0 {
		v := *frag.BudgetMax
		merged.BudgetMax = &v
	}
	if frag.UseCase != nil {
		v := strings.TrimSpace(*frag.UseCase)
		if v != "" {
			merged.UseCase = &v
		}
	}

	for k, v := range frag.Specs {
		if merged.Specs == nil {
			merged.Specs = make(map[string]string, len(frag.Specs))
		}
		merged.Specs[k] = v
	}
	for k, v := range frag.Constraints {
		if merged.Constraints == nil {
			merged.Constraints = make(map[string]string, len(frag.Constraints))
		}
		merged.Constraints[k] = v
	}

	for _, b := range frag.Brands {
		if strings.TrimSpace(b) == "" {
			continue
		}
		if !hasBrand(merged.Brands, b) {
			merged.Brands = append(merged.Brands, b)
		}
	}

	// Normalize a reversed budget range ("between 2000 and 1500").
	if merged.BudgetMin != nil && merged.BudgetMax != nil && *merged.BudgetMin > *merged.BudgetMax {
		merged.BudgetMin, merged.BudgetMax = merged.BudgetMax, merged.BudgetMin
	}

	return merged
}

// IsSufficient reports whether the record carries enough to start
// research: a product category, a budget ceiling, and a use-case
// description. It inspects nothing else; the planner's own readiness
// signal is evaluated separately by the state machine guard.
func IsSufficient(r store.RequirementRecord) bool {
	if r.Category == nil || strings.TrimSpace(*r.Category) == "" {
		return false
	}
	if r.BudgetMax == nil || *r.BudgetMax <= 0 {
		return false
	}
	if r.UseCase == nil || strings.TrimSpace(*r.UseCase) == "" {
		return false
	}
	return true
}

// MissingFields lists the core fields still unknown, in the order the
// planner should ask about them.
func MissingFields(r store.RequirementRecord) []string {
	var missing []string
	if r.Category == nil || strings.TrimSpace(*r.Category) == "" {
		missing = append(missing, "category")
	}
	if r.BudgetMax == nil || *r.BudgetMax <= 0 {
		missing = append(missing, "budget")
	}
	if r.UseCase == nil || strings.TrimSpace(*r.UseCase) == "" {
		missing = append(missing, "use_case")
	}
	return missing
}

// Describe renders the record as a compact human-readable block for
// prompts and reports.
func Describe(r store.RequirementRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Category: %s\n", orUnknown(r.Category)))
	switch {
	case r.BudgetMin != nil && r.BudgetMax != nil:
		b.WriteString(fmt.Sprintf("Budget: $%.0f - $%.0f\n", *r.BudgetMin, *r.BudgetMax))
	case r.BudgetMax != nil:
		b.WriteString(fmt.Sprintf("Budget: up to $%.0f\n", *r.BudgetMax))
	case r.BudgetMin != nil:
		b.WriteString(fmt.Sprintf("Budget: from $%.0f\n", *r.BudgetMin))
	default:
		b.WriteString("Budget: not specified\n")
	}
	b.WriteString(fmt.Sprintf("Use case: %s\n", orUnknown(r.UseCase)))

	if len(r.Specs) > 0 {
		b.WriteString("Specifications:\n")
		for _, k := range sortedKeys(r.Specs) {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", k, r.Specs[k]))
		}
	}
	if len(r.Brands) > 0 {
		b.WriteString(fmt.Sprintf("Preferred brands: %s\n", strings.Join(r.Brands, ", ")))
	}
	if len(r.Constraints) > 0 {
		b.WriteString("Constraints:\n")
		for _, k := range sortedKeys(r.Constraints) {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", k, r.Constraints[k]))
		}
	}

	return b.String()
}

func clone(r store.RequirementRecord) store.RequirementRecord {
	out := r
	if r.Category != nil {
		v := *r.Category
		out.Category = &v
	}
	if r.BudgetMin != nil {
		v := *r.BudgetMin
		out.BudgetMin = &v
	}
	if r.BudgetMax != nil {
		v := *r.BudgetMax
		out.BudgetMax = &v
	}
	if r.UseCase != nil {
		v := *r.UseCase
		out.UseCase = &v
	}
	if r.Specs != nil {
		out.Specs = make(map[string]string, len(r.Specs))
		for k, v := range r.Specs {
			out.Specs[k] = v
		}
	}
	if r.Constraints != nil {
		out.Constraints = make(map[string]string, len(r.Constraints))
		for k, v := range r.Constraints {
			out.Constraints[k] = v
		}
	}
	if r.Brands != nil {
		out.Brands = append([]string(nil), r.Brands...)
	}
	return out
}

func hasBrand(brands []string, b string) bool {
	for _, existing := range brands {
		if strings.EqualFold(existing, b) {
			return true
		}
	}
	return false
}

func orUnknown(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "unknown"
	}
	return *s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
