package store

// RequirementRecord is the accumulating specification of what the buyer
// wants. Optional scalars are pointers so that "unknown" stays distinct
// from a zero value across JSON round trips; absent fields serialize as
// absent, never as sentinel values.
type RequirementRecord struct {
	Category    *string           `json:"category,omitempty"`
	BudgetMin   *float64          `json:"budget_min,omitempty"`
	BudgetMax   *float64          `json:"budget_max,omitempty"`
	UseCase     *string           `json:"use_case,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
	Brands      []string          `json:"brands,omitempty"`
	Constraints map[string]string `json:"constraints,omitempty"`
}

// RequirementFragment is a partial requirement update extracted from a
// single dialogue exchange. Every field is optional; nil means the
// exchange said nothing about that field.
type RequirementFragment struct {
	Category    *string           `json:"category,omitempty"`
	BudgetMin   *float64          `json:"budget_min,omitempty"`
	BudgetMax   *float64          `json:"budget_max,omitempty"`
	UseCase     *string           `json:"use_case,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
	Brands      []string          `json:"brands,omitempty"`
	Constraints map[string]string `json:"constraints,omitempty"`
}
